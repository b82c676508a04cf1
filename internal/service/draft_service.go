package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/messaging-service/internal/domain"
	"github.com/spec-kit/messaging-service/internal/events"
	"github.com/spec-kit/messaging-service/internal/repository"
	"github.com/spec-kit/messaging-service/internal/validation"
	apperrors "github.com/spec-kit/messaging-service/pkg/util/errorutil"
)

// DraftService coordinates the draft lifecycle.
type DraftService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// DraftDependencies bundles collaborators for the draft service.
type DraftDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Clock overrides time.Now, mostly for tests.
	Clock func() time.Time
}

// DraftCreateInput describes a new draft. Drafts always start unsent.
type DraftCreateInput struct {
	SenderID   int64      `json:"senderId" validate:"gt=0"`
	Title      string     `json:"title" validate:"notblank,max=30"`
	Body       string     `json:"body" validate:"notblank,max=250"`
	ComposedAt *time.Time `json:"composedAt"`
}

// DraftUpdateInput carries the fields to change; nil fields are kept.
type DraftUpdateInput struct {
	Title *string `json:"title" validate:"omitnil,notblank,max=30"`
	Body  *string `json:"body" validate:"omitnil,notblank,max=250"`
}

// NewDraftService constructs the service.
func NewDraftService(deps DraftDependencies) *DraftService {
	return &DraftService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		now:        clockOrDefault(deps.Clock),
	}
}

// Create stores a new unsent draft, stamping it with the current time when
// the caller gave none.
func (s *DraftService) Create(ctx context.Context, input DraftCreateInput) (*domain.Draft, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	composedAt := s.now()
	if input.ComposedAt != nil && !input.ComposedAt.IsZero() {
		composedAt = input.ComposedAt.UTC()
	}

	draft := &domain.Draft{
		SenderID:   input.SenderID,
		ComposedAt: composedAt,
		Title:      input.Title,
		Body:       input.Body,
		State:      domain.DraftStateUnsent,
	}
	if err := s.store.Drafts().Create(ctx, draft); err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("draft created", zap.Int64("draft_id", draft.ID), zap.Int64("sender_id", draft.SenderID))
	s.publishEvent(ctx, events.NewEvent(events.EventDraftCreated, draft.ID, draftPayload(draft)))
	return draft, nil
}

// Get returns one draft.
func (s *DraftService) Get(ctx context.Context, id int64) (*domain.Draft, error) {
	draft, err := s.store.Drafts().GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("draft", id, err)
	}
	return draft, nil
}

// List returns every draft in storage order.
func (s *DraftService) List(ctx context.Context) ([]domain.Draft, error) {
	drafts, err := s.store.Drafts().List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return drafts, nil
}

// Update edits title and/or body of an unsent draft.
func (s *DraftService) Update(ctx context.Context, id int64, input DraftUpdateInput) (*domain.Draft, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var updated *domain.Draft
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		draft, err := tx.Drafts().GetForUpdate(ctx, id)
		if err != nil {
			return lookupError("draft", id, err)
		}
		if err := draft.Edit(input.Title, input.Body); err != nil {
			return transitionError(id, err)
		}
		if err := tx.Drafts().Update(ctx, draft); err != nil {
			return err
		}
		updated = draft
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventDraftUpdated, updated.ID, draftPayload(updated)))
	return updated, nil
}

// MarkSent freezes a draft without producing a message.
func (s *DraftService) MarkSent(ctx context.Context, id int64) (*domain.Draft, error) {
	var sent *domain.Draft
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		draft, err := tx.Drafts().GetForUpdate(ctx, id)
		if err != nil {
			return lookupError("draft", id, err)
		}
		if err := draft.MarkSent(); err != nil {
			return transitionError(id, err)
		}
		if err := tx.Drafts().Update(ctx, draft); err != nil {
			return err
		}
		sent = draft
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("draft marked sent", zap.Int64("draft_id", sent.ID))
	s.publishEvent(ctx, events.NewEvent(events.EventDraftSent, sent.ID, events.DraftSentPayload{SenderID: sent.SenderID}))
	return sent, nil
}

// Delete removes an unsent draft. Sent drafts are kept forever.
func (s *DraftService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		draft, err := tx.Drafts().GetForUpdate(ctx, id)
		if err != nil {
			return lookupError("draft", id, err)
		}
		if draft.IsSent() {
			return apperrors.NewForbidden("sent drafts cannot be deleted", map[string]any{"id": id})
		}
		return tx.Drafts().Delete(ctx, id)
	})
	if err != nil {
		return storeError(err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventDraftDeleted, id, nil))
	return nil
}

func (s *DraftService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}

func draftPayload(d *domain.Draft) events.DraftPayload {
	return events.DraftPayload{SenderID: d.SenderID, Title: d.Title, State: string(d.State)}
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("entity_id", event.EntityID),
			zap.Error(err))
	}
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func clockOrDefault(clock func() time.Time) func() time.Time {
	if clock != nil {
		return clock
	}
	return func() time.Time { return time.Now().UTC() }
}
