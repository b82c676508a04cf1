package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/messaging-service/internal/domain"
	"github.com/spec-kit/messaging-service/internal/events"
	"github.com/spec-kit/messaging-service/internal/repository"
	"github.com/spec-kit/messaging-service/internal/validation"
	apperrors "github.com/spec-kit/messaging-service/pkg/util/errorutil"
)

const titlePreviewLength = 20

// MessageService turns drafts into messages and exposes the sent record.
type MessageService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// MessageDependencies bundles collaborators for the message service.
type MessageDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// MessageCreateInput names the draft to send and its recipient.
type MessageCreateInput struct {
	SourceDraftID int64 `json:"sourceDraftId" validate:"gt=0"`
	RecipientID   int64 `json:"recipientId" validate:"gt=0"`
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		now:        clockOrDefault(deps.Clock),
	}
}

// CreateFromDraft sends an unsent draft to a recipient. The message insert
// and the draft transition commit together or not at all.
func (s *MessageService) CreateFromDraft(ctx context.Context, input MessageCreateInput) (*domain.Message, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var created *domain.Message
	var source *domain.Draft
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		draft, err := tx.Drafts().GetForUpdate(ctx, input.SourceDraftID)
		if err != nil {
			return lookupError("draft", input.SourceDraftID, err)
		}
		msg := domain.NewMessageFromDraft(draft, input.RecipientID, s.now())
		if err := draft.MarkSent(); err != nil {
			return transitionError(draft.ID, err)
		}
		if err := tx.Messages().Create(ctx, msg); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return draftAlreadySent(draft.ID)
			}
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("draft", draft.ID)
			}
			return err
		}
		if err := tx.Drafts().Update(ctx, draft); err != nil {
			return err
		}
		created, source = msg, draft
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("message sent",
		zap.Int64("message_id", created.ID),
		zap.Int64("draft_id", source.ID),
		zap.Int64("recipient_id", created.RecipientID))

	s.publishEvent(ctx, events.NewEvent(events.EventMessageCreated, created.ID, events.MessageCreatedPayload{
		SenderID:      created.SenderID,
		RecipientID:   created.RecipientID,
		SourceDraftID: source.ID,
		TitlePreview:  preview(created.Title, titlePreviewLength),
	}))
	messageID := created.ID
	s.publishEvent(ctx, events.NewEvent(events.EventDraftSent, source.ID, events.DraftSentPayload{
		SenderID:  source.SenderID,
		MessageID: &messageID,
	}))
	return created, nil
}

// Get returns one message.
func (s *MessageService) Get(ctx context.Context, id int64) (*domain.Message, error) {
	msg, err := s.store.Messages().GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("message", id, err)
	}
	return msg, nil
}

// List returns every message in storage order.
func (s *MessageService) List(ctx context.Context) ([]domain.Message, error) {
	msgs, err := s.store.Messages().List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return msgs, nil
}

// Delete removes a message. The source draft stays sent.
func (s *MessageService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Messages().Delete(ctx, id); err != nil {
		return lookupError("message", id, err)
	}
	s.publishEvent(ctx, events.NewEvent(events.EventMessageDeleted, id, nil))
	return nil
}

// SourceDraft returns the draft a message was produced from. It is an
// internal accessor; the relation is never serialized to clients.
func (s *MessageService) SourceDraft(ctx context.Context, messageID int64) (*domain.Draft, error) {
	msg, err := s.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SourceDraftID == nil {
		return nil, apperrors.NewNotFound("draft", map[string]any{"messageId": messageID})
	}
	draft, err := s.store.Drafts().GetByID(ctx, *msg.SourceDraftID)
	if err != nil {
		return nil, lookupError("draft", *msg.SourceDraftID, err)
	}
	return draft, nil
}

func (s *MessageService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
