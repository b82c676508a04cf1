package repository

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/spec-kit/messaging-service/internal/domain"
)

// MemoryStore keeps drafts and messages in process. Transactions are
// serialized and applied copy-on-commit, so a failed transaction leaves no
// trace. Every call made outside WithinTx runs as its own transaction.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

type memoryState struct {
	drafts        map[int64]domain.Draft
	messages      map[int64]domain.Message
	nextDraftID   int64
	nextMessageID int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memoryState{
		drafts:   map[int64]domain.Draft{},
		messages: map[int64]domain.Message{},
	}}
}

func (s *MemoryStore) Drafts() DraftRepository {
	return autoTxDrafts{store: s}
}

func (s *MemoryStore) Messages() MessageRepository {
	return autoTxMessages{store: s}
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	working := s.state.clone()
	if err := fn(&memoryTx{state: working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (st *memoryState) clone() *memoryState {
	return &memoryState{
		drafts:        maps.Clone(st.drafts),
		messages:      maps.Clone(st.messages),
		nextDraftID:   st.nextDraftID,
		nextMessageID: st.nextMessageID,
	}
}

// memoryTx is a store bound to an open in-memory transaction.
type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) Drafts() DraftRepository     { return memoryDrafts{state: t.state} }
func (t *memoryTx) Messages() MessageRepository { return memoryMessages{state: t.state} }

// WithinTx joins the enclosing transaction.
func (t *memoryTx) WithinTx(_ context.Context, fn func(tx Store) error) error {
	return fn(t)
}

type memoryDrafts struct {
	state *memoryState
}

func (r memoryDrafts) Create(_ context.Context, draft *domain.Draft) error {
	r.state.nextDraftID++
	draft.ID = r.state.nextDraftID
	r.state.drafts[draft.ID] = *draft
	return nil
}

func (r memoryDrafts) GetByID(_ context.Context, id int64) (*domain.Draft, error) {
	draft, ok := r.state.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &draft, nil
}

// GetForUpdate needs no extra locking: the whole transaction holds the store.
func (r memoryDrafts) GetForUpdate(ctx context.Context, id int64) (*domain.Draft, error) {
	return r.GetByID(ctx, id)
}

func (r memoryDrafts) List(_ context.Context) ([]domain.Draft, error) {
	result := make([]domain.Draft, 0, len(r.state.drafts))
	for _, id := range slices.Sorted(maps.Keys(r.state.drafts)) {
		result = append(result, r.state.drafts[id])
	}
	return result, nil
}

func (r memoryDrafts) Update(_ context.Context, draft *domain.Draft) error {
	if _, ok := r.state.drafts[draft.ID]; !ok {
		return ErrNotFound
	}
	r.state.drafts[draft.ID] = *draft
	return nil
}

func (r memoryDrafts) Delete(_ context.Context, id int64) error {
	if _, ok := r.state.drafts[id]; !ok {
		return ErrNotFound
	}
	for _, msg := range r.state.messages {
		if msg.SourceDraftID != nil && *msg.SourceDraftID == id {
			// mirrors ON DELETE SET NULL
			msg.SourceDraftID = nil
			r.state.messages[msg.ID] = msg
		}
	}
	delete(r.state.drafts, id)
	return nil
}

type memoryMessages struct {
	state *memoryState
}

func (r memoryMessages) Create(_ context.Context, msg *domain.Message) error {
	if msg.SourceDraftID != nil {
		if _, ok := r.state.drafts[*msg.SourceDraftID]; !ok {
			return ErrNotFound
		}
		for _, existing := range r.state.messages {
			if existing.SourceDraftID != nil && *existing.SourceDraftID == *msg.SourceDraftID {
				return ErrDuplicate
			}
		}
	}
	r.state.nextMessageID++
	msg.ID = r.state.nextMessageID
	r.state.messages[msg.ID] = *msg
	return nil
}

func (r memoryMessages) GetByID(_ context.Context, id int64) (*domain.Message, error) {
	msg, ok := r.state.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &msg, nil
}

func (r memoryMessages) List(_ context.Context) ([]domain.Message, error) {
	result := make([]domain.Message, 0, len(r.state.messages))
	for _, id := range slices.Sorted(maps.Keys(r.state.messages)) {
		result = append(result, r.state.messages[id])
	}
	return result, nil
}

func (r memoryMessages) Delete(_ context.Context, id int64) error {
	if _, ok := r.state.messages[id]; !ok {
		return ErrNotFound
	}
	delete(r.state.messages, id)
	return nil
}

// autoTxDrafts wraps every call in its own transaction.
type autoTxDrafts struct {
	store *MemoryStore
}

func (r autoTxDrafts) Create(ctx context.Context, draft *domain.Draft) error {
	return r.store.WithinTx(ctx, func(tx Store) error { return tx.Drafts().Create(ctx, draft) })
}

func (r autoTxDrafts) GetByID(ctx context.Context, id int64) (draft *domain.Draft, err error) {
	err = r.store.WithinTx(ctx, func(tx Store) error {
		draft, err = tx.Drafts().GetByID(ctx, id)
		return err
	})
	return draft, err
}

func (r autoTxDrafts) GetForUpdate(ctx context.Context, id int64) (*domain.Draft, error) {
	return r.GetByID(ctx, id)
}

func (r autoTxDrafts) List(ctx context.Context) (drafts []domain.Draft, err error) {
	err = r.store.WithinTx(ctx, func(tx Store) error {
		drafts, err = tx.Drafts().List(ctx)
		return err
	})
	return drafts, err
}

func (r autoTxDrafts) Update(ctx context.Context, draft *domain.Draft) error {
	return r.store.WithinTx(ctx, func(tx Store) error { return tx.Drafts().Update(ctx, draft) })
}

func (r autoTxDrafts) Delete(ctx context.Context, id int64) error {
	return r.store.WithinTx(ctx, func(tx Store) error { return tx.Drafts().Delete(ctx, id) })
}

type autoTxMessages struct {
	store *MemoryStore
}

func (r autoTxMessages) Create(ctx context.Context, msg *domain.Message) error {
	return r.store.WithinTx(ctx, func(tx Store) error { return tx.Messages().Create(ctx, msg) })
}

func (r autoTxMessages) GetByID(ctx context.Context, id int64) (msg *domain.Message, err error) {
	err = r.store.WithinTx(ctx, func(tx Store) error {
		msg, err = tx.Messages().GetByID(ctx, id)
		return err
	})
	return msg, err
}

func (r autoTxMessages) List(ctx context.Context) (msgs []domain.Message, err error) {
	err = r.store.WithinTx(ctx, func(tx Store) error {
		msgs, err = tx.Messages().List(ctx)
		return err
	})
	return msgs, err
}

func (r autoTxMessages) Delete(ctx context.Context, id int64) error {
	return r.store.WithinTx(ctx, func(tx Store) error { return tx.Messages().Delete(ctx, id) })
}
