package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/messaging-service/internal/domain"
)

func newDraft(title string) *domain.Draft {
	return &domain.Draft{
		SenderID:   1,
		ComposedAt: time.Now().UTC(),
		Title:      title,
		Body:       "body of " + title,
		State:      domain.DraftStateUnsent,
	}
}

func TestMemoryStore_DraftCRUD(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore()

	first, second := newDraft("first"), newDraft("second")
	req.NoError(store.Drafts().Create(ctx, first))
	req.NoError(store.Drafts().Create(ctx, second))
	req.Equal(int64(1), first.ID)
	req.Equal(int64(2), second.ID)

	got, err := store.Drafts().GetByID(ctx, second.ID)
	req.NoError(err)
	req.Equal(*second, *got)

	got.Title = "changed"
	req.NoError(store.Drafts().Update(ctx, got))
	drafts, err := store.Drafts().List(ctx)
	req.NoError(err)
	req.Len(drafts, 2)
	req.Equal("first", drafts[0].Title)
	req.Equal("changed", drafts[1].Title)

	req.NoError(store.Drafts().Delete(ctx, first.ID))
	_, err = store.Drafts().GetByID(ctx, first.ID)
	req.ErrorIs(err, ErrNotFound)
	req.ErrorIs(store.Drafts().Delete(ctx, first.ID), ErrNotFound)
	req.ErrorIs(store.Drafts().Update(ctx, &domain.Draft{ID: 99}), ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore()
	d := newDraft("copy")
	req.NoError(store.Drafts().Create(ctx, d))

	got, err := store.Drafts().GetByID(ctx, d.ID)
	req.NoError(err)
	got.Title = "mutated outside"

	again, err := store.Drafts().GetByID(ctx, d.ID)
	req.NoError(err)
	req.Equal("copy", again.Title)
}

func TestMemoryStore_WithinTxRollsBack(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore()
	d := newDraft("tx")
	req.NoError(store.Drafts().Create(ctx, d))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx Store) error {
		sourceID := d.ID
		if err := tx.Messages().Create(ctx, &domain.Message{SenderID: 1, RecipientID: 2, SourceDraftID: &sourceID}); err != nil {
			return err
		}
		locked, err := tx.Drafts().GetForUpdate(ctx, d.ID)
		if err != nil {
			return err
		}
		req.NoError(locked.MarkSent())
		if err := tx.Drafts().Update(ctx, locked); err != nil {
			return err
		}
		return boom
	})
	req.ErrorIs(err, boom)

	msgs, err := store.Messages().List(ctx)
	req.NoError(err)
	req.Empty(msgs)
	got, err := store.Drafts().GetByID(ctx, d.ID)
	req.NoError(err)
	req.False(got.IsSent())
}

func TestMemoryStore_NestedTxJoinsOuter(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.WithinTx(ctx, func(tx Store) error {
		return tx.WithinTx(ctx, func(inner Store) error {
			return inner.Drafts().Create(ctx, newDraft("nested"))
		})
	})
	req.NoError(err)

	drafts, err := store.Drafts().List(ctx)
	req.NoError(err)
	req.Len(drafts, 1)
}

func TestMemoryStore_MessageConstraints(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore()
	d := newDraft("once")
	req.NoError(store.Drafts().Create(ctx, d))
	sourceID := d.ID

	first := &domain.Message{SenderID: 1, RecipientID: 2, Title: "t", Body: "b", SourceDraftID: &sourceID}
	req.NoError(store.Messages().Create(ctx, first))
	req.ErrorIs(store.Messages().Create(ctx, &domain.Message{SourceDraftID: &sourceID}), ErrDuplicate)

	missing := int64(404)
	req.ErrorIs(store.Messages().Create(ctx, &domain.Message{SourceDraftID: &missing}), ErrNotFound)

	req.NoError(store.Messages().Create(ctx, &domain.Message{SenderID: 5, RecipientID: 6}), "messages without a source are allowed")

	// deleting the draft detaches its message
	req.NoError(store.Drafts().Delete(ctx, d.ID))
	got, err := store.Messages().GetByID(ctx, first.ID)
	req.NoError(err)
	req.Nil(got.SourceDraftID)

	req.NoError(store.Messages().Delete(ctx, first.ID))
	req.ErrorIs(store.Messages().Delete(ctx, first.ID), ErrNotFound)
	_, err = store.Messages().GetByID(ctx, first.ID)
	req.ErrorIs(err, ErrNotFound)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMemoryStore().Drafts().Create(ctx, newDraft("late"))

	require.ErrorIs(t, err, context.Canceled)
}
