package domain

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestDraft_MarkSent(t *testing.T) {
	req := require.New(t)
	d := &Draft{ID: 1, State: DraftStateUnsent}

	req.NoError(d.MarkSent())
	req.True(d.IsSent())
	req.ErrorIs(d.MarkSent(), ErrDraftAlreadySent)
	req.Equal(DraftStateSent, d.State)
}

func TestDraft_Edit(t *testing.T) {
	t.Run("applies only present fields", func(t *testing.T) {
		req := require.New(t)
		d := &Draft{Title: "Hi", Body: "Hello", State: DraftStateUnsent}

		req.NoError(d.Edit(nil, lo.ToPtr("Hello there")))

		req.Equal("Hi", d.Title)
		req.Equal("Hello there", d.Body)
	})

	t.Run("sent drafts are frozen", func(t *testing.T) {
		req := require.New(t)
		d := &Draft{Title: "Hi", Body: "Hello", State: DraftStateSent}

		req.ErrorIs(d.Edit(lo.ToPtr("Other"), nil), ErrDraftAlreadySent)
		req.Equal("Hi", d.Title)
	})

	t.Run("unknown state is rejected", func(t *testing.T) {
		d := &Draft{State: "ARCHIVED"}
		err := d.Edit(lo.ToPtr("x"), nil)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrDraftAlreadySent)
	})
}

func TestDraftStateFromSent(t *testing.T) {
	require.Equal(t, DraftStateSent, DraftStateFromSent(true))
	require.Equal(t, DraftStateUnsent, DraftStateFromSent(false))
}

func TestNewMessageFromDraft(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	d := &Draft{ID: 9, SenderID: 1, Title: "Hi", Body: "Hello", State: DraftStateUnsent}

	msg := NewMessageFromDraft(d, 2, at)

	req.Equal(int64(1), msg.SenderID)
	req.Equal(int64(2), msg.RecipientID)
	req.Equal("Hi", msg.Title)
	req.Equal("Hello", msg.Body)
	req.Equal(at, msg.SentAt)
	req.Equal(int64(9), *msg.SourceDraftID)
	req.False(d.IsSent(), "building a message does not transition the draft")
}
