package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spec-kit/messaging-service/internal/domain"
	"github.com/spec-kit/messaging-service/internal/events"
	"github.com/spec-kit/messaging-service/internal/repository"
	apperrors "github.com/spec-kit/messaging-service/pkg/util/errorutil"
)

func newMemoryServices(dispatcher events.Dispatcher) (*DraftService, *MessageService) {
	store := repository.NewMemoryStore()
	drafts := NewDraftService(DraftDependencies{Store: store, Dispatcher: dispatcher, Clock: fixedClock})
	messages := NewMessageService(MessageDependencies{Store: store, Dispatcher: dispatcher, Clock: fixedClock})
	return drafts, messages
}

func TestMessageService_CreateFromDraft(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	record := func(_ context.Context, e events.Event) error {
		seen = append(seen, e.Type)
		return nil
	}
	dispatcher.Subscribe(events.EventMessageCreated, record)
	dispatcher.Subscribe(events.EventDraftSent, record)
	drafts, messages := newMemoryServices(dispatcher)

	draft, err := drafts.Create(ctx, DraftCreateInput{SenderID: 1, Title: "Hi", Body: "Hello"})
	req.NoError(err)

	msg, err := messages.CreateFromDraft(ctx, MessageCreateInput{SourceDraftID: draft.ID, RecipientID: 2})
	req.NoError(err)
	req.Equal(int64(1), msg.SenderID)
	req.Equal(int64(2), msg.RecipientID)
	req.Equal("Hi", msg.Title)
	req.Equal("Hello", msg.Body)
	req.Equal(fixedNow, msg.SentAt)
	req.Equal([]events.EventType{events.EventMessageCreated, events.EventDraftSent}, seen)

	stored, err := drafts.Get(ctx, draft.ID)
	req.NoError(err)
	req.Equal(domain.DraftStateSent, stored.State)

	_, err = messages.CreateFromDraft(ctx, MessageCreateInput{SourceDraftID: draft.ID, RecipientID: 2})
	req.True(apperrors.IsConflict(err))

	all, err := messages.List(ctx)
	req.NoError(err)
	req.Len(all, 1)

	source, err := messages.SourceDraft(ctx, msg.ID)
	req.NoError(err)
	req.Equal(draft.ID, source.ID)
}

func TestMessageService_CreateFromDraftFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("should report a missing draft and create nothing", func(t *testing.T) {
		req := require.New(t)
		_, messages := newMemoryServices(nil)

		_, err := messages.CreateFromDraft(ctx, MessageCreateInput{SourceDraftID: 42, RecipientID: 2})

		req.True(apperrors.IsNotFound(err))
		all, err := messages.List(ctx)
		req.NoError(err)
		req.Empty(all)
	})

	t.Run("should refuse a draft frozen by MarkSent", func(t *testing.T) {
		req := require.New(t)
		drafts, messages := newMemoryServices(nil)
		draft, err := drafts.Create(ctx, DraftCreateInput{SenderID: 1, Title: "Hi", Body: "Hello"})
		req.NoError(err)
		_, err = drafts.MarkSent(ctx, draft.ID)
		req.NoError(err)

		_, err = messages.CreateFromDraft(ctx, MessageCreateInput{SourceDraftID: draft.ID, RecipientID: 2})

		req.True(apperrors.IsConflict(err))
	})

	t.Run("should validate ids", func(t *testing.T) {
		_, messages := newMemoryServices(nil)

		_, err := messages.CreateFromDraft(ctx, MessageCreateInput{SourceDraftID: 1, RecipientID: 0})

		require.True(t, apperrors.IsValidation(err))
	})
}

func TestMessageService_CreateFromDraftRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store, drafts, messages := mockStores(ctrl)
	svc := NewMessageService(MessageDependencies{Store: store, Clock: fixedClock})

	drafts.EXPECT().GetForUpdate(gomock.Any(), int64(5)).
		Return(&domain.Draft{ID: 5, SenderID: 1, Title: "Hi", Body: "Hello", State: domain.DraftStateUnsent}, nil)
	messages.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrDuplicate)
	drafts.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.CreateFromDraft(context.Background(), MessageCreateInput{SourceDraftID: 5, RecipientID: 2})

	require.True(t, apperrors.IsConflict(err))
}

func TestMessageService_ConcurrentSendsProduceOneMessage(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	drafts, messages := newMemoryServices(nil)
	draft, err := drafts.Create(ctx, DraftCreateInput{SenderID: 1, Title: "Hi", Body: "Hello"})
	req.NoError(err)

	const senders = 16
	var wg sync.WaitGroup
	var succeeded, conflicted atomic.Int32
	for i := range senders {
		wg.Add(1)
		go func(recipient int64) {
			defer wg.Done()
			_, err := messages.CreateFromDraft(ctx, MessageCreateInput{SourceDraftID: draft.ID, RecipientID: recipient})
			switch {
			case err == nil:
				succeeded.Add(1)
			case apperrors.IsConflict(err):
				conflicted.Add(1)
			}
		}(int64(i + 2))
	}
	wg.Wait()

	req.Equal(int32(1), succeeded.Load())
	req.Equal(int32(senders-1), conflicted.Load())
	all, err := messages.List(ctx)
	req.NoError(err)
	req.Len(all, 1)
}

func TestMessageService_Delete(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	drafts, messages := newMemoryServices(nil)
	draft, err := drafts.Create(ctx, DraftCreateInput{SenderID: 1, Title: "Hi", Body: "Hello"})
	req.NoError(err)
	msg, err := messages.CreateFromDraft(ctx, MessageCreateInput{SourceDraftID: draft.ID, RecipientID: 2})
	req.NoError(err)

	req.NoError(messages.Delete(ctx, msg.ID))

	_, err = messages.Get(ctx, msg.ID)
	req.True(apperrors.IsNotFound(err))
	req.True(apperrors.IsNotFound(messages.Delete(ctx, msg.ID)))

	stored, err := drafts.Get(ctx, draft.ID)
	req.NoError(err)
	req.Equal(domain.DraftStateSent, stored.State, "deleting the message does not reopen the draft")
}

func TestPreview(t *testing.T) {
	require.Equal(t, "Hi", preview("Hi", 20))
	require.Equal(t, "ñññ", preview("ññññ", 3))
}
