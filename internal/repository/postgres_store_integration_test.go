//go:build integration

package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/messaging-service/internal/domain"
	"github.com/spec-kit/messaging-service/internal/persistence"
)

func newIntegrationStore(t *testing.T) Store {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, "../../migrations", zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE messages, drafts RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return NewPostgresStore(pool)
}

func TestPostgresStore_DraftRoundTrip(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newIntegrationStore(t)

	draft := &domain.Draft{SenderID: 1, ComposedAt: time.Now().UTC(), Title: "Hi", Body: "Hello", State: domain.DraftStateUnsent}
	req.NoError(store.Drafts().Create(ctx, draft))
	req.NotZero(draft.ID)

	draft.State = domain.DraftStateSent
	req.NoError(store.Drafts().Update(ctx, draft))

	got, err := store.Drafts().GetByID(ctx, draft.ID)
	req.NoError(err)
	req.Equal(domain.DraftStateSent, got.State)

	_, err = store.Drafts().GetByID(ctx, draft.ID+100)
	req.ErrorIs(err, ErrNotFound)
	req.ErrorIs(store.Drafts().Delete(ctx, draft.ID+100), ErrNotFound)
}

func TestPostgresStore_OneMessagePerDraft(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newIntegrationStore(t)

	draft := &domain.Draft{SenderID: 1, ComposedAt: time.Now().UTC(), Title: "Hi", Body: "Hello", State: domain.DraftStateUnsent}
	req.NoError(store.Drafts().Create(ctx, draft))

	req.NoError(store.Messages().Create(ctx, domain.NewMessageFromDraft(draft, 2, time.Now().UTC())))
	req.ErrorIs(store.Messages().Create(ctx, domain.NewMessageFromDraft(draft, 3, time.Now().UTC())), ErrDuplicate)

	orphan := domain.NewMessageFromDraft(&domain.Draft{ID: draft.ID + 100}, 2, time.Now().UTC())
	req.ErrorIs(store.Messages().Create(ctx, orphan), ErrNotFound)
}

func TestPostgresStore_TransactionsRollBack(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newIntegrationStore(t)

	draft := &domain.Draft{SenderID: 1, ComposedAt: time.Now().UTC(), Title: "Hi", Body: "Hello", State: domain.DraftStateUnsent}
	req.NoError(store.Drafts().Create(ctx, draft))

	err := store.WithinTx(ctx, func(tx Store) error {
		locked, err := tx.Drafts().GetForUpdate(ctx, draft.ID)
		if err != nil {
			return err
		}
		if err := locked.MarkSent(); err != nil {
			return err
		}
		if err := tx.Drafts().Update(ctx, locked); err != nil {
			return err
		}
		return ErrDuplicate
	})
	req.ErrorIs(err, ErrDuplicate)

	got, err := store.Drafts().GetByID(ctx, draft.ID)
	req.NoError(err)
	req.Equal(domain.DraftStateUnsent, got.State)
}

func TestPostgresStore_RowLockSerializesSends(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newIntegrationStore(t)

	draft := &domain.Draft{SenderID: 1, ComposedAt: time.Now().UTC(), Title: "Hi", Body: "Hello", State: domain.DraftStateUnsent}
	req.NoError(store.Drafts().Create(ctx, draft))

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := range 8 {
		wg.Add(1)
		go func(recipient int64) {
			defer wg.Done()
			results <- store.WithinTx(ctx, func(tx Store) error {
				locked, err := tx.Drafts().GetForUpdate(ctx, draft.ID)
				if err != nil {
					return err
				}
				if err := locked.MarkSent(); err != nil {
					return err
				}
				if err := tx.Messages().Create(ctx, domain.NewMessageFromDraft(locked, recipient, time.Now().UTC())); err != nil {
					return err
				}
				return tx.Drafts().Update(ctx, locked)
			})
		}(int64(i + 2))
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			req.ErrorIs(err, domain.ErrDraftAlreadySent)
		}
	}
	req.Equal(1, succeeded)

	msgs, err := store.Messages().List(ctx)
	req.NoError(err)
	req.Len(msgs, 1)
}
