package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/messaging-service/internal/config"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := NewRedis(config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	t.Cleanup(r.Close)
	return r, mr
}

func TestRedis_Disabled(t *testing.T) {
	req := require.New(t)
	r := NewRedis(config.RedisConfig{}, zap.NewNop())

	req.False(r.Enabled())
	req.ErrorIs(r.Ping(context.Background()), ErrRedisDisabled)
	req.ErrorIs(r.Publish(context.Background(), "c", []byte("x")), ErrRedisDisabled)

	_, err := NewIdempotencyStore(r).Lookup(context.Background(), "k")
	req.ErrorIs(err, ErrRedisDisabled)
}

func TestRedis_Publish(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r, _ := newTestRedis(t)

	sub := r.Client.Subscribe(ctx, "messaging.events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	req.NoError(err)

	req.NoError(r.Publish(ctx, "messaging.events", []byte(`{"type":"draft_sent"}`)))

	msg, err := sub.ReceiveMessage(ctx)
	req.NoError(err)
	req.Equal(`{"type":"draft_sent"}`, msg.Payload)
}

func TestIdempotencyStore(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r, mr := newTestRedis(t)
	store := NewIdempotencyStore(r)
	const key = "POST /api/v1/messages 1 abc"

	got, err := store.Lookup(ctx, key)
	req.NoError(err)
	req.Nil(got)

	won, err := store.Reserve(ctx, key, "h1", time.Minute)
	req.NoError(err)
	req.True(won)

	won, err = store.Reserve(ctx, key, "h2", time.Minute)
	req.NoError(err)
	req.False(won, "a claimed key cannot be claimed again")

	got, err = store.Lookup(ctx, key)
	req.NoError(err)
	req.True(got.Pending)
	req.Equal("h1", got.RequestHash)

	final := CachedResponse{RequestHash: "h1", Status: 201, ContentType: "application/json", Body: []byte(`{"data":{"id":1}}`)}
	req.NoError(store.Complete(ctx, key, final, time.Minute))

	got, err = store.Lookup(ctx, key)
	req.NoError(err)
	req.Equal(&final, got)

	mr.FastForward(2 * time.Minute)
	got, err = store.Lookup(ctx, key)
	req.NoError(err)
	req.Nil(got)
}

func TestIdempotencyStore_Release(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r, _ := newTestRedis(t)
	store := NewIdempotencyStore(r)

	won, err := store.Reserve(ctx, "k", "h", time.Minute)
	req.NoError(err)
	req.True(won)
	req.NoError(store.Release(ctx, "k"))

	won, err = store.Reserve(ctx, "k", "h", time.Minute)
	req.NoError(err)
	req.True(won, "a released key is free again")
}

func TestPostgres_DisabledWithoutDSN(t *testing.T) {
	req := require.New(t)

	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())

	req.NoError(err)
	req.False(pg.Enabled())
	req.Nil(pg.PoolHandle())
	req.ErrorIs(pg.Ping(context.Background()), ErrPostgresDisabled)
	pg.Close()
	req.NoError(RunMigrations(context.Background(), nil, "migrations", zap.NewNop()))
}

func TestMigrationFiles(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	for _, name := range []string{"0002_b.sql", "0001_a.sql", "README.md"} {
		req.NoError(os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	req.NoError(os.Mkdir(filepath.Join(dir, "nested.sql"), 0o700))

	files, err := migrationFiles(dir)

	req.NoError(err)
	req.Equal([]string{"0001_a.sql", "0002_b.sql"}, files)

	_, err = migrationFiles(filepath.Join(dir, "missing"))
	req.Error(err)
}

func TestMigrationFiles_RepositoryMigrations(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "migrations"))

	require.NoError(t, err)
	require.Contains(t, files, "0001_create_drafts_messages.sql")
}
