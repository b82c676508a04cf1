package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type postgresStore struct {
	db dbtx
}

// NewPostgresStore builds a Store over a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{db: pool}
}

func (s *postgresStore) Drafts() DraftRepository {
	return &draftRepository{db: s.db}
}

func (s *postgresStore) Messages() MessageRepository {
	return &messageRepository{db: s.db}
}

// WithinTx opens a transaction, or a savepoint when already inside one.
func (s *postgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&postgresStore{db: tx})
	})
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Join(ErrDuplicate, err)
		case pgForeignKeyViolation:
			return errors.Join(ErrNotFound, err)
		}
	}
	return err
}
