package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/messaging-service/internal/domain"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// DraftRepository persists drafts.
type DraftRepository interface {
	Create(ctx context.Context, draft *domain.Draft) error
	GetByID(ctx context.Context, id int64) (*domain.Draft, error)
	// GetForUpdate reads the draft and locks it until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Draft, error)
	List(ctx context.Context) ([]domain.Draft, error)
	Update(ctx context.Context, draft *domain.Draft) error
	Delete(ctx context.Context, id int64) error
}

// MessageRepository persists sent messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	List(ctx context.Context) ([]domain.Message, error)
	Delete(ctx context.Context, id int64) error
}

// Store groups the repositories and scopes them to transactions.
type Store interface {
	Drafts() DraftRepository
	Messages() MessageRepository
	// WithinTx runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
