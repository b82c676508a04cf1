package service

import (
	"errors"

	"github.com/spec-kit/messaging-service/internal/domain"
	"github.com/spec-kit/messaging-service/internal/repository"
	apperrors "github.com/spec-kit/messaging-service/pkg/util/errorutil"
)

func notFound(resource string, id int64) error {
	return apperrors.NewNotFound(resource, map[string]any{"id": id})
}

func draftAlreadySent(id int64) error {
	return apperrors.NewConflict("draft already sent", map[string]any{"id": id})
}

// transitionError maps a failed draft transition onto the taxonomy.
func transitionError(draftID int64, err error) error {
	if errors.Is(err, domain.ErrDraftAlreadySent) {
		return draftAlreadySent(draftID)
	}
	return apperrors.NewInternalError(err)
}

// lookupError converts a repository read failure for resource id.
func lookupError(resource string, id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(resource, id)
	}
	return storeError(err)
}

// storeError passes domain errors through and wraps everything else as internal.
func storeError(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewInternalError(err)
}
