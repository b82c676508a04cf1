package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/messaging-service/internal/domain"
)

const draftColumns = `id, sender_id, composed_at, title, body, sent`

type draftRepository struct {
	db dbtx
}

func (r *draftRepository) Create(ctx context.Context, draft *domain.Draft) error {
	const query = `
        INSERT INTO drafts (sender_id, composed_at, title, body, sent)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	err := r.db.QueryRow(ctx, query,
		draft.SenderID,
		draft.ComposedAt,
		draft.Title,
		draft.Body,
		draft.IsSent(),
	).Scan(&draft.ID)
	return translateError(err)
}

func (r *draftRepository) GetByID(ctx context.Context, id int64) (*domain.Draft, error) {
	const query = `SELECT ` + draftColumns + ` FROM drafts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *draftRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Draft, error) {
	const query = `SELECT ` + draftColumns + ` FROM drafts WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *draftRepository) fetchSingle(ctx context.Context, query string, id int64) (*domain.Draft, error) {
	draft, err := scanDraft(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return draft, nil
}

func (r *draftRepository) List(ctx context.Context) ([]domain.Draft, error) {
	const query = `SELECT ` + draftColumns + ` FROM drafts ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	result := []domain.Draft{}
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *draft)
	}
	return result, rows.Err()
}

func (r *draftRepository) Update(ctx context.Context, draft *domain.Draft) error {
	const query = `UPDATE drafts SET title=$1, body=$2, sent=$3 WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query, draft.Title, draft.Body, draft.IsSent(), draft.ID)
	if err != nil {
		return translateError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *draftRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM drafts WHERE id=$1`, id)
	if err != nil {
		return translateError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDraft(row pgx.Row) (*domain.Draft, error) {
	var (
		draft domain.Draft
		sent  bool
	)
	if err := row.Scan(
		&draft.ID,
		&draft.SenderID,
		&draft.ComposedAt,
		&draft.Title,
		&draft.Body,
		&sent,
	); err != nil {
		return nil, err
	}
	draft.State = domain.DraftStateFromSent(sent)
	return &draft, nil
}
