package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/messaging-service/internal/domain"
)

const messageColumns = `id, sender_id, recipient_id, sent_at, title, body, source_draft_id`

type messageRepository struct {
	db dbtx
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (sender_id, recipient_id, sent_at, title, body, source_draft_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	err := r.db.QueryRow(ctx, query,
		msg.SenderID,
		msg.RecipientID,
		msg.SentAt,
		msg.Title,
		msg.Body,
		msg.SourceDraftID,
	).Scan(&msg.ID)
	return translateError(err)
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	const query = `SELECT ` + messageColumns + ` FROM messages WHERE id=$1`
	msg, err := scanMessage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return msg, nil
}

func (r *messageRepository) List(ctx context.Context) ([]domain.Message, error) {
	const query = `SELECT ` + messageColumns + ` FROM messages ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	result := []domain.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *msg)
	}
	return result, rows.Err()
}

func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id=$1`, id)
	if err != nil {
		return translateError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var msg domain.Message
	if err := row.Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.RecipientID,
		&msg.SentAt,
		&msg.Title,
		&msg.Body,
		&msg.SourceDraftID,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}
