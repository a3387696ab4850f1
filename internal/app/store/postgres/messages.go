package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dmchat/internal/app/message"
)

const messageColumns = `id, sender_id, receiver_id, text, image, created_at`

type messagesRepo struct {
	pool *pgxpool.Pool
}

func scanMessage(row pgx.Row) (message.Message, error) {
	var m message.Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.CreatedAt)
	return m, err
}

func (r *messagesRepo) Create(ctx context.Context, m message.Message) (message.Message, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+messageColumns,
		m.ID, m.SenderID, m.ReceiverID, m.Text, m.Image, m.CreatedAt,
	)

	created, err := scanMessage(row)
	if err != nil {
		return message.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return created, nil
}

func (r *messagesRepo) ListBetween(ctx context.Context, a, b string) ([]message.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at, seq`,
		a, b,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (message.Message, error) {
		return scanMessage(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}
	return messages, nil
}
