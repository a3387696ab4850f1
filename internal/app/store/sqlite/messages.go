package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"dmchat/internal/app/message"
)

const messageColumns = `id, sender_id, receiver_id, text, image, created_at`

type messagesRepo struct {
	db *sql.DB
}

func scanMessage(row rowScanner) (message.Message, error) {
	var (
		m           message.Message
		text, image sql.NullString
		createdAt   int64
	)
	if err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &text, &image, &createdAt); err != nil {
		return message.Message{}, err
	}
	if text.Valid {
		m.Text = &text.String
	}
	if image.Valid {
		m.Image = &image.String
	}
	m.CreatedAt = fromNanos(createdAt)
	return m, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (r *messagesRepo) Create(ctx context.Context, m message.Message) (message.Message, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.SenderID, m.ReceiverID, nullable(m.Text), nullable(m.Image), toNanos(m.CreatedAt),
	)
	if err != nil {
		return message.Message{}, fmt.Errorf("insert message: %w", err)
	}

	m.CreatedAt = fromNanos(toNanos(m.CreatedAt))
	return m, nil
}

func (r *messagesRepo) ListBetween(ctx context.Context, a, b string) ([]message.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at, rowid`,
		a, b, b, a,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []message.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
