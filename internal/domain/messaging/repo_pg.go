package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type messageRepoPG struct{ pool *pgxpool.Pool }

// NewMessageRepoPG creates a new PostgreSQL-backed message repository.
func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository {
	return &messageRepoPG{pool: pool}
}

const messageCols = `id, sender_id, recipient_id, body, read, created_at`

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, recipient_id, body)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		m.ID, m.SenderID, m.RecipientID, m.Body).Scan(&m.CreatedAt)
}

func (r *messageRepoPG) ListConversation(ctx context.Context, a, b uuid.UUID) ([]*Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageCols+` FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at ASC`,
		a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func (r *messageRepoPG) MarkRead(ctx context.Context, readerID, senderID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages SET read = TRUE
		WHERE recipient_id = $1 AND sender_id = $2 AND NOT read`,
		readerID, senderID)
	return err
}

func (r *messageRepoPG) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND NOT read`,
		userID).Scan(&count)
	return count, err
}
