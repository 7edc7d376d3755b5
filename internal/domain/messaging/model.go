package messaging

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is one chat message between two users.
type Message struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SenderID    uuid.UUID `db:"sender_id" json:"senderId"`
	RecipientID uuid.UUID `db:"recipient_id" json:"recipientId"`
	Body        string    `db:"body" json:"body"`
	Read        bool      `db:"read" json:"read"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// SendInput is the payload for POST /api/messages.
type SendInput struct {
	RecipientID string `json:"recipientId"`
	Body        string `json:"body"`
}

// ConversationKey identifies the conversation between two users regardless
// of who is sending. Both orderings produce the same key.
func ConversationKey(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	if ids[0] > ids[1] {
		ids[0], ids[1] = ids[1], ids[0]
	}
	return strings.Join(ids, ":")
}
