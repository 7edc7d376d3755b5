package messaging

import (
	"context"

	"github.com/google/uuid"
)

// MessageRepository persists chat messages.
type MessageRepository interface {
	// Create stores a new message, assigning its id and created-at.
	Create(ctx context.Context, m *Message) error
	// ListConversation returns all messages between the two users in
	// chronological order, oldest first.
	ListConversation(ctx context.Context, a, b uuid.UUID) ([]*Message, error)
	// MarkRead flips every unread message sent by senderID to readerID.
	MarkRead(ctx context.Context, readerID, senderID uuid.UUID) error
	// UnreadCount counts unread messages addressed to userID.
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}
