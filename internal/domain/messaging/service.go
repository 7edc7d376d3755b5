package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/patientpanel/patientpanel/internal/platform/ws"
)

var (
	ErrValidation = errors.New("validation failed")
)

const maxBodyLength = 4000

// Service handles doctor-patient chat: persisted history over REST with
// live delivery over the websocket hub.
type Service struct {
	repo      MessageRepository
	publisher ws.EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService creates a new messaging service.
func NewService(repo MessageRepository, publisher ws.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Send persists the message and broadcasts it to the conversation topic so
// an online recipient sees it without polling.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, in SendInput) (*Message, error) {
	recipientID, err := uuid.Parse(in.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid recipient id", ErrValidation)
	}
	if recipientID == senderID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body is required", ErrValidation)
	}
	if len(body) > maxBodyLength {
		return nil, fmt.Errorf("%w: message body exceeds %d characters", ErrValidation, maxBodyLength)
	}

	m := &Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.publish(ctx, m)
	return m, nil
}

// History returns the full conversation between the requester and the other
// user, oldest message first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, otherID uuid.UUID) ([]*Message, error) {
	return s.repo.ListConversation(ctx, userID, otherID)
}

// MarkRead marks everything the other user sent to the requester as read.
func (s *Service) MarkRead(ctx context.Context, readerID, senderID uuid.UUID) error {
	return s.repo.MarkRead(ctx, readerID, senderID)
}

// UnreadCount counts unread messages addressed to the requester.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) publish(ctx context.Context, m *Message) {
	data, err := json.Marshal(m)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal chat message")
		return
	}
	event := ws.Event{
		Type:      "new-message",
		Topic:     ws.ChatTopic(ConversationKey(m.SenderID, m.RecipientID)),
		Timestamp: s.now().UTC(),
		Data:      data,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).
			Str("message_id", m.ID.String()).
			Msg("broadcast chat message")
	}
}
