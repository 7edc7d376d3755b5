package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrNotFound           = errors.New("appointment not found")
	ErrValidation         = errors.New("validation failed")
)

// Charge is what the ledger knows about an appointment being paid for.
type Charge struct {
	AppointmentID uuid.UUID
	PatientID     uuid.UUID
	Fee           float64
	Description   string
}

// ChargeSource resolves the fee snapshot for an appointment owned by the
// requesting patient. Implemented by the booking domain via an adapter; an
// absent or foreign appointment surfaces as ErrNotFound.
type ChargeSource interface {
	Charge(ctx context.Context, appointmentID, patientID uuid.UUID) (*Charge, error)
}

// PaymentMarker finalizes an appointment's payment. Implemented by the
// booking domain; must be idempotent since webhooks are at-least-once.
type PaymentMarker interface {
	MarkPaid(ctx context.Context, appointmentID uuid.UUID) error
}

// Service adapts the external payment processor: checkout session creation
// on the way out, the signed webhook on the way back.
type Service struct {
	client        CheckoutClient
	charges       ChargeSource
	marker        PaymentMarker
	webhookSecret string
	logger        zerolog.Logger
}

// NewService creates a new payments service.
func NewService(client CheckoutClient, charges ChargeSource, marker PaymentMarker, webhookSecret string, logger zerolog.Logger) *Service {
	return &Service{
		client:        client,
		charges:       charges,
		marker:        marker,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// CreateSession opens a checkout session for the appointment's fee snapshot
// and returns the processor's session id unmodified.
func (s *Service) CreateSession(ctx context.Context, appointmentID, patientID uuid.UUID, successURL, cancelURL string) (string, error) {
	if successURL == "" || cancelURL == "" {
		return "", fmt.Errorf("%w: successUrl and cancelUrl are required", ErrValidation)
	}

	charge, err := s.charges.Charge(ctx, appointmentID, patientID)
	if err != nil {
		return "", err
	}

	return s.client.CreateSession(ctx, SessionRequest{
		AppointmentID: charge.AppointmentID.String(),
		PatientID:     charge.PatientID.String(),
		Description:   charge.Description,
		AmountCents:   int64(math.Round(charge.Fee * 100)),
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
	})
}

// HandleWebhook verifies the payload signature before anything else; an
// unverifiable payload is never processed. A completed checkout marks the
// correlated appointment paid. Unknown event types are acknowledged without
// action so the processor stops retrying.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != "checkout.session.completed" {
		s.logger.Debug().Str("event_type", string(event.Type)).Msg("ignoring webhook event")
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		s.logger.Error().Err(err).Str("event_id", event.ID).Msg("malformed checkout session payload")
		return nil
	}

	raw, ok := session.Metadata["appointment_id"]
	if !ok {
		s.logger.Warn().Str("event_id", event.ID).Msg("checkout session without appointment metadata")
		return nil
	}
	appointmentID, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn().Str("event_id", event.ID).Str("appointment_id", raw).Msg("bad appointment id in metadata")
		return nil
	}

	if err := s.marker.MarkPaid(ctx, appointmentID); err != nil {
		// Acknowledge anyway: a 5xx here would have the processor retry the
		// same event against the same failing ledger indefinitely.
		s.logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("appointment_id", appointmentID.String()).
			Msg("mark paid from webhook failed")
	}
	return nil
}
