package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// SessionRequest describes one checkout session: a single line item priced
// at the appointment's fee snapshot, tagged with correlation metadata.
type SessionRequest struct {
	AppointmentID string
	PatientID     string
	Description   string
	AmountCents   int64
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// CheckoutClient creates checkout sessions with the external payment
// processor. The concrete client is Stripe; tests substitute a fake.
type CheckoutClient interface {
	CreateSession(ctx context.Context, in SessionRequest) (sessionID string, err error)
}

type stripeCheckout struct {
	sessions *session.Client
}

// NewStripeCheckout builds a Stripe-backed checkout client. The timeout
// bounds every call to the processor; a slow or unreachable gateway surfaces
// as ErrGatewayUnavailable rather than hanging the request.
func NewStripeCheckout(secretKey string, timeout time.Duration) CheckoutClient {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: timeout},
	})
	return &stripeCheckout{
		sessions: &session.Client{B: backend, Key: secretKey},
	}
}

func (c *stripeCheckout) CreateSession(ctx context.Context, in SessionRequest) (string, error) {
	currency := in.Currency
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(in.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("appointment_id", in.AppointmentID)
	params.AddMetadata("patient_id", in.PatientID)

	s, err := c.sessions.New(params)
	if err != nil {
		return "", gatewayError(err)
	}
	// The processor's identifier is returned unmodified.
	return s.ID, nil
}

// gatewayError classifies processor failures. Transport errors and 5xx
// responses mean the gateway is unavailable; 4xx responses are our fault and
// pass through.
func gatewayError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		return err
	}
	return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
}
