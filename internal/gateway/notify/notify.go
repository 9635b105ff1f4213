package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
)

// HTTPGateway pushes notifications to the notification service: offer
// alerts for the driver app and OTP messages for customers.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a notification gateway. Returns nil when no base
// URL is configured, so callers can treat notifications as optional.
func NewHTTPGateway(baseURL string, client *http.Client) *HTTPGateway {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPGateway{baseURL: baseURL, client: client}
}

type offerPayload struct {
	OfferID   string    `json:"offer_id"`
	OrderID   string    `json:"order_id"`
	DriverID  string    `json:"driver_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OfferCreated alerts a driver that an offer is waiting for them.
func (g *HTTPGateway) OfferCreated(ctx context.Context, offer domain.DispatchOffer) error {
	return g.post(ctx, "/v1/notifications/offers", offerPayload{
		OfferID:   offer.ID.String(),
		OrderID:   offer.OrderID.String(),
		DriverID:  offer.DriverID.String(),
		ExpiresAt: offer.ExpiresAt,
	})
}

type otpPayload struct {
	CustomerID string `json:"customer_id"`
	OrderRef   string `json:"order_ref"`
	Code       string `json:"code"`
}

// SendOTP sends the delivery confirmation code to a customer.
func (g *HTTPGateway) SendOTP(ctx context.Context, customerID uuid.UUID, orderRef, code string) error {
	return g.post(ctx, "/v1/notifications/otp", otpPayload{
		CustomerID: customerID.String(),
		OrderRef:   orderRef,
		Code:       code,
	})
}

func (g *HTTPGateway) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify gateway: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify gateway: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify gateway: %s: %w", path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify gateway: %s: %w", path, statusError{code: resp.StatusCode})
	}
	return nil
}

// statusError carries the HTTP status of a failed notification call so the
// retry layer can tell transient failures from permanent ones.
type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}
