package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hostly/ordercore/internal/domain/order"
	"go.uber.org/zap"
)

// WebhookEventOrderCreated is the event name posted for new orders
const WebhookEventOrderCreated = "order.created"

// WebhookPayload is the body posted to the configured webhook URL
type WebhookPayload struct {
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Source    string      `json:"source"`
	Data      WebhookData `json:"data"`
}

// WebhookData describes the created order
type WebhookData struct {
	OrderID  string      `json:"orderId"`
	Location string      `json:"location"`
	Amount   json.Number `json:"amount"`
	Payment  string      `json:"payment"`
	Items    string      `json:"items"`
}

// NewWebhookPayload renders the creation event for source
func NewWebhookPayload(event order.ChangeEvent, source string) WebhookPayload {
	return WebhookPayload{
		Event:     WebhookEventOrderCreated,
		Timestamp: event.OccurredAt.UTC().Format(time.RFC3339Nano),
		Source:    source,
		Data: WebhookData{
			OrderID:  event.OrderID.String(),
			Location: event.Snapshot.LocationID,
			Amount:   json.Number(event.Snapshot.TotalAmount.StringFixed(2)),
			Payment:  string(event.Snapshot.PaymentMethod),
			Items:    event.Snapshot.ItemSummary,
		},
	}
}

// WebhookSink posts new orders to an external URL. Only the instance that
// committed the order posts it.
type WebhookSink struct {
	url    string
	source string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookSink creates a webhook sink. Timeout bounds the whole request.
func NewWebhookSink(url, source string, timeout time.Duration, logger *zap.Logger) *WebhookSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookSink{
		url:    url,
		source: source,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, event order.ChangeEvent, _ SubscriberContext) error {
	if s.url == "" || !event.IsCreation() || event.Relayed {
		return nil
	}

	body, err := json.Marshal(NewWebhookPayload(event, s.source))
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook responded with HTTP %d", resp.StatusCode)
	}
	s.logger.Debug("Webhook delivered",
		zap.String("order_id", event.OrderID.String()),
		zap.Int("status", resp.StatusCode))
	return nil
}
