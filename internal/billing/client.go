package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acadmx/tuition-service/internal/config"
)

// SubscriptionStatus mirrors the provider's subscription lifecycle states.
type SubscriptionStatus string

const (
	StatusActive     SubscriptionStatus = "active"
	StatusTrialing   SubscriptionStatus = "trialing"
	StatusPastDue    SubscriptionStatus = "past_due"
	StatusCanceled   SubscriptionStatus = "canceled"
	StatusUnpaid     SubscriptionStatus = "unpaid"
	StatusIncomplete SubscriptionStatus = "incomplete"
	StatusOther      SubscriptionStatus = "other"
)

// Paying reports whether the status counts as an up-to-date subscription.
func (s SubscriptionStatus) Paying() bool {
	return s == StatusActive || s == StatusTrialing
}

// Snapshot is the transient view of one recurring subscription. It is never
// persisted; the ledger stays the local source of truth.
type Snapshot struct {
	ID                string             `json:"id"`
	CustomerID        string             `json:"customer_id"`
	Status            SubscriptionStatus `json:"status"`
	PeriodStart       time.Time          `json:"current_period_start"`
	PeriodEnd         time.Time          `json:"current_period_end"`
	Amount            int64              `json:"amount"`
	Currency          string             `json:"currency"`
	CancelAtPeriodEnd bool               `json:"cancel_at_period_end"`
	CanceledAt        *time.Time         `json:"canceled_at,omitempty"`
	Metadata          map[string]string  `json:"metadata,omitempty"`
}

// Covers reports whether the subscription's current billing window contains t.
func (s Snapshot) Covers(t time.Time) bool {
	return !t.Before(s.PeriodStart) && t.Before(s.PeriodEnd)
}

// Client talks to the Stripe REST API, read-only except for checkout
// session creation. One bounded attempt per call; callers decide how to
// degrade when the provider is unreachable.
type Client struct {
	baseURL   string
	secretKey string
	priceID   string
	success   string
	cancel    string
	client    *http.Client
	log       *slog.Logger
}

// NewClient initializes a billing client from configuration.
func NewClient(cfg config.BillingConfig, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		priceID:   cfg.PriceID,
		success:   cfg.SuccessURL,
		cancel:    cfg.CancelURL,
		client:    &http.Client{Timeout: timeout},
		log:       log,
	}
}

// wire shapes for the provider's JSON. Billing periods live on the
// subscription items, not on the subscription object itself.
type subscriptionItem struct {
	CurrentPeriodStart int64 `json:"current_period_start"`
	CurrentPeriodEnd   int64 `json:"current_period_end"`
	Price              struct {
		UnitAmount int64  `json:"unit_amount"`
		Currency   string `json:"currency"`
	} `json:"price"`
}

type subscription struct {
	ID                string            `json:"id"`
	Customer          string            `json:"customer"`
	Status            string            `json:"status"`
	CancelAtPeriodEnd bool              `json:"cancel_at_period_end"`
	CanceledAt        int64             `json:"canceled_at"`
	Metadata          map[string]string `json:"metadata"`
	Items             struct {
		Data []subscriptionItem `json:"data"`
	} `json:"items"`
}

type subscriptionList struct {
	Data []subscription `json:"data"`
}

// ListSubscriptions fetches the current subscriptions as snapshots.
func (c *Client) ListSubscriptions(ctx context.Context) ([]Snapshot, error) {
	if c.secretKey == "" {
		return nil, fmt.Errorf("billing is not configured")
	}

	endpoint := c.baseURL + "/v1/subscriptions?limit=100"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build subscriptions request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("list subscriptions: unexpected status %d: %s", resp.StatusCode, body)
	}

	var list subscriptionList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(list.Data))
	for _, sub := range list.Data {
		snapshots = append(snapshots, toSnapshot(sub))
	}
	return snapshots, nil
}

// FindForStudent returns the student's paying subscription, matching on the
// userId metadata the checkout flow stamps onto each subscription. Nil
// without error means the student simply has none.
func (c *Client) FindForStudent(ctx context.Context, studentID uuid.UUID) (*Snapshot, error) {
	snapshots, err := c.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	want := studentID.String()
	for i := range snapshots {
		snap := snapshots[i]
		if snap.Metadata["userId"] == want && snap.Status.Paying() {
			return &snap, nil
		}
	}
	return nil, nil
}

// CreateCheckoutSession starts a recurring checkout for a student and
// returns the redirect URL. The student's id travels in the metadata of
// both the session and the subscription so FindForStudent can match later.
func (c *Client) CreateCheckoutSession(ctx context.Context, studentID uuid.UUID, studentName string) (string, error) {
	if c.secretKey == "" {
		return "", fmt.Errorf("billing is not configured")
	}
	if c.priceID == "" {
		return "", fmt.Errorf("billing price is not configured")
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", c.priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[userId]", studentID.String())
	form.Set("metadata[userName]", studentName)
	form.Set("subscription_data[metadata][userId]", studentID.String())
	form.Set("subscription_data[metadata][userName]", studentName)
	form.Set("success_url", c.success)
	form.Set("cancel_url", c.cancel)

	endpoint := c.baseURL + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("create checkout session: unexpected status %d: %s", resp.StatusCode, body)
	}

	var session struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decode checkout session: %w", err)
	}
	return session.URL, nil
}

func toSnapshot(sub subscription) Snapshot {
	snap := Snapshot{
		ID:                sub.ID,
		CustomerID:        sub.Customer,
		Status:            parseStatus(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Metadata:          sub.Metadata,
	}
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0).UTC()
		snap.CanceledAt = &t
	}
	if len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		snap.PeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		snap.PeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		snap.Amount = item.Price.UnitAmount
		snap.Currency = item.Price.Currency
	}
	return snap
}

func parseStatus(raw string) SubscriptionStatus {
	switch SubscriptionStatus(raw) {
	case StatusActive, StatusTrialing, StatusPastDue, StatusCanceled, StatusUnpaid, StatusIncomplete:
		return SubscriptionStatus(raw)
	}
	return StatusOther
}
