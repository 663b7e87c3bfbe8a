package billing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/acadmx/tuition-service/internal/config"
)

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(config.BillingConfig{
		SecretKey:  "sk_test_123",
		BaseURL:    baseURL,
		PriceID:    "price_123",
		SuccessURL: "https://app.example.com/pago-exitoso",
		CancelURL:  "https://app.example.com/pago-cancelado",
		Timeout:    timeout,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func subscriptionJSON(id, userID, status string, start, end int64) string {
	return fmt.Sprintf(`{
		"id": %q,
		"customer": "cus_123",
		"status": %q,
		"cancel_at_period_end": false,
		"metadata": {"userId": %q},
		"items": {"data": [{
			"current_period_start": %d,
			"current_period_end": %d,
			"price": {"unit_amount": 120000, "currency": "mxn"}
		}]}
	}`, id, status, userID, start, end)
}

func TestListSubscriptions(t *testing.T) {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -5).Unix()
	end := now.AddDate(0, 0, 25).Unix()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/subscriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("authorization header = %q", got)
		}
		fmt.Fprintf(w, `{"data": [%s]}`, subscriptionJSON("sub_1", uuid.New().String(), "active", start, end))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	snapshots, err := client.ListSubscriptions(context.Background())
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("got %d snapshots", len(snapshots))
	}

	snap := snapshots[0]
	if snap.ID != "sub_1" || snap.Status != StatusActive {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Amount != 120000 || snap.Currency != "mxn" {
		t.Fatalf("price = %d %s", snap.Amount, snap.Currency)
	}
	if !snap.Covers(now) {
		t.Fatal("current window must cover now")
	}
}

func TestFindForStudent(t *testing.T) {
	studentID := uuid.New()
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -5).Unix()
	end := now.AddDate(0, 0, 25).Unix()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data": [%s, %s, %s]}`,
			subscriptionJSON("sub_other", uuid.New().String(), "active", start, end),
			subscriptionJSON("sub_canceled", studentID.String(), "canceled", start, end),
			subscriptionJSON("sub_mine", studentID.String(), "active", start, end))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	snap, err := client.FindForStudent(context.Background(), studentID)
	if err != nil {
		t.Fatalf("FindForStudent: %v", err)
	}
	if snap == nil {
		t.Fatal("expected a match")
	}
	// A canceled subscription for the same student must not count even
	// when it appears first in the listing.
	if snap.ID != "sub_mine" {
		t.Fatalf("matched %s", snap.ID)
	}
}

func TestFindForStudentNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	snap, err := client.FindForStudent(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("FindForStudent: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected no match, got %+v", snap)
	}
}

func TestListSubscriptionsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 20*time.Millisecond)

	if _, err := client.ListSubscriptions(context.Background()); err == nil {
		t.Fatal("expected a timeout error")
	}
}

func TestListSubscriptionsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "Invalid API Key provided"}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	_, err := client.ListSubscriptions(context.Background())
	if err == nil {
		t.Fatal("expected an error on 401")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error should carry the status code: %v", err)
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	studentID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("mode"); got != "subscription" {
			t.Errorf("mode = %q", got)
		}
		if got := r.PostForm.Get("subscription_data[metadata][userId]"); got != studentID.String() {
			t.Errorf("subscription metadata userId = %q", got)
		}
		if got := r.PostForm.Get("line_items[0][price]"); got != "price_123" {
			t.Errorf("price = %q", got)
		}
		fmt.Fprint(w, `{"id": "cs_123", "url": "https://checkout.example.com/c/cs_123"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	url, err := client.CreateCheckoutSession(context.Background(), studentID, "Ana Torres")
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	if url != "https://checkout.example.com/c/cs_123" {
		t.Fatalf("url = %q", url)
	}
}

func TestUnconfiguredClient(t *testing.T) {
	client := NewClient(config.BillingConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := client.ListSubscriptions(context.Background()); err == nil {
		t.Fatal("expected an error without a secret key")
	}
	if _, err := client.CreateCheckoutSession(context.Background(), uuid.New(), "x"); err == nil {
		t.Fatal("expected an error without a secret key")
	}
}
