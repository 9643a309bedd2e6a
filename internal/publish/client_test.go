package publish

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/postpilot/composer/internal/submit"
	"github.com/postpilot/composer/internal/testutil"
)

func testRequest() submit.Request {
	return submit.Request{
		BatchID:        "batch-1",
		IdempotencyKey: "batch-1:acme",
		BrandID:        "acme",
		Content:        submit.RootContent{Caption: "hello"},
		MediaType:      submit.MediaHintText,
		Schedule:       submit.Schedule{Mode: submit.ScheduleModeNow},
	}
}

func newTestClient(baseURL string) *Client {
	client := NewClient(nil, baseURL, "test-token")
	client.Sleep = func(time.Duration) {}
	return client
}

func TestPublishSucceeds(t *testing.T) {
	t.Parallel()

	var sawAuth, sawIdempotency atomic.Bool
	server := testutil.NewJSONServer(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer test-token" {
			sawAuth.Store(true)
		}
		if r.Header.Get("Idempotency-Key") == "batch-1:acme" {
			sawIdempotency.Store(true)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"post-123","status":"queued"}`))
	})
	defer server.Close()

	if err := newTestClient(server.URL).Publish(context.Background(), testRequest()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !sawAuth.Load() || !sawIdempotency.Load() {
		t.Fatal("expected auth and idempotency headers")
	}
}

func TestPublishRejectsResponseWithoutID(t *testing.T) {
	t.Parallel()

	server := testutil.NewJSONServer(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"queued"}`))
	})
	defer server.Close()

	if err := newTestClient(server.URL).Publish(context.Background(), testRequest()); err == nil {
		t.Fatal("expected missing id error")
	}
}

func TestPublishParsesStructuredError(t *testing.T) {
	t.Parallel()

	server := testutil.NewJSONServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":{"type":"invalid_content","code":42201,"message":"caption too long","request_id":"req-9"}}`))
	})
	defer server.Close()

	err := newTestClient(server.URL).Publish(context.Background(), testRequest())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Type != "invalid_content" || apiErr.Code != 42201 || apiErr.RequestID != "req-9" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if apiErr.Retryable {
		t.Fatal("validation error must not be retryable")
	}
}

func TestPublishRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := testutil.NewJSONServer(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id":"post-123"}`))
	})
	defer server.Close()

	if err := newTestClient(server.URL).Publish(context.Background(), testRequest()); err != nil {
		t.Fatalf("publish after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, saw %d", calls.Load())
	}
}

func TestPublishRetriesRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := testutil.NewJSONServer(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"type":"rate_limited","message":"slow down"}}`))
			return
		}
		w.Write([]byte(`{"id":"post-123"}`))
	})
	defer server.Close()

	if err := newTestClient(server.URL).Publish(context.Background(), testRequest()); err != nil {
		t.Fatalf("publish after rate limit: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, saw %d", calls.Load())
	}
}

func TestPublishGivesUpAfterRetryBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := testutil.NewJSONServer(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer server.Close()

	client := newTestClient(server.URL)
	client.MaxRetries = 2

	err := client.Publish(context.Background(), testRequest())
	var transient *TransientError
	if !errors.As(err, &transient) {
		t.Fatalf("expected TransientError, got %T: %v", err, err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, saw %d", calls.Load())
	}
}
