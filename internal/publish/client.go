package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/postpilot/composer/internal/submit"
)

const (
	DefaultBaseURL = "https://api.postpilot.dev"
	publishPath    = "/v1/posts"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the external publishing API. It implements
// submit.Publisher; the engine hands it fully built requests and only
// interprets pass/fail, never platform-native response bodies.
type Client struct {
	BaseURL        string
	Token          string
	HTTP           HTTPClient
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Sleep          func(time.Duration)
	UserAgent      string
}

func NewClient(httpClient HTTPClient, baseURL string, token string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:        strings.TrimSuffix(baseURL, "/"),
		Token:          token,
		HTTP:           httpClient,
		MaxRetries:     4,
		InitialBackoff: 300 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Sleep:          time.Sleep,
		UserAgent:      "composer/1.0",
	}
}

// Publish sends one brand-scoped request. Retryable API errors and
// transient failures are retried with exponential backoff up to MaxRetries.
func (c *Client) Publish(ctx context.Context, request submit.Request) error {
	if c == nil || c.HTTP == nil {
		return errors.New("publish client is required")
	}

	attempt := 0
	backoff := c.InitialBackoff
	for {
		attempt++
		err := c.publishOnce(ctx, request)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Retryable && attempt <= c.MaxRetries {
			c.Sleep(backoff)
			backoff = nextBackoff(backoff, c.MaxBackoff)
			continue
		}

		var transient *TransientError
		if errors.As(err, &transient) && attempt <= c.MaxRetries {
			c.Sleep(backoff)
			backoff = nextBackoff(backoff, c.MaxBackoff)
			continue
		}

		return err
	}
}

func (c *Client) publishOnce(ctx context.Context, request submit.Request) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encode publish request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+publishPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build publish request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("User-Agent", c.UserAgent)
	if c.Token != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if request.IdempotencyKey != "" {
		httpRequest.Header.Set("Idempotency-Key", request.IdempotencyKey)
	}

	response, err := c.HTTP.Do(httpRequest)
	if err != nil {
		return &TransientError{Message: fmt.Sprintf("publish request failed: %v", err)}
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return &TransientError{Message: fmt.Sprintf("read publish response: %v", err), StatusCode: response.StatusCode}
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		if id := gjson.GetBytes(raw, "id").String(); strings.TrimSpace(id) == "" {
			return errors.New("publish response did not include a post id")
		}
		return nil
	}

	if response.StatusCode >= 500 {
		return &TransientError{
			Message:    fmt.Sprintf("publish api returned status %d", response.StatusCode),
			StatusCode: response.StatusCode,
		}
	}

	return parseAPIError(raw, response.StatusCode)
}

func parseAPIError(raw []byte, statusCode int) *APIError {
	body := gjson.ParseBytes(raw)
	message := body.Get("error.message").String()
	if strings.TrimSpace(message) == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = fmt.Sprintf("publish api returned status %d", statusCode)
	}

	errorType := body.Get("error.type").String()
	if errorType == "" {
		errorType = "publish_error"
	}

	code := int(body.Get("error.code").Int())
	if code == 0 {
		code = statusCode
	}

	return &APIError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		RequestID:  body.Get("error.request_id").String(),
		Retryable:  statusCode == http.StatusTooManyRequests,
		StatusCode: statusCode,
	}
}

func nextBackoff(current time.Duration, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
