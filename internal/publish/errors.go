package publish

import "fmt"

// APIError is a structured failure returned by the publishing API.
// Retryable errors are retried by the client within its budget; everything
// else surfaces to the dispatcher as a bucket failure.
type APIError struct {
	Type       string `json:"type"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
	Retryable  bool   `json:"retryable"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf(
		"publish api error type=%s code=%d request_id=%s: %s",
		e.Type,
		e.Code,
		e.RequestID,
		e.Message,
	)
}

// TransientError marks network-level or 5xx failures worth retrying.
type TransientError struct {
	Message    string
	StatusCode int
}

func (e *TransientError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}
