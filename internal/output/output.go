package output

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

const ContractVersion = "1.0"

// Envelope is the stable wrapper every command result is printed in, on
// stdout for successes and stderr for failures.
type Envelope struct {
	ContractVersion string     `json:"contract_version"`
	Command         string     `json:"command"`
	Timestamp       string     `json:"timestamp"`
	RequestID       string     `json:"request_id"`
	Success         bool       `json:"success"`
	Data            any        `json:"data,omitempty"`
	Error           *ErrorInfo `json:"error,omitempty"`
}

type ErrorInfo struct {
	Type       string `json:"type"`
	Code       int    `json:"code,omitempty"`
	Message    string `json:"message"`
	RequestID  string `json:"api_request_id,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Retryable  bool   `json:"retryable"`
}

func NewEnvelope(command string, success bool, data any, errorInfo *ErrorInfo) (Envelope, error) {
	requestID, err := newRequestID()
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ContractVersion: ContractVersion,
		Command:         command,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		RequestID:       requestID,
		Success:         success,
		Data:            data,
		Error:           errorInfo,
	}, nil
}

func Write(w io.Writer, format string, envelope Envelope) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return writeJSON(w, envelope)
	case "table":
		return writeTable(w, envelope.Data)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeJSON(w io.Writer, envelope Envelope) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(envelope)
}

func writeTable(w io.Writer, data any) error {
	rows, headers, err := normalizeRows(data)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		values := make([]string, 0, len(headers))
		for _, header := range headers {
			values = append(values, fmt.Sprint(row[header]))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(values, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func normalizeRows(data any) ([]map[string]any, []string, error) {
	switch typed := data.(type) {
	case []map[string]any:
		headers := orderedHeaders(typed)
		return typed, headers, nil
	case map[string]any:
		headers := orderedHeaders([]map[string]any{typed})
		return []map[string]any{typed}, headers, nil
	default:
		return nil, nil, errors.New("table output requires map or []map data")
	}
}

func orderedHeaders(rows []map[string]any) []string {
	set := map[string]struct{}{}
	for _, row := range rows {
		for key := range row {
			set[key] = struct{}{}
		}
	}
	headers := make([]string, 0, len(set))
	for key := range set {
		headers = append(headers, key)
	}
	sort.Strings(headers)
	return headers
}

func newRequestID() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate request id: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
