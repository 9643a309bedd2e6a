package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
)

// NewJSONServer creates an httptest server from a callback to keep
// collaborator tests concise.
func NewJSONServer(handler func(http.ResponseWriter, *http.Request)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(handler))
}

// WriteJSON encodes a payload with a status code, for handlers that build
// structured responses.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
