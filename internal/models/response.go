// Package models holds the JSON bodies the HTTP API writes.
package models

import (
	"net/http"
	"time"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code        int                 `json:"code"`
	CurrentTime int64               `json:"currentTime"`
	Text        string              `json:"text"`
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
}

// NewErrorResponse builds an error body stamped with the current time.
func NewErrorResponse(code int, text string, fieldErrors map[string][]string) ErrorResponse {
	if text == "" {
		text = http.StatusText(code)
	}
	return ErrorResponse{
		Code:        code,
		CurrentTime: ResponseCurrentTime(),
		Text:        text,
		FieldErrors: fieldErrors,
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"STATUS"`
}

// NewHealthResponse reports the process as up.
func NewHealthResponse() HealthResponse {
	return HealthResponse{Status: "OK"}
}

// ResponseCurrentTime is the current time in Unix milliseconds.
func ResponseCurrentTime() int64 {
	return time.Now().UnixMilli()
}
