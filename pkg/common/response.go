// Package common holds the response envelope and small request-scoped
// helpers shared across handlers, mirroring the teacher's pkg/common shape.
package common

import (
	"time"

	"github.com/google/uuid"
)

// Response is the envelope every handler returns, matching the teacher's
// models.Response shape.
type Response struct {
	StatusCode int    `json:"status_code"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
	Error      any    `json:"error,omitempty"`
	TimeStamp  string `json:"timestamp"`
}

// Ok builds a successful envelope.
func Ok(status int, data any) Response {
	return Response{
		StatusCode: status,
		Success:    true,
		Data:       data,
		TimeStamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorBody is the error member of the failure envelope Fail builds:
// {success:false, error:{error, detail?}}. Detail is nested inside the
// error object; the envelope has no top-level detail field.
type ErrorBody struct {
	Error  string         `json:"error"`
	Detail map[string]any `json:"detail,omitempty"`
}

func Fail(status int, message string, detail map[string]any) Response {
	return Response{
		StatusCode: status,
		Success:    false,
		Error:      ErrorBody{Error: message, Detail: detail},
		TimeStamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

// GenerateRequestID mints a fresh request-scoped identifier, matching the
// teacher's pkg/common.GenerateRequestID.
func GenerateRequestID() string {
	return uuid.NewString()
}
