// Package httpx provides the JSON envelope used by every API route.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/officehub/officehub/internal/shared"
)

// Envelope is the shape of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Debug   string            `json:"debug,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK writes a success envelope with status 200.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a success envelope with status 201.
func Created(w http.ResponseWriter, data any, message string) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Message writes a success envelope carrying only a message.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: true, Message: message})
}

// Fail writes a failure envelope.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// ErrEmptyBody is returned by DecodeJSON for a request without a body.
var ErrEmptyBody = fmt.Errorf("%w: request body is empty", shared.ErrValidation)

// DecodeJSON decodes JSON request body into the target struct. Malformed
// bodies come back as validation errors.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("%w: malformed JSON body", shared.ErrValidation)
	}
	return nil
}
