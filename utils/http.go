package utils

import (
	"encoding/json"
	"net/http"
)

// Envelope wraps every successful JSON response
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse represents a structured error response. Errors maps field
// names to messages on validation failures.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Error codes
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeValidation   = "validation_failed"
	CodeInternal     = "internal_error"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with optional data
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// WriteMessage writes a 200 OK response carrying only a message
func WriteMessage(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message})
}

// WriteCreated writes a 201 Created response with optional data
func WriteCreated(w http.ResponseWriter, data interface{}, message string) error {
	return WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// WriteBadRequest writes a 400 Bad Request response
func WriteBadRequest(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusBadRequest, message)
}

// WriteUnauthorized writes a 401 Unauthorized response
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Unauthenticated."
	}
	return WriteError(w, http.StatusUnauthorized, message)
}

// WriteForbidden writes a 403 Forbidden response
func WriteForbidden(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "This action is unauthorized."
	}
	return WriteError(w, http.StatusForbidden, message)
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return WriteError(w, http.StatusNotFound, message)
}

// WriteUnprocessable writes a 422 response listing every invalid field
func WriteUnprocessable(w http.ResponseWriter, message string, fields map[string][]string) error {
	if message == "" {
		message = "The given data was invalid."
	}
	return WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   CodeValidation,
		Message: message,
		Errors:  fields,
	})
}

// WriteInternalServerError writes a 500 Internal Server Error response
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return WriteError(w, http.StatusInternalServerError, message)
}

// WriteError writes an error response whose code is derived from status
func WriteError(w http.ResponseWriter, status int, message string) error {
	var code string
	switch status {
	case http.StatusBadRequest:
		code = CodeBadRequest
	case http.StatusUnauthorized:
		code = CodeUnauthorized
	case http.StatusForbidden:
		code = CodeForbidden
	case http.StatusNotFound:
		code = CodeNotFound
	case http.StatusUnprocessableEntity:
		code = CodeValidation
	default:
		code = CodeInternal
	}

	return WriteJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}
