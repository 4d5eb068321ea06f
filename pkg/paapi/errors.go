package paapi

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrMissingPartnerTag is returned by New when no partner tag is configured.
	ErrMissingPartnerTag = errors.New("partner tag is required")

	// ErrEmptyProductCode is returned by GetItem for an empty product code.
	ErrEmptyProductCode = errors.New("product code is empty")

	// ErrItemNotFound is returned when a successful response carries no item.
	ErrItemNotFound = errors.New("item not found in response")
)

// ErrorClass represents a classification of lookup failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses and request-level API errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport and timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents malformed or unexpected response bodies.
	ErrorClassDecode ErrorClass = "decode"
)

// APIError represents a failed lookup with additional context.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("PA-API %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("PA-API %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// errorBody is one entry of the Errors array in an API response.
type errorBody struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

func (b errorBody) String() string {
	if b.Code == "" {
		return b.Message
	}
	return b.Code + ": " + b.Message
}
