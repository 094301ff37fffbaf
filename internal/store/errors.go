// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"net/http"
)

// ErrorCode classifies catalog errors so handlers can map them to HTTP
// responses without inspecting error strings.
type ErrorCode string

const (
	CodeInvalidInput         ErrorCode = "INVALID_INPUT"          // 400
	CodeValidationFailure    ErrorCode = "VALIDATION_FAILURE"     // 400
	CodeNotFound             ErrorCode = "NOT_FOUND"              // 404
	CodeDuplicateConflict    ErrorCode = "DUPLICATE_CONFLICT"     // 409
	CodeCategoryNameConflict ErrorCode = "CATEGORY_NAME_CONFLICT" // 409
	CodeInternal             ErrorCode = "INTERNAL"               // 500
)

// Error is a structured catalog error carrying the code, HTTP status, a
// client-facing message, and optional detail fields merged into the
// response body.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidInput creates a 400 error for malformed or incomplete requests.
func NewInvalidInput(msg string) *Error {
	return &Error{Code: CodeInvalidInput, Status: http.StatusBadRequest, Message: msg}
}

// NewValidationFailure creates a 400 error for schema-level violations,
// e.g. a URL that does not start with http:// or https://.
func NewValidationFailure(msg string) *Error {
	return &Error{Code: CodeValidationFailure, Status: http.StatusBadRequest, Message: msg}
}

// NewNotFound creates a 404 error for a missing category, tool, or user.
func NewNotFound(what string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: what + " not found",
	}
}

// NewDuplicateConflict creates a 409 error reporting which incoming tool
// titles and URLs collided with existing ones during a batch add.
func NewDuplicateConflict(titles, urls []string) *Error {
	if titles == nil {
		titles = []string{}
	}
	if urls == nil {
		urls = []string{}
	}
	return &Error{
		Code:    CodeDuplicateConflict,
		Status:  http.StatusConflict,
		Message: "Duplicate tool titles or URLs found",
		Details: map[string]any{
			"duplicates": map[string][]string{"titles": titles, "urls": urls},
		},
	}
}

// NewCategoryNameConflict creates a 409 error for a unique-index race on
// concurrent creation of the same category name.
func NewCategoryNameConflict(name string) *Error {
	return &Error{
		Code:    CodeCategoryNameConflict,
		Status:  http.StatusConflict,
		Message: "Category already exists",
		Details: map[string]any{"category": name},
	}
}

// NewInternal wraps an unexpected store failure as a 500 error.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: CodeInternal, Status: http.StatusInternalServerError, Message: msg}
}

// IsCode reports whether err is a catalog *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	if cErr, ok := err.(*Error); ok {
		return cErr.Code == code
	}
	return false
}
