package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a tutorhub error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrDuplicateSlug  ErrorCode = "DUPLICATE_SLUG"  // 409
	ErrInvalidCatalog ErrorCode = "INVALID_CATALOG" // 422
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// HubError represents a structured error with code, status, and details.
type HubError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *HubError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *HubError {
	return &HubError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a tutorial or category that does not exist.
func NewNotFound(identifier string) *HubError {
	return &HubError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a catalog file that does not exist.
func NewFileNotFound(path string) *HubError {
	return &HubError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewDuplicateSlug creates a 409 error when two tutorials share a slug in one category.
func NewDuplicateSlug(category, slug string) *HubError {
	return &HubError{
		Code:    ErrDuplicateSlug,
		Status:  409,
		Message: fmt.Sprintf("slug %q already used in category %q", slug, category),
		Details: map[string]any{"category": category, "slug": slug},
	}
}

// NewInvalidCatalog creates a 422 error for catalog definitions that break the data model.
func NewInvalidCatalog(msg string, details map[string]any) *HubError {
	return &HubError{
		Code:    ErrInvalidCatalog,
		Status:  422,
		Message: msg,
		Details: details,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *HubError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &HubError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a HubError with the given code.
func Is(err error, code ErrorCode) bool {
	var hErr *HubError
	if stderrors.As(err, &hErr) {
		return hErr.Code == code
	}
	return false
}
