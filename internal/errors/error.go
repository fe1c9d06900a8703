package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryManifest Category = "manifest"
	CategoryRegistry Category = "registry"
	CategoryInstall  Category = "install"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
	CategoryServe    Category = "serve"
)

// UpmError is a structured error with a stable code, suggestions, and documentation.
type UpmError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (manifest, registry, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Path is the file or URL the error relates to, if any.
	Path string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *UpmError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *UpmError) Unwrap() error {
	return e.Wrapped
}

// WithPath records the file or URL the error relates to.
func (e *UpmError) WithPath(path string) *UpmError {
	e.Path = path
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *UpmError) WithSuggestion(s string) *UpmError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *UpmError) WithDetail(d string) *UpmError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *UpmError) Wrap(err error) *UpmError {
	e.Wrapped = err
	return e
}

// New creates an UpmError from a registered error code.
func New(code string) *UpmError {
	template, ok := registry[code]
	if !ok {
		return &UpmError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &UpmError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new UpmError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *UpmError {
	return &UpmError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an UpmError.
func FromError(err error, code string) *UpmError {
	if err == nil {
		return nil
	}
	if ue, ok := err.(*UpmError); ok {
		return ue
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of err when it is an UpmError, or "".
func CodeOf(err error) string {
	if ue, ok := err.(*UpmError); ok {
		return ue.Code
	}
	return ""
}
