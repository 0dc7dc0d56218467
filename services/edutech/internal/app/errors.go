package app

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. The HTTP layer maps each to a status.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUnsupportedFormat   = errors.New("unsupported document format")
)

var (
	ErrTextbookNotFound = fmt.Errorf("textbook %w", ErrNotFound)
	ErrFileNotFound     = fmt.Errorf("pdf file %w", ErrNotFound)
	ErrNotPDF           = fmt.Errorf("%w: only PDF files are allowed", ErrInvalidInput)
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func upstream(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, what, err)
}
