package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound is returned when a chat session does not exist.
	ErrSessionNotFound = fmt.Errorf("chat session %w", ErrNotFound)
	// ErrInvalidInput is returned for malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
)
