// Package common holds the error taxonomy, logging setup and retry helper
// shared by every atlas package.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Storage errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrDatabaseBusy = errors.New("database busy")
)

// Input errors.
var (
	ErrNoReceipts    = errors.New("no receipts loaded")
	ErrMalformedFile = errors.New("malformed receipts file")
)

// ErrInvalidConfig wraps every rejected setting, flag or parameter.
var ErrInvalidConfig = errors.New("invalid configuration")

// UserError carries a message meant for the person running the command.
// The wrapped error keeps the cause available to errors.Is.
type UserError struct {
	Err     error
	Message string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a message for the terminal.
func NewUserError(message string, err error) error {
	return &UserError{Message: message, Err: err}
}

// IsRetryable reports whether err is transient: a busy database or an
// expired deadline.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDatabaseBusy) || errors.Is(err, context.DeadlineExceeded)
}
