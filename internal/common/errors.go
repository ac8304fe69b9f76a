package common

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds. Callers branch with errors.Is.
var (
	ErrValidation        = errors.New("validation_error")
	ErrNotFound          = errors.New("not_found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrStore             = errors.New("store_error")
	ErrFileSystem        = errors.New("file_system_error")
)

// AppError carries an error kind, a caller-facing message and the underlying cause.
type AppError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AppError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *AppError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewValidationError(format string, args ...any) error {
	return &AppError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(entity string, id uuid.UUID) error {
	return &AppError{Kind: ErrNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

func NewConflictError(format string, args ...any) error {
	return &AppError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func NewStoreError(op string, err error) error {
	return &AppError{Kind: ErrStore, Message: op, Err: err}
}

func NewFileSystemError(op string, err error) error {
	return &AppError{Kind: ErrFileSystem, Message: op, Err: err}
}

// InvalidTransitionError is returned when a status move is not in the entity's transition table.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	from := e.From
	if from == "" {
		from = "<none>"
	}
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, from, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
