package services

import (
	"errors"
	"fmt"

	"github.com/chachabrian/rideflow-backend/internal/database"
	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/chachabrian/rideflow-backend/pkg/utils"
)

var (
	// ErrNotFound is the store's sentinel so errors.Is works across layers.
	ErrNotFound = database.ErrNotFound
	ErrConflict = errors.New("conflict")
)

// ValidationError is malformed or missing input.
type ValidationError struct {
	Message string
	Fields  []utils.FieldError
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string, fields ...utils.FieldError) error {
	return &ValidationError{Message: message, Fields: fields}
}

// TransitionError rejects a ride status change the state machine forbids.
type TransitionError struct {
	From models.RideStatus
	To   models.RideStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition ride from %s to %s", e.From, e.To)
}

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

type conflictError struct {
	message string
}

func (e *conflictError) Error() string        { return e.message }
func (e *conflictError) Is(target error) bool { return target == ErrConflict }

func conflict(message string) error {
	return &conflictError{message: message}
}

// wrapNotFound names the entity on a store miss and passes other errors through.
func wrapNotFound(err error, entity string) error {
	if errors.Is(err, database.ErrNotFound) {
		return notFound(entity)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
