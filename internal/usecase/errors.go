package usecase

import (
	"errors"
	"fmt"

	"user-admin/internal/data/repository"
	"user-admin/pkg/utils"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrDuplicateRelation  = errors.New("relation already exists")
	ErrRelationNotFound   = errors.New("relation not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotFound      = errors.New("email could not be found")
)

// ValidationError aggregates every field violation of one write.
type ValidationError struct {
	Violations []utils.Violation
}

// Error surfaces the first violation only.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	v := e.Violations[0]
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

func invalidArgument(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
}

const uniqueMessage = "This value is already used."

var constraintFields = map[string]string{
	"users_email_key":      "email",
	"user_groups_name_key": "name",
}

// fromRepository converts repository errors into service errors. A unique
// violation raced past the pre-check becomes a field violation.
func fromRepository(err error, subject string) error {
	var unique *repository.UniqueViolation
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", subject, ErrNotFound)
	case errors.As(err, &unique):
		return &ValidationError{Violations: []utils.Violation{{
			Field:   constraintFields[unique.Constraint],
			Message: uniqueMessage,
		}}}
	}
	return fmt.Errorf("%s: %w", subject, err)
}
