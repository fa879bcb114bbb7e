package repository

import (
	"context"
	"errors"
	"fmt"

	"user-admin/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by writes that matched no row. Reads return
	// nil, nil instead.
	ErrNotFound = errors.New("record not found")
	// ErrUniqueViolation matches any *UniqueViolation.
	ErrUniqueViolation = errors.New("unique constraint violated")
)

// UniqueViolation names the constraint a write collided with.
type UniqueViolation struct {
	Constraint string
}

func (e *UniqueViolation) Error() string {
	return ErrUniqueViolation.Error() + ": " + e.Constraint
}

func (e *UniqueViolation) Is(target error) bool {
	return target == ErrUniqueViolation
}

type Repository struct {
	User      UserRepository
	UserGroup UserGroupRepository
	Session   SessionRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:      NewUserRepository(db, log),
		UserGroup: NewUserGroupRepository(db, log),
		Session:   NewSessionRepository(db, log),
	}
}

// withTx runs fn in a transaction, committing when it returns nil and
// rolling back otherwise.
func withTx(ctx context.Context, db database.PgxIface, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// translate maps driver errors the services care about onto package errors.
func translate(err error) error {
	if constraint, ok := database.IsUniqueViolation(err); ok {
		return &UniqueViolation{Constraint: constraint}
	}
	return err
}
