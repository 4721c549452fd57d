package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/google/uuid"
)

// OperatorRepo defines the interface for operator persistence operations.
type OperatorRepo interface {
	// Save inserts or updates an operator in the repository.
	// If the operator already exists, it updates the record. Otherwise, it creates a new one.
	Save(operator *dmn.Operator) error

	// ByID retrieves an operator by their unique ID.
	// Returns dmn.ErrOperatorNotFound if there is none.
	ByID(id uuid.UUID) (*dmn.Operator, error)

	// ByUsername retrieves an operator by their username.
	// Returns dmn.ErrOperatorNotFound if there is none.
	ByUsername(username string) (*dmn.Operator, error)
}

// RunRepo stores reports of finished simulations.
type RunRepo interface {
	Save(ctx context.Context, report *dmn.RunReport) error
	ByID(ctx context.Context, id uuid.UUID) (*dmn.RunReport, error)
	Recent(ctx context.Context, limit int64) ([]*dmn.RunReport, error)
}
