package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Update and Delete when no record has the
// requested id.
var ErrNotFound = errors.New("record not found")

// Record is one catalog entry. Cost is in the smallest currency unit.
type Record struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Name *string `json:"name"`
	Cost *int64  `json:"cost"`
}

type Store interface {
	Ping(ctx context.Context) error

	// FindByName returns the first record with the given name.
	FindByName(ctx context.Context, name string) (Record, bool, error)

	// Insert stores a new record and assigns its id. It does not check
	// name uniqueness; callers that need one-record-per-name must call
	// FindByName first, and two concurrent callers can still both insert.
	Insert(ctx context.Context, name string, cost int64) (Record, error)

	// List returns records in ascending id order, stable across calls
	// while the data is unchanged.
	List(ctx context.Context, offset, limit int) ([]Record, error)

	Get(ctx context.Context, id int64) (Record, bool, error)

	// Update applies the non-nil fields of p. Returns ErrNotFound when
	// the id is absent.
	Update(ctx context.Context, id int64, p Patch) (Record, error)

	// Delete returns ErrNotFound when the id is absent.
	Delete(ctx context.Context, id int64) error
}
