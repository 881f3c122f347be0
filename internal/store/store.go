// Package store defines the persistence contract the lifecycle and review
// engines depend on. Concrete backends live in the subpackages memstore
// (in-memory) and sqlite (relational); the engines never inspect which
// backend is active.
package store

import (
	"errors"
	"time"

	"github.com/strideapp/stride/internal/models"
)

// ErrNotFound indicates the referenced activity id is absent.
var ErrNotFound = errors.New("activity not found")

// Mutation describes a partial field change to an activity. Only non-nil
// fields are applied; unset fields are left unchanged.
type Mutation struct {
	Category    *string
	Description *string
	Tags        *[]string
	Begin       *time.Time
	End         *time.Time
	DurationSec *int64
	Status      *models.ActivityStatus
}

// Store is the abstract persistence capability consumed by the engines.
//
// A mutation sequence (read-validate-write) executed by the lifecycle
// engine inside Transact is observed as atomic by any concurrent reader.
// Durability across multiple entities is only as strong as the backend:
// the sqlite backend maps Transact onto one database transaction, the
// in-memory backend serializes under its write lock but cannot roll back.
type Store interface {
	// Insert persists a new activity. If a.ID is empty an id is assigned.
	// The assigned id is returned.
	Insert(a *models.Activity) (string, error)

	// Get returns the activity with the given id, or ErrNotFound.
	Get(id string) (*models.Activity, error)

	// Update applies a partial field change, or ErrNotFound if absent.
	Update(id string, mut Mutation) error

	// FindActiveWork returns the unique active work entry, or nil.
	FindActiveWork() (*models.Activity, error)

	// FindOpenIntermission returns the open intermission owned by the
	// given work entry, or nil.
	FindOpenIntermission(parentID string) (*models.Activity, error)

	// FindHeldWork returns the held work entry with the given id, or nil
	// if that entry does not exist or is not held.
	FindHeldWork(id string) (*models.Activity, error)

	// ListHeldWork returns all held work entries ordered by begin time,
	// so a caller can disambiguate a resume target explicitly.
	ListHeldWork() ([]models.Activity, error)

	// ScanRange returns all activities whose begin falls in the half-open
	// range [start, end), ordered by begin then id.
	ScanRange(start, end time.Time) ([]models.Activity, error)

	// Transact runs fn against a transactional view of the store.
	Transact(fn func(tx Store) error) error

	// Close releases backend resources.
	Close() error
}
