// Package store persists directory entries behind a driver-neutral interface.
package store

import (
	"context"

	"github.com/dronedex/directory-cli/internal/model"
)

// Store defines the persistence interface for the directory.
type Store interface {
	// Entries
	Insert(ctx context.Context, e *model.Entry) error
	Get(ctx context.Context, id string) (*model.Entry, error)
	ListAll(ctx context.Context) ([]model.Entry, error)
	Search(ctx context.Context, query string, limit int) ([]model.Entry, error)
	Delete(ctx context.Context, id string) error

	// Exists reports whether an entry with the given website or name is
	// already present. Empty values match nothing; websites compare exactly,
	// names by case-insensitive substring ("Acme Drones" matches a stored
	// "Acme Drones Pvt Ltd").
	Exists(ctx context.Context, website, name string) (bool, error)

	// Maintenance
	RenameWebsite(ctx context.Context, id, website string) error
	ApplyCleanup(ctx context.Context, plan model.CleanupPlan) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
