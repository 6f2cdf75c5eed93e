package service

import (
	"context"

	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/models"
)

// Gateway is the storage contract the handlers depend on. Every call is a single
// round-trip to the underlying store.
type Gateway interface {
	List(ctx context.Context) ([]models.Bookmark, error)
	// Get reports a missing row with found == false, never with an error.
	Get(ctx context.Context, id uint64) (b models.Bookmark, found bool, err error)
	Create(ctx context.Context, fields models.BookmarkFields) (models.Bookmark, error)
	// Update applies only the present fields of patch and returns the number of rows matched.
	Update(ctx context.Context, id uint64, patch models.BookmarkPatch) (int64, error)
	Delete(ctx context.Context, id uint64) (int64, error)
}

// PersistenceError is returned when the store rejects or cannot serve a call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
