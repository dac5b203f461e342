package store

import (
	"context"
	"errors"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
)

// ErrNotFound is returned when no document exists for the requested id
var ErrNotFound = errors.New("network not found")

// Repository persists network documents. Documents are always read and
// written whole; there are no field-level updates.
type Repository interface {
	// Get loads the document with the given id, or ErrNotFound
	Get(ctx context.Context, id string) (*models.Network, error)
	// Put writes the entire document, creating or replacing it
	Put(ctx context.Context, network *models.Network) error
}
