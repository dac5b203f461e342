package cache

import (
	"context"
	"fmt"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
)

// NetworkCache is a read cache for network documents. It is strictly an
// optimization: a miss always falls through to the repository. Successful
// writes refresh the entry, failed writes invalidate it, and cache fills on
// the read path happen under the same per-id lock as mutations.
type NetworkCache interface {
	Get(ctx context.Context, id string) (*models.Network, bool)
	Set(ctx context.Context, network *models.Network)
	Invalidate(ctx context.Context, id string)
}

// networkKey builds the cache key for a network document
func networkKey(id string) string {
	return fmt.Sprintf("network:%s", id)
}
