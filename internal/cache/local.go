package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
)

// LocalCache is an in-process fallback used when Redis is disabled. Stored
// values are deep-copied through JSON on the Redis path; here we copy by
// value to keep the same isolation guarantee.
type LocalCache struct {
	c *gocache.Cache
}

// NewLocalCache creates an in-process cache with the given TTL
func NewLocalCache(ttl time.Duration) *LocalCache {
	return &LocalCache{c: gocache.New(ttl, 2*ttl)}
}

// Get retrieves a cached network document
func (c *LocalCache) Get(ctx context.Context, id string) (*models.Network, bool) {
	v, ok := c.c.Get(networkKey(id))
	if !ok {
		return nil, false
	}
	network, ok := v.(models.Network)
	if !ok {
		return nil, false
	}
	cp := copyNetwork(&network)
	return cp, true
}

// Set caches a network document
func (c *LocalCache) Set(ctx context.Context, network *models.Network) {
	cp := copyNetwork(network)
	c.c.Set(networkKey(network.ID), *cp, gocache.DefaultExpiration)
}

// Invalidate drops a cached network document
func (c *LocalCache) Invalidate(ctx context.Context, id string) {
	c.c.Delete(networkKey(id))
}

// copyNetwork clones a document so cached state cannot alias live state
func copyNetwork(n *models.Network) *models.Network {
	cp := *n
	cp.Stations = append([]models.Station(nil), n.Stations...)
	cp.Tracks = make([]models.Track, len(n.Tracks))
	for i, t := range n.Tracks {
		cp.Tracks[i] = t
		cp.Tracks[i].Waypoints = append([]models.Coordinates(nil), t.Waypoints...)
	}
	cp.Crossovers = append([]models.Crossover(nil), n.Crossovers...)
	return &cp
}
