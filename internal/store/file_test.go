package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func sampleNetwork(id string) *models.Network {
	return &models.Network{
		SchemaVersion: models.SchemaVersion,
		ID:            id,
		Name:          "Test Network",
		Budget:        1_000_000_000,
		GameYear:      2024,
		GameMonth:     1,
		Stations:      []models.Station{},
		Tracks:        []models.Track{},
		Crossovers:    []models.Crossover{},
	}
}

func TestFileStoreRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	network := sampleNetwork("net-1")
	network.Stations = append(network.Stations, models.Station{
		ID:          "st-1",
		Name:        "Centraal",
		Location:    models.Coordinates{Lat: 52.37, Lon: 4.90},
		Platforms:   5,
		StationType: models.StationRegional,
		Cost:        30_000_000,
	})

	require.NoError(t, s.Put(ctx, network))

	loaded, err := s.Get(ctx, "net-1")
	require.NoError(t, err)
	assert.Equal(t, network, loaded)
}

func TestFileStoreGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	network := sampleNetwork("net-1")
	require.NoError(t, s.Put(ctx, network))

	network.Budget = 500
	require.NoError(t, s.Put(ctx, network))

	loaded, err := s.Get(ctx, "net-1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), loaded.Budget)
}

func TestFileStoreRejectsPathEscapes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		t.Run("id "+id, func(t *testing.T) {
			_, err := s.Get(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)

			bad := sampleNetwork(id)
			assert.Error(t, s.Put(ctx, bad))
		})
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	_, err = s.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
