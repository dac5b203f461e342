package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
)

// FileStore keeps one JSON document per network id under a data directory.
// Writes go through a temp file and rename so a crash never leaves a
// half-written document behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// validID rejects ids that could escape the data directory
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

// Get loads a network document
func (s *FileStore) Get(ctx context.Context, id string) (*models.Network, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	raw, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read network %s: %w", id, err)
	}

	var network models.Network
	if err := json.Unmarshal(raw, &network); err != nil {
		return nil, fmt.Errorf("corrupt network document %s: %w", id, err)
	}
	return &network, nil
}

// Put writes a network document atomically
func (s *FileStore) Put(ctx context.Context, network *models.Network) error {
	if !validID(network.ID) {
		return fmt.Errorf("invalid network id %q", network.ID)
	}

	raw, err := json.MarshalIndent(network, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal network %s: %w", network.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, network.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write network %s: %w", network.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(network.ID)); err != nil {
		return fmt.Errorf("unable to persist network %s: %w", network.ID, err)
	}
	return nil
}
