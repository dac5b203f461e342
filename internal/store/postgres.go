package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
)

// PostgresStore keeps each network as a single JSONB document keyed by id.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore ensures the document table exists
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS network_documents (
			id         TEXT PRIMARY KEY,
			document   JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("unable to create network_documents table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Get loads a network document
func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Network, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM network_documents WHERE id = $1`, id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load network %s: %w", id, err)
	}

	var network models.Network
	if err := json.Unmarshal(raw, &network); err != nil {
		return nil, fmt.Errorf("corrupt network document %s: %w", id, err)
	}
	return &network, nil
}

// Put upserts the whole document
func (s *PostgresStore) Put(ctx context.Context, network *models.Network) error {
	raw, err := json.Marshal(network)
	if err != nil {
		return fmt.Errorf("unable to marshal network %s: %w", network.ID, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO network_documents (id, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()
	`, network.ID, raw)
	if err != nil {
		return fmt.Errorf("unable to persist network %s: %w", network.ID, err)
	}
	return nil
}
