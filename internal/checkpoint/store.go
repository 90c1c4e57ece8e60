// Package checkpoint persists a serialized hypergraph snapshot for
// crash recovery of long Fixed runs. It is crash-recovery plumbing
// around the core, not core-owned application persistence — the core
// itself (internal/molten) never imports this package.
package checkpoint

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool over the checkpoint table.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens the connection pool to PostgreSQL.
func Connect(connStr string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: unable to connect: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("checkpoint: ping failed: %w", err)
	}
	log.Println("checkpoint: connected to PostgreSQL")
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the checkpoint table if it does not already exist.
func (s *Store) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/checkpoint/schema.sql")
	if err != nil {
		return fmt.Errorf("checkpoint: failed to read schema file: %w", err)
	}
	if _, err := s.pool.Exec(context.Background(), string(schemaBytes)); err != nil {
		return fmt.Errorf("checkpoint: failed to apply schema: %w", err)
	}
	return nil
}

// Save upserts the arena and hypergraph byte encodings for runID,
// along with the iteration count reached so far.
func (s *Store) Save(ctx context.Context, runID string, arena, graph []byte, iterations int) error {
	const sql = `
		INSERT INTO hypergraph_checkpoints (run_id, arena, hypergraph, iterations, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (run_id) DO UPDATE
		SET arena = EXCLUDED.arena, hypergraph = EXCLUDED.hypergraph,
		    iterations = EXCLUDED.iterations, updated_at = NOW();
	`
	_, err := s.pool.Exec(ctx, sql, runID, arena, graph, iterations)
	if err != nil {
		return fmt.Errorf("checkpoint: failed to save run %s: %w", runID, err)
	}
	return nil
}

// Load fetches the most recently saved arena and hypergraph byte
// encodings for runID.
func (s *Store) Load(ctx context.Context, runID string) (arena, graph []byte, iterations int, err error) {
	const sql = `SELECT arena, hypergraph, iterations FROM hypergraph_checkpoints WHERE run_id = $1`
	row := s.pool.QueryRow(ctx, sql, runID)
	if err := row.Scan(&arena, &graph, &iterations); err != nil {
		return nil, nil, 0, fmt.Errorf("checkpoint: failed to load run %s: %w", runID, err)
	}
	return arena, graph, iterations, nil
}

// Delete removes a saved checkpoint, once a run has reached its fixed
// point and no longer needs crash recovery.
func (s *Store) Delete(ctx context.Context, runID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM hypergraph_checkpoints WHERE run_id = $1`, runID)
	if err != nil {
		return fmt.Errorf("checkpoint: failed to delete run %s: %w", runID, err)
	}
	return nil
}
