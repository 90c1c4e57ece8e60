package shadow

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists Comparison results to the shadow_comparisons table,
// never to any production-facing table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an existing connection pool for shadow persistence.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InitSchema creates the shadow_comparisons table if it does not
// already exist.
func (s *Store) InitSchema(ctx context.Context) error {
	const sql = `
		CREATE TABLE IF NOT EXISTS shadow_comparisons (
			id               BIGSERIAL PRIMARY KEY,
			production_run   TEXT NOT NULL,
			shadow_run       TEXT NOT NULL,
			ari              DOUBLE PRECISION NOT NULL,
			vi               DOUBLE PRECISION NOT NULL,
			production_edges INTEGER NOT NULL,
			shadow_edges     INTEGER NOT NULL,
			divergent        BOOLEAN NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	_, err := s.pool.Exec(ctx, sql)
	return err
}

// Persist writes a single comparison, tagged with the run IDs of the
// two Propagate calls that produced it.
func (s *Store) Persist(ctx context.Context, productionRun, shadowRun string, c Comparison) error {
	const sql = `
		INSERT INTO shadow_comparisons
			(production_run, shadow_run, ari, vi, production_edges, shadow_edges, divergent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.pool.Exec(ctx, sql, productionRun, shadowRun,
		c.ARI, c.VI, c.ProductionEdges, c.ShadowEdges, c.Divergent, time.Now())
	if err != nil {
		return fmt.Errorf("shadow: failed to persist comparison: %w", err)
	}
	return nil
}

// DriftReport summarizes every comparison recorded so far: how many
// runs diverged and the average Variation of Information across all
// of them.
func (s *Store) DriftReport(ctx context.Context) (totalRuns, divergences int, avgVI float64, err error) {
	const sql = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE divergent),
			COALESCE(AVG(vi), 0)
		FROM shadow_comparisons
	`
	row := s.pool.QueryRow(ctx, sql)
	err = row.Scan(&totalRuns, &divergences, &avgVI)
	return
}
