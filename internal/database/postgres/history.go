package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ecommercejockey/jockey/internal/database"
	"github.com/jackc/pgx/v5"
)

// SyncRunRepo records pipeline runs in PostgreSQL
type SyncRunRepo struct {
	client *Client
}

// NewSyncRunRepo creates a new sync run repository
func NewSyncRunRepo(client *Client) *SyncRunRepo {
	return &SyncRunRepo{client: client}
}

// Add inserts a new sync run entry
func (r *SyncRunRepo) Add(ctx context.Context, run *database.SyncRun) error {
	query := `
		INSERT INTO sync_runs (action, source, count, details, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	err := r.client.pool.QueryRow(ctx, query,
		run.Action,
		run.Source,
		run.Count,
		run.Details,
		run.StartedAt,
		run.CompletedAt,
	).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("failed to add sync run: %w", err)
	}

	return nil
}

// GetRecent returns the most recent sync runs, newest first
func (r *SyncRunRepo) GetRecent(ctx context.Context, limit int) ([]*database.SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, action, source, count, details, started_at, completed_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.client.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	return scanSyncRuns(rows)
}

// GetByAction returns sync runs for a specific action, newest first
func (r *SyncRunRepo) GetByAction(ctx context.Context, action string, limit int) ([]*database.SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, action, source, count, details, started_at, completed_at
		FROM sync_runs
		WHERE action = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.client.pool.Query(ctx, query, action, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	return scanSyncRuns(rows)
}

// Prune deletes sync runs older than the cutoff and returns the count removed
func (r *SyncRunRepo) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.client.pool.Exec(ctx,
		`DELETE FROM sync_runs WHERE started_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sync runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSyncRuns(rows pgx.Rows) ([]*database.SyncRun, error) {
	var runs []*database.SyncRun
	for rows.Next() {
		run := &database.SyncRun{}
		err := rows.Scan(
			&run.ID,
			&run.Action,
			&run.Source,
			&run.Count,
			&run.Details,
			&run.StartedAt,
			&run.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
