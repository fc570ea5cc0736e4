package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ects-quest/internal/models"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
)

// SnapshotRepository persists game snapshots.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert stores the latest snapshot of a session.
func (r *SnapshotRepository) Upsert(ctx context.Context, record *models.SnapshotRecord) error {
	const query = `INSERT INTO game_snapshots (session_id, level, payload, updated_at) VALUES (:session_id, :level, :payload, :updated_at) ON CONFLICT (session_id) DO UPDATE SET level = EXCLUDED.level, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	record.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// FindBySession returns the stored snapshot for a session.
func (r *SnapshotRepository) FindBySession(ctx context.Context, sessionID string) (*models.SnapshotRecord, error) {
	const query = `SELECT session_id, level, payload, updated_at FROM game_snapshots WHERE session_id = $1`
	var record models.SnapshotRecord
	if err := r.db.GetContext(ctx, &record, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "snapshot not found")
		}
		return nil, fmt.Errorf("find snapshot: %w", err)
	}
	return &record, nil
}

// Delete removes a stored snapshot.
func (r *SnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	const query = `DELETE FROM game_snapshots WHERE session_id = $1`
	res, err := r.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "snapshot not found")
	}
	return nil
}

// PurgeOlderThan deletes snapshots untouched since cutoff and returns how many were removed.
func (r *SnapshotRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM game_snapshots WHERE updated_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge snapshots: %w", err)
	}
	return res.RowsAffected()
}
