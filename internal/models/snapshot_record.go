package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SnapshotRecord is a Snapshot as stored in the game_snapshots table.
type SnapshotRecord struct {
	SessionID string         `db:"session_id" json:"sessionId"`
	Level     int            `db:"level" json:"level"`
	Payload   types.JSONText `db:"payload" json:"payload"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// Decode unmarshals the stored payload.
func (r SnapshotRecord) Decode() (Snapshot, error) {
	var snap Snapshot
	err := r.Payload.Unmarshal(&snap)
	return snap, err
}
