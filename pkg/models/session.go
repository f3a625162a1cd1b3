package models

import (
	"database/sql"
	"time"
)

// SyncStatus represents the cloud sync state of a session row.
type SyncStatus string

const (
	SyncStatusPending  SyncStatus = "pending"
	SyncStatusSynced   SyncStatus = "synced"
	SyncStatusConflict SyncStatus = "conflict"
)

// Session is one tracked work day. The row keeps the legacy two-leg layout
// (start1/stop1 and an optional second start2/stop2 pair); the segment model
// derives any number of work segments from the pauses recorded underneath it.
//
// A session with a non-null stop1 (and no open second leg) is closed; a
// session with a start and no stop is open. At most one open session exists
// system-wide, enforced by the timer state machine rather than the store.
type Session struct {
	ID          int64         `db:"id" json:"id"`
	Date        string        `db:"date" json:"date"` // YYYY-MM-DD
	Start1Epoch sql.NullInt64 `db:"start1_epoch" json:"start1_epoch,omitempty"`
	Stop1Epoch  sql.NullInt64 `db:"stop1_epoch" json:"stop1_epoch,omitempty"`
	Start2Epoch sql.NullInt64 `db:"start2_epoch" json:"start2_epoch,omitempty"`
	Stop2Epoch  sql.NullInt64 `db:"stop2_epoch" json:"stop2_epoch,omitempty"`
	TotalHours  float64       `db:"total_hours" json:"total_hours"`
	SyncStatus  SyncStatus    `db:"sync_status" json:"sync_status"`
	HasConflict bool          `db:"has_conflict" json:"has_conflict"`
	CreatedAt   string        `db:"created_at" json:"created_at"`
}

// Open reports whether the session has a started leg with no stop yet.
func (s *Session) Open() bool {
	if s.Start2Epoch.Valid {
		return !s.Stop2Epoch.Valid
	}
	return s.Start1Epoch.Valid && !s.Stop1Epoch.Valid
}

// StartTime returns the start of the currently open leg, or the first leg's
// start for a closed session. Zero time if the session never started.
func (s *Session) StartTime() time.Time {
	if s.Start2Epoch.Valid && !s.Stop2Epoch.Valid {
		return time.UnixMilli(s.Start2Epoch.Int64)
	}
	if s.Start1Epoch.Valid {
		return time.UnixMilli(s.Start1Epoch.Int64)
	}
	return time.Time{}
}

// Pause is a rest interval inside a session. An active pause has a null end
// time; at most one active pause may exist per session.
type Pause struct {
	ID         int64         `db:"id" json:"id"`
	SessionID  int64         `db:"session_id" json:"session_id"`
	StartEpoch int64         `db:"start_epoch" json:"start_epoch"`
	EndEpoch   sql.NullInt64 `db:"end_epoch" json:"end_epoch,omitempty"`
}

// Active reports whether the pause is still open.
func (p *Pause) Active() bool { return !p.EndEpoch.Valid }

// Duration returns the pause length, or the elapsed time so far for an
// active pause measured against now.
func (p *Pause) Duration(now time.Time) time.Duration {
	start := time.UnixMilli(p.StartEpoch)
	if p.EndEpoch.Valid {
		return time.UnixMilli(p.EndEpoch.Int64).Sub(start)
	}
	return now.Sub(start)
}
