package sqlite

import (
	"database/sql"
	"time"

	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// epochOrNull converts a time to epoch-millis NullInt64 (null for zero time).
func epochOrNull(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

// DateString formats a time as the session date key.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

const sessionColumns = `id, date, start1_epoch, stop1_epoch, start2_epoch, stop2_epoch,
	total_hours, sync_status, has_conflict, created_at`

// scanSession scans a session row from a row scanner.
func scanSession(scanner interface{ Scan(...interface{}) error }) (*models.Session, error) {
	var sess models.Session
	if err := scanner.Scan(
		&sess.ID, &sess.Date,
		&sess.Start1Epoch, &sess.Stop1Epoch, &sess.Start2Epoch, &sess.Stop2Epoch,
		&sess.TotalHours, &sess.SyncStatus, &sess.HasConflict, &sess.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &sess, nil
}

// scanSessionRows scans multiple sessions from rows.
func scanSessionRows(rows *sql.Rows) ([]*models.Session, error) {
	var sessions []*models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// scanPause scans a pause row from a row scanner.
func scanPause(scanner interface{ Scan(...interface{}) error }) (*models.Pause, error) {
	var pause models.Pause
	if err := scanner.Scan(&pause.ID, &pause.SessionID, &pause.StartEpoch, &pause.EndEpoch); err != nil {
		return nil, err
	}
	return &pause, nil
}

// scanPauseRows scans multiple pauses from rows.
func scanPauseRows(rows *sql.Rows) ([]*models.Pause, error) {
	var pauses []*models.Pause
	for rows.Next() {
		pause, err := scanPause(rows)
		if err != nil {
			return nil, err
		}
		pauses = append(pauses, pause)
	}
	return pauses, rows.Err()
}
