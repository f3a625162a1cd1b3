package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// SessionStore provides session-related database operations.
type SessionStore struct {
	store *Store
}

// NewSessionStore creates a new session store.
func NewSessionStore(store *Store) *SessionStore {
	return &SessionStore{store: store}
}

// CreateSession opens a work session anchored at start. One session row per
// calendar date: if the date already has a row whose first leg is closed and
// whose second leg is unused, the start lands in the second leg (legacy
// two-shift layout). An already-open row is returned as-is, which makes the
// call idempotent against duplicate start signals.
func (s *SessionStore) CreateSession(ctx context.Context, start time.Time) (int64, error) {
	date := DateString(start)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := sessionForDateTx(ctx, tx, date)
	if err != nil {
		return 0, err
	}

	if existing == nil {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (date, start1_epoch, sync_status, created_at)
			VALUES (?, ?, ?, ?)`,
			date, start.UnixMilli(), string(models.SyncStatusPending), time.Now().Format(time.RFC3339),
		)
		if err != nil {
			return 0, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		return id, tx.Commit()
	}

	if existing.Open() {
		// Duplicate start signal; keep the open session.
		return existing.ID, tx.Commit()
	}

	if !existing.Start2Epoch.Valid {
		_, err := tx.ExecContext(ctx, `
			UPDATE sessions SET start2_epoch = ?, sync_status = ? WHERE id = ?`,
			start.UnixMilli(), string(models.SyncStatusPending), existing.ID,
		)
		if err != nil {
			return 0, err
		}
		return existing.ID, tx.Commit()
	}

	// Both legs used up for this date; reuse the row rather than losing the
	// shift. The previous second-leg stop is overwritten, so flag the row for
	// manual review in the timesheet.
	_, err = tx.ExecContext(ctx, `
		UPDATE sessions SET stop2_epoch = NULL, has_conflict = 1, sync_status = ? WHERE id = ?`,
		string(models.SyncStatusPending), existing.ID,
	)
	if err != nil {
		return 0, err
	}
	return existing.ID, tx.Commit()
}

// StopSession closes the open leg at stop and recomputes the derived total
// hours (worked time minus recorded pauses) inside one transaction.
func (s *SessionStore) StopSession(ctx context.Context, id int64, stop time.Time) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	sess, err := sessionByIDTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("stop session %d: no such session", id)
	}

	if sess.Start2Epoch.Valid && !sess.Stop2Epoch.Valid {
		sess.Stop2Epoch = epochOrNull(stop)
	} else if sess.Start1Epoch.Valid && !sess.Stop1Epoch.Valid {
		sess.Stop1Epoch = epochOrNull(stop)
	}
	// Stopping an already-closed session is a no-op beyond the recompute.

	var pauseMillis sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT SUM(end_epoch - start_epoch) FROM pauses
		WHERE session_id = ? AND end_epoch IS NOT NULL`, id,
	).Scan(&pauseMillis)
	if err != nil {
		return err
	}

	worked := legMillis(sess.Start1Epoch, sess.Stop1Epoch) + legMillis(sess.Start2Epoch, sess.Stop2Epoch)
	worked -= pauseMillis.Int64
	if worked < 0 {
		worked = 0
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE sessions
		SET stop1_epoch = ?, stop2_epoch = ?, total_hours = ?, sync_status = ?
		WHERE id = ?`,
		sess.Stop1Epoch, sess.Stop2Epoch,
		float64(worked)/float64(time.Hour.Milliseconds()),
		string(models.SyncStatusPending), id,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func legMillis(start, stop sql.NullInt64) int64 {
	if !start.Valid || !stop.Valid || stop.Int64 < start.Int64 {
		return 0
	}
	return stop.Int64 - start.Int64
}

// ResumeSession clears paused-anchor bookkeeping after a pause closes; the
// row is marked dirty for the next cloud sync.
func (s *SessionStore) ResumeSession(ctx context.Context, id int64) error {
	_, err := s.store.ExecContext(ctx, `
		UPDATE sessions SET sync_status = ? WHERE id = ?`,
		string(models.SyncStatusPending), id,
	)
	return err
}

// GetSessionByID retrieves a session by its database ID. Returns (nil, nil)
// when absent.
func (s *SessionStore) GetSessionByID(ctx context.Context, id int64) (*models.Session, error) {
	row := s.store.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ? LIMIT 1`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSessionForDate retrieves the session row for a calendar date, if any.
func (s *SessionStore) GetSessionForDate(ctx context.Context, date string) (*models.Session, error) {
	row := s.store.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE date = ? LIMIT 1`, date)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// GetOpenSession finds the session whose current leg has no stop time, if
// any. At most one should exist; the newest wins if the invariant was ever
// broken by a crash.
func (s *SessionStore) GetOpenSession(ctx context.Context) (*models.Session, error) {
	row := s.store.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE (start2_epoch IS NOT NULL AND stop2_epoch IS NULL)
		   OR (start2_epoch IS NULL AND start1_epoch IS NOT NULL AND stop1_epoch IS NULL)
		ORDER BY id DESC LIMIT 1`)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSessionsInRange lists sessions with date in [from, to], oldest first.
func (s *SessionStore) GetSessionsInRange(ctx context.Context, from, to string) ([]*models.Session, error) {
	rows, err := s.store.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE date BETWEEN ? AND ?
		ORDER BY date, start1_epoch`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessionRows(rows)
}

// GetSessionsByMonth lists sessions for a calendar month ("2006-01").
func (s *SessionStore) GetSessionsByMonth(ctx context.Context, yearMonth string) ([]*models.Session, error) {
	rows, err := s.store.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE date LIKE ? || '-%'
		ORDER BY date, start1_epoch`, yearMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessionRows(rows)
}

// TotalHoursInRange sums the derived hours over [from, to].
func (s *SessionStore) TotalHoursInRange(ctx context.Context, from, to string) (float64, error) {
	var total sql.NullFloat64
	err := s.store.QueryRowContext(ctx, `
		SELECT SUM(total_hours) FROM sessions WHERE date BETWEEN ? AND ?`,
		from, to).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}

// UpdateSyncStatus sets the cloud sync state of a session row.
func (s *SessionStore) UpdateSyncStatus(ctx context.Context, id int64, status models.SyncStatus) error {
	_, err := s.store.ExecContext(ctx,
		`UPDATE sessions SET sync_status = ? WHERE id = ?`, string(status), id)
	return err
}

// GetSessionsBySyncStatus lists sessions in a given sync state.
func (s *SessionStore) GetSessionsBySyncStatus(ctx context.Context, status models.SyncStatus) ([]*models.Session, error) {
	rows, err := s.store.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE sync_status = ? ORDER BY date`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessionRows(rows)
}

// DeleteAllSessions is the explicit user bulk-clear; pauses cascade.
func (s *SessionStore) DeleteAllSessions(ctx context.Context) error {
	_, err := s.store.ExecContext(ctx, `DELETE FROM sessions`)
	return err
}

func sessionByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Session, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ? LIMIT 1`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func sessionForDateTx(ctx context.Context, tx *sql.Tx, date string) (*models.Session, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE date = ? LIMIT 1`, date)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}
