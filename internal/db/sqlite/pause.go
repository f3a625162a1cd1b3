package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// PauseStore provides pause-related database operations.
type PauseStore struct {
	store *Store
}

// NewPauseStore creates a new pause store.
func NewPauseStore(store *Store) *PauseStore {
	return &PauseStore{store: store}
}

// AddPause opens a pause under the session. At most one active pause may
// exist per session: a second call without an intervening EndPause returns
// the existing open pause's ID instead of creating another row.
func (s *PauseStore) AddPause(ctx context.Context, sessionID int64, start time.Time) (int64, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var existingID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM pauses WHERE session_id = ? AND end_epoch IS NULL LIMIT 1`,
		sessionID).Scan(&existingID)
	if err == nil {
		return existingID, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO pauses (session_id, start_epoch) VALUES (?, ?)`,
		sessionID, start.UnixMilli())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// EndPause closes a pause.
func (s *PauseStore) EndPause(ctx context.Context, id int64, end time.Time) error {
	_, err := s.store.ExecContext(ctx, `
		UPDATE pauses SET end_epoch = ? WHERE id = ? AND end_epoch IS NULL`,
		end.UnixMilli(), id)
	return err
}

// GetActivePause returns the session's open pause, or (nil, nil).
func (s *PauseStore) GetActivePause(ctx context.Context, sessionID int64) (*models.Pause, error) {
	row := s.store.QueryRowContext(ctx, `
		SELECT id, session_id, start_epoch, end_epoch FROM pauses
		WHERE session_id = ? AND end_epoch IS NULL LIMIT 1`, sessionID)
	pause, err := scanPause(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pause, nil
}

// GetPauseByID retrieves a pause by ID. Returns (nil, nil) when absent.
func (s *PauseStore) GetPauseByID(ctx context.Context, id int64) (*models.Pause, error) {
	row := s.store.QueryRowContext(ctx, `
		SELECT id, session_id, start_epoch, end_epoch FROM pauses WHERE id = ? LIMIT 1`, id)
	pause, err := scanPause(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pause, nil
}

// ListForSession lists all pauses of a session in start order.
func (s *PauseStore) ListForSession(ctx context.Context, sessionID int64) ([]*models.Pause, error) {
	rows, err := s.store.QueryContext(ctx, `
		SELECT id, session_id, start_epoch, end_epoch FROM pauses
		WHERE session_id = ? ORDER BY start_epoch`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPauseRows(rows)
}

// CloseDangling closes every open pause of the session at end, returning how
// many rows were affected. Resuming a session calls this defensively to heal
// pauses left open by a missed resume event in a prior process lifetime.
func (s *PauseStore) CloseDangling(ctx context.Context, sessionID int64, end time.Time) (int64, error) {
	res, err := s.store.ExecContext(ctx, `
		UPDATE pauses SET end_epoch = ? WHERE session_id = ? AND end_epoch IS NULL`,
		end.UnixMilli(), sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TotalPauseDuration sums the closed pauses of a session.
func (s *PauseStore) TotalPauseDuration(ctx context.Context, sessionID int64) (time.Duration, error) {
	var millis sql.NullInt64
	err := s.store.QueryRowContext(ctx, `
		SELECT SUM(end_epoch - start_epoch) FROM pauses
		WHERE session_id = ? AND end_epoch IS NOT NULL`, sessionID).Scan(&millis)
	if err != nil {
		return 0, err
	}
	return time.Duration(millis.Int64) * time.Millisecond, nil
}

// CountForSession returns the number of pause rows under a session.
func (s *PauseStore) CountForSession(ctx context.Context, sessionID int64) (int, error) {
	var n int
	err := s.store.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pauses WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
