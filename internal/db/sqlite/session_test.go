package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/bandarsiri8/ubertimetracker/pkg/models"
	"github.com/stretchr/testify/suite"
)

// SessionStoreSuite is a test suite for SessionStore operations.
type SessionStoreSuite struct {
	suite.Suite
	store        *Store
	sessionStore *SessionStore
	pauseStore   *PauseStore
	cleanup      func()
	t0           time.Time
}

func (s *SessionStoreSuite) SetupTest() {
	s.store, s.cleanup = testStore(s.T())
	s.sessionStore = NewSessionStore(s.store)
	s.pauseStore = NewPauseStore(s.store)
	s.t0 = time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)
}

func (s *SessionStoreSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

// TestCreateSession_NewDate tests opening the first session of a day.
func (s *SessionStoreSuite) TestCreateSession_NewDate() {
	ctx := context.Background()

	id, err := s.sessionStore.CreateSession(ctx, s.t0)
	s.Require().NoError(err)
	s.Positive(id)

	sess, err := s.sessionStore.GetSessionByID(ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(sess)
	s.Equal("2025-06-02", sess.Date)
	s.True(sess.Open())
	s.Equal(s.t0.UnixMilli(), sess.Start1Epoch.Int64)
	s.False(sess.Stop1Epoch.Valid)
	s.Equal(models.SyncStatusPending, sess.SyncStatus)
}

// TestCreateSession_DuplicateStartIsIdempotent verifies a second start signal
// while a session is open returns the same row.
func (s *SessionStoreSuite) TestCreateSession_DuplicateStartIsIdempotent() {
	ctx := context.Background()

	id1, err := s.sessionStore.CreateSession(ctx, s.t0)
	s.Require().NoError(err)
	id2, err := s.sessionStore.CreateSession(ctx, s.t0.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(id1, id2)

	sess, err := s.sessionStore.GetSessionByID(ctx, id1)
	s.Require().NoError(err)
	s.Equal(s.t0.UnixMilli(), sess.Start1Epoch.Int64) // first anchor kept
	s.False(sess.Start2Epoch.Valid)
}

// TestCreateSession_SecondLegSameDate tests the legacy two-shift layout.
func (s *SessionStoreSuite) TestCreateSession_SecondLegSameDate() {
	ctx := context.Background()

	id, err := s.sessionStore.CreateSession(ctx, s.t0)
	s.Require().NoError(err)
	s.Require().NoError(s.sessionStore.StopSession(ctx, id, s.t0.Add(4*time.Hour)))

	id2, err := s.sessionStore.CreateSession(ctx, s.t0.Add(6*time.Hour))
	s.Require().NoError(err)
	s.Equal(id, id2)

	sess, err := s.sessionStore.GetSessionByID(ctx, id)
	s.Require().NoError(err)
	s.True(sess.Start2Epoch.Valid)
	s.False(sess.Stop2Epoch.Valid)
	s.True(sess.Open())
	s.Equal(s.t0.Add(6*time.Hour), sess.StartTime())
}

// TestCreateSession_ThirdStartReusesSecondLeg verifies a start past both legs
// reopens the second leg and flags the row.
func (s *SessionStoreSuite) TestCreateSession_ThirdStartReusesSecondLeg() {
	ctx := context.Background()

	id, err := s.sessionStore.CreateSession(ctx, s.t0)
	s.Require().NoError(err)
	s.Require().NoError(s.sessionStore.StopSession(ctx, id, s.t0.Add(2*time.Hour)))

	_, err = s.sessionStore.CreateSession(ctx, s.t0.Add(3*time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.sessionStore.StopSession(ctx, id, s.t0.Add(5*time.Hour)))

	id3, err := s.sessionStore.CreateSession(ctx, s.t0.Add(6*time.Hour))
	s.Require().NoError(err)
	s.Equal(id, id3)

	sess, err := s.sessionStore.GetSessionByID(ctx, id)
	s.Require().NoError(err)
	s.True(sess.Open())
	s.False(sess.Stop2Epoch.Valid)
	s.True(sess.HasConflict)
}

// TestStopSession_TotalExcludesPauses verifies the derived total subtracts
// recorded pauses: start 0s, pause 10s-40s, stop 50s => 20s... scaled to
// hours here with minutes for stable arithmetic.
func (s *SessionStoreSuite) TestStopSession_TotalExcludesPauses() {
	ctx := context.Background()

	id, err := s.sessionStore.CreateSession(ctx, s.t0)
	s.Require().NoError(err)

	pauseID, err := s.pauseStore.AddPause(ctx, id, s.t0.Add(60*time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(s.pauseStore.EndPause(ctx, pauseID, s.t0.Add(90*time.Minute)))

	s.Require().NoError(s.sessionStore.StopSession(ctx, id, s.t0.Add(4*time.Hour)))

	sess, err := s.sessionStore.GetSessionByID(ctx, id)
	s.Require().NoError(err)
	s.False(sess.Open())
	s.InDelta(3.5, sess.TotalHours, 0.001) // 4h minus 30m pause
}

// TestStopSession_NoSuchSession tests the error path.
func (s *SessionStoreSuite) TestStopSession_NoSuchSession() {
	err := s.sessionStore.StopSession(context.Background(), 9999, s.t0)
	s.Error(err)
}

// TestGetOpenSession tests open-session lookup across states.
func (s *SessionStoreSuite) TestGetOpenSession() {
	ctx := context.Background()

	open, err := s.sessionStore.GetOpenSession(ctx)
	s.Require().NoError(err)
	s.Nil(open)

	id, err := s.sessionStore.CreateSession(ctx, s.t0)
	s.Require().NoError(err)

	open, err = s.sessionStore.GetOpenSession(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(open)
	s.Equal(id, open.ID)

	s.Require().NoError(s.sessionStore.StopSession(ctx, id, s.t0.Add(time.Hour)))

	open, err = s.sessionStore.GetOpenSession(ctx)
	s.Require().NoError(err)
	s.Nil(open)

	// Second leg opens the same row again.
	_, err = s.sessionStore.CreateSession(ctx, s.t0.Add(2*time.Hour))
	s.Require().NoError(err)
	open, err = s.sessionStore.GetOpenSession(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(open)
	s.Equal(id, open.ID)
}

// TestRangeAndMonthQueries tests history listing.
func (s *SessionStoreSuite) TestRangeAndMonthQueries() {
	ctx := context.Background()

	days := []time.Time{
		time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		id, err := s.sessionStore.CreateSession(ctx, day)
		s.Require().NoError(err)
		s.Require().NoError(s.sessionStore.StopSession(ctx, id, day.Add(2*time.Hour)))
	}

	june, err := s.sessionStore.GetSessionsByMonth(ctx, "2025-06")
	s.Require().NoError(err)
	s.Len(june, 2)

	ranged, err := s.sessionStore.GetSessionsInRange(ctx, "2025-05-30", "2025-06-01")
	s.Require().NoError(err)
	s.Len(ranged, 2)
	s.Equal("2025-05-30", ranged[0].Date)

	total, err := s.sessionStore.TotalHoursInRange(ctx, "2025-05-01", "2025-06-30")
	s.Require().NoError(err)
	s.InDelta(6.0, total, 0.001)
}

// TestSyncStatusFlow tests sync state updates and queries.
func (s *SessionStoreSuite) TestSyncStatusFlow() {
	ctx := context.Background()

	id, err := s.sessionStore.CreateSession(ctx, s.t0)
	s.Require().NoError(err)

	pending, err := s.sessionStore.GetSessionsBySyncStatus(ctx, models.SyncStatusPending)
	s.Require().NoError(err)
	s.Len(pending, 1)

	s.Require().NoError(s.sessionStore.UpdateSyncStatus(ctx, id, models.SyncStatusSynced))

	pending, err = s.sessionStore.GetSessionsBySyncStatus(ctx, models.SyncStatusPending)
	s.Require().NoError(err)
	s.Empty(pending)

	// Any mutation marks the row dirty again.
	s.Require().NoError(s.sessionStore.ResumeSession(ctx, id))
	sess, err := s.sessionStore.GetSessionByID(ctx, id)
	s.Require().NoError(err)
	s.Equal(models.SyncStatusPending, sess.SyncStatus)
}

// TestDeleteAllSessions verifies bulk-clear cascades to pauses.
func (s *SessionStoreSuite) TestDeleteAllSessions() {
	ctx := context.Background()

	id, err := s.sessionStore.CreateSession(ctx, s.t0)
	s.Require().NoError(err)
	_, err = s.pauseStore.AddPause(ctx, id, s.t0.Add(time.Hour))
	s.Require().NoError(err)

	s.Require().NoError(s.sessionStore.DeleteAllSessions(ctx))

	sess, err := s.sessionStore.GetSessionByID(ctx, id)
	s.Require().NoError(err)
	s.Nil(sess)

	count, err := s.pauseStore.CountForSession(ctx, id)
	s.Require().NoError(err)
	s.Zero(count)
}
