package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// PauseStoreSuite is a test suite for PauseStore operations.
type PauseStoreSuite struct {
	suite.Suite
	store        *Store
	sessionStore *SessionStore
	pauseStore   *PauseStore
	cleanup      func()
	sessionID    int64
	t0           time.Time
}

func (s *PauseStoreSuite) SetupTest() {
	s.store, s.cleanup = testStore(s.T())
	s.sessionStore = NewSessionStore(s.store)
	s.pauseStore = NewPauseStore(s.store)
	s.t0 = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	var err error
	s.sessionID, err = s.sessionStore.CreateSession(context.Background(), s.t0)
	s.Require().NoError(err)
}

func (s *PauseStoreSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func TestPauseStoreSuite(t *testing.T) {
	suite.Run(t, new(PauseStoreSuite))
}

// TestAddPause_SingleActiveInvariant verifies a second AddPause without an
// intervening EndPause creates no second open row.
func (s *PauseStoreSuite) TestAddPause_SingleActiveInvariant() {
	ctx := context.Background()

	id1, err := s.pauseStore.AddPause(ctx, s.sessionID, s.t0.Add(time.Hour))
	s.Require().NoError(err)
	id2, err := s.pauseStore.AddPause(ctx, s.sessionID, s.t0.Add(time.Hour+time.Minute))
	s.Require().NoError(err)
	s.Equal(id1, id2)

	count, err := s.pauseStore.CountForSession(ctx, s.sessionID)
	s.Require().NoError(err)
	s.Equal(1, count)
}

// TestEndPause tests the close path and the active lookup.
func (s *PauseStoreSuite) TestEndPause() {
	ctx := context.Background()

	id, err := s.pauseStore.AddPause(ctx, s.sessionID, s.t0.Add(time.Hour))
	s.Require().NoError(err)

	active, err := s.pauseStore.GetActivePause(ctx, s.sessionID)
	s.Require().NoError(err)
	s.Require().NotNil(active)
	s.Equal(id, active.ID)
	s.True(active.Active())

	end := s.t0.Add(90 * time.Minute)
	s.Require().NoError(s.pauseStore.EndPause(ctx, id, end))

	active, err = s.pauseStore.GetActivePause(ctx, s.sessionID)
	s.Require().NoError(err)
	s.Nil(active)

	pause, err := s.pauseStore.GetPauseByID(ctx, id)
	s.Require().NoError(err)
	s.Equal(end.UnixMilli(), pause.EndEpoch.Int64)
	s.Equal(30*time.Minute, pause.Duration(time.Now()))
}

// TestEndPause_AlreadyClosedIsNoOp verifies a closed pause's end time is
// immutable.
func (s *PauseStoreSuite) TestEndPause_AlreadyClosedIsNoOp() {
	ctx := context.Background()

	id, err := s.pauseStore.AddPause(ctx, s.sessionID, s.t0.Add(time.Hour))
	s.Require().NoError(err)
	end := s.t0.Add(2 * time.Hour)
	s.Require().NoError(s.pauseStore.EndPause(ctx, id, end))
	s.Require().NoError(s.pauseStore.EndPause(ctx, id, s.t0.Add(3*time.Hour)))

	pause, err := s.pauseStore.GetPauseByID(ctx, id)
	s.Require().NoError(err)
	s.Equal(end.UnixMilli(), pause.EndEpoch.Int64)
}

// TestCloseDangling tests the defensive reconciliation used on resume.
func (s *PauseStoreSuite) TestCloseDangling() {
	ctx := context.Background()

	_, err := s.pauseStore.AddPause(ctx, s.sessionID, s.t0.Add(time.Hour))
	s.Require().NoError(err)

	closed, err := s.pauseStore.CloseDangling(ctx, s.sessionID, s.t0.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(1), closed)

	closed, err = s.pauseStore.CloseDangling(ctx, s.sessionID, s.t0.Add(3*time.Hour))
	s.Require().NoError(err)
	s.Zero(closed)
}

// TestTotalPauseDuration sums only closed pauses.
func (s *PauseStoreSuite) TestTotalPauseDuration() {
	ctx := context.Background()

	id1, err := s.pauseStore.AddPause(ctx, s.sessionID, s.t0.Add(time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.pauseStore.EndPause(ctx, id1, s.t0.Add(80*time.Minute)))

	id2, err := s.pauseStore.AddPause(ctx, s.sessionID, s.t0.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.pauseStore.EndPause(ctx, id2, s.t0.Add(2*time.Hour+10*time.Minute)))

	// One still open: excluded from the sum.
	_, err = s.pauseStore.AddPause(ctx, s.sessionID, s.t0.Add(3*time.Hour))
	s.Require().NoError(err)

	total, err := s.pauseStore.TotalPauseDuration(ctx, s.sessionID)
	s.Require().NoError(err)
	s.Equal(30*time.Minute, total)
}

// TestListForSession returns pauses in start order.
func (s *PauseStoreSuite) TestListForSession() {
	ctx := context.Background()

	id1, err := s.pauseStore.AddPause(ctx, s.sessionID, s.t0.Add(time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.pauseStore.EndPause(ctx, id1, s.t0.Add(70*time.Minute)))
	_, err = s.pauseStore.AddPause(ctx, s.sessionID, s.t0.Add(2*time.Hour))
	s.Require().NoError(err)

	pauses, err := s.pauseStore.ListForSession(ctx, s.sessionID)
	s.Require().NoError(err)
	s.Require().Len(pauses, 2)
	s.Less(pauses[0].StartEpoch, pauses[1].StartEpoch)
}
