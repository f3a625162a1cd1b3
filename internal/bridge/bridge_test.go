package bridge

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/bandarsiri8/ubertimetracker/internal/timer"
	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// memGateway is the minimal in-memory persistence the machine needs here.
type memGateway struct {
	mu       sync.Mutex
	nextID   int64
	open     map[int64]bool
	pauses   map[int64]*models.Pause
	sessions map[int64]time.Time
}

func newMemGateway() *memGateway {
	return &memGateway{
		open:     make(map[int64]bool),
		pauses:   make(map[int64]*models.Pause),
		sessions: make(map[int64]time.Time),
	}
}

func (g *memGateway) CreateSession(ctx context.Context, start time.Time) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	g.open[g.nextID] = true
	g.sessions[g.nextID] = start
	return g.nextID, nil
}

func (g *memGateway) StopSession(ctx context.Context, id int64, stop time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open[id] = false
	return nil
}

func (g *memGateway) ResumeSession(ctx context.Context, id int64) error { return nil }

func (g *memGateway) AddPause(ctx context.Context, sessionID int64, start time.Time) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	g.pauses[g.nextID] = &models.Pause{ID: g.nextID, SessionID: sessionID, StartEpoch: start.UnixMilli()}
	return g.nextID, nil
}

func (g *memGateway) EndPause(ctx context.Context, id int64, end time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.pauses[id]; ok {
		p.EndEpoch = sql.NullInt64{Int64: end.UnixMilli(), Valid: true}
	}
	return nil
}

func (g *memGateway) GetActivePause(ctx context.Context, sessionID int64) (*models.Pause, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.pauses {
		if p.SessionID == sessionID && p.Active() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (g *memGateway) CloseDangling(ctx context.Context, sessionID int64, end time.Time) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var n int64
	for _, p := range g.pauses {
		if p.SessionID == sessionID && p.Active() {
			p.EndEpoch = sql.NullInt64{Int64: end.UnixMilli(), Valid: true}
			n++
		}
	}
	return n, nil
}

func (g *memGateway) GetOpenSession(ctx context.Context) (*models.Session, error) {
	return nil, nil
}

func (g *memGateway) TotalPauseDuration(ctx context.Context, sessionID int64) (time.Duration, error) {
	return 0, nil
}

// memSettings is a settable SettingsSource.
type memSettings struct {
	mu      sync.Mutex
	current models.AppSettings
	updates chan models.AppSettings
}

func newMemSettings(autoSync, cloudSync bool) *memSettings {
	return &memSettings{
		current: models.AppSettings{AutoSyncEnabled: autoSync, CloudSyncEnabled: cloudSync},
		updates: make(chan models.AppSettings, 4),
	}
}

func (s *memSettings) Get(ctx context.Context) (*models.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.current
	return &cp, nil
}

func (s *memSettings) Subscribe() <-chan models.AppSettings { return s.updates }

func (s *memSettings) set(autoSync, cloudSync bool) {
	s.mu.Lock()
	s.current = models.AppSettings{AutoSyncEnabled: autoSync, CloudSyncEnabled: cloudSync}
	cp := s.current
	s.mu.Unlock()
	s.updates <- cp
}

type BridgeSuite struct {
	suite.Suite
	ctx     context.Context
	machine *timer.Machine
}

func (s *BridgeSuite) SetupTest() {
	s.ctx = context.Background()
	s.machine = timer.NewMachine(newMemGateway())
}

func (s *BridgeSuite) TearDownTest() {
	s.machine.Close()
}

func (s *BridgeSuite) event(status models.Status) models.ChangeEvent {
	return models.ChangeEvent{Status: status, Source: models.SourceScreen, Timestamp: time.Now()}
}

func (s *BridgeSuite) TestOnlineStartsIdleTimer() {
	b := New(s.machine, PauseOnOffline, newMemSettings(true, false))

	b.Apply(s.ctx, s.event(models.StatusOnline), false)

	s.Equal(timer.StateRunning, s.machine.Snapshot().State)
}

func (s *BridgeSuite) TestPausePolicyRoundTrip() {
	b := New(s.machine, PauseOnOffline, newMemSettings(true, false))

	b.Apply(s.ctx, s.event(models.StatusOnline), false)
	b.Apply(s.ctx, s.event(models.StatusOffline), false)
	s.Equal(timer.StatePaused, s.machine.Snapshot().State)

	b.Apply(s.ctx, s.event(models.StatusOnline), false)
	s.Equal(timer.StateRunning, s.machine.Snapshot().State)
}

func (s *BridgeSuite) TestStopPolicyClosesSession() {
	b := New(s.machine, StopOnOffline, newMemSettings(true, false))

	b.Apply(s.ctx, s.event(models.StatusOnline), false)
	b.Apply(s.ctx, s.event(models.StatusOffline), false)

	s.Equal(timer.StateIdle, s.machine.Snapshot().State)
}

func (s *BridgeSuite) TestStopPolicyTriggersAfterStopWithCloudSync() {
	b := New(s.machine, StopOnOffline, newMemSettings(true, true))
	called := make(chan struct{}, 1)
	b.AfterStop = func(ctx context.Context, stoppedAt time.Time) error {
		called <- struct{}{}
		return nil
	}

	b.Apply(s.ctx, s.event(models.StatusOnline), true)
	b.Apply(s.ctx, s.event(models.StatusOffline), true)

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		s.Fail("AfterStop not invoked")
	}
}

func (s *BridgeSuite) TestAfterStopSkippedWithoutCloudSync() {
	b := New(s.machine, StopOnOffline, newMemSettings(true, false))
	called := make(chan struct{}, 1)
	b.AfterStop = func(ctx context.Context, stoppedAt time.Time) error {
		called <- struct{}{}
		return nil
	}

	b.Apply(s.ctx, s.event(models.StatusOnline), false)
	b.Apply(s.ctx, s.event(models.StatusOffline), false)

	select {
	case <-called:
		s.Fail("AfterStop invoked despite cloud sync disabled")
	case <-time.After(100 * time.Millisecond):
	}
}

func (s *BridgeSuite) TestAfterStopSkippedWhenAlreadyIdle() {
	b := New(s.machine, StopOnOffline, newMemSettings(true, true))
	called := make(chan struct{}, 1)
	b.AfterStop = func(ctx context.Context, stoppedAt time.Time) error {
		called <- struct{}{}
		return nil
	}

	b.Apply(s.ctx, s.event(models.StatusOffline), true)

	s.Equal(timer.StateIdle, s.machine.Snapshot().State)
	select {
	case <-called:
		s.Fail("AfterStop invoked for a no-op stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func (s *BridgeSuite) TestRunGatesOnAutoSync() {
	settings := newMemSettings(false, false)
	b := New(s.machine, PauseOnOffline, settings)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	events := make(chan models.ChangeEvent)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Run(ctx, events)
	}()

	events <- s.event(models.StatusOnline)
	s.Eventually(func() bool {
		return s.machine.Snapshot().State == timer.StateIdle
	}, time.Second, 10*time.Millisecond)

	// The settings update and the next event race in the same select, so keep
	// offering events until one lands after the update.
	settings.set(true, false)
	s.Eventually(func() bool {
		select {
		case events <- s.event(models.StatusOnline):
		default:
		}
		return s.machine.Snapshot().State == timer.StateRunning
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func (s *BridgeSuite) TestInvalidPolicyFallsBackToPause() {
	b := New(s.machine, OfflinePolicy("explode"), newMemSettings(true, false))

	b.Apply(s.ctx, s.event(models.StatusOnline), false)
	b.Apply(s.ctx, s.event(models.StatusOffline), false)

	s.Equal(timer.StatePaused, s.machine.Snapshot().State)
}

func TestBridgeSuite(t *testing.T) {
	suite.Run(t, new(BridgeSuite))
}
