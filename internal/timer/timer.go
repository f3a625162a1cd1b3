// Package timer implements the work-session state machine: idle → running ⇄
// paused → idle, with persisted transitions and a 1-second elapsed tick.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bandarsiri8/ubertimetracker/internal/status"
	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// State is the machine's lifecycle position.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Gateway is the persistence surface the machine drives. Implemented by the
// sqlite stores; faked in tests.
type Gateway interface {
	CreateSession(ctx context.Context, start time.Time) (int64, error)
	StopSession(ctx context.Context, id int64, stop time.Time) error
	ResumeSession(ctx context.Context, id int64) error
	AddPause(ctx context.Context, sessionID int64, start time.Time) (int64, error)
	EndPause(ctx context.Context, id int64, end time.Time) error
	GetActivePause(ctx context.Context, sessionID int64) (*models.Pause, error)
	CloseDangling(ctx context.Context, sessionID int64, end time.Time) (int64, error)
	GetOpenSession(ctx context.Context) (*models.Session, error)
	TotalPauseDuration(ctx context.Context, sessionID int64) (time.Duration, error)
}

// ColdStartPolicy decides what happens to an open session found in the store
// at process start.
type ColdStartPolicy string

const (
	// LeaveOrphaned keeps the open session untouched in the store; a later
	// start signal for the same date reconciles it naturally.
	LeaveOrphaned ColdStartPolicy = "leave"
	// AdoptOpen re-attaches the open session as RUNNING, recomputing the
	// elapsed anchor from the persisted rows (wall-clock deltas, not a
	// serialized snapshot).
	AdoptOpen ColdStartPolicy = "adopt"
)

// Snapshot is a point-in-time view of the machine for the API and SSE feed.
type Snapshot struct {
	State     State         `json:"state"`
	SessionID int64         `json:"session_id,omitempty"`
	StartedAt time.Time     `json:"started_at,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Machine is the session/timer state machine. All transitions are
// transactional with respect to persistence: the write happens first, and on
// error the in-memory state does not advance. Invalid transitions are silent
// no-ops because the driving signals are untrusted and possibly out of order.
type Machine struct {
	mu    sync.Mutex
	gw    Gateway
	clock func() time.Time
	debug *status.DebugLog

	state       State
	sessionID   int64
	startAnchor time.Time // shifted forward on resume so elapsed excludes pauses
	pausedAt    time.Time

	tickInterval time.Duration
	tickCancel   context.CancelFunc
	tickDone     chan struct{}

	// OnTick receives the elapsed duration every tick while running.
	OnTick func(elapsed time.Duration)
	// OnTransition receives a snapshot after every committed transition.
	OnTransition func(Snapshot)
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the wall clock. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Machine) { m.clock = clock }
}

// WithTickInterval overrides the 1-second tick cadence. Intended for tests.
func WithTickInterval(d time.Duration) Option {
	return func(m *Machine) { m.tickInterval = d }
}

// WithDebugLog routes transition diagnostics into the shared forensic ring.
func WithDebugLog(debug *status.DebugLog) Option {
	return func(m *Machine) { m.debug = debug }
}

// NewMachine creates an idle machine over the given persistence gateway.
func NewMachine(gw Gateway, opts ...Option) *Machine {
	m := &Machine{
		gw:           gw,
		clock:        time.Now,
		debug:        status.NewDebugLog(0),
		state:        StateIdle,
		tickInterval: time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns the current state and elapsed work time.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		State:     m.state,
		SessionID: m.sessionID,
		StartedAt: m.startAnchor,
		Elapsed:   m.elapsedLocked(),
	}
}

func (m *Machine) elapsedLocked() time.Duration {
	switch m.state {
	case StateRunning:
		return m.clock().Sub(m.startAnchor)
	case StatePaused:
		return m.pausedAt.Sub(m.startAnchor)
	default:
		return 0
	}
}

// Start opens a new session and moves to RUNNING. No-op unless IDLE.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return nil
	}

	now := m.clock()
	sessionID, err := m.gw.CreateSession(ctx, now)
	if err != nil {
		m.fail("start", err)
		return err
	}

	m.state = StateRunning
	m.sessionID = sessionID
	m.startAnchor = now
	m.pausedAt = time.Time{}
	m.startTickLocked()

	m.debug.Append(status.CategoryAction, "session started", "")
	log.Info().Int64("sessionId", sessionID).Msg("Timer started")
	m.emitLocked()
	return nil
}

// Pause opens a pause row and moves to PAUSED. No-op unless RUNNING.
func (m *Machine) Pause(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRunning {
		return nil
	}

	now := m.clock()
	if _, err := m.gw.AddPause(ctx, m.sessionID, now); err != nil {
		m.fail("pause", err)
		return err
	}

	m.stopTickLocked()
	m.state = StatePaused
	m.pausedAt = now

	m.debug.Append(status.CategoryAction, "session paused", "")
	log.Info().Int64("sessionId", m.sessionID).Msg("Timer paused")
	m.emitLocked()
	return nil
}

// Resume closes the active pause, shifts the elapsed anchor forward by the
// pause duration, and moves back to RUNNING. No-op unless PAUSED. Any
// dangling pauses left open by a missed resume in a prior process lifetime
// are closed first.
func (m *Machine) Resume(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePaused {
		return nil
	}

	now := m.clock()

	active, err := m.gw.GetActivePause(ctx, m.sessionID)
	if err != nil {
		m.fail("resume", err)
		return err
	}
	if active != nil {
		if err := m.gw.EndPause(ctx, active.ID, now); err != nil {
			m.fail("resume", err)
			return err
		}
	}
	if _, err := m.gw.CloseDangling(ctx, m.sessionID, now); err != nil {
		m.fail("resume", err)
		return err
	}
	if err := m.gw.ResumeSession(ctx, m.sessionID); err != nil {
		m.fail("resume", err)
		return err
	}

	pauseDuration := now.Sub(m.pausedAt)
	m.startAnchor = m.startAnchor.Add(pauseDuration)
	m.state = StateRunning
	m.pausedAt = time.Time{}
	m.startTickLocked()

	m.debug.Append(status.CategoryAction, "session resumed", "pause="+pauseDuration.Round(time.Second).String())
	log.Info().Int64("sessionId", m.sessionID).Dur("pause", pauseDuration).Msg("Timer resumed")
	m.emitLocked()
	return nil
}

// Stop closes the session and returns to IDLE. Valid from RUNNING or PAUSED;
// no-op when IDLE. An active pause is force-closed at the stop time so no
// unterminated pause row survives the session.
func (m *Machine) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateIdle {
		return nil
	}

	now := m.clock()

	if _, err := m.gw.CloseDangling(ctx, m.sessionID, now); err != nil {
		m.fail("stop", err)
		return err
	}
	if err := m.gw.StopSession(ctx, m.sessionID, now); err != nil {
		m.fail("stop", err)
		return err
	}

	m.stopTickLocked()
	stopped := m.sessionID
	m.state = StateIdle
	m.sessionID = 0
	m.startAnchor = time.Time{}
	m.pausedAt = time.Time{}

	m.debug.Append(status.CategoryAction, "session stopped", "")
	log.Info().Int64("sessionId", stopped).Msg("Timer stopped")
	m.emitLocked()
	return nil
}

// Reconcile applies the cold-start policy to any open session left in the
// store by an uncommanded process death. Call once at startup, before the
// observation sources begin delivering.
func (m *Machine) Reconcile(ctx context.Context, policy ColdStartPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	open, err := m.gw.GetOpenSession(ctx)
	if err != nil {
		return err
	}
	if open == nil {
		return nil
	}

	if policy != AdoptOpen {
		m.debug.Append(status.CategoryWarning, "orphaned open session left as-is", open.Date)
		log.Warn().Int64("sessionId", open.ID).Str("date", open.Date).Msg("Open session found at startup, leaving orphaned")
		return nil
	}

	now := m.clock()
	if _, err := m.gw.CloseDangling(ctx, open.ID, now); err != nil {
		return err
	}
	pauseTotal, err := m.gw.TotalPauseDuration(ctx, open.ID)
	if err != nil {
		return err
	}

	m.state = StateRunning
	m.sessionID = open.ID
	// Recomputed from the persisted rows, not restored from a snapshot.
	m.startAnchor = open.StartTime().Add(pauseTotal)
	m.pausedAt = time.Time{}
	m.startTickLocked()

	m.debug.Append(status.CategorySync, "adopted open session", open.Date)
	log.Info().Int64("sessionId", open.ID).Msg("Adopted open session at startup")
	m.emitLocked()
	return nil
}

// Close cancels any running tick loop. The machine is not usable afterwards.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTickLocked()
}

// startTickLocked (re)starts the elapsed tick loop, cancelling any prior one
// first so loops never overlap.
func (m *Machine) startTickLocked() {
	m.stopTickLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.tickCancel = cancel
	m.tickDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.mu.Lock()
				if m.state != StateRunning {
					m.mu.Unlock()
					return
				}
				elapsed := m.clock().Sub(m.startAnchor)
				onTick := m.OnTick
				m.mu.Unlock()
				if onTick != nil {
					onTick(elapsed)
				}
			}
		}
	}()
}

// stopTickLocked cancels the tick loop. A tick racing the cancellation
// re-checks the state under the lock, so no elapsed update is delivered after
// a pause or stop commits.
func (m *Machine) stopTickLocked() {
	if m.tickCancel == nil {
		return
	}
	m.tickCancel()
	m.tickCancel = nil
	m.tickDone = nil
}

func (m *Machine) emitLocked() {
	if m.OnTransition != nil {
		m.OnTransition(m.snapshotLocked())
	}
}

func (m *Machine) fail(op string, err error) {
	m.debug.Append(status.CategoryError, op+" failed", err.Error())
	log.Error().Err(err).Str("op", op).Msg("Timer transition failed, state unchanged")
}
