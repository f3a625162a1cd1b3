// Package bridge drives the timer state machine from the canonical
// online/offline status stream.
package bridge

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bandarsiri8/ubertimetracker/internal/timer"
	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// OfflinePolicy selects what an OFFLINE transition does to the timer.
type OfflinePolicy string

const (
	// PauseOnOffline pauses the running session; a later ONLINE resumes it.
	// Suits a driver who toggles availability during the shift.
	PauseOnOffline OfflinePolicy = "pause"
	// StopOnOffline closes the session outright and, when cloud sync is
	// enabled, kicks off the month export and upload in the background.
	StopOnOffline OfflinePolicy = "stop"
)

// Valid reports whether the policy is a known value.
func (p OfflinePolicy) Valid() bool {
	return p == PauseOnOffline || p == StopOnOffline
}

// SettingsSource is the live settings feed the bridge gates on. Implemented
// by sqlite.SettingsStore.
type SettingsSource interface {
	Get(ctx context.Context) (*models.AppSettings, error)
	Subscribe() <-chan models.AppSettings
}

// Bridge consumes committed status changes and translates them into timer
// transitions. ONLINE starts an idle timer or resumes a paused one; OFFLINE
// acts per the configured policy. The aggregator never emits UNKNOWN, so the
// bridge has no third branch.
//
// Transitions only fire while the auto-sync setting is enabled; the setting
// is observed live, so flipping it takes effect on the next event.
type Bridge struct {
	machine  *timer.Machine
	policy   OfflinePolicy
	settings SettingsSource

	// AfterStop runs in the background after a policy-driven stop when cloud
	// sync is enabled. Failures are logged, never propagated.
	AfterStop func(ctx context.Context, stoppedAt time.Time) error
}

// New creates a bridge over the machine with the given offline policy.
func New(machine *timer.Machine, policy OfflinePolicy, settings SettingsSource) *Bridge {
	if !policy.Valid() {
		policy = PauseOnOffline
	}
	return &Bridge{machine: machine, policy: policy, settings: settings}
}

// Run consumes the event stream until ctx is cancelled or the stream closes.
// Intended to run on its own goroutine.
func (b *Bridge) Run(ctx context.Context, events <-chan models.ChangeEvent) error {
	current, err := b.settings.Get(ctx)
	if err != nil {
		return err
	}
	autoSync := current.AutoSyncEnabled
	cloudSync := current.CloudSyncEnabled
	updates := b.settings.Subscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case settings := <-updates:
			autoSync = settings.AutoSyncEnabled
			cloudSync = settings.CloudSyncEnabled
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !autoSync {
				log.Debug().Str("status", string(event.Status)).Msg("Auto-sync disabled, status change ignored")
				continue
			}
			b.Apply(ctx, event, cloudSync)
		}
	}
}

// Apply translates one committed status change into a timer transition.
// Timer errors are logged and swallowed: the machine already refused to
// advance, and the next event retries naturally.
func (b *Bridge) Apply(ctx context.Context, event models.ChangeEvent, cloudSync bool) {
	switch event.Status {
	case models.StatusOnline:
		b.applyOnline(ctx)
	case models.StatusOffline:
		b.applyOffline(ctx, event, cloudSync)
	}
}

func (b *Bridge) applyOnline(ctx context.Context) {
	var err error
	switch b.machine.Snapshot().State {
	case timer.StateIdle:
		err = b.machine.Start(ctx)
	case timer.StatePaused:
		err = b.machine.Resume(ctx)
	}
	if err != nil {
		log.Error().Err(err).Msg("Online transition failed")
	}
}

func (b *Bridge) applyOffline(ctx context.Context, event models.ChangeEvent, cloudSync bool) {
	switch b.policy {
	case StopOnOffline:
		wasTracking := b.machine.Snapshot().State != timer.StateIdle
		if err := b.machine.Stop(ctx); err != nil {
			log.Error().Err(err).Msg("Offline stop failed")
			return
		}
		if wasTracking && cloudSync && b.AfterStop != nil {
			go func() {
				if err := b.AfterStop(context.Background(), event.Timestamp); err != nil {
					log.Error().Err(err).Msg("Post-stop sync failed")
				}
			}()
		}
	default:
		if err := b.machine.Pause(ctx); err != nil {
			log.Error().Err(err).Msg("Offline pause failed")
		}
	}
}
