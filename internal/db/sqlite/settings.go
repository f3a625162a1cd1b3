package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// SettingsStore provides access to the singleton settings row and a
// subscription stream so long-lived components (the bridge, the API) observe
// setting flips without polling.
type SettingsStore struct {
	store *Store

	subMu sync.Mutex
	subs  []chan models.AppSettings
}

// NewSettingsStore creates a new settings store.
func NewSettingsStore(store *Store) *SettingsStore {
	return &SettingsStore{store: store}
}

// Get returns the settings row, lazily inserting the defaults when absent.
func (s *SettingsStore) Get(ctx context.Context) (*models.AppSettings, error) {
	settings, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	def := models.DefaultSettings()
	_, err = s.store.ExecContext(ctx, `
		INSERT OR IGNORE INTO settings
		(id, dark_mode, auto_sync_enabled, offline_cache_enabled, cloud_sync_enabled, notifications_enabled, language)
		VALUES (1, ?, ?, ?, ?, ?, ?)`,
		def.DarkMode, def.AutoSyncEnabled, def.OfflineCacheEnabled,
		def.CloudSyncEnabled, def.NotificationsEnabled, def.Language,
	)
	if err != nil {
		return nil, err
	}
	return s.read(ctx)
}

func (s *SettingsStore) read(ctx context.Context) (*models.AppSettings, error) {
	row := s.store.QueryRowContext(ctx, `
		SELECT id, dark_mode, auto_sync_enabled, offline_cache_enabled,
		       cloud_sync_enabled, notifications_enabled, language
		FROM settings WHERE id = 1`)

	var settings models.AppSettings
	err := row.Scan(
		&settings.ID, &settings.DarkMode, &settings.AutoSyncEnabled,
		&settings.OfflineCacheEnabled, &settings.CloudSyncEnabled,
		&settings.NotificationsEnabled, &settings.Language,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Subscribe returns a channel receiving the full settings row after every
// update. The channel is buffered; a slow subscriber misses intermediate
// values, never blocks writers.
func (s *SettingsStore) Subscribe() <-chan models.AppSettings {
	ch := make(chan models.AppSettings, 4)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *SettingsStore) notify(ctx context.Context) {
	settings, err := s.read(ctx)
	if err != nil || settings == nil {
		return
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- *settings:
		default:
		}
	}
}

// updateField ensures the row exists, applies the single-field update, and
// notifies subscribers.
func (s *SettingsStore) updateField(ctx context.Context, query string, value interface{}) error {
	if _, err := s.Get(ctx); err != nil {
		return err
	}
	if _, err := s.store.ExecContext(ctx, query, value); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// UpdateAutoSync toggles whether status changes drive timer transitions.
func (s *SettingsStore) UpdateAutoSync(ctx context.Context, enabled bool) error {
	return s.updateField(ctx, `UPDATE settings SET auto_sync_enabled = ? WHERE id = 1`, enabled)
}

// UpdateCloudSync toggles timesheet upload on stop.
func (s *SettingsStore) UpdateCloudSync(ctx context.Context, enabled bool) error {
	return s.updateField(ctx, `UPDATE settings SET cloud_sync_enabled = ? WHERE id = 1`, enabled)
}

// UpdateOfflineCache toggles the offline cache.
func (s *SettingsStore) UpdateOfflineCache(ctx context.Context, enabled bool) error {
	return s.updateField(ctx, `UPDATE settings SET offline_cache_enabled = ? WHERE id = 1`, enabled)
}

// UpdateNotifications toggles notification delivery.
func (s *SettingsStore) UpdateNotifications(ctx context.Context, enabled bool) error {
	return s.updateField(ctx, `UPDATE settings SET notifications_enabled = ? WHERE id = 1`, enabled)
}

// UpdateLanguage sets the preferred display language.
func (s *SettingsStore) UpdateLanguage(ctx context.Context, language string) error {
	return s.updateField(ctx, `UPDATE settings SET language = ? WHERE id = 1`, language)
}

// UpdateDarkMode sets the tri-state theme preference (nil follows system).
func (s *SettingsStore) UpdateDarkMode(ctx context.Context, darkMode *bool) error {
	var value sql.NullBool
	if darkMode != nil {
		value = sql.NullBool{Bool: *darkMode, Valid: true}
	}
	return s.updateField(ctx, `UPDATE settings SET dark_mode = ? WHERE id = 1`, value)
}
