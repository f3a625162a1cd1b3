package models

import "database/sql"

// AppSettings is the singleton settings row (id = 1), lazily created on
// first access. DarkMode is tri-state: null follows the system theme.
type AppSettings struct {
	ID                   int64        `db:"id" json:"id"`
	DarkMode             sql.NullBool `db:"dark_mode" json:"dark_mode,omitempty"`
	AutoSyncEnabled      bool         `db:"auto_sync_enabled" json:"auto_sync_enabled"`
	OfflineCacheEnabled  bool         `db:"offline_cache_enabled" json:"offline_cache_enabled"`
	CloudSyncEnabled     bool         `db:"cloud_sync_enabled" json:"cloud_sync_enabled"`
	NotificationsEnabled bool         `db:"notifications_enabled" json:"notifications_enabled"`
	Language             string       `db:"language" json:"language"`
}

// DefaultSettings returns the settings written on first access.
func DefaultSettings() *AppSettings {
	return &AppSettings{
		ID:                   1,
		AutoSyncEnabled:      true,
		OfflineCacheEnabled:  true,
		CloudSyncEnabled:     false,
		NotificationsEnabled: true,
		Language:             "en",
	}
}
