// Package models contains domain models for ubertimetracker.
package models

import "time"

// Status is the tri-state online/offline signal inferred from driver-app text.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	// StatusUnknown is the classifier's no-match result. It is filtered before
	// it can reach the aggregator's change stream.
	StatusUnknown Status = "unknown"
)

// Valid reports whether s is one of the three defined statuses.
func (s Status) Valid() bool {
	return s == StatusOnline || s == StatusOffline || s == StatusUnknown
}

// Display returns the human-readable status readout shown on dashboards.
func (s Status) Display() string {
	switch s {
	case StatusOnline:
		return "🟢 Online"
	case StatusOffline:
		return "🔴 Offline"
	default:
		return "⚪ Unknown"
	}
}

// Source identifies which observation channel produced a status observation.
type Source string

const (
	SourceScreen       Source = "screen"
	SourceNotification Source = "notification"
)

// Observation is a single classified reading from one observation channel.
// Observations are ephemeral: consumed by the aggregator, never persisted.
type Observation struct {
	Source    Source    `json:"source"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ChangeEvent is a committed canonical status change emitted by the aggregator.
type ChangeEvent struct {
	Status    Status    `json:"status"`
	Source    Source    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}
