package timer

import (
	"github.com/bandarsiri8/ubertimetracker/internal/db/sqlite"
)

// StoreGateway combines the sqlite session and pause stores into the Gateway
// the machine drives.
type StoreGateway struct {
	*sqlite.SessionStore
	*sqlite.PauseStore
}

// NewStoreGateway wires both stores over a shared connection.
func NewStoreGateway(store *sqlite.Store) *StoreGateway {
	return &StoreGateway{
		SessionStore: sqlite.NewSessionStore(store),
		PauseStore:   sqlite.NewPauseStore(store),
	}
}
