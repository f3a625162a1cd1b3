package sse

import (
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndRemoveClient(t *testing.T) {
	b := NewBroadcaster()
	rec := httptest.NewRecorder()

	client, err := b.AddClient(rec)
	require.NoError(t, err)
	assert.NotEmpty(t, client.ID)
	assert.Equal(t, 1, b.ClientCount())

	b.RemoveClient(client)
	assert.Equal(t, 0, b.ClientCount())

	// Removing twice must not panic or double-close Done.
	b.RemoveClient(client)
	assert.Equal(t, 0, b.ClientCount())
}

func TestBroadcastDeliversFrame(t *testing.T) {
	b := NewBroadcaster()
	rec := httptest.NewRecorder()

	client, err := b.AddClient(rec)
	require.NoError(t, err)
	defer b.RemoveClient(client)

	b.Broadcast(Event{Type: "status", Payload: map[string]string{"status": "online"}})

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "data: "))
	require.True(t, strings.HasSuffix(body, "\n\n"))

	var event Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(body, "data: "))), &event))
	assert.Equal(t, "status", event.Type)
}

func TestBroadcastToNoClients(t *testing.T) {
	b := NewBroadcaster()
	b.Broadcast(Event{Type: "timer", Payload: nil})
	assert.Equal(t, 0, b.ClientCount())
}

func TestBroadcastSkipsRemovedClient(t *testing.T) {
	b := NewBroadcaster()
	rec := httptest.NewRecorder()

	client, err := b.AddClient(rec)
	require.NoError(t, err)
	b.RemoveClient(client)

	b.Broadcast(Event{Type: "status", Payload: nil})
	assert.Empty(t, rec.Body.String())
}
