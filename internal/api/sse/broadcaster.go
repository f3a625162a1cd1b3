// Package sse streams status and timer changes to local UI clients over
// Server-Sent Events.
package sse

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WriteTimeout bounds a single client write so one stale connection cannot
// stall a broadcast.
const WriteTimeout = 2 * time.Second

// Event is one broadcast frame. Type names the change ("status", "timer",
// "settings"); Payload is the serialized state after the change.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is one connected event-stream consumer.
type Client struct {
	ID      string
	Writer  http.ResponseWriter
	Flusher http.Flusher
	Done    chan struct{}
}

// Broadcaster fans events out to every connected client. Writes are
// concurrent per client; a client that errors or exceeds WriteTimeout is
// dropped.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[string]*Client)}
}

// AddClient registers the response writer as a stream consumer.
func (b *Broadcaster) AddClient(w http.ResponseWriter) (*Client, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	client := &Client{
		ID:      uuid.NewString(),
		Writer:  w,
		Flusher: flusher,
		Done:    make(chan struct{}),
	}

	b.mu.Lock()
	b.clients[client.ID] = client
	total := len(b.clients)
	b.mu.Unlock()

	log.Debug().Str("clientId", client.ID).Int("totalClients", total).Msg("Event stream client connected")
	return client, nil
}

// RemoveClient deregisters the client and unblocks its handler.
func (b *Broadcaster) RemoveClient(client *Client) {
	b.mu.Lock()
	if _, ok := b.clients[client.ID]; ok {
		delete(b.clients, client.ID)
		select {
		case <-client.Done:
		default:
			close(client.Done)
		}
	}
	total := len(b.clients)
	b.mu.Unlock()

	log.Debug().Str("clientId", client.ID).Int("totalClients", total).Msg("Event stream client disconnected")
}

// Broadcast delivers the event to all connected clients.
func (b *Broadcaster) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event")
		return
	}
	frame := fmt.Sprintf("data: %s\n\n", data)

	b.mu.RLock()
	clients := make([]*Client, 0, len(b.clients))
	for _, client := range b.clients {
		clients = append(clients, client)
	}
	b.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	dead := make(chan *Client, len(clients))
	var wg sync.WaitGroup
	for _, client := range clients {
		select {
		case <-client.Done:
			continue
		default:
		}
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			b.write(c, frame, dead)
		}(client)
	}
	wg.Wait()
	close(dead)

	for client := range dead {
		b.RemoveClient(client)
	}
}

// write delivers one frame to one client under WriteTimeout.
func (b *Broadcaster) write(client *Client, frame string, dead chan<- *Client) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := client.Writer.Write([]byte(frame)); err != nil {
			log.Debug().Str("clientId", client.ID).Err(err).Msg("Event stream write failed")
			dead <- client
			return
		}
		client.Flusher.Flush()
	}()

	select {
	case <-done:
	case <-time.After(WriteTimeout):
		log.Warn().Str("clientId", client.ID).Msg("Event stream write timed out")
		dead <- client
	case <-client.Done:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Handle serves one event-stream connection until the client disconnects.
func (b *Broadcaster) Handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client, err := b.AddClient(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer b.RemoveClient(client)

	fmt.Fprintf(w, "data: {\"type\":\"connected\",\"payload\":{\"clientId\":%q}}\n\n", client.ID)
	client.Flusher.Flush()

	select {
	case <-r.Context().Done():
	case <-client.Done:
	}
}
