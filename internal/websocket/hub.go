// Package websocket pushes portal events to every open browser tab so a
// session expiry in one tab sends all of them back to the landing page.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"marketplace-portal/internal/event"
)

type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	connected  atomic.Int64

	bus event.Bus
}

func NewHub(bus event.Bus) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		bus:        bus,
	}
}

// Navigate asks every connected tab to load target.
func (h *Hub) Navigate(_ context.Context, target string) {
	h.bus.Publish(event.New(event.TypeNavigate, event.NavigatePayload{Target: target}))
}

// Connected reports how many tabs are registered.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

// Run relays bus events to clients until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.connected.Add(1)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			message, err := json.Marshal(e)
			if err != nil {
				slog.Error("failed to marshal event", "error", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.connected.Add(-1)
}
