package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/lunchorder/api/internal/events"
)

// dayEvent is an internal struct for routing events to one date's room
type dayEvent struct {
	Date  string
	Event events.Event
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Rooms are keyed by ordering date (YYYY-MM-DD): a client watching a day's
// order board receives every change to that day's orders.
type Hub struct {
	// Registered clients by date
	rooms map[string]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *dayEvent

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *dayEvent, 256),
	}
}

// Run starts the hub's main loop until ctx is done.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.date] == nil {
				h.rooms[client.date] = make(map[*Client]bool)
			}
			h.rooms[client.date][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.date]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.date)
					}
				}
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[ev.Date]

			// Marshal event to JSON once
			message, err := json.Marshal(ev.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[ev.Date], client)
					if len(h.rooms[ev.Date]) == 0 {
						delete(h.rooms, ev.Date)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish implements events.Publisher. The event goes to every client
// watching e.Date. It never blocks the caller past ctx.
func (h *Hub) Publish(ctx context.Context, e events.Event) error {
	select {
	case h.broadcast <- &dayEvent{Date: e.Date, Event: e}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Watchers returns how many clients are watching date.
func (h *Hub) Watchers(date string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[date])
}
