package preview

import (
	"sync"

	"github.com/google/uuid"
)

// Event names sent to reload clients.
const (
	EventReload = "reload"
	EventError  = "error"
)

const clientBuffer = 8

// Message is a single server-sent event.
type Message struct {
	Event string
	Data  string
}

type client struct {
	id   string
	ch   chan Message
	done chan struct{}
}

// Subscription is the receiving end of one connected client.
type Subscription struct {
	ID string
	// Messages delivers the broadcast messages.
	Messages <-chan Message
	// Done is closed when the client is released or the hub closes.
	Done <-chan struct{}

	release func()
}

// Release disconnects the client.
func (s *Subscription) Release() {
	s.release()
}

// Hub fans messages out to the connected reload clients. Broadcasting never
// blocks: a client whose buffer is full misses the message.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	closed   bool
	onChange func(clients int)
}

// NewHub creates a Hub. onChange, if set, receives the client count after
// every connect and disconnect.
func NewHub(onChange func(clients int)) *Hub {
	return &Hub{clients: make(map[string]*client), onChange: onChange}
}

// Subscribe registers a new client. Release must be called when the client
// disconnects. ok is false once the hub is closed.
func (h *Hub) Subscribe() (sub *Subscription, ok bool) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, false
	}
	c := &client{id: uuid.NewString(), ch: make(chan Message, clientBuffer), done: make(chan struct{})}
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	h.changed(count)
	return &Subscription{
		ID:       c.id,
		Messages: c.ch,
		Done:     c.done,
		release:  func() { h.remove(c.id) },
	}, true
}

// Broadcast queues msg for every connected client.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for _, c := range h.clients {
		select {
		case c.ch <- msg:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		close(c.done)
	}
	h.changed(0)
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.done)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.changed(count)
	}
}

func (h *Hub) changed(count int) {
	if h.onChange != nil {
		h.onChange(count)
	}
}
