/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package session implements the Session Registry (spec.md §4.2): per-lobby
// connections, broadcast, and a separate spectator pool. Structurally
// grounded on the teacher's celebrity.go Hub/Client pair — a client holds a
// buffered outbound channel drained by a writer goroutine, and broadcasts
// snapshot the client set before fanning out so a slow/closing client can't
// reenter the map mid-iteration.
package session

import (
	"sync"

	"github.com/Seednode/geoduel/internal/config"
)

// Conn is the minimal send/close surface the registry needs from a
// transport connection. internal/wsapi adapts *websocket.Conn to this.
type Conn interface {
	Send(v any) error
	Close(code int, reason string) error
}

// Client pairs a connection with the user id driving it, matching the
// teacher's Client{conn, send, playerID}.
type Client struct {
	UserID string
	Conn   Conn

	send chan any
	done chan struct{}
}

func newClient(userID string, conn Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		send:   make(chan any, 16),
		done:   make(chan struct{}),
	}
}

// run drains the send channel into the underlying connection until stop is
// called or a write fails. It is started by Registry.Attach.
func (c *Client) run(onWriteError func()) {
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.Conn.Send(msg); err != nil {
				onWriteError()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) enqueue(msg any) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) stop() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// lobbyPool holds the participant clients and spectator clients for one
// lobby.
type lobbyPool struct {
	clients    []*Client // ordered, per spec.md §4.2
	spectators []*Client
}

// Registry tracks open connections per lobby and per spectator channel, and
// provides broadcast primitives (spec.md §4.2).
type Registry struct {
	cfg *config.Config

	mu    sync.RWMutex
	pools map[string]*lobbyPool

	// OnEmpty is invoked (outside the lock) when a lobby's pool becomes
	// fully empty (no participants, no spectators), so the owning
	// component can schedule teardown (spec.md §4.2 "detach... schedule
	// lobby teardown").
	OnEmpty func(lobbyCode string)
}

func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{cfg: cfg, pools: make(map[string]*lobbyPool)}
}

func (r *Registry) poolLocked(lobbyCode string) *lobbyPool {
	p, ok := r.pools[lobbyCode]
	if !ok {
		p = &lobbyPool{}
		r.pools[lobbyCode] = p
	}
	return p
}

// Attach appends a new participant connection and starts its writer
// goroutine. It sends nothing itself: the caller (engine.OnPlayerJoin)
// broadcasts player_joined, newcomer included, after Attach returns.
func (r *Registry) Attach(lobbyCode, userID string, conn Conn) *Client {
	c := newClient(userID, conn)

	r.mu.Lock()
	p := r.poolLocked(lobbyCode)
	p.clients = append(p.clients, c)
	r.mu.Unlock()

	go c.run(func() { r.Detach(lobbyCode, c) })
	return c
}

// Detach removes a specific connection. If zero participant and spectator
// connections remain for the lobby, OnEmpty is invoked (spec.md §4.2).
func (r *Registry) Detach(lobbyCode string, c *Client) {
	r.mu.Lock()
	p, ok := r.pools[lobbyCode]
	if !ok {
		r.mu.Unlock()
		return
	}

	p.clients = removeClient(p.clients, c)
	p.spectators = removeClient(p.spectators, c)

	empty := len(p.clients) == 0 && len(p.spectators) == 0
	if empty {
		delete(r.pools, lobbyCode)
	}
	r.mu.Unlock()

	c.stop()

	if empty && r.OnEmpty != nil {
		r.OnEmpty(lobbyCode)
	}
}

func removeClient(list []*Client, target *Client) []*Client {
	out := list[:0]
	for _, c := range list {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

// Broadcast fans a payload out to every participant connection in the
// lobby. A client whose send buffer is full misses that one payload and
// stays attached; the drop is logged, never raised (spec.md §4.2).
func (r *Registry) Broadcast(lobbyCode string, payload any) {
	r.mu.RLock()
	p, ok := r.pools[lobbyCode]
	var clients []*Client
	if ok {
		clients = append(clients, p.clients...)
	}
	r.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(payload) {
			r.cfg.Logf("SESSION: dropped broadcast to %s in lobby %s (send buffer full)", c.UserID, lobbyCode)
		}
	}
}

// SendTo delivers a payload to a single connection (spec.md §4.2).
func (r *Registry) SendTo(c *Client, payload any) {
	if !c.enqueue(payload) {
		r.cfg.Logf("SESSION: dropped direct send to %s (send buffer full)", c.UserID)
	}
}

// Participants returns a snapshot of the currently attached participant
// clients for a lobby, in attach order.
func (r *Registry) Participants(lobbyCode string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[lobbyCode]
	if !ok {
		return nil
	}
	out := make([]*Client, len(p.clients))
	copy(out, p.clients)
	return out
}

// FindByUser returns the currently attached client for userID, if any.
func (r *Registry) FindByUser(lobbyCode, userID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[lobbyCode]
	if !ok {
		return nil
	}
	for _, c := range p.clients {
		if c.UserID == userID {
			return c
		}
	}
	return nil
}

// ReplaceConnection atomically swaps the live Conn for an existing client
// without removing it from the ordered participant list, so a reconnect
// (spec.md §4.4) does not look like a leave/rejoin to the rest of the
// registry.
func (r *Registry) ReplaceConnection(lobbyCode, userID string, conn Conn) *Client {
	r.mu.Lock()
	p, ok := r.pools[lobbyCode]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	for _, c := range p.clients {
		if c.UserID == userID {
			c.stop()
			fresh := newClient(userID, conn)
			for i, cc := range p.clients {
				if cc == c {
					p.clients[i] = fresh
				}
			}
			r.mu.Unlock()
			go fresh.run(func() { r.Detach(lobbyCode, fresh) })
			return fresh
		}
	}
	r.mu.Unlock()
	return nil
}

// SpectatorAttach registers a read-only observer connection (spec.md §4.2).
func (r *Registry) SpectatorAttach(lobbyCode string, conn Conn) *Client {
	c := newClient("", conn)

	r.mu.Lock()
	p := r.poolLocked(lobbyCode)
	p.spectators = append(p.spectators, c)
	r.mu.Unlock()

	go c.run(func() { r.Detach(lobbyCode, c) })
	return c
}

// SpectatorDetach removes a specific spectator connection.
func (r *Registry) SpectatorDetach(lobbyCode string, c *Client) {
	r.Detach(lobbyCode, c)
}

// BroadcastSpectators fans a payload out to every spectator of a lobby.
func (r *Registry) BroadcastSpectators(lobbyCode string, payload any) {
	r.mu.RLock()
	p, ok := r.pools[lobbyCode]
	var specs []*Client
	if ok {
		specs = append(specs, p.spectators...)
	}
	r.mu.RUnlock()

	for _, c := range specs {
		if !c.enqueue(payload) {
			r.cfg.Logf("SESSION: dropped spectator broadcast in lobby %s (send buffer full)", lobbyCode)
		}
	}
}

// HasAnyConnection reports whether any participant or spectator connection
// remains attached for a lobby — used to decide whether GameState may still
// exist (spec.md §3 invariant).
func (r *Registry) HasAnyConnection(lobbyCode string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[lobbyCode]
	if !ok {
		return false
	}
	return len(p.clients) > 0 || len(p.spectators) > 0
}
