package server

import (
	"sync"
)

// Conn is a live client connection the registry can address.
type Conn interface {
	ID() string
	Queue(msg *ServerMessage) bool
}

// Registry tracks which connection currently speaks for each
// account. An account has at most one live connection; a later join
// overwrites an earlier one.
type Registry struct {
	mu    sync.Mutex
	users map[int]string  // account id -> connection id
	conns map[string]Conn // connection id -> connection
}

func NewRegistry() *Registry {
	return &Registry{
		users: make(map[int]string),
		conns: make(map[string]Conn),
	}
}

func (r *Registry) Join(accountId int, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[accountId] = conn.ID()
	r.conns[conn.ID()] = conn
}

// AddressOf returns the live connection for accountId. A false
// result means the account is offline, which callers treat as a
// skipped delivery rather than an error.
func (r *Registry) AddressOf(accountId int) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connId, ok := r.users[accountId]
	if !ok {
		return nil, false
	}

	conn, ok := r.conns[connId]
	return conn, ok
}

// Remove forgets connId. The account mapping is only cleared when
// it still points at connId: if the account reconnected before the
// old connection went away, the newer mapping stays intact.
func (r *Registry) Remove(connId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, connId)

	// Linear scan is fine at the connection counts this serves.
	for accountId, id := range r.users {
		if id == connId {
			delete(r.users, accountId)
			break
		}
	}
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns)
}
