/*
Package presence tracks which users currently hold a live connection.

The Registry maps a user id to the connection currently representing that user.
It only holds references: opening, closing and writing to connections belong to
the transport layer. A newer connection for the same user replaces the older one
(last connect wins), and removing a connection only deletes the entry if that
connection still owns it, so a late disconnect of a superseded connection never
evicts its replacement.
*/
package presence

import (
	"slices"
	"sync"
)

// Conn is a live connection the registry can point at. Implementations must be
// comparable (pointer types in practice) since they key the reverse index.
// Send must not block; it queues data for delivery and reports when it cannot.
type Conn interface {
	Send(data []byte) error
}

// Registry is a concurrency-safe map from user id to Conn.
// All methods hold the lock only for map operations, never for I/O.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]Conn
	owners map[Conn]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]Conn),
		owners: make(map[Conn]string),
	}
}

// Register makes conn the live connection of userID and returns the connection it
// replaced, if any. The replaced connection is left open.
func (r *Registry) Register(userID string, conn Conn) (replaced Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if oldID, ok := r.owners[conn]; ok && oldID != userID {
		delete(r.conns, oldID)
	}

	prev, ok := r.conns[userID]
	if ok {
		delete(r.owners, prev)
	}

	r.conns[userID] = conn
	r.owners[conn] = userID

	if ok && prev != conn {
		return prev
	}
	return nil
}

// Unregister removes the entry currently owned by conn and returns its user id.
// It is a no-op, reporting false, when conn owns no entry.
func (r *Registry) Unregister(conn Conn) (userID string, removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.owners[conn]
	if !ok {
		return "", false
	}

	delete(r.owners, conn)
	delete(r.conns, id)
	return id, true
}

// Lookup returns the live connection of userID.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[userID]
	return c, ok
}

// Snapshot returns the ids of all registered users, sorted. The slice is a copy.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
