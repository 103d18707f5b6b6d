package server

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeConn is an addressable connection without a live websocket.
type fakeConn struct {
	id   string
	full bool

	mu   sync.Mutex
	msgs []*ServerMessage
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Queue(msg *ServerMessage) bool {
	if f.full {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return true
}

func (f *fakeConn) queued() []*ServerMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*ServerMessage(nil), f.msgs...)
}

func TestRegistryJoin_LastWriteWins(t *testing.T) {
	r := NewRegistry()
	c1 := &fakeConn{id: "sockA"}
	c2 := &fakeConn{id: "sockB"}

	r.Join(1, c1)
	conn, ok := r.AddressOf(1)
	assert.True(t, ok, "expected account 1 to be present")
	assert.Equal(t, c1, conn, "expected first connection to be recorded")

	r.Join(1, c2)
	conn, ok = r.AddressOf(1)
	assert.True(t, ok, "expected account 1 to be present after rejoin")
	assert.Equal(t, c2, conn, "expected later join to overwrite the earlier one")
}

func TestRegistryRemove(t *testing.T) {
	t.Run("removes current connection", func(t *testing.T) {
		r := NewRegistry()
		c := &fakeConn{id: "sockA"}

		r.Join(1, c)
		r.Remove("sockA")

		_, ok := r.AddressOf(1)
		assert.False(t, ok, "expected account 1 to be absent after remove")
		assert.Equal(t, 0, r.Count(), "expected no connections left")
	})

	t.Run("stale connection does not evict newer mapping", func(t *testing.T) {
		r := NewRegistry()
		c1 := &fakeConn{id: "sockA"}
		c2 := &fakeConn{id: "sockB"}

		r.Join(1, c1)
		r.Join(1, c2)
		r.Remove("sockA")

		conn, ok := r.AddressOf(1)
		assert.True(t, ok, "expected account 1 to still be present")
		assert.Equal(t, c2, conn, "expected the newer connection to survive")
	})

	t.Run("unknown connection is a no-op", func(t *testing.T) {
		r := NewRegistry()
		c := &fakeConn{id: "sockA"}

		r.Join(1, c)
		r.Remove("sockZ")

		conn, ok := r.AddressOf(1)
		assert.True(t, ok, "expected account 1 to still be present")
		assert.Equal(t, c, conn, "expected the existing entry to be untouched")
	})
}

func TestRegistryAddressOf_Absent(t *testing.T) {
	r := NewRegistry()

	conn, ok := r.AddressOf(42)
	assert.False(t, ok, "expected unknown account to be absent")
	assert.Nil(t, conn, "expected no connection for unknown account")
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(accountId int) {
			defer wg.Done()
			connId := "sock" + strconv.Itoa(accountId)
			r.Join(accountId, &fakeConn{id: connId})
			r.AddressOf(accountId)
			r.Remove(connId)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Count(), "expected registry to be empty after all removals")
}
