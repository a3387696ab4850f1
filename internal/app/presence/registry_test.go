package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	name string
}

func (c *fakeConn) Send([]byte) error { return nil }

func TestRegisterLastConnectWins(t *testing.T) {
	r := NewRegistry()
	h1, h2 := &fakeConn{"h1"}, &fakeConn{"h2"}

	assert.Nil(t, r.Register("u1", h1))
	replaced := r.Register("u1", h2)
	assert.Same(t, h1, replaced)

	got, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, h2, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegisterSameConnTwice(t *testing.T) {
	r := NewRegistry()
	h := &fakeConn{"h"}

	r.Register("u1", h)
	assert.Nil(t, r.Register("u1", h))
}

func TestUnregisterStaleConnIsNoop(t *testing.T) {
	r := NewRegistry()
	h1, h2 := &fakeConn{"h1"}, &fakeConn{"h2"}

	r.Register("u1", h1)
	r.Register("u1", h2)

	id, removed := r.Unregister(h1)
	assert.False(t, removed)
	assert.Empty(t, id)

	got, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, h2, got)
}

func TestUnregisterCurrentConn(t *testing.T) {
	r := NewRegistry()
	h := &fakeConn{"h"}
	r.Register("u1", h)

	id, removed := r.Unregister(h)
	assert.True(t, removed)
	assert.Equal(t, "u1", id)

	_, ok := r.Lookup("u1")
	assert.False(t, ok)

	_, removed = r.Unregister(h)
	assert.False(t, removed)
}

func TestSnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register("b", &fakeConn{})
	r.Register("a", &fakeConn{})

	snap := r.Snapshot()
	assert.Equal(t, []string{"a", "b"}, snap)

	r.Register("c", &fakeConn{})
	snap[0] = "mutated"

	assert.Equal(t, []string{"a", "b", "c"}, r.Snapshot())
}

func TestSnapshotEmpty(t *testing.T) {
	snap := NewRegistry().Snapshot()
	require.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("u%d", i%10)
			c := &fakeConn{name: fmt.Sprint(i)}
			r.Register(id, c)
			r.Lookup(id)
			r.Snapshot()
			r.Unregister(c)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, r.Len(), 10)
}

func TestConnMovesToNewIdentity(t *testing.T) {
	r := NewRegistry()
	h := &fakeConn{"h"}

	r.Register("u1", h)
	r.Register("u2", h)

	_, ok := r.Lookup("u1")
	assert.False(t, ok)
	assert.Equal(t, []string{"u2"}, r.Snapshot())

	id, removed := r.Unregister(h)
	assert.True(t, removed)
	assert.Equal(t, "u2", id)
	assert.Zero(t, r.Len())
}
