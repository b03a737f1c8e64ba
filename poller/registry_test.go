package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	r := newRegistry()
	h := Fd(3)

	require.NoError(t, r.insert(h, 3, NewEventMask(EventIn), "tag"))
	assert.ErrorIs(t, r.insert(h, 3, NewEventMask(EventOut), nil), ErrDuplicateRegistration)
	assert.Equal(t, 1, r.len())

	reg, err := r.lookupByHandle(h)
	require.NoError(t, err)
	assert.Equal(t, NewEventMask(EventIn), reg.Mask)

	byFd, ok := r.lookupByFd(3)
	require.True(t, ok)
	assert.Same(t, reg, byFd)

	require.NoError(t, r.updateMask(h, NewEventMask(EventOut)))
	require.NoError(t, r.updateTag(h, 42))
	reg, _ = r.lookupByHandle(h)
	assert.Equal(t, NewEventMask(EventOut), reg.Mask)
	assert.Equal(t, 42, reg.Tag)

	removed, owned, err := r.remove(h)
	require.NoError(t, err)
	assert.True(t, owned)
	assert.Equal(t, 3, removed.Fd)
	_, ok = r.lookupByFd(3)
	assert.False(t, ok)
	assert.Equal(t, 0, r.len())
}

func TestRegistryNotRegistered(t *testing.T) {
	r := newRegistry()
	_, err := r.lookupByHandle(Fd(1))
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.ErrorIs(t, r.updateMask(Fd(1), 0), ErrNotRegistered)
	assert.ErrorIs(t, r.updateTag(Fd(1), nil), ErrNotRegistered)
	_, _, err = r.remove(Fd(1))
	assert.ErrorIs(t, err, ErrNotRegistered)
	_, err = r.lookupByHandle([]int{1})
	assert.ErrorIs(t, err, ErrNotRegistered)
	_, ok := r.lookupByFd(1)
	assert.False(t, ok)
}

func TestRegistryAllIsSnapshot(t *testing.T) {
	r := newRegistry()
	require.NoError(t, r.insert(Fd(1), 1, 0, nil))
	require.NoError(t, r.insert(Fd(2), 2, 0, nil))

	regs := r.all()
	assert.Len(t, regs, 2)
	for _, reg := range regs {
		_, _, err := r.remove(reg.Handle)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, r.len())
	assert.Len(t, regs, 2)
}

func TestRegistryReusedDescriptor(t *testing.T) {
	r := newRegistry()
	require.NoError(t, r.insert("old", 5, NewEventMask(EventIn), nil))
	// "old" was closed without removal and the kernel reissued fd 5
	require.NoError(t, r.insert("new", 5, NewEventMask(EventOut), nil))

	regs := r.all()
	require.Len(t, regs, 1)
	assert.Equal(t, "new", regs[0].Handle)

	_, owned, err := r.remove("old")
	require.NoError(t, err)
	assert.False(t, owned)

	reg, ok := r.lookupByFd(5)
	require.True(t, ok)
	assert.Equal(t, "new", reg.Handle)
}
