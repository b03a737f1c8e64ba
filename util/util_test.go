package util

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomicBoolSetOnce(t *testing.T) {
	var b AtomicBool
	assert.False(t, b.IsSet())
	assert.True(t, b.SetOnce())
	assert.False(t, b.SetOnce())
	assert.True(t, b.IsSet())
}

func TestTemporaryErr(t *testing.T) {
	assert.True(t, TemporaryErr(syscall.EINTR))
	assert.True(t, TemporaryErr(fmt.Errorf("wait: %w", syscall.EAGAIN)))
	assert.False(t, TemporaryErr(syscall.EBADF))
	assert.False(t, TemporaryErr(errors.New("plain")))
	assert.False(t, TemporaryErr(nil))
}
