package terminal

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDriver_StartReadsSizeFirst verifies the size query precedes raw mode
func TestDriver_StartReadsSizeFirst(t *testing.T) {
	b := newFakeBackend()
	d := NewDriver(b)

	require.NoError(t, d.Start())
	require.NoError(t, d.Start())

	assert.Equal(t, []string{"size", "init"}, b.calls)
	w, h := d.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)
}

// TestDriver_SizeFailureAborts verifies raw mode is never entered without a size
func TestDriver_SizeFailureAborts(t *testing.T) {
	b := newFakeBackend()
	b.sizeErr = errors.New("no winsize")
	d := NewDriver(b)

	err := d.Start()
	assert.ErrorContains(t, err, "terminal size")
	assert.Equal(t, 0, b.inits)

	// Nothing to restore
	require.NoError(t, d.Cleanup())
	assert.Equal(t, 0, b.finis)
}

// TestDriver_InitFailure verifies a rejected mode change surfaces ErrNotTerminal
func TestDriver_InitFailure(t *testing.T) {
	b := newFakeBackend()
	b.initErr = ErrNotTerminal
	d := NewDriver(b)

	assert.ErrorIs(t, d.Start(), ErrNotTerminal)
	require.NoError(t, d.Cleanup())
	assert.False(t, d.Restored())
}

// TestDriver_CleanupOnce verifies attributes are restored exactly once
func TestDriver_CleanupOnce(t *testing.T) {
	b := newFakeBackend()
	d := NewDriver(b)
	require.NoError(t, d.Start())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Cleanup()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, b.finis)
	assert.True(t, d.Restored())
	assert.Equal(t, LineBreak, b.output())
}

// TestDriver_EmitIsAtomic verifies each emission reaches the backend as one write
func TestDriver_EmitIsAtomic(t *testing.T) {
	b := newFakeBackend()
	d := NewDriver(b)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(c byte) {
			defer wg.Done()
			d.Emit(bytes.Repeat([]byte{c}, 64))
		}('a' + byte(i))
	}
	wg.Wait()

	require.Len(t, b.writes, 16)
	for _, w := range b.writes {
		assert.Equal(t, strings.Repeat(string(w[0]), 64), string(w))
	}
}

// TestEmergencyReset verifies the reset sequences are written
func TestEmergencyReset(t *testing.T) {
	var buf bytes.Buffer
	EmergencyReset(&buf)
	assert.Equal(t, "\x1b[0m\x1b[?25h\r\n", buf.String())
}

// TestKeyName verifies control bytes are named and others shown in hex
func TestKeyName(t *testing.T) {
	assert.True(t, strings.HasPrefix(KeyName(0x1b), "0x1b"))
	assert.True(t, strings.HasPrefix(KeyName(0x01), "0x01"))
	assert.Equal(t, "0xff", KeyName(0xff))
}
