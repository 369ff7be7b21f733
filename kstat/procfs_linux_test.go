//go:build linux

package kstat

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPages verifies meminfo kB values become pages
func TestPages(t *testing.T) {
	h, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer h.Close()

	p, err := h.Pages()
	require.NoError(t, err)
	assert.Equal(t, uint64(16384*1024/fixturePageSize), p.Physmem)
	assert.Equal(t, uint64(8192*1024/fixturePageSize), p.Freemem)
	assert.Equal(t, uint64(12288*1024/fixturePageSize), p.Availrmem)
}

// TestSystemMisc verifies boot time and process count
func TestSystemMisc(t *testing.T) {
	h, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer h.Close()

	bt, err := h.BootTime()
	require.NoError(t, err)
	assert.Equal(t, uint64(1700000000), bt)

	n, err := h.NProc()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

// TestCPUMHz verifies the clock rate of the first processor
func TestCPUMHz(t *testing.T) {
	// cpuinfo layout is architecture specific; the fixture is x86
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "386" {
		t.Skip("x86 cpuinfo fixture")
	}
	h, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer h.Close()

	mhz, err := h.CPUMHz()
	require.NoError(t, err)
	assert.Equal(t, uint64(2400), mhz)

	k, err := h.Lookup(ModuleCPUInfo, 1, "cpu_info1")
	require.NoError(t, err)
	assert.Equal(t, 1, k.Instance)
}

// TestDiskIO verifies diskstats become I/O kstats of class disk
func TestDiskIO(t *testing.T) {
	h, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer h.Close()

	k, err := h.Lookup(ModuleDisk, -1, "sda")
	require.NoError(t, err)
	assert.Equal(t, ClassDisk, k.Class)

	io, ok := k.IO()
	require.True(t, ok)
	assert.Equal(t, uint64(2000*sectorSize), io.NRead)
	assert.Equal(t, uint64(4000*sectorSize), io.NWritten)
	assert.Equal(t, uint32(100), io.Reads)
	assert.Equal(t, uint32(200), io.Writes)

	_, ok = k.Uint64(StatC)
	assert.False(t, ok, "I/O kstats have no named values")
}
