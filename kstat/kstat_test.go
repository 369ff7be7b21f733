package kstat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePageSize = 4096

const arcstatsFixture = `13 1 0x01 3 816 5103283745 1380438391483
name                            type data
c                               4    1073741824
c_min                           4    33554432
c_max                           4    4294967296
`

const meminfoFixture = `MemTotal:       16384 kB
MemFree:         8192 kB
MemAvailable:   12288 kB
Buffers:          100 kB
Cached:           200 kB
`

const statFixture = `cpu  10 0 20 300 4 0 1 0 0 0
cpu0 10 0 20 300 4 0 1 0 0 0
intr 0
ctxt 100
btime 1700000000
processes 42
procs_running 1
procs_blocked 0
softirq 0 0 0 0 0 0 0 0 0 0 0
`

const cpuinfoFixture = `processor	: 0
vendor_id	: GenuineIntel
cpu MHz		: 2400.000

processor	: 1
vendor_id	: GenuineIntel
cpu MHz		: 2400.000
`

const diskstatsFixture = `   8       0 sda 100 0 2000 50 200 0 4000 60 0 70 110
`

// writeFixture builds a minimal proc/sys tree and returns options pointing at it
func writeFixture(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	proc := filepath.Join(root, "proc")
	sys := filepath.Join(root, "sys")

	files := map[string]string{
		"spl/kstat/zfs/arcstats": arcstatsFixture,
		"meminfo":                meminfoFixture,
		"stat":                   statFixture,
		"cpuinfo":                cpuinfoFixture,
		"diskstats":              diskstatsFixture,
	}
	for name, content := range files {
		path := filepath.Join(proc, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	for _, pid := range []string{"1", "2", "3"} {
		require.NoError(t, os.MkdirAll(filepath.Join(proc, pid), 0o755))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(sys, "block"), 0o755))

	return Options{ProcRoot: proc, SysRoot: sys, PageSize: fixturePageSize}
}

// TestOpen_MissingRoot verifies a nonexistent source is rejected up front
func TestOpen_MissingRoot(t *testing.T) {
	_, err := Open(Options{ProcRoot: filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)
}

// TestOpen_EmptyRoot verifies a source with nothing readable fails to open
func TestOpen_EmptyRoot(t *testing.T) {
	_, err := Open(Options{ProcRoot: t.TempDir(), SysRoot: t.TempDir()})
	assert.Error(t, err)
}

// TestSPL_Arcstats verifies named values parsed from the SPL text format
func TestSPL_Arcstats(t *testing.T) {
	h, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer h.Close()

	k, err := h.Lookup(ModuleZFS, 0, NameArcstats)
	require.NoError(t, err)
	assert.Equal(t, KindNamed, k.Kind)

	c, ok := k.Uint64(StatC)
	require.True(t, ok)
	assert.Equal(t, uint64(1073741824), c)

	cmax, ok := k.Uint64(StatCMax)
	require.True(t, ok)
	assert.Equal(t, uint64(4294967296), cmax)

	_, ok = k.Uint64("no_such_stat")
	assert.False(t, ok)
}

// TestLookup_NotFound verifies unknown names return ErrNotFound
func TestLookup_NotFound(t *testing.T) {
	h, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Lookup("nope", -1, "nothing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.Uint64(ModuleZFS, 0, NameArcstats, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestUpdate_InvalidatesOldKstats verifies a kstat from a prior snapshot reads as stale
func TestUpdate_InvalidatesOldKstats(t *testing.T) {
	h, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer h.Close()

	old, err := h.Lookup(ModuleZFS, 0, NameArcstats)
	require.NoError(t, err)
	require.True(t, old.Valid())

	require.NoError(t, h.Update())

	assert.False(t, old.Valid())
	_, ok := old.Uint64(StatC)
	assert.False(t, ok)
	_, err = old.Data()
	assert.ErrorIs(t, err, ErrStale)

	fresh, err := h.Lookup(ModuleZFS, 0, NameArcstats)
	require.NoError(t, err)
	assert.True(t, fresh.Valid())
}

// TestUpdate_SeesNewValues verifies Update rereads the source
func TestUpdate_SeesNewValues(t *testing.T) {
	opts := writeFixture(t)
	h, err := Open(opts)
	require.NoError(t, err)
	defer h.Close()

	updated := `13 1 0x01 1 272 5103283745 1380438391483
name                            type data
c                               4    2048
`
	path := filepath.Join(opts.ProcRoot, "spl", "kstat", "zfs", "arcstats")
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	require.NoError(t, h.Update())

	c, err := h.Uint64(ModuleZFS, 0, NameArcstats, StatC)
	require.NoError(t, err)
	assert.Equal(t, uint64(2048), c)
}

// TestClose_InvalidatesKstats verifies nothing survives Close
func TestClose_InvalidatesKstats(t *testing.T) {
	h, err := Open(writeFixture(t))
	require.NoError(t, err)

	k, err := h.Lookup(ModuleZFS, 0, NameArcstats)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	assert.False(t, k.Valid())
	_, err = h.Lookup(ModuleZFS, 0, NameArcstats)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestWidening verifies signed and 32-bit values convert with range checks
func TestWidening(t *testing.T) {
	h := &Handle{}
	h.gen.Store(1)
	k := &Kstat{
		Kind: KindNamed,
		gen:  1,
		h:    h,
		named: []Named{
			{Name: "neg32", Type: TypeInt32, Value: uint64(uint32(0xffffffff))},
			{Name: "u32", Type: TypeUint32, Value: 7},
			{Name: "big", Type: TypeUint64, Value: 1 << 63},
			{Name: "label", Type: TypeChar, Str: "x"},
		},
	}

	v32, ok := k.Int32("neg32")
	require.True(t, ok)
	assert.Equal(t, int32(-1), v32)

	v64, ok := k.Int64("neg32")
	require.True(t, ok)
	assert.Equal(t, int64(-1), v64)

	_, ok = k.Uint64("neg32")
	assert.False(t, ok)

	u, ok := k.Uint64("u32")
	require.True(t, ok)
	assert.Equal(t, uint64(7), u)

	_, ok = k.Int32("u32")
	assert.False(t, ok, "type mismatch")

	_, ok = k.Int64("big")
	assert.False(t, ok, "overflows int64")

	_, ok = k.Uint64("label")
	assert.False(t, ok)
}

// TestParseSPL_RejectsIOKstat verifies only named kstats are accepted
func TestParseSPL_RejectsIOKstat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "io")
	require.NoError(t, os.WriteFile(path, []byte("5 3 0x01 1 80 0 0\nnread nwritten\n1 2\n"), 0o644))

	_, err := parseSPLFile(path)
	assert.Error(t, err)
}
