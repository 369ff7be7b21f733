package metrics

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/fillmem/status"
)

// TestRecorder verifies log path and line counters
func TestRecorder(t *testing.T) {
	m := New(nil)
	m.LogEmitted("direct")
	m.LogEmitted("direct")
	m.LogEmitted("interleaved")
	m.LineSubmitted()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LogLines.WithLabelValues("direct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LogLines.WithLabelValues("interleaved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lines))
}

// TestCommandDone verifies per-verb counts and that unknown verbs skip the histogram
func TestCommandDone(t *testing.T) {
	m := New(nil)
	m.CommandDone("grow", ResultOK, 10*time.Millisecond)
	m.CommandDone("grow", ResultInterrupted, time.Millisecond)
	m.CommandDone("bogus", ResultUnknown, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("grow", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("bogus", ResultUnknown)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CommandDuration))
}

// TestStatusCollector verifies status cells are exported as gauges
func TestStatusCollector(t *testing.T) {
	st := status.NewRegistry()
	st.Floats.Get(status.FreeMem).Set(512.5)
	st.Ints.Get(status.Samples).Store(7)
	st.Bools.Get(status.Busy).Store(true)

	reg := prometheus.NewRegistry()
	reg.MustRegister(newStatusCollector(st))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	expected := `
# HELP fillmem_status_mem_free Latest value of mem.free
# TYPE fillmem_status_mem_free gauge
fillmem_status_mem_free 512.5
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fillmem_status_mem_free"))
}

// TestHTTPService verifies the endpoint serves the registry and shuts down
func TestHTTPService(t *testing.T) {
	st := status.NewRegistry()
	st.Ints.Get(status.Samples).Store(3)
	m := New(st)
	m.LineSubmitted()

	s := NewService("127.0.0.1:0", m, nil)
	require.NoError(t, s.Init())
	require.NoError(t, s.Start())

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "fillmem_lines_submitted_total 1")
	assert.Contains(t, string(body), "fillmem_status_sampler_samples 3")

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
	assert.Equal(t, "", s.Addr())
}

// TestHTTPService_BadAddr verifies a bind failure surfaces at Init
func TestHTTPService_BadAddr(t *testing.T) {
	s := NewService("256.0.0.1:bad", New(nil), nil)
	assert.Error(t, s.Init())
}
