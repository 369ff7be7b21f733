package terminal

import (
	"io"
	"sync"
)

// readResult is one scripted Read outcome
type readResult struct {
	b   byte
	err error
}

// fakeBackend is an in-memory terminal
type fakeBackend struct {
	mu      sync.Mutex
	writes  [][]byte
	inits   int
	finis   int
	initErr error
	sizeErr error
	calls   []string

	reads chan readResult
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{reads: make(chan readResult, 64)}
}

func (f *fakeBackend) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "init")
	f.inits++
	return f.initErr
}

func (f *fakeBackend) Fini() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "fini")
	f.finis++
	return nil
}

func (f *fakeBackend) Size() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "size")
	if f.sizeErr != nil {
		return 0, 0, f.sizeErr
	}
	return 80, 24, nil
}

func (f *fakeBackend) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, append([]byte(nil), p...))
	return nil
}

func (f *fakeBackend) Read(p []byte, stopCh <-chan struct{}) (int, error) {
	select {
	case <-stopCh:
		return 0, nil
	case r, ok := <-f.reads:
		if !ok {
			return 0, io.EOF
		}
		if r.err != nil {
			return 0, r.err
		}
		p[0] = r.b
		return 1, nil
	}
}

func (f *fakeBackend) output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s string
	for _, w := range f.writes {
		s += string(w)
	}
	return s
}

// recordingHandler logs handler calls in order
type recordingHandler struct {
	mu     sync.Mutex
	events []string
	eof    chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{eof: make(chan struct{})}
}

func (h *recordingHandler) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHandler) HandleByte(b byte) { h.add(string(b)) }
func (h *recordingHandler) HandleCtrlC()      { h.add("^C") }
func (h *recordingHandler) HandleRetry()      { h.add("retry") }
func (h *recordingHandler) HandleEOF() {
	h.add("eof")
	close(h.eof)
}

func (h *recordingHandler) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}
