package powermenu_test

import (
	"sync"
	"testing"
	"time"

	powermenu "github.com/goliatone/go-powermenu"
)

const waitTimeout = time.Second

type prefStore struct {
	mu     sync.Mutex
	values map[string]int
	err    error
	reads  int
}

func newPrefStore() *prefStore {
	return &prefStore{values: map[string]int{}}
}

func (p *prefStore) ReadIntForCurrentUser(key string, def int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads++
	if p.err != nil {
		return def, p.err
	}
	value, ok := p.values[key]
	if !ok {
		return def, nil
	}
	return value, nil
}

func (p *prefStore) set(key string, value int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

func (p *prefStore) unset(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.values, key)
}

func (p *prefStore) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *prefStore) readCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

type recordingLogger struct {
	mu     sync.Mutex
	events []powermenu.LogEvent
}

func (l *recordingLogger) Log(event powermenu.LogEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *recordingLogger) count(kind powermenu.LogKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, event := range l.events {
		if event.Kind == kind {
			n++
		}
	}
	return n
}

func (l *recordingLogger) emitted() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []bool
	for _, event := range l.events {
		if event.Kind == powermenu.LogEmitted {
			out = append(out, event.Visible)
		}
	}
	return out
}

// stickySource keeps invoking listeners after they were removed, the way a
// notification already in flight reaches a stream that is being closed.
type stickySource struct {
	mu       sync.Mutex
	unlocked bool
	secure   bool
	fns      []func()
	removed  int
}

func (s *stickySource) IsUnlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

func (s *stickySource) IsMethodSecure() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secure
}

func (s *stickySource) AddListener(fn func()) powermenu.ListenerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
	return powermenu.ListenerHandle(len(s.fns))
}

func (s *stickySource) RemoveListener(powermenu.ListenerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed++
}

func (s *stickySource) notify() {
	s.mu.Lock()
	fns := append([]func(){}, s.fns...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *stickySource) removeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removed
}

func next(t *testing.T, stream *powermenu.Stream) bool {
	t.Helper()
	select {
	case value, ok := <-stream.Values():
		if !ok {
			t.Fatalf("stream closed unexpectedly: %v", stream.Err())
		}
		return value
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for a value")
	}
	return false
}

func expectIdle(t *testing.T, stream *powermenu.Stream) {
	t.Helper()
	select {
	case value, ok := <-stream.Values():
		if ok {
			t.Fatalf("expected no pending value, got %v", value)
		}
		t.Fatalf("expected open stream, got closed (err=%v)", stream.Err())
	default:
	}
}

func waitDone(t *testing.T, stream *powermenu.Stream) {
	t.Helper()
	select {
	case <-stream.Done():
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for teardown")
	}
}

func expectClosed(t *testing.T, stream *powermenu.Stream) {
	t.Helper()
	waitDone(t, stream)
	for range stream.Values() {
	}
}
