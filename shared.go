package powermenu

import (
	"context"
	"sort"
	"sync"
)

// Shared fans one upstream listener out to any number of observers. The
// listener is registered when the first observer attaches and removed when
// the last one detaches.
type Shared struct {
	signal *Signal

	mu          sync.Mutex
	subscribers map[uint64]*Stream
	nextID      uint64
	handle      ListenerHandle
	attached    bool
}

// Share returns a fan-out view of s.
func (s *Signal) Share() *Shared {
	return &Shared{
		signal:      s,
		subscribers: make(map[uint64]*Stream),
	}
}

// Subscribers returns the number of attached observers.
func (sh *Shared) Subscribers() int {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return len(sh.subscribers)
}

// Observe attaches a new observer. Like Signal.Observe, the current value is
// emitted before Observe returns.
func (sh *Shared) Observe(ctx context.Context) *Stream {
	if !sh.signal.enabled {
		return sh.signal.Observe(ctx)
	}
	stream := newStream(sh.signal.cfg)

	sh.mu.Lock()
	id := sh.nextID
	sh.nextID++
	if !sh.attached {
		sh.handle = sh.signal.lock.AddListener(sh.dispatch)
		sh.attached = true
	}
	sh.subscribers[id] = stream
	attached, _ := stream.bind(func() { sh.detach(id) })

	visible, err := sh.signal.compute()
	if err != nil {
		handle, release := sh.removeLocked(id)
		sh.mu.Unlock()
		stream.report(attached, true)
		sh.release(handle, release)
		stream.terminate(err)
		return stream
	}
	delivered, ok := stream.deliver(visible)
	sh.mu.Unlock()

	stream.report(attached, true)
	stream.report(delivered, ok)
	stream.watch(ctx)
	return stream
}

type pendingLog struct {
	stream *Stream
	event  LogEvent
}

// dispatch computes once per notification and offers the value to every
// observer in attach order. Log events are reported after sh.mu is
// released so loggers may call back into Shared or close streams.
func (sh *Shared) dispatch() {
	sh.mu.Lock()
	if len(sh.subscribers) == 0 {
		sh.mu.Unlock()
		return
	}
	visible, err := sh.signal.compute()
	if err != nil {
		failed := sh.orderedLocked()
		sh.subscribers = make(map[uint64]*Stream)
		handle, release := sh.handle, sh.attached
		sh.attached = false
		sh.mu.Unlock()
		sh.release(handle, release)
		for _, stream := range failed {
			stream.terminate(err)
		}
		return
	}
	var pending []pendingLog
	for _, stream := range sh.orderedLocked() {
		if event, ok := stream.deliver(visible); ok {
			pending = append(pending, pendingLog{stream: stream, event: event})
		}
	}
	sh.mu.Unlock()

	for _, p := range pending {
		p.stream.report(p.event, true)
	}
}

func (sh *Shared) detach(id uint64) {
	sh.mu.Lock()
	handle, release := sh.removeLocked(id)
	sh.mu.Unlock()
	sh.release(handle, release)
}

func (sh *Shared) removeLocked(id uint64) (ListenerHandle, bool) {
	if _, ok := sh.subscribers[id]; !ok {
		return 0, false
	}
	delete(sh.subscribers, id)
	if len(sh.subscribers) > 0 || !sh.attached {
		return 0, false
	}
	sh.attached = false
	return sh.handle, true
}

func (sh *Shared) release(handle ListenerHandle, release bool) {
	if release {
		sh.signal.lock.RemoveListener(handle)
	}
}

func (sh *Shared) orderedLocked() []*Stream {
	ids := make([]uint64, 0, len(sh.subscribers))
	for id := range sh.subscribers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*Stream, 0, len(ids))
	for _, id := range ids {
		out = append(out, sh.subscribers[id])
	}
	return out
}
