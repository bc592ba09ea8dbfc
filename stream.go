package powermenu

import (
	"context"
	"sync"
)

// StreamState is the per-subscription lifecycle state.
type StreamState int

const (
	// StateUnattached means no upstream listener is registered for the stream.
	// It is both the initial state and the terminal state after teardown.
	StateUnattached StreamState = iota
	// StateAttached means an upstream listener is registered and every
	// notification produces an emission.
	StateAttached
)

func (s StreamState) String() string {
	switch s {
	case StateAttached:
		return "attached"
	default:
		return "unattached"
	}
}

// Stream delivers visibility values to one observer. Values are buffered in a
// single conflated slot: a slow observer always reads the latest value and
// never sees values out of order.
type Stream struct {
	component string
	logger    Logger
	distinct  bool

	mu        sync.Mutex
	values    chan bool
	done      chan struct{}
	state     StreamState
	closed    bool
	err       error
	hasLast   bool
	last      bool
	detach    func()
	stopWatch func() bool
}

func newStream(cfg signalConfig) *Stream {
	return &Stream{
		component: cfg.component,
		logger:    cfg.logger,
		distinct:  cfg.distinct,
		values:    make(chan bool, 1),
		done:      make(chan struct{}),
	}
}

// Values returns the receive side of the stream. The channel is closed after
// teardown; a value buffered before teardown is still delivered.
func (s *Stream) Values() <-chan bool {
	return s.values
}

// Done is closed once teardown has completed, including removal of the
// upstream listener.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Err returns the fault that terminated the stream, or nil.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// State reports whether an upstream listener is currently registered.
func (s *Stream) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close tears the stream down and deregisters its upstream listener. Calling
// Close more than once is a no-op.
func (s *Stream) Close() {
	s.terminate(nil)
}

func (s *Stream) attach(detach func()) {
	event, ok := s.bind(detach)
	if !ok {
		detach()
		return
	}
	s.report(event, true)
}

// bind records detach as the stream's teardown and returns the attach event
// for the caller to report. ok is false when the stream is already closed.
func (s *Stream) bind(detach func()) (LogEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return LogEvent{}, false
	}
	s.detach = detach
	s.state = StateAttached
	return LogEvent{Component: s.component, Kind: LogAttached}, true
}

// watch closes the stream when ctx is cancelled.
func (s *Stream) watch(ctx context.Context) {
	if ctx == nil || ctx.Done() == nil {
		return
	}
	stop := context.AfterFunc(ctx, s.Close)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		stop()
		return
	}
	s.stopWatch = stop
	s.mu.Unlock()
}

// publish runs compute and delivers its result while holding the stream
// lock, so emissions follow the order of the notifications that caused them.
func (s *Stream) publish(compute func() (bool, error)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.report(LogEvent{Component: s.component, Kind: LogDeliveryFailed, Err: ErrStreamClosed}, true)
		return
	}
	visible, err := compute()
	if err != nil {
		detach, stop, _ := s.closeLocked(err)
		s.mu.Unlock()
		s.logger.Log(LogEvent{Component: s.component, Kind: LogReadFault, Err: err})
		s.finish(detach, stop)
		return
	}
	emitted := s.offerLocked(visible)
	s.mu.Unlock()
	if emitted {
		s.logger.Log(LogEvent{Component: s.component, Kind: LogEmitted, Visible: visible})
	}
}

// offer delivers a value computed elsewhere.
func (s *Stream) offer(visible bool) {
	s.report(s.deliver(visible))
}

// deliver places visible in the slot and returns the event describing the
// outcome without logging it.
func (s *Stream) deliver(visible bool) (LogEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return LogEvent{
			Component: s.component,
			Kind:      LogDeliveryFailed,
			Visible:   visible,
			Err:       ErrStreamClosed,
		}, true
	}
	if !s.offerLocked(visible) {
		return LogEvent{}, false
	}
	return LogEvent{Component: s.component, Kind: LogEmitted, Visible: visible}, true
}

func (s *Stream) report(event LogEvent, ok bool) {
	if ok {
		s.logger.Log(event)
	}
}

func (s *Stream) offerLocked(visible bool) bool {
	if s.distinct && s.hasLast && s.last == visible {
		return false
	}
	select {
	case s.values <- visible:
	default:
		// Slot is full: drop the superseded value. Senders hold s.mu, so the
		// slot is empty once drained.
		select {
		case <-s.values:
		default:
		}
		s.values <- visible
	}
	s.hasLast = true
	s.last = visible
	return true
}

func (s *Stream) terminate(err error) {
	s.mu.Lock()
	detach, stop, ok := s.closeLocked(err)
	s.mu.Unlock()
	if !ok {
		return
	}
	if err != nil {
		s.logger.Log(LogEvent{Component: s.component, Kind: LogReadFault, Err: err})
	}
	s.finish(detach, stop)
}

// closeLocked flips the stream to its terminal state and hands back the
// teardown work. ok is false when the stream was already closed.
func (s *Stream) closeLocked(err error) (detach func(), stop func() bool, ok bool) {
	if s.closed {
		return nil, nil, false
	}
	s.closed = true
	s.err = err
	close(s.values)
	detach, s.detach = s.detach, nil
	stop, s.stopWatch = s.stopWatch, nil
	s.state = StateUnattached
	return detach, stop, true
}

// finish runs the teardown handed back by closeLocked. It is called exactly
// once per stream.
func (s *Stream) finish(detach func(), stop func() bool) {
	defer close(s.done)
	if stop != nil {
		stop()
	}
	if detach == nil {
		return
	}
	detach()
	s.logger.Log(LogEvent{Component: s.component, Kind: LogDetached})
}
