package engine

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/marrowfield/memstride/engine/fsm"
	"github.com/marrowfield/memstride/events"
)

// timerSlot is a pending one-shot callback keyed by slot name
type timerSlot[T any] struct {
	name     string
	deadline time.Duration // Against scheduler elapsed game time
	seq      uint64        // Insertion order, deterministic tiebreak
	fn       func(ctx T)
}

// Scheduler drives game logic on a fixed tick: due timer slots fire first,
// then queued events route through the FSM and the handler router, then
// tick transitions are evaluated
//
// Concurrency model: all game logic runs on the scheduler goroutine (or the
// test goroutine calling Step). Producers on other goroutines interact only
// through the lock-free event queue. Scheduling a timer for a slot that
// already holds one replaces it, so a phase never owns two pending timers
// for the same purpose
type Scheduler[T any] struct {
	ctx     T
	queue   *events.Queue
	router  *events.Router[T]
	machine *fsm.Machine[T]
	clock   *PausableClock
	log     zerolog.Logger

	tickInterval time.Duration
	elapsed      time.Duration

	mu     sync.Mutex
	timers map[string]*timerSlot[T]
	seq    uint64

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewScheduler creates a scheduler. The context is attached separately
// because the owning controller usually holds the scheduler itself
func NewScheduler[T any](
	machine *fsm.Machine[T],
	router *events.Router[T],
	queue *events.Queue,
	clock *PausableClock,
	tickInterval time.Duration,
	log zerolog.Logger,
) *Scheduler[T] {
	return &Scheduler[T]{
		queue:        queue,
		router:       router,
		machine:      machine,
		clock:        clock,
		log:          log,
		tickInterval: tickInterval,
		timers:       make(map[string]*timerSlot[T]),
		stopChan:     make(chan struct{}),
	}
}

// SetContext attaches the context passed to timers, actions and handlers
// Must be called before Start or the first Step
func (s *Scheduler[T]) SetContext(ctx T) {
	s.ctx = ctx
}

// Queue returns the event queue for producers
func (s *Scheduler[T]) Queue() *events.Queue {
	return s.queue
}

// Machine returns the FSM driven by this scheduler
func (s *Scheduler[T]) Machine() *fsm.Machine[T] {
	return s.machine
}

// Schedule registers a one-shot callback firing after delay
// An existing timer in the same slot is cancelled first
func (s *Scheduler[T]) Schedule(slot string, delay time.Duration, fn func(ctx T)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.timers[slot] = &timerSlot[T]{
		name:     slot,
		deadline: s.elapsed + delay,
		seq:      s.seq,
		fn:       fn,
	}
}

// EmitAfter schedules a timer that pushes an event when it fires
func (s *Scheduler[T]) EmitAfter(slot string, delay time.Duration, et events.EventType, payload any) {
	s.Schedule(slot, delay, func(T) {
		s.queue.Emit(et, payload)
	})
}

// Cancel disables a pending timer slot, reporting whether one existed
func (s *Scheduler[T]) Cancel(slot string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[slot]
	delete(s.timers, slot)
	return ok
}

// CancelAll sweeps every pending timer slot
// The round-level reset path is the single owner of this sweep
func (s *Scheduler[T]) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.timers)
}

// HasTimer reports whether a slot holds a pending timer
func (s *Scheduler[T]) HasTimer(slot string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[slot]
	return ok
}

// Elapsed returns accumulated game time processed by Step
func (s *Scheduler[T]) Elapsed() time.Duration {
	return s.elapsed
}

// Step advances game logic by dt. Exposed for deterministic tests; the
// internal loop calls it once per tick
// A paused clock freezes the step whole: elapsed time stops, so slot
// deadlines and the memorize or idle-nudge windows do not burn down,
// and queued events wait until resume
func (s *Scheduler[T]) Step(dt time.Duration) {
	if s.clock != nil && s.clock.IsPaused() {
		return
	}
	s.elapsed += dt

	s.fireDueTimers()
	s.dispatchEvents()
	s.machine.Update(s.ctx, dt)
}

// fireDueTimers runs expired slots in deadline order
func (s *Scheduler[T]) fireDueTimers() {
	s.mu.Lock()
	due := make([]*timerSlot[T], 0, 2)
	for name, t := range s.timers {
		if t.deadline <= s.elapsed {
			due = append(due, t)
			delete(s.timers, name)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline != due[j].deadline {
			return due[i].deadline < due[j].deadline
		}
		return due[i].seq < due[j].seq
	})

	for _, t := range due {
		t.fn(s.ctx)
	}
}

// dispatchEvents consumes the queue and routes each event first through
// the FSM, then through registered handlers, serialized in queue order
func (s *Scheduler[T]) dispatchEvents() {
	for _, ev := range s.queue.Consume() {
		s.machine.HandleEvent(s.ctx, ev.Type)
		s.router.Dispatch(s.ctx, ev)
	}
}

// DispatchEventsImmediately drains pending events synchronously, outside
// the normal tick. Used by tests and the exit path
func (s *Scheduler[T]) DispatchEventsImmediately() {
	s.dispatchEvents()
}

// Start begins the scheduler loop
func (s *Scheduler[T]) Start() {
	if s.running.CompareAndSwap(false, true) {
		s.wg.Add(1)
		go s.loop()
	}
}

// Stop halts the scheduler loop
func (s *Scheduler[T]) Stop() {
	s.stopOnce.Do(func() {
		if s.running.CompareAndSwap(true, false) {
			close(s.stopChan)
			s.wg.Wait()
		}
	})
}

// loop ticks at the fixed interval; Step itself skips while paused
func (s *Scheduler[T]) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Step(s.tickInterval)
		}
	}
}
