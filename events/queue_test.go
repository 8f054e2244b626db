package events

import (
	"sync"
	"testing"

	"github.com/marrowfield/memstride/constants"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Emit(EventTileEntered, &TilePayload{X: 1, Z: 2})
	q.Emit(EventCorrectStep, nil)
	q.Emit(EventPathCompleted, nil)

	evs := q.Consume()
	want := []EventType{EventTileEntered, EventCorrectStep, EventPathCompleted}
	if len(evs) != len(want) {
		t.Fatalf("consumed %d events, want %d", len(evs), len(want))
	}
	for i, w := range want {
		if evs[i].Type != w {
			t.Errorf("event %d = %v, want %v", i, evs[i].Type, w)
		}
	}
	if p := evs[0].Payload.(*TilePayload); p.X != 1 || p.Z != 2 {
		t.Errorf("payload = %+v, want {1 2}", p)
	}
}

func TestQueueConsumeEmpty(t *testing.T) {
	q := NewQueue()
	if evs := q.Consume(); evs != nil {
		t.Errorf("empty queue returned %v", evs)
	}
	q.Emit(EventIdleNudge, nil)
	q.Consume()
	if evs := q.Consume(); evs != nil {
		t.Errorf("drained queue returned %v", evs)
	}
}

func TestQueueOverflowKeepsNewest(t *testing.T) {
	q := NewQueue()
	total := constants.EventQueueSize + 10
	for i := 0; i < total; i++ {
		q.Emit(EventCountdownTick, &CountdownTickPayload{Remaining: i})
	}

	evs := q.Consume()
	if len(evs) != constants.EventQueueSize {
		t.Fatalf("consumed %d events, want %d", len(evs), constants.EventQueueSize)
	}
	// Oldest events overwritten, newest survive in order
	first := evs[0].Payload.(*CountdownTickPayload)
	if first.Remaining != 10 {
		t.Errorf("first surviving event = %d, want 10", first.Remaining)
	}
	last := evs[len(evs)-1].Payload.(*CountdownTickPayload)
	if last.Remaining != total-1 {
		t.Errorf("last event = %d, want %d", last.Remaining, total-1)
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue()
	const producers = 8
	const perProducer = 16

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Emit(EventTileEntered, nil)
			}
		}()
	}
	wg.Wait()

	evs := q.Consume()
	if len(evs) != producers*perProducer {
		t.Errorf("consumed %d events, want %d", len(evs), producers*perProducer)
	}
}

func TestEventNameRegistry(t *testing.T) {
	et, ok := TypeByName("EventGridPlaced")
	if !ok || et != EventGridPlaced {
		t.Errorf("TypeByName(EventGridPlaced) = %v %v", et, ok)
	}
	if _, ok := TypeByName("EventNoSuchThing"); ok {
		t.Error("unknown name resolved")
	}

	// Tick is the FSM auto-transition pseudo event
	et, ok = TypeByName("Tick")
	if !ok || et != EventNone {
		t.Errorf("TypeByName(Tick) = %v %v, want EventNone", et, ok)
	}
	if NameByType(EventNone) != "Tick" {
		t.Errorf("NameByType(EventNone) = %q, want Tick", NameByType(EventNone))
	}
	if NameByType(EventWrongStep) != "EventWrongStep" {
		t.Errorf("NameByType(EventWrongStep) = %q", NameByType(EventWrongStep))
	}
}
