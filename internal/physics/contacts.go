package physics

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/engine"
)

// ContactEvent describes one wall touch detected during a physics step.
// Events are ephemeral: they are valid only for the tick that produced them.
type ContactEvent struct {
	Subject  *engine.Node
	Other    *engine.Node
	Normal   rl.Vector3 // unit, world space, pointing away from the surface
	Position rl.Vector3
}

// ContactObserver receives wall contacts synchronously as the step detects
// them, once per contact per tick.
type ContactObserver interface {
	OnWallContact(ev ContactEvent)
}

type contactPhase int

const (
	contactIdle contactPhase = iota
	contactCollecting
	contactConsumed
)

// ContactNotifier collects the current tick's contacts. Lifecycle per tick:
// Idle -> Collecting (step appends events) -> Consumed (one reader takes and
// clears the list) -> Idle. Contacts never persist across ticks.
type ContactNotifier struct {
	events    []ContactEvent
	phase     contactPhase
	observers []ContactObserver
}

func NewContactNotifier() *ContactNotifier {
	return &ContactNotifier{}
}

func (n *ContactNotifier) Subscribe(o ContactObserver) {
	for _, existing := range n.observers {
		if existing == o {
			return
		}
	}
	n.observers = append(n.observers, o)
}

func (n *ContactNotifier) Unsubscribe(o ContactObserver) {
	for i, existing := range n.observers {
		if existing == o {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

// beginTick discards anything a consumer left behind and starts collecting.
func (n *ContactNotifier) beginTick() {
	n.events = n.events[:0]
	n.phase = contactCollecting
}

// Record appends a contact and delivers it to observers synchronously.
// The step calls this as it detects touches; external movers may also report
// contacts for the current tick.
func (n *ContactNotifier) Record(ev ContactEvent) {
	n.events = append(n.events, ev)
	for _, o := range n.observers {
		o.OnWallContact(ev)
	}
}

// Consume returns this tick's contacts and clears the list. Intended to be
// called exactly once per tick, by the movement resolver; a second call in
// the same tick is logged and returns nothing.
func (n *ContactNotifier) Consume() []ContactEvent {
	if n.phase == contactConsumed {
		log.Printf("physics: contact list consumed twice in one tick")
	}
	if len(n.events) == 0 {
		n.phase = contactConsumed
		return nil
	}
	out := make([]ContactEvent, len(n.events))
	copy(out, n.events)
	n.events = n.events[:0]
	n.phase = contactConsumed
	return out
}

// Pending returns how many contacts the current tick has collected so far.
func (n *ContactNotifier) Pending() int {
	return len(n.events)
}
