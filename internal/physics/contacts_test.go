package physics

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/engine"
)

type recordingObserver struct {
	events []ContactEvent
}

func (o *recordingObserver) OnWallContact(ev ContactEvent) {
	o.events = append(o.events, ev)
}

func TestContactNotifierConsumeClearsEvents(t *testing.T) {
	n := NewContactNotifier()
	subject := engine.NewNode("Player")

	n.beginTick()
	n.Record(ContactEvent{Subject: subject, Normal: rl.Vector3{X: -1}})
	n.Record(ContactEvent{Subject: subject, Normal: rl.Vector3{Z: 1}})

	if n.Pending() != 2 {
		t.Errorf("Expected 2 pending contacts, got %d", n.Pending())
	}

	events := n.Consume()
	if len(events) != 2 {
		t.Fatalf("Expected 2 consumed contacts, got %d", len(events))
	}
	if events[0].Normal.X != -1 {
		t.Errorf("Expected first normal (-1, 0, 0), got (%g, %g, %g)",
			events[0].Normal.X, events[0].Normal.Y, events[0].Normal.Z)
	}

	if again := n.Consume(); again != nil {
		t.Errorf("Expected second consume to return nothing, got %d events", len(again))
	}
}

func TestContactNotifierTickBoundary(t *testing.T) {
	n := NewContactNotifier()
	subject := engine.NewNode("Player")

	n.beginTick()
	n.Record(ContactEvent{Subject: subject, Normal: rl.Vector3{X: -1}})

	// Unconsumed contacts must not leak into the next tick.
	n.beginTick()
	if n.Pending() != 0 {
		t.Errorf("Expected stale contacts discarded at tick start, got %d", n.Pending())
	}
	if events := n.Consume(); events != nil {
		t.Errorf("Expected no contacts from fresh tick, got %d", len(events))
	}
}

func TestContactNotifierObservers(t *testing.T) {
	n := NewContactNotifier()
	subject := engine.NewNode("Player")
	obs := &recordingObserver{}

	n.Subscribe(obs)
	n.Subscribe(obs) // duplicate subscribe is a no-op

	n.beginTick()
	n.Record(ContactEvent{Subject: subject, Normal: rl.Vector3{X: -1}})
	if len(obs.events) != 1 {
		t.Errorf("Expected observer notified once, got %d", len(obs.events))
	}

	n.Unsubscribe(obs)
	n.Record(ContactEvent{Subject: subject, Normal: rl.Vector3{Z: 1}})
	if len(obs.events) != 1 {
		t.Errorf("Expected no notification after unsubscribe, got %d", len(obs.events))
	}
}

func TestContactNotifierDoubleConsumeLogs(t *testing.T) {
	n := NewContactNotifier()
	n.beginTick()
	n.Record(ContactEvent{Subject: engine.NewNode("Player"), Normal: rl.Vector3{X: -1}})

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	n.Consume()
	if buf.Len() != 0 {
		t.Errorf("First consume should not log, got %q", buf.String())
	}

	if again := n.Consume(); again != nil {
		t.Errorf("Expected second consume to return nothing, got %d events", len(again))
	}
	if !strings.Contains(buf.String(), "consumed twice") {
		t.Error("Second consume in one tick should be logged")
	}
}
