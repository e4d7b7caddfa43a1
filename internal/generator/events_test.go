package generator

import "testing"

func TestSimpleEventBusDeliversInOrder(t *testing.T) {
	bus := NewSimpleEventBus()
	var got []string
	bus.Subscribe("a", func(e Event) { got = append(got, "a:"+e.Type.String()) })
	bus.Subscribe("b", func(e Event) { got = append(got, "b:"+e.Type.String()) })
	bus.Publish(Event{Type: EventPlacement})
	bus.Unsubscribe("a")
	bus.Publish(Event{Type: EventCompleted})

	want := []string{"a:Placement", "b:Placement", "b:Completed"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPublishStampsTime(t *testing.T) {
	bus := NewSimpleEventBus()
	var e Event
	bus.Subscribe("x", func(ev Event) { e = ev })
	bus.Publish(Event{Type: EventAttemptStarted})
	if e.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}
	NewNullEventBus().Publish(Event{})
}
