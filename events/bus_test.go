package events

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bus := New(logger)

	var got []int
	bus.Subscribe("task:created", func(any) { got = append(got, 1) })
	bus.Subscribe("task:created", func(any) { got = append(got, 2) })
	bus.Subscribe("task:created", func(any) { got = append(got, 3) })

	bus.Publish("task:created", nil)

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("unexpected delivery order: %v", got)
	}
}

func TestPublishOnlyMatchingKind(t *testing.T) {
	bus := New(nil)
	delivered := 0
	bus.Subscribe("task:created", func(any) { delivered++ })

	bus.Publish("task:deleted", nil)
	if delivered != 0 {
		t.Fatalf("listener received foreign kind, count=%d", delivered)
	}
	bus.Publish("task:created", nil)
	if delivered != 1 {
		t.Fatalf("expected one delivery, got %d", delivered)
	}
}

func TestPanickingListenerIsIsolated(t *testing.T) {
	logger, hook := test.NewNullLogger()
	bus := New(logger)

	delivered := false
	bus.Subscribe("message:created", func(any) { panic("boom") })
	bus.Subscribe("message:created", func(any) { delivered = true })

	bus.Publish("message:created", nil)

	if !delivered {
		t.Fatal("panic in first listener prevented delivery to the second")
	}
	if len(hook.Entries) != 1 {
		t.Fatalf("expected one logged panic, got %d entries", len(hook.Entries))
	}
}

func TestUnsubscribeRemovesExactlyOne(t *testing.T) {
	bus := New(nil)
	first, second := 0, 0
	sub := bus.Subscribe("task:updated", func(any) { first++ })
	bus.Subscribe("task:updated", func(any) { second++ })

	bus.Unsubscribe(sub)
	bus.Publish("task:updated", nil)

	if first != 0 {
		t.Fatal("unsubscribed listener still invoked")
	}
	if second != 1 {
		t.Fatalf("remaining listener not invoked, count=%d", second)
	}

	// Double unsubscribe and unknown handles are no-ops.
	bus.Unsubscribe(sub)
	bus.Unsubscribe(Subscription{kind: "task:updated", id: 999})
}

func TestPublishWithNoListeners(t *testing.T) {
	bus := New(nil)
	bus.Publish("task:reordered", struct{}{})
}

func TestPayloadReachesListener(t *testing.T) {
	bus := New(nil)
	var got any
	bus.Subscribe("task:created", func(p any) { got = p })

	type payload struct{ TaskID string }
	bus.Publish("task:created", payload{TaskID: "t1"})

	p, ok := got.(payload)
	if !ok || p.TaskID != "t1" {
		t.Fatalf("unexpected payload %#v", got)
	}
}
