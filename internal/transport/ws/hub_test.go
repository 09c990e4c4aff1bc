package ws

import (
	"errors"
	"testing"
)

// fakeConn records payloads; fail makes every Send error to exercise the
// fanout failure path.
type fakeConn struct {
	sent   []any
	fail   bool
	closed bool
}

func (c *fakeConn) Send(v any) error {
	if c.fail {
		return errors.New("connection reset")
	}
	c.sent = append(c.sent, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func constant(v any) func(string) any {
	return func(string) any { return v }
}

func TestHub_SubscribeAndMembers(t *testing.T) {
	h := NewHub()
	a, b := &fakeConn{}, &fakeConn{}

	h.Subscribe(a, "g1", "")
	h.Subscribe(b, "g1", "")
	h.Subscribe(a, "g1", "") // idempotent

	if got := len(h.Members("g1")); got != 2 {
		t.Fatalf("expected 2 members, got %d", got)
	}
	if got := len(h.Members("g2")); got != 0 {
		t.Fatalf("expected empty group, got %d", got)
	}
}

func TestHub_UnsubscribeAbsentIsNoop(t *testing.T) {
	h := NewHub()
	a := &fakeConn{}

	h.Unsubscribe(a, "g1") // never subscribed

	h.Subscribe(a, "g1", "")
	h.Unsubscribe(a, "g1")
	h.Unsubscribe(a, "g1") // second removal

	if got := len(h.Members("g1")); got != 0 {
		t.Fatalf("expected no members, got %d", got)
	}
}

func TestHub_DropRemovesAllSubscriptions(t *testing.T) {
	h := NewHub()
	a, b := &fakeConn{}, &fakeConn{}

	h.Subscribe(a, "g1", "")
	h.Subscribe(a, "g2", "t1")
	h.Subscribe(b, "g1", "")

	h.Drop(a)

	for _, g := range []string{"g1", "g2"} {
		for _, c := range h.Members(g) {
			if c == Conn(a) {
				t.Fatalf("conn still member of %s after Drop", g)
			}
		}
	}
	if got := len(h.Members("g1")); got != 1 {
		t.Fatalf("expected b to remain in g1, got %d members", got)
	}

	h.Drop(a) // idempotent
}

func TestHub_PublishReachesOnlyGroupMembers(t *testing.T) {
	h := NewHub()
	a, b, c := &fakeConn{}, &fakeConn{}, &fakeConn{}

	h.Subscribe(a, "g1", "")
	h.Subscribe(b, "g1", "")
	h.Subscribe(c, "g2", "")

	h.Publish("g1", constant("hello"))

	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Fatalf("expected one delivery each, got a=%d b=%d", len(a.sent), len(b.sent))
	}
	if len(c.sent) != 0 {
		t.Fatalf("expected no delivery outside the group, got %d", len(c.sent))
	}
}

func TestHub_TwoGroupsDeliverIndependently(t *testing.T) {
	h := NewHub()
	a := &fakeConn{}

	h.Subscribe(a, "g1", "")
	h.Subscribe(a, "g2", "")

	h.Publish("g1", constant("one"))
	h.Publish("g2", constant("two"))

	if len(a.sent) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(a.sent))
	}
	if a.sent[0] != "one" || a.sent[1] != "two" {
		t.Fatalf("unexpected payloads: %v", a.sent)
	}
}

func TestHub_TokensMultiplexOneConnection(t *testing.T) {
	h := NewHub()
	a := &fakeConn{}

	h.Subscribe(a, "g1", "x1")
	h.Subscribe(a, "g1", "x2")

	h.Publish("g1", func(token string) any { return token })

	if len(a.sent) != 2 {
		t.Fatalf("expected one delivery per token, got %d", len(a.sent))
	}
	got := map[any]bool{a.sent[0]: true, a.sent[1]: true}
	if !got["x1"] || !got["x2"] {
		t.Fatalf("expected tokens x1 and x2 echoed, got %v", a.sent)
	}
}

func TestHub_DeliveryFailureIsolatedAndTearsDown(t *testing.T) {
	h := NewHub()
	dead := &fakeConn{fail: true}
	live := &fakeConn{}

	h.Subscribe(dead, "g1", "")
	h.Subscribe(live, "g1", "")

	h.Publish("g1", constant("msg"))

	if len(live.sent) != 1 {
		t.Fatalf("healthy subscriber missed the event: %d", len(live.sent))
	}
	if !dead.closed {
		t.Fatal("dead connection was not closed")
	}
	for _, c := range h.Members("g1") {
		if c == Conn(dead) {
			t.Fatal("dead connection still registered after failed delivery")
		}
	}
}

func TestHub_PublishOrderPerSubscriber(t *testing.T) {
	h := NewHub()
	a := &fakeConn{}
	h.Subscribe(a, "g1", "")

	for i := 0; i < 5; i++ {
		h.Publish("g1", constant(i))
	}

	for i, v := range a.sent {
		if v != i {
			t.Fatalf("out of order delivery at %d: %v", i, a.sent)
		}
	}
}
