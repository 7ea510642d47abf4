package idempotency

import "testing"

func TestKeyIsUniquePerOffset(t *testing.T) {
	a := Key("order.events", 0, 41)
	b := Key("order.events", 0, 42)
	c := Key("order.events", 1, 41)
	if a == b || a == c || b == c {
		t.Fatalf("keys collide: %s %s %s", a, b, c)
	}
	if a != "idem:order.events:0:41" {
		t.Fatalf("unexpected key format %q", a)
	}
}
