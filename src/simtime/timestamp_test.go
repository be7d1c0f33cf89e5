package simtime

import "testing"

func TestInvalidIsNotValid(t *testing.T) {
	if Invalid.IsValid() {
		t.Fatalf("expected Invalid to report IsValid() == false")
	}
	if FromNanos(0).IsValid() != true {
		t.Fatalf("expected timestamp 0 to be valid")
	}
}

func TestAddAdvancesForward(t *testing.T) {
	got := FromNanos(100).Add(50)
	if got != FromNanos(150) {
		t.Fatalf("expected 150, got %v", got)
	}
}

func TestAddPanicsOnNegativeDelta(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Add to panic on a negative delta")
		}
	}()
	FromNanos(100).Add(-1)
}

func TestBeforeAfterEqual(t *testing.T) {
	a, b := FromNanos(100), FromNanos(200)
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected a before b and not the reverse")
	}
	if !b.After(a) || a.After(b) {
		t.Fatalf("expected b after a and not the reverse")
	}
	if !a.Equal(FromNanos(100)) || a.Equal(b) {
		t.Fatalf("expected Equal to match only equal timestamps")
	}
}

func TestStringFormatsInvalidDistinctlyFromValid(t *testing.T) {
	if Invalid.String() != "invalid" {
		t.Fatalf("expected \"invalid\", got %q", Invalid.String())
	}
	if FromNanos(0).String() == "invalid" {
		t.Fatalf("expected a valid timestamp to not format as \"invalid\"")
	}
}
