package booking

import (
	"errors"
	"math/rand"
	"regexp"
	"testing"
)

var seatPattern = regexp.MustCompile(`^([1-9]|[12][0-9]|30)[A-F]$`)

func TestAssignUniqueUntilFull(t *testing.T) {
	a := NewSeatAllocator(30, "ABCDEF", rand.New(rand.NewSource(1)))
	seen := make(map[string]struct{})
	for i := 0; i < a.Capacity(); i++ {
		seat, err := a.Assign("NYC-CHI-WindyCity Express")
		if err != nil {
			t.Fatalf("seat %d: %v", i, err)
		}
		if !seatPattern.MatchString(seat) {
			t.Fatalf("seat %q does not match row(1-30)+letter(A-F)", seat)
		}
		if _, dup := seen[seat]; dup {
			t.Fatalf("duplicate seat %q", seat)
		}
		seen[seat] = struct{}{}
	}
	if _, err := a.Assign("NYC-CHI-WindyCity Express"); !errors.Is(err, ErrFlightFull) {
		t.Fatalf("expected ErrFlightFull, got %v", err)
	}
}

func TestAssignScopedByFlightKey(t *testing.T) {
	a := NewSeatAllocator(1, "A", rand.New(rand.NewSource(1)))
	if _, err := a.Assign("flight-1"); err != nil {
		t.Fatal(err)
	}
	// The other flight still has its single seat.
	if _, err := a.Assign("flight-2"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Assign("flight-1"); !errors.Is(err, ErrFlightFull) {
		t.Fatalf("expected ErrFlightFull, got %v", err)
	}
}

func TestMarkIssuedCountsTowardCapacity(t *testing.T) {
	a := NewSeatAllocator(1, "AB", rand.New(rand.NewSource(1)))
	a.MarkIssued("f", "1A")
	seat, err := a.Assign("f")
	if err != nil {
		t.Fatal(err)
	}
	if seat != "1B" {
		t.Fatalf("expected 1B, got %q", seat)
	}
	if _, err := a.Assign("f"); !errors.Is(err, ErrFlightFull) {
		t.Fatalf("expected ErrFlightFull, got %v", err)
	}
}
