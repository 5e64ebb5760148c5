package booking

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrFlightFull is returned once every seat for a flight key has been issued.
var ErrFlightFull = errors.New("flight is fully booked")

// SeatAllocator issues unique seat codes per flight key. A seat code is a row
// number combined with a seat letter, e.g. "12C". Draws are uniform over the
// whole cabin by rejection sampling; the capacity check up front keeps the
// loop finite once a flight sells out.
type SeatAllocator struct {
	rows    int
	letters string
	rng     *rand.Rand
	issued  map[string]map[string]struct{}
}

// NewSeatAllocator creates an allocator for rows x letters seats per flight.
// A nil rng falls back to a time-seeded source.
func NewSeatAllocator(rows int, letters string, rng *rand.Rand) *SeatAllocator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SeatAllocator{
		rows:    rows,
		letters: letters,
		rng:     rng,
		issued:  make(map[string]map[string]struct{}),
	}
}

// Capacity is the number of seats per flight.
func (a *SeatAllocator) Capacity() int {
	return a.rows * len(a.letters)
}

// MarkIssued records a seat as already taken, e.g. when reloading the ledger
// on startup.
func (a *SeatAllocator) MarkIssued(flightKey, seat string) {
	if a.issued[flightKey] == nil {
		a.issued[flightKey] = make(map[string]struct{})
	}
	a.issued[flightKey][seat] = struct{}{}
}

// Assign draws an unissued seat for the flight key and records it as taken.
// Returns ErrFlightFull when the cabin is exhausted.
func (a *SeatAllocator) Assign(flightKey string) (string, error) {
	taken := a.issued[flightKey]
	if taken == nil {
		taken = make(map[string]struct{})
		a.issued[flightKey] = taken
	}
	if len(taken) >= a.Capacity() {
		return "", ErrFlightFull
	}
	for {
		row := a.rng.Intn(a.rows) + 1
		letter := a.letters[a.rng.Intn(len(a.letters))]
		seat := fmt.Sprintf("%d%c", row, letter)
		if _, ok := taken[seat]; ok {
			continue
		}
		taken[seat] = struct{}{}
		return seat, nil
	}
}
