package chat

import "github.com/yourorg/flightdesk/pkg/types"

// Step is the current position in the guided booking flow.
type Step string

const (
	StepStart          Step = "start"
	StepGetSource      Step = "get_source"
	StepGetDestination Step = "get_destination"
	StepSelectFlight   Step = "select_flight"
	StepGetPassenger   Step = "get_passenger_details"
)

// Session is the mutable state of one conversation. Every engine call takes
// an explicit session so callers can keep one per client.
type Session struct {
	Origin        string
	Destination   string
	Offer         *types.Offer
	PassengerName string
	PassengerAge  int
	Step          Step
}

// NewSession returns an empty session at the start step.
func NewSession() *Session {
	return &Session{Step: StepStart}
}

// Reset clears the session back to its initial state.
func (s *Session) Reset() {
	*s = Session{Step: StepStart}
}
