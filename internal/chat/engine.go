package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/yourorg/flightdesk/internal/booking"
	"github.com/yourorg/flightdesk/internal/catalog"
	"github.com/yourorg/flightdesk/pkg/types"
)

const (
	minAge = 0
	maxAge = 120
)

// Reporter produces the aggregate booking report on request.
type Reporter interface {
	Report() (string, error)
}

// Engine drives the guided booking conversation. It is a pure
// request/response machine: every call takes the session it should act on and
// returns the reply text, so one engine can serve any number of sessions.
type Engine struct {
	catalog  *catalog.Catalog
	booker   *booking.Booker
	reporter Reporter
	logger   *slog.Logger
}

// New wires an engine. The reporter may be nil when reporting is not exposed.
func New(cat *catalog.Catalog, bk *booking.Booker, reporter Reporter, logger *slog.Logger) *Engine {
	return &Engine{catalog: cat, booker: bk, reporter: reporter, logger: logger}
}

// Process interprets one input line against the session and advances it.
// Every outcome is a reply string; no input is ever fatal to the conversation.
func (e *Engine) Process(s *Session, input string) string {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "Please enter a message."
	}
	msg := strings.ToLower(raw)

	switch ParseIntent(msg) {
	case IntentGreeting:
		s.Reset()
		return e.welcome()
	case IntentSearch:
		return e.handleSearch(msg)
	case IntentBook:
		if s.Step == StepStart {
			s.Step = StepGetSource
			return "Let's book your flight.\n\nStep 1: Which city are you departing from?\nAvailable cities: " + e.cityList()
		}
		return e.handleStep(s, raw)
	case IntentReport:
		return e.handleReport()
	case IntentHelp:
		return e.helpText()
	case IntentReset:
		s.Reset()
		return "Session reset. How can I help you today?"
	default:
		if s.Step != StepStart {
			return e.handleStep(s, raw)
		}
		return e.fallback()
	}
}

func (e *Engine) handleStep(s *Session, raw string) string {
	switch s.Step {
	case StepGetSource:
		return e.stepSource(s, raw)
	case StepGetDestination:
		return e.stepDestination(s, raw)
	case StepSelectFlight:
		return e.stepSelectFlight(s, raw)
	case StepGetPassenger:
		return e.stepPassengerDetails(s, raw)
	}
	return e.fallback()
}

func (e *Engine) stepSource(s *Session, raw string) string {
	city, ok := e.catalog.Match(raw)
	if !ok {
		return "Please specify a valid departure city from: " + e.cityList()
	}
	s.Origin = city
	s.Step = StepGetDestination
	return fmt.Sprintf("Departure city: %s\n\nStep 2: Which city is your destination?\nAvailable destinations: %s",
		city, strings.Join(e.catalog.Destinations(city), ", "))
}

func (e *Engine) stepDestination(s *Session, raw string) string {
	city, ok := e.catalog.Match(raw)
	if !ok {
		return "Please specify a valid destination from: " + strings.Join(e.catalog.Destinations(s.Origin), ", ")
	}
	if city == s.Origin {
		return "Destination cannot be the same as departure city. Please choose a different destination."
	}
	offers, err := e.catalog.Lookup(s.Origin, city)
	if err != nil {
		// No route is a dead end for this conversation, not a step to retry.
		origin := s.Origin
		s.Reset()
		return fmt.Sprintf("Sorry, no flights available from %s to %s.", origin, city)
	}
	s.Destination = city
	s.Step = StepSelectFlight

	b := &strings.Builder{}
	fmt.Fprintf(b, "Route: %s to %s\n\nAvailable flights:\n\n", s.Origin, city)
	writeOffers(b, offers)
	b.WriteString("Please select your flight by typing the option number (1, 2, 3, ...)")
	return b.String()
}

func (e *Engine) stepSelectFlight(s *Session, raw string) string {
	offers, err := e.catalog.Lookup(s.Origin, s.Destination)
	if err != nil {
		// Catalog is immutable for the process lifetime, so the stored route
		// cannot disappear mid-conversation; guard anyway.
		s.Reset()
		return fmt.Sprintf("Sorry, no flights available from %s to %s.", s.Origin, s.Destination)
	}
	choice, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "Please enter a valid flight option number (1, 2, 3, ...)"
	}
	if choice < 1 || choice > len(offers) {
		return fmt.Sprintf("Invalid option. Please select a number between 1 and %d.", len(offers))
	}
	offer := offers[choice-1]
	s.Offer = &offer
	s.Step = StepGetPassenger
	return fmt.Sprintf(`Flight selected:
- Airline: %s
- Departure: %s
- Duration: %s
- Price: $%d

Step 3: Please provide passenger details in this format:
'Name: [Full Name], Age: [Age]'

Example: 'Name: John Smith, Age: 30'`, offer.Airline, offer.Departure, offer.Duration, offer.Price)
}

func (e *Engine) stepPassengerDetails(s *Session, raw string) string {
	name, ageText, ok := parsePassengerDetails(raw)
	if !ok {
		return "Please provide details in the format: 'Name: [Full Name], Age: [Age]'"
	}
	age, err := strconv.Atoi(ageText)
	if err != nil {
		return "Please enter a valid age as a number."
	}
	if age < minAge || age > maxAge {
		return fmt.Sprintf("Please enter a valid age (%d-%d).", minAge, maxAge)
	}
	s.PassengerName = name
	s.PassengerAge = age
	return e.finalize(s)
}

// finalize hands the populated session to the booker. The session is reset no
// matter how finalization ends, so a new conversation can always start clean.
func (e *Engine) finalize(s *Session) string {
	req := booking.Request{
		Origin:        s.Origin,
		Destination:   s.Destination,
		PassengerName: s.PassengerName,
		PassengerAge:  s.PassengerAge,
	}
	if s.Offer != nil {
		req.Offer = *s.Offer
	}
	s.Reset()

	b, ticketNote, err := e.booker.Book(req)
	if errors.Is(err, booking.ErrFlightFull) {
		return "Sorry, this flight is fully booked. Please start over and choose a different flight."
	}
	if err != nil {
		if e.logger != nil {
			e.logger.Error("booking failed", "error", err)
		}
		return fmt.Sprintf("Error completing booking: %v. Please try again.", err)
	}

	out := &strings.Builder{}
	out.WriteString("Booking confirmed!\n\nBooking details:\n")
	fmt.Fprintf(out, "- Booking Number: %s\n", b.Number)
	fmt.Fprintf(out, "- Passenger: %s (Age: %d)\n", b.PassengerName, b.PassengerAge)
	fmt.Fprintf(out, "- Route: %s to %s\n", b.Origin, b.Destination)
	fmt.Fprintf(out, "- Airline: %s\n", b.Airline)
	fmt.Fprintf(out, "- Departure: %s\n", b.Departure)
	fmt.Fprintf(out, "- Duration: %s\n", b.Duration)
	fmt.Fprintf(out, "- Seat: %s\n", b.Seat)
	fmt.Fprintf(out, "- Price: $%d\n", b.Price)
	if ticketNote != "" {
		out.WriteString("\n" + ticketNote + "\n")
	}
	out.WriteString("\nThank you for booking with us! Type 'book' to make another booking or 'report' to see all bookings.")
	return out.String()
}

func (e *Engine) handleSearch(msg string) string {
	originText, destText, ok := ParseSearch(msg)
	if ok {
		origin, originOK := e.catalog.Match(originText)
		dest, destOK := e.catalog.Match(destText)
		if originOK && destOK {
			return e.availability(origin, dest)
		}
	}
	return "To check flight availability, please specify:\n'Check flights from [Source City] to [Destination City]'\n\nAvailable cities: " + e.cityList()
}

func (e *Engine) availability(origin, destination string) string {
	offers, err := e.catalog.Lookup(origin, destination)
	if errors.Is(err, catalog.ErrSameCity) {
		return "Error: Source and destination cannot be the same city."
	}
	if err != nil {
		return fmt.Sprintf("Sorry, no flights available from %s to %s.", origin, destination)
	}
	b := &strings.Builder{}
	fmt.Fprintf(b, "Available flights from %s to %s:\n\n", origin, destination)
	writeOffers(b, offers)
	return strings.TrimRight(b.String(), "\n")
}

func (e *Engine) handleReport() string {
	if e.reporter == nil {
		return "Reporting is not available."
	}
	report, err := e.reporter.Report()
	if err != nil {
		return "Error generating report: " + err.Error()
	}
	return report
}

func (e *Engine) welcome() string {
	return "Welcome to the airline booking assistant. I can help you:\n\n" +
		"- Check flight availability\n- Book flights step by step\n- Generate booking reports\n\n" +
		"Available cities: " + e.cityList() + "\n\nHow can I assist you today?"
}

func (e *Engine) helpText() string {
	return `Available commands:

- Flight search: "Check flights from [City] to [City]"
- Book flight: "Book" or "Book flight"
- Generate report: "Generate report" or "Summary"
- Reset: "Reset" or "Start over"
- Help: "Help" or "Commands"

Available cities: ` + e.cityList()
}

func (e *Engine) fallback() string {
	return "I didn't understand that. Type 'help' to see available commands, or try:\n" +
		"- 'Check flights from [city] to [city]'\n- 'Book flight'\n- 'Generate report'"
}

func (e *Engine) cityList() string {
	return strings.Join(e.catalog.Cities(), ", ")
}

func writeOffers(b *strings.Builder, offers []types.Offer) {
	for i, o := range offers {
		fmt.Fprintf(b, "Option %d: %s\n", i+1, o.Airline)
		fmt.Fprintf(b, "- Departure: %s\n", o.Departure)
		fmt.Fprintf(b, "- Duration: %s\n", o.Duration)
		fmt.Fprintf(b, "- Price: $%d\n\n", o.Price)
	}
}

// parsePassengerDetails scans comma-separated segments for "name:" and
// "age:" prefixes, case-insensitively, keeping the original casing of the
// values. Both must be present.
func parsePassengerDetails(raw string) (name, age string, ok bool) {
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		lower := strings.ToLower(part)
		switch {
		case strings.HasPrefix(lower, "name:"):
			name = strings.TrimSpace(part[len("name:"):])
		case strings.HasPrefix(lower, "age:"):
			age = strings.TrimSpace(part[len("age:"):])
		}
	}
	if name == "" || age == "" {
		return "", "", false
	}
	return name, age, true
}
