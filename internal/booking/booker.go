package booking

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yourorg/flightdesk/internal/store"
	"github.com/yourorg/flightdesk/pkg/types"
)

// TicketWriter renders a completed booking to a ticket file. The booker only
// needs the rendered filename back for the confirmation text.
type TicketWriter interface {
	WriteTicket(b *types.Booking) (string, error)
}

// Request carries a fully populated booking candidate.
type Request struct {
	Origin        string
	Destination   string
	Offer         types.Offer
	PassengerName string
	PassengerAge  int
}

// Booker finalizes bookings: it numbers them, assigns seats, appends them to
// the ledger and hands them to the ticket writer. The counter and the seat
// table live here rather than in package globals so several engines can share
// one booker.
type Booker struct {
	mu      sync.Mutex
	store   store.Store
	seats   *SeatAllocator
	tickets TicketWriter
	logger  *slog.Logger
	prefix  string
	next    int
	now     func() time.Time
}

// Options tunes the booker. Zero values select the defaults used by the demo
// data set.
type Options struct {
	Prefix      string
	StartNumber int
	SeatRows    int
	SeatLetters string
	Rand        *SeatAllocator
	Tickets     TicketWriter
	Logger      *slog.Logger
	Now         func() time.Time
}

// NewBooker builds a booker on top of the given ledger store. The booking
// counter is re-seeded from the ledger so numbers stay strictly increasing
// across restarts, and seats already issued by persisted bookings are marked
// taken again.
func NewBooker(st store.Store, opts Options) (*Booker, error) {
	if opts.Prefix == "" {
		opts.Prefix = "FL"
	}
	if opts.StartNumber == 0 {
		opts.StartNumber = 1000
	}
	if opts.SeatRows == 0 {
		opts.SeatRows = 30
	}
	if opts.SeatLetters == "" {
		opts.SeatLetters = "ABCDEF"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	seats := opts.Rand
	if seats == nil {
		seats = NewSeatAllocator(opts.SeatRows, opts.SeatLetters, nil)
	}

	next := opts.StartNumber
	maxSeq, err := st.MaxBookingSeq(opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("seed booking counter: %w", err)
	}
	if maxSeq >= next {
		next = maxSeq + 1
	}
	existing, err := st.ListBookings()
	if err != nil {
		return nil, fmt.Errorf("reload ledger: %w", err)
	}
	for _, b := range existing {
		seats.MarkIssued(b.FlightKey(), b.Seat)
	}

	return &Booker{
		store:   st,
		seats:   seats,
		tickets: opts.Tickets,
		logger:  opts.Logger,
		prefix:  opts.Prefix,
		next:    next,
		now:     opts.Now,
	}, nil
}

// Book finalizes one booking. It returns the record and a human-readable note
// about the ticket file; ticket rendering is best effort and never fails the
// booking. ErrFlightFull is returned unwrapped so callers can detect it.
func (bk *Booker) Book(req Request) (*types.Booking, string, error) {
	if req.Origin == "" || req.Destination == "" || req.PassengerName == "" || req.Offer.Airline == "" {
		return nil, "", errors.New("incomplete booking request")
	}

	bk.mu.Lock()
	defer bk.mu.Unlock()

	number := fmt.Sprintf("%s%d", bk.prefix, bk.next)
	flightKey := req.Origin + "-" + req.Destination + "-" + req.Offer.Airline

	seat, err := bk.seats.Assign(flightKey)
	if err != nil {
		return nil, "", err
	}

	b := &types.Booking{
		Number:        number,
		BookedAt:      bk.now(),
		PassengerName: req.PassengerName,
		PassengerAge:  req.PassengerAge,
		Origin:        req.Origin,
		Destination:   req.Destination,
		Airline:       req.Offer.Airline,
		Departure:     req.Offer.Departure,
		Duration:      req.Offer.Duration,
		Price:         req.Offer.Price,
		Seat:          seat,
	}
	if err := bk.store.SaveBooking(b); err != nil {
		return nil, "", fmt.Errorf("save booking: %w", err)
	}
	bk.next++

	ticketNote := ""
	if bk.tickets != nil {
		filename, err := bk.tickets.WriteTicket(b)
		if err != nil {
			ticketNote = "Error saving ticket: " + err.Error()
			if bk.logger != nil {
				bk.logger.Warn("ticket write failed", "booking", b.Number, "error", err)
			}
		} else {
			ticketNote = "Ticket saved as: " + filename
		}
	}
	if bk.logger != nil {
		bk.logger.Info("booking completed", "booking", b.Number, "flight", flightKey, "seat", seat)
	}
	return b, ticketNote, nil
}
