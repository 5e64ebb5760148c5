// Package ticket renders booking records to human-readable files: one ticket
// per booking plus an aggregate summary report. The conversation core only
// sees the small interfaces it needs, never the on-disk format.
package ticket

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourorg/flightdesk/internal/store"
	"github.com/yourorg/flightdesk/pkg/types"
)

const summaryFilename = "summary_report.txt"

// Writer renders tickets and reports into a directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter creates a writer rendering into dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// WriteTicket renders one booking to "<Passenger_Name>_<Number>.txt" and
// returns the filename.
func (w *Writer) WriteTicket(b *types.Booking) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", err
	}
	filename := strings.ReplaceAll(b.PassengerName, " ", "_") + "_" + b.Number + ".txt"

	t := &strings.Builder{}
	t.WriteString("==========================================\n")
	t.WriteString("              AIRLINE TICKET\n")
	t.WriteString("==========================================\n\n")
	fmt.Fprintf(t, "Booking Number: %s\n", b.Number)
	fmt.Fprintf(t, "Date of Booking: %s\n\n", b.BookedAt.Format("2006-01-02 15:04:05"))
	t.WriteString("PASSENGER DETAILS:\n")
	fmt.Fprintf(t, "Name: %s\n", b.PassengerName)
	fmt.Fprintf(t, "Age: %d\n\n", b.PassengerAge)
	t.WriteString("FLIGHT DETAILS:\n")
	fmt.Fprintf(t, "From: %s\n", b.Origin)
	fmt.Fprintf(t, "To: %s\n", b.Destination)
	fmt.Fprintf(t, "Airline: %s\n", b.Airline)
	fmt.Fprintf(t, "Departure Time: %s\n", b.Departure)
	fmt.Fprintf(t, "Duration: %s\n", b.Duration)
	fmt.Fprintf(t, "Seat Number: %s\n", b.Seat)
	fmt.Fprintf(t, "Price: $%d\n\n", b.Price)
	t.WriteString("Thank you for choosing our airline!\nHave a pleasant journey!\n")

	if err := os.WriteFile(filepath.Join(w.dir, filename), []byte(t.String()), 0o644); err != nil {
		return "", err
	}
	return filename, nil
}

// WriteSummary renders the whole ledger to the summary report file and
// returns its path with the aggregate totals.
func (w *Writer) WriteSummary(bookings []types.Booking) (string, *types.ReportSummary, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", nil, err
	}

	b := &strings.Builder{}
	b.WriteString("==========================================\n")
	b.WriteString("          AIRLINE BOOKING SUMMARY\n")
	b.WriteString("==========================================\n\n")
	fmt.Fprintf(b, "Report Generated: %s\n", w.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(b, "Total Bookings: %d\n\n", len(bookings))

	sum := &types.ReportSummary{TotalBookings: len(bookings)}
	for i, bk := range bookings {
		fmt.Fprintf(b, "BOOKING #%d\n", i+1)
		b.WriteString(strings.Repeat("-", 40) + "\n")
		fmt.Fprintf(b, "Booking Number: %s\n", bk.Number)
		fmt.Fprintf(b, "Passenger: %s (Age: %d)\n", bk.PassengerName, bk.PassengerAge)
		fmt.Fprintf(b, "Route: %s -> %s\n", bk.Origin, bk.Destination)
		fmt.Fprintf(b, "Airline: %s\n", bk.Airline)
		fmt.Fprintf(b, "Departure: %s\n", bk.Departure)
		fmt.Fprintf(b, "Duration: %s\n", bk.Duration)
		fmt.Fprintf(b, "Seat: %s\n", bk.Seat)
		fmt.Fprintf(b, "Price: $%d\n", bk.Price)
		fmt.Fprintf(b, "Booking Date: %s\n\n", bk.BookedAt.Format("2006-01-02 15:04:05"))
		sum.TotalRevenue += bk.Price
	}
	b.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(b, "TOTAL REVENUE: $%d\n", sum.TotalRevenue)

	path := filepath.Join(w.dir, summaryFilename)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", nil, err
	}
	return path, sum, nil
}

// Reporter adapts the writer and the ledger store to the chat engine's
// report command.
type Reporter struct {
	Store  store.Store
	Writer *Writer
}

// Report renders the summary file and returns a short status line.
func (r *Reporter) Report() (string, error) {
	bookings, err := r.Store.ListBookings()
	if err != nil {
		return "", err
	}
	if len(bookings) == 0 {
		return "No bookings to summarize yet.", nil
	}
	path, sum, err := r.Writer.WriteSummary(bookings)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Summary report generated: %s\nTotal bookings: %d | Total revenue: $%d",
		path, sum.TotalBookings, sum.TotalRevenue), nil
}
