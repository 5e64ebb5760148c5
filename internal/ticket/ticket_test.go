package ticket

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/flightdesk/internal/store"
	"github.com/yourorg/flightdesk/pkg/types"
)

func sampleBooking(number string, price int) types.Booking {
	return types.Booking{
		Number:        number,
		BookedAt:      time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		PassengerName: "Ann Lee",
		PassengerAge:  29,
		Origin:        "New York",
		Destination:   "Chicago",
		Airline:       "WindyCity Express",
		Departure:     "10:30",
		Duration:      "2h 45m",
		Price:         price,
		Seat:          "12C",
	}
}

func TestWriteTicket(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	b := sampleBooking("FL1000", 159)
	filename, err := w.WriteTicket(&b)
	if err != nil {
		t.Fatal(err)
	}
	if filename != "Ann_Lee_FL1000.txt" {
		t.Fatalf("unexpected filename %q", filename)
	}
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{"FL1000", "Ann Lee", "WindyCity Express", "Seat Number: 12C", "Price: $159"} {
		if !strings.Contains(content, want) {
			t.Fatalf("ticket missing %q:\n%s", want, content)
		}
	}
}

func TestWriteSummaryTotals(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	path, sum, err := w.WriteSummary([]types.Booking{
		sampleBooking("FL1000", 159),
		sampleBooking("FL1001", 209),
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalBookings != 2 || sum.TotalRevenue != 368 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "TOTAL REVENUE: $368") {
		t.Fatalf("summary missing total:\n%s", data)
	}
}

func TestReporterEmptyLedger(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "flightdesk.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	r := &Reporter{Store: st, Writer: NewWriter(t.TempDir())}
	msg, err := r.Report()
	if err != nil {
		t.Fatal(err)
	}
	if msg != "No bookings to summarize yet." {
		t.Fatalf("unexpected message %q", msg)
	}

	b := sampleBooking("FL1000", 159)
	if err := st.SaveBooking(&b); err != nil {
		t.Fatal(err)
	}
	msg, err = r.Report()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg, "Total bookings: 1") || !strings.Contains(msg, "$159") {
		t.Fatalf("unexpected message %q", msg)
	}
}
