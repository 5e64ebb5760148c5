package server

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/flightdesk/internal/booking"
	"github.com/yourorg/flightdesk/internal/budget"
	"github.com/yourorg/flightdesk/internal/catalog"
	"github.com/yourorg/flightdesk/internal/chat"
	"github.com/yourorg/flightdesk/internal/store"
	"github.com/yourorg/flightdesk/internal/ticket"
	"github.com/yourorg/flightdesk/pkg/types"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	tmpDir := t.TempDir()

	st, err := store.NewSQLiteStore(filepath.Join(tmpDir, "flightdesk.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	cat := catalog.Default()
	seats := booking.NewSeatAllocator(30, "ABCDEF", rand.New(rand.NewSource(3)))
	writer := ticket.NewWriter(filepath.Join(tmpDir, "output"))
	bk, err := booking.NewBooker(st, booking.Options{Rand: seats, Tickets: writer})
	if err != nil {
		t.Fatalf("new booker: %v", err)
	}
	engine := chat.New(cat, bk, &ticket.Reporter{Store: st, Writer: writer}, nil)
	bm := budget.NewManager(st, func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) })

	srv, err := New(cat, engine, st, bm, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, st
}

func doJSON(t *testing.T, srv *Server, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func chatTurn(t *testing.T, srv *Server, sessionID, message string) (string, string) {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/chat", map[string]string{
		"session_id": sessionID,
		"message":    message,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode chat response: %v", err)
	}
	return resp["session_id"], resp["reply"]
}

func TestChatCreatesSessionAndBooks(t *testing.T) {
	srv, st := newTestServer(t)

	id, reply := chatTurn(t, srv, "", "book")
	if id == "" {
		t.Fatalf("missing session id")
	}
	if !strings.Contains(reply, "departing from") {
		t.Fatalf("unexpected reply:\n%s", reply)
	}
	chatTurn(t, srv, id, "New York")
	chatTurn(t, srv, id, "Chicago")
	chatTurn(t, srv, id, "1")
	_, reply = chatTurn(t, srv, id, "Name: Ann Lee, Age: 29")
	if !strings.Contains(reply, "FL1000") {
		t.Fatalf("expected confirmation, got:\n%s", reply)
	}

	bookings, err := st.ListBookings()
	if err != nil {
		t.Fatal(err)
	}
	if len(bookings) != 1 || bookings[0].Number != "FL1000" {
		t.Fatalf("booking not persisted: %+v", bookings)
	}
}

func TestChatSessionsAreIsolated(t *testing.T) {
	srv, _ := newTestServer(t)

	first, _ := chatTurn(t, srv, "", "book")
	second, _ := chatTurn(t, srv, "", "book")
	if first == second {
		t.Fatalf("sessions share an id")
	}
	chatTurn(t, srv, first, "New York")

	// The second session is still waiting for a departure city.
	_, reply := chatTurn(t, srv, second, "Atlantis")
	if !strings.Contains(reply, "valid departure city") {
		t.Fatalf("unexpected reply:\n%s", reply)
	}
	_, reply = chatTurn(t, srv, first, "Miami")
	if !strings.Contains(reply, "Available flights") {
		t.Fatalf("first session lost its origin:\n%s", reply)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/chat", map[string]string{"message": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestFlightsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/flights?from=New+York&to=Miami", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var offers []types.Offer
	if err := json.NewDecoder(rec.Body).Decode(&offers); err != nil {
		t.Fatal(err)
	}
	if len(offers) != 2 || offers[0].Airline != "SunAir" {
		t.Fatalf("unexpected offers %+v", offers)
	}

	if rec := doJSON(t, srv, http.MethodGet, "/api/flights?from=Miami&to=Miami", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("same-city status = %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/api/flights?from=Miami&to=Chicago", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing-route status = %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/api/flights?from=Miami", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing-param status = %d", rec.Code)
	}
}

func TestBookingLookupAndReport(t *testing.T) {
	srv, st := newTestServer(t)
	b := &types.Booking{
		Number: "FL1000", BookedAt: time.Now().UTC(), PassengerName: "Ann Lee", PassengerAge: 29,
		Origin: "New York", Destination: "Chicago", Airline: "WindyCity Express",
		Departure: "10:30", Duration: "2h 45m", Price: 159, Seat: "4D",
	}
	if err := st.SaveBooking(b); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/bookings/FL1000", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/api/bookings/FL9999", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown booking status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/report", nil)
	var sum types.ReportSummary
	if err := json.NewDecoder(rec.Body).Decode(&sum); err != nil {
		t.Fatal(err)
	}
	if sum.TotalBookings != 1 || sum.TotalRevenue != 159 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	salary, goal := 4000.0, 800.0
	rec := doJSON(t, srv, http.MethodPut, "/api/budget/settings", map[string]*float64{
		"monthly_salary": &salary,
		"savings_goal":   &goal,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("settings status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/budget/categories", types.BudgetCategory{Name: "Food", Budgeted: 500})
	if rec.Code != http.StatusOK {
		t.Fatalf("categories status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/budget/expenses", map[string]any{
		"category": "Food", "amount": 42.5, "date": "2026-08-10",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expenses status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/budget/analysis", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analysis status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp["report"], "Total Spent: $42.50") {
		t.Fatalf("unexpected analysis:\n%s", resp["report"])
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/budget/expenses/last", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	if rec := doJSON(t, srv, http.MethodPost, "/api/budget/expenses", map[string]any{"category": "", "amount": 1}); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid expense status = %d", rec.Code)
	}
}

func TestPagesAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/", "/budget", "/health"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
}
