package types

import "time"

// Offer is one flight option on a route.
type Offer struct {
	Airline   string `json:"airline" yaml:"airline"`
	Departure string `json:"departure" yaml:"departure"`
	Price     int    `json:"price" yaml:"price"`
	Duration  string `json:"duration" yaml:"duration"`
}

// Booking is an immutable snapshot of one completed booking.
type Booking struct {
	Number        string    `json:"number"`
	BookedAt      time.Time `json:"booked_at"`
	PassengerName string    `json:"passenger_name"`
	PassengerAge  int       `json:"passenger_age"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Airline       string    `json:"airline"`
	Departure     string    `json:"departure"`
	Duration      string    `json:"duration"`
	Price         int       `json:"price"`
	Seat          string    `json:"seat"`
}

// FlightKey scopes seat issuance to one flight.
func (b Booking) FlightKey() string {
	return b.Origin + "-" + b.Destination + "-" + b.Airline
}

// ReportSummary aggregates the booking ledger.
type ReportSummary struct {
	TotalBookings int `json:"total_bookings"`
	TotalRevenue  int `json:"total_revenue"`
}

// BudgetSettings holds the top-level budget figures.
type BudgetSettings struct {
	MonthlySalary float64 `json:"monthly_salary"`
	SavingsGoal   float64 `json:"savings_goal"`
}

// BudgetCategory is one named spending budget.
type BudgetCategory struct {
	Name        string  `json:"name"`
	Budgeted    float64 `json:"budgeted"`
	Description string  `json:"description"`
}

// Expense is one recorded expense.
type Expense struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}
