package store

import "github.com/yourorg/flightdesk/pkg/types"

// Store persists the booking ledger and the budget tracker records.
type Store interface {
	SaveBooking(b *types.Booking) error
	GetBooking(number string) (*types.Booking, error)
	ListBookings() ([]types.Booking, error)
	MaxBookingSeq(prefix string) (int, error)
	Summary() (*types.ReportSummary, error)

	BudgetSettings() (*types.BudgetSettings, error)
	SetMonthlySalary(amount float64) error
	SetSavingsGoal(amount float64) error
	UpsertCategory(c types.BudgetCategory) error
	ListCategories() ([]types.BudgetCategory, error)
	AddExpense(e types.Expense) (*types.Expense, error)
	ListExpenses(limit int) ([]types.Expense, error)
	ExpensesByMonth(year int, month int) ([]types.Expense, error)
	DeleteLastExpense() (*types.Expense, error)

	Close() error
}
