package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/yourorg/flightdesk/pkg/types"
)

var ErrNotFound = errors.New("record not found")

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.Init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Init() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
			number TEXT PRIMARY KEY,
			booked_at DATETIME NOT NULL,
			passenger_name TEXT NOT NULL,
			passenger_age INTEGER NOT NULL,
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			airline TEXT NOT NULL,
			departure TEXT NOT NULL,
			duration TEXT NOT NULL,
			price INTEGER NOT NULL,
			seat TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS budget_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			monthly_salary REAL NOT NULL DEFAULT 0,
			savings_goal REAL NOT NULL DEFAULT 0
		);`,
		`INSERT OR IGNORE INTO budget_settings(id, monthly_salary, savings_goal) VALUES(1, 0, 0);`,
		`CREATE TABLE IF NOT EXISTS budget_categories (
			name TEXT PRIMARY KEY,
			budgeted REAL NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			category TEXT NOT NULL,
			amount REAL NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveBooking(b *types.Booking) error {
	_, err := s.db.Exec(`INSERT INTO bookings(number,booked_at,passenger_name,passenger_age,origin,destination,airline,departure,duration,price,seat) VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		b.Number, b.BookedAt.UTC(), b.PassengerName, b.PassengerAge, b.Origin, b.Destination, b.Airline, b.Departure, b.Duration, b.Price, b.Seat)
	return err
}

func (s *SQLiteStore) GetBooking(number string) (*types.Booking, error) {
	row := s.db.QueryRow(`SELECT number,booked_at,passenger_name,passenger_age,origin,destination,airline,departure,duration,price,seat FROM bookings WHERE number=?`, number)
	var b types.Booking
	err := row.Scan(&b.Number, &b.BookedAt, &b.PassengerName, &b.PassengerAge, &b.Origin, &b.Destination, &b.Airline, &b.Departure, &b.Duration, &b.Price, &b.Seat)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *SQLiteStore) ListBookings() ([]types.Booking, error) {
	rows, err := s.db.Query(`SELECT number,booked_at,passenger_name,passenger_age,origin,destination,airline,departure,duration,price,seat FROM bookings ORDER BY booked_at ASC, number ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]types.Booking, 0)
	for rows.Next() {
		var b types.Booking
		if err := rows.Scan(&b.Number, &b.BookedAt, &b.PassengerName, &b.PassengerAge, &b.Origin, &b.Destination, &b.Airline, &b.Departure, &b.Duration, &b.Price, &b.Seat); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MaxBookingSeq returns the highest numeric suffix among booking numbers with
// the given prefix, or 0 when the ledger is empty. Used to re-seed the booking
// counter across restarts.
func (s *SQLiteStore) MaxBookingSeq(prefix string) (int, error) {
	rows, err := s.db.Query(`SELECT number FROM bookings WHERE number LIKE ?`, prefix+"%")
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	maxN := 0
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
		if err == nil && n > maxN {
			maxN = n
		}
	}
	return maxN, rows.Err()
}

func (s *SQLiteStore) Summary() (*types.ReportSummary, error) {
	row := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(price), 0) FROM bookings`)
	var sum types.ReportSummary
	if err := row.Scan(&sum.TotalBookings, &sum.TotalRevenue); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (s *SQLiteStore) BudgetSettings() (*types.BudgetSettings, error) {
	row := s.db.QueryRow(`SELECT monthly_salary, savings_goal FROM budget_settings WHERE id=1`)
	var bs types.BudgetSettings
	if err := row.Scan(&bs.MonthlySalary, &bs.SavingsGoal); err != nil {
		return nil, err
	}
	return &bs, nil
}

func (s *SQLiteStore) SetMonthlySalary(amount float64) error {
	_, err := s.db.Exec(`UPDATE budget_settings SET monthly_salary=? WHERE id=1`, amount)
	return err
}

func (s *SQLiteStore) SetSavingsGoal(amount float64) error {
	_, err := s.db.Exec(`UPDATE budget_settings SET savings_goal=? WHERE id=1`, amount)
	return err
}

func (s *SQLiteStore) UpsertCategory(c types.BudgetCategory) error {
	_, err := s.db.Exec(`INSERT INTO budget_categories(name,budgeted,description) VALUES(?,?,?)
		ON CONFLICT(name) DO UPDATE SET budgeted=excluded.budgeted, description=excluded.description`,
		c.Name, c.Budgeted, c.Description)
	return err
}

func (s *SQLiteStore) ListCategories() ([]types.BudgetCategory, error) {
	rows, err := s.db.Query(`SELECT name,budgeted,description FROM budget_categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]types.BudgetCategory, 0)
	for rows.Next() {
		var c types.BudgetCategory
		if err := rows.Scan(&c.Name, &c.Budgeted, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddExpense(e types.Expense) (*types.Expense, error) {
	res, err := s.db.Exec(`INSERT INTO expenses(date,category,amount,description) VALUES(?,?,?,?)`,
		e.Date, e.Category, e.Amount, e.Description)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	e.ID = id
	return &e, nil
}

func (s *SQLiteStore) ListExpenses(limit int) ([]types.Expense, error) {
	q := `SELECT id,date,category,amount,description FROM expenses ORDER BY date DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryExpenses(q, args...)
}

func (s *SQLiteStore) ExpensesByMonth(year int, month int) ([]types.Expense, error) {
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	return s.queryExpenses(`SELECT id,date,category,amount,description FROM expenses WHERE date LIKE ? ORDER BY date ASC, id ASC`, prefix+"%")
}

// DeleteLastExpense removes the most recently inserted expense and returns it.
func (s *SQLiteStore) DeleteLastExpense() (*types.Expense, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	row := tx.QueryRow(`SELECT id,date,category,amount,description FROM expenses ORDER BY id DESC LIMIT 1`)
	var e types.Expense
	err = row.Scan(&e.ID, &e.Date, &e.Category, &e.Amount, &e.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`DELETE FROM expenses WHERE id=?`, e.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) queryExpenses(q string, args ...any) ([]types.Expense, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]types.Expense, 0)
	for rows.Next() {
		var e types.Expense
		if err := rows.Scan(&e.ID, &e.Date, &e.Category, &e.Amount, &e.Description); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
