// Package budget implements the personal budget tracker: salary and savings
// settings, per-category budgets, expense records and the text reports built
// from them.
package budget

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yourorg/flightdesk/internal/store"
	"github.com/yourorg/flightdesk/pkg/types"
)

const dateLayout = "2006-01-02"

// Manager owns all budget operations over the store.
type Manager struct {
	store store.Store
	now   func() time.Time
}

// NewManager wires a manager. A nil now falls back to time.Now.
func NewManager(st store.Store, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: st, now: now}
}

// SetMonthlySalary stores the expected monthly salary.
func (m *Manager) SetMonthlySalary(amount float64) (string, error) {
	if amount < 0 {
		return "", errors.New("salary cannot be negative")
	}
	if err := m.store.SetMonthlySalary(amount); err != nil {
		return "", err
	}
	return fmt.Sprintf("Monthly salary set to: $%.2f", amount), nil
}

// SetSavingsGoal stores the monthly savings goal.
func (m *Manager) SetSavingsGoal(amount float64) (string, error) {
	if amount < 0 {
		return "", errors.New("savings goal cannot be negative")
	}
	if err := m.store.SetSavingsGoal(amount); err != nil {
		return "", err
	}
	return fmt.Sprintf("Monthly savings goal set to: $%.2f", amount), nil
}

// SetCategory creates or updates a budget category.
func (m *Manager) SetCategory(name string, amount float64, description string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("category name cannot be empty")
	}
	if amount < 0 {
		return "", errors.New("budgeted amount cannot be negative")
	}
	err := m.store.UpsertCategory(types.BudgetCategory{Name: name, Budgeted: amount, Description: description})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Budget category %q set to: $%.2f", name, amount), nil
}

// AddExpense records an expense. An empty or malformed date defaults to
// today, matching the forgiving behavior of the form it backs.
func (m *Manager) AddExpense(category string, amount float64, description, date string) (*types.Expense, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, errors.New("category name cannot be empty")
	}
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		date = m.now().Format(dateLayout)
	}
	return m.store.AddExpense(types.Expense{Date: date, Category: category, Amount: amount, Description: description})
}

// DeleteLastExpense removes the most recent expense.
func (m *Manager) DeleteLastExpense() (string, error) {
	e, err := m.store.DeleteLastExpense()
	if errors.Is(err, store.ErrNotFound) {
		return "No expenses to delete.", nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted expense: $%.2f for %s on %s", e.Amount, e.Category, e.Date), nil
}

// RecentExpenses lists the newest expenses, newest first.
func (m *Manager) RecentExpenses(limit int) ([]types.Expense, error) {
	return m.store.ListExpenses(limit)
}

// Overview renders the budget overview report.
func (m *Manager) Overview() (string, error) {
	settings, err := m.store.BudgetSettings()
	if err != nil {
		return "", err
	}
	cats, err := m.store.ListCategories()
	if err != nil {
		return "", err
	}

	b := &strings.Builder{}
	b.WriteString("# Budget Overview\n\n")
	fmt.Fprintf(b, "Monthly Salary: $%.2f\n", settings.MonthlySalary)
	fmt.Fprintf(b, "Savings Goal: $%.2f\n", settings.SavingsGoal)

	if len(cats) == 0 {
		b.WriteString("\nNo budget categories set yet.\n")
		return b.String(), nil
	}

	totalBudgeted := settings.SavingsGoal
	for _, c := range cats {
		totalBudgeted += c.Budgeted
	}
	fmt.Fprintf(b, "Total Budgeted (including savings): $%.2f\n", totalBudgeted)
	remaining := settings.MonthlySalary - totalBudgeted
	fmt.Fprintf(b, "Remaining after budget: $%.2f\n\n", remaining)
	if remaining < 0 {
		b.WriteString("WARNING: You're over budget!\n\n")
	} else if remaining > 0 {
		b.WriteString("You have room in your budget.\n\n")
	}

	b.WriteString("## Budget Categories\n\n")
	for _, c := range cats {
		pct := 0.0
		if settings.MonthlySalary > 0 {
			pct = c.Budgeted / settings.MonthlySalary * 100
		}
		fmt.Fprintf(b, "- %s: $%.2f (%.1f%%) %s\n", c.Name, c.Budgeted, pct, c.Description)
	}
	return b.String(), nil
}

// Analysis renders the spending analysis for the current month.
func (m *Manager) Analysis() (string, error) {
	settings, err := m.store.BudgetSettings()
	if err != nil {
		return "", err
	}
	now := m.now()
	expenses, err := m.store.ExpensesByMonth(now.Year(), int(now.Month()))
	if err != nil {
		return "", err
	}
	cats, err := m.store.ListCategories()
	if err != nil {
		return "", err
	}
	budgeted := make(map[string]float64, len(cats))
	for _, c := range cats {
		budgeted[c.Name] = c.Budgeted
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "# Spending Analysis - %s\n\n", now.Format("January 2006"))

	spent := make(map[string]float64)
	order := make([]string, 0)
	var totalSpent float64
	for _, e := range expenses {
		if _, ok := spent[e.Category]; !ok {
			order = append(order, e.Category)
		}
		spent[e.Category] += e.Amount
		totalSpent += e.Amount
	}
	fmt.Fprintf(b, "Total Spent: $%.2f\n", totalSpent)
	if settings.MonthlySalary > 0 {
		fmt.Fprintf(b, "Remaining from Salary: $%.2f\n", settings.MonthlySalary-totalSpent)
	}
	if len(expenses) == 0 {
		b.WriteString("\nNo expenses recorded for this month yet.\n")
		return b.String(), nil
	}

	b.WriteString("\n## Spending by Category\n\n")
	for _, category := range order {
		amount := spent[category]
		limit, hasBudget := budgeted[category]
		if hasBudget && limit > 0 {
			pct := amount / limit * 100
			fmt.Fprintf(b, "- %s: $%.2f / $%.2f (%.1f%%)\n", category, amount, limit, pct)
			if amount > limit {
				fmt.Fprintf(b, "  Over budget by $%.2f\n", math.Abs(limit-amount))
			}
		} else {
			fmt.Fprintf(b, "- %s: $%.2f (no budget set)\n", category, amount)
		}
	}

	if settings.SavingsGoal > 0 {
		potential := settings.MonthlySalary - totalSpent
		progress := potential / settings.SavingsGoal * 100
		b.WriteString("\n## Savings Progress\n\n")
		fmt.Fprintf(b, "- Potential Savings: $%.2f\n", potential)
		fmt.Fprintf(b, "- Savings Goal: $%.2f\n", settings.SavingsGoal)
		fmt.Fprintf(b, "- Progress: %.1f%%\n", progress)
	}
	return b.String(), nil
}

// Recommendations renders 50/30/20-rule suggestions from the salary.
func (m *Manager) Recommendations() (string, error) {
	settings, err := m.store.BudgetSettings()
	if err != nil {
		return "", err
	}
	salary := settings.MonthlySalary
	if salary <= 0 {
		return "Please set your monthly salary first to get recommendations.", nil
	}

	b := &strings.Builder{}
	b.WriteString("# Budget Recommendations (50/30/20 Rule)\n\n")
	fmt.Fprintf(b, "Based on your monthly salary of $%.2f:\n\n", salary)
	fmt.Fprintf(b, "- Needs (Housing, Food, Utilities): $%.2f (50%%)\n", salary*0.50)
	fmt.Fprintf(b, "- Wants (Entertainment, Dining Out): $%.2f (30%%)\n", salary*0.30)
	fmt.Fprintf(b, "- Savings & Debt Repayment: $%.2f (20%%)\n\n", salary*0.20)
	b.WriteString("## Suggested Monthly Categories\n\n")
	fmt.Fprintf(b, "- Housing: $%.2f (30%% of income)\n", salary*0.30)
	fmt.Fprintf(b, "- Food: $%.2f (15%% of income)\n", salary*0.15)
	fmt.Fprintf(b, "- Utilities: $%.2f (5%% of income)\n", salary*0.05)
	fmt.Fprintf(b, "- Transportation: $%.2f (12%% of income)\n", salary*0.12)
	fmt.Fprintf(b, "- Entertainment: $%.2f (18%% of income)\n", salary*0.18)
	fmt.Fprintf(b, "- Savings: $%.2f (20%% of income)\n", salary*0.20)
	return b.String(), nil
}
