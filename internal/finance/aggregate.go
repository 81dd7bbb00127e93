package finance

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NetWorth sums the current balance of every account. Balances are assumed to
// share one currency; no conversion is attempted.
func NetWorth(accounts []Account) float64 {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(decimal.NewFromFloat(a.CurrentBalance()))
	}

	return total.InexactFloat64()
}

// TotalAssets sums the positive account balances.
func TotalAssets(accounts []Account) float64 {
	total := decimal.Zero
	for _, a := range accounts {
		if b := a.CurrentBalance(); b > 0 {
			total = total.Add(decimal.NewFromFloat(b))
		}
	}

	return total.InexactFloat64()
}

// TotalDebt is the absolute value of the sum of negative account balances.
func TotalDebt(accounts []Account) float64 {
	total := decimal.Zero
	for _, a := range accounts {
		if b := a.CurrentBalance(); b < 0 {
			total = total.Add(decimal.NewFromFloat(b))
		}
	}

	return total.Abs().InexactFloat64()
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// CategoryTotals groups expenses by category and sums their absolute amounts.
// Groups appear in order of first occurrence. Income is ignored.
func CategoryTotals(txs []Transaction) []CategoryTotal {
	index := make(map[string]int)
	sums := make([]decimal.Decimal, 0)
	totals := make([]CategoryTotal, 0)

	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}

		i, ok := index[t.Category]
		if !ok {
			i = len(totals)
			index[t.Category] = i

			totals = append(totals, CategoryTotal{Category: t.Category})
			sums = append(sums, decimal.Zero)
		}

		sums[i] = sums[i].Add(decimal.NewFromFloat(t.Amount).Abs())
	}

	for i := range totals {
		totals[i].Total = sums[i].InexactFloat64()
	}

	return totals
}

// Cashflow summarizes a set of transactions.
type Cashflow struct {
	TotalTransactions int     `json:"total_transactions"`
	TotalIncome       float64 `json:"total_income"`
	TotalExpenses     float64 `json:"total_expenses"`
	NetCashflow       float64 `json:"net_cashflow"`
}

func SummarizeCashflow(txs []Transaction) Cashflow {
	income, expenses, net := decimal.Zero, decimal.Zero, decimal.Zero

	for _, t := range txs {
		amount := decimal.NewFromFloat(t.Amount)
		net = net.Add(amount)

		switch {
		case t.Amount > 0:
			income = income.Add(amount)
		case t.Amount < 0:
			expenses = expenses.Add(amount)
		}
	}

	return Cashflow{
		TotalTransactions: len(txs),
		TotalIncome:       income.InexactFloat64(),
		TotalExpenses:     expenses.Abs().InexactFloat64(),
		NetCashflow:       net.InexactFloat64(),
	}
}

// ExpenseSum returns the signed sum of all negative amounts. It is never positive.
func ExpenseSum(txs []Transaction) float64 {
	total := decimal.Zero
	for _, t := range txs {
		if t.IsExpense() {
			total = total.Add(decimal.NewFromFloat(t.Amount))
		}
	}

	return total.InexactFloat64()
}

// MonthlyTotals returns one point per calendar month for the months months
// ending with the month of end, oldest first. Months without expenses are
// reported with a zero total.
func MonthlyTotals(txs []Transaction, end time.Time, months int) []MonthlySpendingPoint {
	if months <= 0 {
		return []MonthlySpendingPoint{}
	}

	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	first := last.AddDate(0, -(months - 1), 0)

	sums := make([]decimal.Decimal, months)
	for i := range sums {
		sums[i] = decimal.Zero
	}

	for _, t := range txs {
		if !t.IsExpense() || t.Date.IsZero() {
			continue
		}

		d := t.Date.Time()
		idx := (d.Year()-first.Year())*12 + int(d.Month()) - int(first.Month())

		if idx < 0 || idx >= months {
			continue
		}

		sums[idx] = sums[idx].Add(decimal.NewFromFloat(t.Amount).Abs())
	}

	points := make([]MonthlySpendingPoint, months)
	for i := range points {
		m := first.AddDate(0, i, 0)
		points[i] = MonthlySpendingPoint{
			Month:      m.Format("January"),
			Key:        m.Format("2006-01"),
			TotalSpent: sums[i].InexactFloat64(),
		}
	}

	return points
}

// SortNewestFirst orders transactions by date, most recent first. Transactions
// on the same day keep their relative order.
func SortNewestFirst(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		return b.Date.Time().Compare(a.Date.Time())
	})
}

// Filter narrows a transaction list the way the transactions view does.
type Filter struct {
	// Search matches name, description or merchant, case-insensitively.
	Search string
	// Category must match exactly when set.
	Category string
}

func FilterTransactions(txs []Transaction, f Filter) []Transaction {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]Transaction, 0, len(txs))

	for _, t := range txs {
		if f.Category != "" && t.Category != f.Category {
			continue
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(t.Name), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) &&
			!strings.Contains(strings.ToLower(t.MerchantName), search) {
			continue
		}

		out = append(out, t)
	}

	return out
}

// Categories lists the distinct categories of txs in alphabetical order.
func Categories(txs []Transaction) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)

	for _, t := range txs {
		if _, ok := seen[t.Category]; ok {
			continue
		}

		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}

	slices.Sort(out)

	return out
}

type InstitutionGroup struct {
	Institution string    `json:"institution"`
	Accounts    []Account `json:"accounts"`
}

// GroupByInstitution buckets accounts by institution, in order of first occurrence.
func GroupByInstitution(accounts []Account) []InstitutionGroup {
	index := make(map[string]int)
	groups := make([]InstitutionGroup, 0)

	for _, a := range accounts {
		i, ok := index[a.InstitutionName]
		if !ok {
			i = len(groups)
			index[a.InstitutionName] = i
			groups = append(groups, InstitutionGroup{Institution: a.InstitutionName})
		}

		groups[i].Accounts = append(groups[i].Accounts, a)
	}

	return groups
}

// AccountTypes lists the distinct lower-cased account types, falling back to
// the subtype and then "unknown".
func AccountTypes(accounts []Account) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)

	for _, a := range accounts {
		t := strings.ToLower(cmp.Or(a.Type, a.Subtype, "unknown"))
		if _, ok := seen[t]; ok {
			continue
		}

		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}
