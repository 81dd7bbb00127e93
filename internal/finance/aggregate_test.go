package finance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
)

func account(balance float64) finance.Account {
	return finance.Account{Balance: balance, Balances: finance.Balances{Current: balance}}
}

func tx(id, category string, amount float64, date finance.Date) finance.Transaction {
	return finance.Transaction{ID: id, Category: category, Amount: amount, Date: date}
}

func TestBalanceAggregates(t *testing.T) {
	accounts := []finance.Account{account(100), account(-30)}

	assert.Equal(t, 70.0, finance.NetWorth(accounts))
	assert.Equal(t, 100.0, finance.TotalAssets(accounts))
	assert.Equal(t, 30.0, finance.TotalDebt(accounts))
}

func TestBalanceAggregates_Empty(t *testing.T) {
	assert.Equal(t, 0.0, finance.NetWorth(nil))
	assert.Equal(t, 0.0, finance.TotalAssets([]finance.Account{}))
	assert.Equal(t, 0.0, finance.TotalDebt(nil))
}

func TestNetWorth_NoFloatDrift(t *testing.T) {
	accounts := []finance.Account{account(0.1), account(0.2)}
	assert.Equal(t, 0.3, finance.NetWorth(accounts))
}

func TestCategoryTotals(t *testing.T) {
	d := finance.NewDate(2025, 3, 1)

	got := finance.CategoryTotals([]finance.Transaction{
		tx("1", "Food", -10, d),
		tx("2", "Food", -5, d),
		tx("3", "Income", 200, d),
	})

	assert.Equal(t, []finance.CategoryTotal{{Category: "Food", Total: 15}}, got)
}

func TestCategoryTotals_InsertionOrder(t *testing.T) {
	d := finance.NewDate(2025, 3, 1)

	got := finance.CategoryTotals([]finance.Transaction{
		tx("1", "Travel", -1, d),
		tx("2", "Food", -2, d),
		tx("3", "Travel", -3, d),
	})

	assert.Equal(t, []finance.CategoryTotal{
		{Category: "Travel", Total: 4},
		{Category: "Food", Total: 2},
	}, got)
}

func TestCategoryTotals_Empty(t *testing.T) {
	assert.Empty(t, finance.CategoryTotals(nil))
}

func TestSummarizeCashflow(t *testing.T) {
	d := finance.NewDate(2025, 3, 1)
	txs := []finance.Transaction{
		tx("1", "Food", -75.21, d),
		tx("2", "Food", -32.50, d),
		tx("3", "Income", 1250, d),
	}

	got := finance.SummarizeCashflow(txs)

	assert.Equal(t, 3, got.TotalTransactions)
	assert.Equal(t, 1250.0, got.TotalIncome)
	assert.Equal(t, 107.71, got.TotalExpenses)
	assert.Equal(t, 1142.29, got.NetCashflow)
	assert.LessOrEqual(t, finance.ExpenseSum(txs), 0.0)
	assert.Equal(t, got.TotalExpenses, -finance.ExpenseSum(txs))
}

func TestSummarizeCashflow_Empty(t *testing.T) {
	assert.Equal(t, finance.Cashflow{}, finance.SummarizeCashflow(nil))
	assert.Equal(t, 0.0, finance.ExpenseSum(nil))
}

func TestMonthlyTotals(t *testing.T) {
	txs := []finance.Transaction{
		tx("1", "Food", -10, finance.NewDate(2025, 1, 5)),
		tx("2", "Food", -15.5, finance.NewDate(2025, 3, 2)),
		tx("3", "Rent", -100, finance.NewDate(2025, 3, 28)),
		tx("4", "Income", 500, finance.NewDate(2025, 3, 15)),
		tx("5", "Old", -999, finance.NewDate(2024, 10, 1)),
	}

	got := finance.MonthlyTotals(txs, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), 4)

	assert.Equal(t, []finance.MonthlySpendingPoint{
		{Month: "December", Key: "2024-12", TotalSpent: 0},
		{Month: "January", Key: "2025-01", TotalSpent: 10},
		{Month: "February", Key: "2025-02", TotalSpent: 0},
		{Month: "March", Key: "2025-03", TotalSpent: 115.5},
	}, got)
}

func TestMonthlyTotals_NoMonths(t *testing.T) {
	assert.Empty(t, finance.MonthlyTotals(nil, time.Now(), 0))
}

func TestSortNewestFirst(t *testing.T) {
	txs := []finance.Transaction{
		tx("old", "", -1, finance.NewDate(2025, 1, 1)),
		tx("same-a", "", -1, finance.NewDate(2025, 2, 1)),
		tx("new", "", -1, finance.NewDate(2025, 3, 1)),
		tx("same-b", "", -1, finance.NewDate(2025, 2, 1)),
	}

	finance.SortNewestFirst(txs)

	ids := make([]string, len(txs))
	for i, t := range txs {
		ids[i] = t.ID
	}

	assert.Equal(t, []string{"new", "same-a", "same-b", "old"}, ids)
}

func TestFilterTransactions(t *testing.T) {
	txs := []finance.Transaction{
		{ID: "1", Name: "Whole Foods", Category: "Food"},
		{ID: "2", Name: "Payroll", Description: "ACME payroll", Category: "Income"},
		{ID: "3", Name: "Lunch", MerchantName: "Chipotle", Category: "Food"},
	}

	assert.Len(t, finance.FilterTransactions(txs, finance.Filter{}), 3)
	assert.Len(t, finance.FilterTransactions(txs, finance.Filter{Category: "Food"}), 2)

	got := finance.FilterTransactions(txs, finance.Filter{Search: "chip"})
	if assert.Len(t, got, 1) {
		assert.Equal(t, "3", got[0].ID)
	}

	got = finance.FilterTransactions(txs, finance.Filter{Search: "acme", Category: "Income"})
	if assert.Len(t, got, 1) {
		assert.Equal(t, "2", got[0].ID)
	}
}

func TestCategories(t *testing.T) {
	txs := []finance.Transaction{{Category: "Travel"}, {Category: "Food"}, {Category: "Travel"}}
	assert.Equal(t, []string{"Food", "Travel"}, finance.Categories(txs))
}

func TestGroupByInstitution(t *testing.T) {
	accounts := []finance.Account{
		{ID: "1", InstitutionName: "Chase"},
		{ID: "2", InstitutionName: "Ally"},
		{ID: "3", InstitutionName: "Chase"},
	}

	groups := finance.GroupByInstitution(accounts)

	if assert.Len(t, groups, 2) {
		assert.Equal(t, "Chase", groups[0].Institution)
		assert.Len(t, groups[0].Accounts, 2)
		assert.Equal(t, "Ally", groups[1].Institution)
	}
}

func TestAccountTypes(t *testing.T) {
	accounts := []finance.Account{
		{Type: "Depository"},
		{Subtype: "savings"},
		{},
		{Type: "depository"},
	}

	assert.Equal(t, []string{"depository", "savings", "unknown"}, finance.AccountTypes(accounts))
}
