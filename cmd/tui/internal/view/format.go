package view

import (
	"context"
	"time"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
	"github.com/MrJamesThe3rd/finlink/internal/format"
)

// serviceTimeout bounds one screen load, including every upstream bank call.
const serviceTimeout = 30 * time.Second

func FormatAmount(amount float64, currency string) string {
	return format.Currency(amount, currency)
}

func FormatDate(d finance.Date) string {
	return format.Date(d.String())
}

func ServiceCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), serviceTimeout)
}
