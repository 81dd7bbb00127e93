package importer

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "amount" with value "-10.00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

var (
	isoLayouts = []string{"2006-01-02", "2006/01/02"}
	usLayouts  = []string{"2006-01-02", "01/02/2006", "1/2/2006", "01/02/06", "1/2/06"}
	euLayouts  = []string{"02-01-2006", "02/01/2006", "2006-01-02"}
)

// Profile describes the column layout of a CSV statement format. Column names
// are matched case-insensitively after trimming.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string // used when AmountMode == amountSingle
	DebitCol   string // used when AmountMode == amountSplit
	CreditCol  string // used when AmountMode == amountSplit

	DateLayouts []string
	// DecimalComma selects "1.234,56" amounts instead of "1,234.56".
	DecimalComma bool
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// Optional columns picked up by every profile when present.
const (
	colCategory        = "category"
	colMerchant        = "merchant_name"
	colMerchantShort   = "merchant"
	colAccountID       = "account_id"
	colAccountName     = "account_name"
	colAccount         = "account"
	colTransactionType = "transaction_type"
	colType            = "type"
	colPending         = "pending"
	colDescription     = "description"
	colCurrency        = "currency"
	colISOCurrency     = "iso_currency_code"
	colTransactionID   = "transaction_id"
	colInstitution     = "institution_name"
)

// profiles is the ordered list of statement formats tried during detection.
// More specific profiles come first to avoid false matches.
var profiles = []Profile{
	{
		Name:         "cgd-cartao",
		DateCol:      "data",
		DescCol:      "descrição",
		AmountMode:   amountSplit,
		DebitCol:     "débito",
		CreditCol:    "crédito",
		DateLayouts:  euLayouts,
		DecimalComma: true,
	},
	{
		Name:         "cgd-extrato",
		DateCol:      "data mov.",
		DescCol:      "descrição",
		AmountMode:   amountSingle,
		AmountCol:    "movimento",
		DateLayouts:  euLayouts,
		DecimalComma: true,
	},
	{
		Name:         "cgd-conta",
		DateCol:      "data mov.",
		DescCol:      "descrição",
		AmountMode:   amountSingle,
		AmountCol:    "montante",
		DateLayouts:  euLayouts,
		DecimalComma: true,
	},
	{
		Name:        "bank",
		DateCol:     "date",
		DescCol:     "description",
		AmountMode:  amountSplit,
		DebitCol:    "debit",
		CreditCol:   "credit",
		DateLayouts: usLayouts,
	},
	{
		Name:        "generic",
		DateCol:     "date",
		DescCol:     "name",
		AmountMode:  amountSingle,
		AmountCol:   "amount",
		DateLayouts: isoLayouts,
	},
	{
		Name:        "generic-description",
		DateCol:     "date",
		DescCol:     "description",
		AmountMode:  amountSingle,
		AmountCol:   "amount",
		DateLayouts: usLayouts,
	},
}
