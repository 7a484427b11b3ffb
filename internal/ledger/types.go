package ledger

import "time"

type LineType string

const (
	LineIncome    LineType = "income"
	LineExpense   LineType = "expense"
	LineAsset     LineType = "asset"
	LineLiability LineType = "liability"
)

type Line struct {
	Type   LineType
	Amount int64
}

type Transaction struct {
	ID                  string
	AccountID           string
	SettlementAccountID *string
	Date                time.Time
	SettlementDate      *time.Time
	TotalAmount         int64
	IsCashSettled       bool
	SettledAmount       int64
	Lines               []Line
}

type Effect struct {
	AccountID     string
	EffectiveDate time.Time
	Amount        int64
}

type Opening struct {
	Balance int64
	Date    time.Time
}

// NormalizeLineType folds the aliases accepted at the API boundary onto the
// four canonical line types. Anything unrecognized is returned as-is and
// contributes nothing to settlement sums.
func NormalizeLineType(raw string) LineType {
	switch raw {
	case "advance":
		return LineAsset
	case "loan":
		return LineLiability
	default:
		return LineType(raw)
	}
}

func IsKnownLineType(t LineType) bool {
	switch t {
	case LineIncome, LineExpense, LineAsset, LineLiability:
		return true
	}
	return false
}
