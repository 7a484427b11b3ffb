package ledger

// Classify decides whether a transaction moves cash, and if so against which
// account, on which date, and for what signed amount. A transaction that is
// not yet settled, or whose lines net to nothing, produces no effect.
func Classify(tx Transaction) (Effect, bool) {
	var inflow, outflow int64
	for _, line := range tx.Lines {
		switch line.Type {
		case LineIncome, LineLiability:
			inflow += line.Amount
		case LineExpense, LineAsset:
			outflow += line.Amount
		}
	}
	if inflow == 0 && outflow == 0 {
		return Effect{}, false
	}

	settled := tx.IsCashSettled || (tx.SettlementAccountID != nil && tx.SettledAmount > 0)
	if !settled {
		return Effect{}, false
	}

	targetAccountID := tx.AccountID
	if tx.SettlementAccountID != nil {
		targetAccountID = *tx.SettlementAccountID
	}

	effectiveDate := tx.Date
	if tx.SettlementDate != nil {
		effectiveDate = *tx.SettlementDate
	}

	var amount int64
	if tx.SettlementAccountID != nil {
		magnitude := tx.SettledAmount
		if tx.IsCashSettled {
			magnitude = tx.TotalAmount
		}
		if inflow > outflow {
			amount = magnitude
		} else {
			amount = -magnitude
		}
	} else {
		amount = inflow - outflow
	}
	if amount == 0 {
		return Effect{}, false
	}

	return Effect{
		AccountID:     targetAccountID,
		EffectiveDate: effectiveDate,
		Amount:        amount,
	}, true
}

func ClassifyAll(txs []Transaction) []Effect {
	effects := make([]Effect, 0, len(txs))
	for _, tx := range txs {
		if effect, ok := Classify(tx); ok {
			effects = append(effects, effect)
		}
	}
	return effects
}
