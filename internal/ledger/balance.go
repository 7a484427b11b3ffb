package ledger

// Recompute derives the authoritative balance for one account from its opening
// state and the settlement effects of the full transaction history. Effects
// dated before the account's opening date are pre-inception noise and are
// excluded. Summation is commutative, so effect order does not matter.
//
// The result is a pure function of its inputs: running it twice over the same
// snapshot always yields the same balance.
func Recompute(accountID string, opening Opening, effects []Effect) int64 {
	balance := opening.Balance
	for _, effect := range effects {
		if effect.AccountID != accountID {
			continue
		}
		if !opening.Date.IsZero() && effect.EffectiveDate.Before(opening.Date) {
			continue
		}
		balance += effect.Amount
	}
	return balance
}
