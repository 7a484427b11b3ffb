package models

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	HouseholdID  string    `db:"household_id" json:"household_id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Account struct {
	ID             string     `db:"id" json:"id"`
	HouseholdID    string     `db:"household_id" json:"household_id"`
	Name           string     `db:"name" json:"name"`
	Kind           string     `db:"kind" json:"kind"`
	OpeningBalance int64      `db:"opening_balance" json:"opening_balance"`
	OpeningDate    *time.Time `db:"opening_date" json:"opening_date,omitempty"`
	CurrentBalance int64      `db:"current_balance" json:"current_balance"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

type Transaction struct {
	ID                  string     `db:"id" json:"id"`
	HouseholdID         string     `db:"household_id" json:"household_id"`
	AccountID           string     `db:"account_id" json:"account_id"`
	SettlementAccountID *string    `db:"settlement_account_id" json:"settlement_account_id,omitempty"`
	Date                time.Time  `db:"date" json:"date"`
	SettlementDate      *time.Time `db:"settlement_date" json:"settlement_date,omitempty"`
	TotalAmount         int64      `db:"total_amount" json:"total_amount"`
	IsCashSettled       bool       `db:"is_cash_settled" json:"is_cash_settled"`
	SettledAmount       int64      `db:"settled_amount" json:"settled_amount"`
	Memo                string     `db:"memo" json:"memo"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

type TransactionLine struct {
	ID            string  `db:"id" json:"id"`
	TransactionID string  `db:"transaction_id" json:"transaction_id"`
	CategoryID    *string `db:"category_id" json:"category_id,omitempty"`
	LineType      string  `db:"line_type" json:"line_type"`
	Amount        int64   `db:"amount" json:"amount"`
	Description   string  `db:"description" json:"description"`
}

type Category struct {
	ID          string  `db:"id" json:"id"`
	HouseholdID string  `db:"household_id" json:"household_id"`
	ParentID    *string `db:"parent_id" json:"parent_id,omitempty"`
	Kind        string  `db:"kind" json:"kind"`
	Name        string  `db:"name" json:"name"`
}

type RecurringTransaction struct {
	ID                  string  `db:"id" json:"id"`
	HouseholdID         string  `db:"household_id" json:"household_id"`
	AccountID           string  `db:"account_id" json:"account_id"`
	SettlementAccountID *string `db:"settlement_account_id" json:"settlement_account_id,omitempty"`
	Name                string  `db:"name" json:"name"`
	DayOfMonth          int     `db:"day_of_month" json:"day_of_month"`
	PaymentDelayDays    int     `db:"payment_delay_days" json:"payment_delay_days"`
	IsCashSettled       bool    `db:"is_cash_settled" json:"is_cash_settled"`
	IsActive            bool    `db:"is_active" json:"is_active"`
}

type RecurringTransactionLine struct {
	ID          string  `db:"id" json:"id"`
	RecurringID string  `db:"recurring_id" json:"recurring_id"`
	CategoryID  *string `db:"category_id" json:"category_id,omitempty"`
	LineType    string  `db:"line_type" json:"line_type"`
	Amount      int64   `db:"amount" json:"amount"`
	Description string  `db:"description" json:"description"`
}

type QuickEntry struct {
	ID           string  `db:"id" json:"id"`
	HouseholdID  string  `db:"household_id" json:"household_id"`
	AccountID    string  `db:"account_id" json:"account_id"`
	CategoryID   *string `db:"category_id" json:"category_id,omitempty"`
	Name         string  `db:"name" json:"name"`
	LineType     string  `db:"line_type" json:"line_type"`
	Counterparty string  `db:"counterparty" json:"counterparty"`
}
