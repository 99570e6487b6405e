package models

import "github.com/shopspring/decimal"

// Balance is the derived net position of one participant: positive means the
// participant is owed money, negative means the participant owes money.
type Balance struct {
	Key    string          `json:"key"`    // participant display name
	Amount decimal.Decimal `json:"amount"` // rounded to 2 places
}

// TransferInstruction asks From to pay Amount to To.
type TransferInstruction struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"` // always positive
}
