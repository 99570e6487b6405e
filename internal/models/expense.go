package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ExpenseRecord represents one paid expense. Records are stored in insertion order
// under the "budget" path and are never mutated in place.
type ExpenseRecord struct {
	ID          string          // unique identifier, time ordered
	Description string          // what was paid for
	Amount      decimal.Decimal // always positive, in major currency units
	PayerName   string          // display name of whoever paid
}

// expenseJSON is the persisted shape, shared with the web clients of the same store.
type expenseJSON struct {
	ID   json.RawMessage `json:"id"`
	What string          `json:"what"`
	Cost json.RawMessage `json:"cost"`
	Who  string          `json:"who"`
}

func (e ExpenseRecord) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(e.ID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(expenseJSON{
		ID:   id,
		What: e.Description,
		// cost stays a JSON number so other clients can do arithmetic on it
		Cost: json.RawMessage(e.Amount.String()),
		Who:  e.PayerName,
	})
}

// UnmarshalJSON accepts ids written as numbers (millisecond timestamps) or strings,
// and costs written as numbers or numeric strings.
func (e *ExpenseRecord) UnmarshalJSON(data []byte) error {
	var raw expenseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var amount decimal.Decimal
	if len(raw.Cost) > 0 {
		if err := amount.UnmarshalJSON(raw.Cost); err != nil {
			return err
		}
	}

	*e = ExpenseRecord{
		ID:          scalarString(raw.ID),
		Description: raw.What,
		Amount:      amount,
		PayerName:   raw.Who,
	}
	return nil
}

// scalarString renders a JSON string or number as a plain string. Anything else is "".
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}
