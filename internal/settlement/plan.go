package settlement

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/sheikh-saqib/tripsync/internal/models"
	"github.com/shopspring/decimal"
)

// SettledLine is the only line of a settled plan.
const SettledLine = "Everyone is settled up!"

// Plan is an ordered list of transfers. A plan with Settled set has no transfers
// and means the balances were computed and nobody owes anything, as opposed to a
// nil *Plan, which means nothing was computed.
type Plan struct {
	Transfers []models.TransferInstruction `json:"transfers"`
	Settled   bool                         `json:"settled"`
}

func settled() *Plan {
	return &Plan{Transfers: []models.TransferInstruction{}, Settled: true}
}

// Total returns the sum of all transfer amounts.
func (p *Plan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, t := range p.Transfers {
		total = total.Add(t.Amount)
	}
	return total
}

// Lines renders the plan for people, e.g. "Ola → Ala: 10.00 €", using the
// fraction digits and symbol of the given ISO currency code.
func (p *Plan) Lines(currency string) []string {
	if p.Settled {
		return []string{SettledLine}
	}
	lines := make([]string, 0, len(p.Transfers))
	for _, t := range p.Transfers {
		lines = append(lines, fmt.Sprintf("%s → %s: %s", t.From, t.To, FormatAmount(t.Amount, currency)))
	}
	return lines
}

// FormatAmount renders amount with the currency's fraction digits followed by its
// symbol. Unknown codes fall back to two digits and the code itself.
func FormatAmount(amount decimal.Decimal, currency string) string {
	fraction, symbol := 2, currency
	if cur := money.GetCurrency(currency); cur != nil {
		fraction, symbol = cur.Fraction, cur.Grapheme
	}
	return amount.StringFixed(int32(fraction)) + " " + symbol
}
