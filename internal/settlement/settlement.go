// Package settlement turns a list of who-paid-what into net balances and a short
// list of peer-to-peer transfers that brings every balance back to zero.
//
// Everything here is a pure function of its inputs: no state, no I/O.
package settlement

import (
	"sort"

	"github.com/sheikh-saqib/tripsync/internal/models"
	"github.com/shopspring/decimal"
)

// Tolerance is the largest balance magnitude still considered settled.
var Tolerance = decimal.New(1, -2)

// SplitGroup returns the names every expense is shared across: the roster's
// display names when at least one is set, otherwise every distinct payer.
// Blank and duplicate names are skipped; order is first appearance.
func SplitGroup(roster []models.Participant, expenses []models.ExpenseRecord) []string {
	group := distinct(models.Names(roster))
	if len(group) > 0 {
		return group
	}
	payers := make([]string, 0, len(expenses))
	for _, e := range expenses {
		payers = append(payers, e.PayerName)
	}
	return distinct(payers)
}

// ComputeBalances credits each payer with what they paid and charges every member
// of splitGroup an equal share of every expense. A payer outside splitGroup is
// credited but never charged.
//
// Balances are rounded to cents, half away from zero, and nothing else: each one
// is within half a cent of its exact value, so the total can drift off zero by
// up to half a cent per balance.
//
// The result lists splitGroup first, then outside payers in order of appearance.
func ComputeBalances(expenses []models.ExpenseRecord, splitGroup []string) []models.Balance {
	keys := distinct(splitGroup)
	members := len(keys)
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	for _, e := range expenses {
		if _, ok := index[e.PayerName]; !ok {
			index[e.PayerName] = len(keys)
			keys = append(keys, e.PayerName)
		}
	}

	exact := make([]decimal.Decimal, len(keys))
	for _, e := range expenses {
		exact[index[e.PayerName]] = exact[index[e.PayerName]].Add(e.Amount)
		if members == 0 {
			continue
		}
		share := e.Amount.Div(decimal.NewFromInt(int64(members)))
		for i := 0; i < members; i++ {
			exact[i] = exact[i].Sub(share)
		}
	}

	out := make([]models.Balance, len(keys))
	for i, k := range keys {
		out[i] = models.Balance{Key: k, Amount: exact[i].Round(2)}
	}
	return out
}

// Classify splits balances into debtors (below -Tolerance) and creditors (above
// Tolerance). Settled balances are dropped.
func Classify(balances []models.Balance) (debtors, creditors []models.Balance) {
	negTolerance := Tolerance.Neg()
	for _, b := range balances {
		switch {
		case b.Amount.LessThan(negTolerance):
			debtors = append(debtors, b)
		case b.Amount.GreaterThan(Tolerance):
			creditors = append(creditors, b)
		}
	}
	return debtors, creditors
}

// GeneratePlan pairs debtors with creditors greedily: the largest debt pays the
// largest credit, as much as both allow, until one side runs out. Nobody pays or
// receives more than their balance, and the plan takes at most
// debtors+creditors-1 transfers. When nobody
// owes anything the settled plan is returned.
func GeneratePlan(balances []models.Balance) *Plan {
	debtors, creditors := Classify(balances)
	if len(debtors) == 0 || len(creditors) == 0 {
		return settled()
	}

	sort.SliceStable(debtors, func(i, j int) bool {
		if c := debtors[i].Amount.Cmp(debtors[j].Amount); c != 0 {
			return c < 0
		}
		return debtors[i].Key < debtors[j].Key
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		if c := creditors[i].Amount.Cmp(creditors[j].Amount); c != 0 {
			return c > 0
		}
		return creditors[i].Key < creditors[j].Key
	})

	plan := &Plan{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		amount := decimal.Min(debtor.Amount.Neg(), creditor.Amount)
		plan.Transfers = append(plan.Transfers, models.TransferInstruction{
			From:   debtor.Key,
			To:     creditor.Key,
			Amount: amount,
		})

		debtor.Amount = debtor.Amount.Add(amount)
		creditor.Amount = creditor.Amount.Sub(amount)

		if debtor.Amount.Abs().LessThan(Tolerance) {
			i++
		}
		if creditor.Amount.Abs().LessThan(Tolerance) {
			j++
		}
	}

	if len(plan.Transfers) == 0 {
		return settled()
	}
	return plan
}

// Settle runs the whole pipeline on a ledger snapshot. No expenses means the
// settled plan.
func Settle(roster []models.Participant, expenses []models.ExpenseRecord) *Plan {
	if len(expenses) == 0 {
		return settled()
	}
	return GeneratePlan(ComputeBalances(expenses, SplitGroup(roster, expenses)))
}

func distinct(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
