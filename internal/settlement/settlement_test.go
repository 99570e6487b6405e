package settlement

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/sheikh-saqib/tripsync/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expense(id, payer, amount string) models.ExpenseRecord {
	return models.ExpenseRecord{ID: id, Description: "x", Amount: d(amount), PayerName: payer}
}

func roster(names ...string) []models.Participant {
	out := make([]models.Participant, len(names))
	for i, n := range names {
		out[i] = models.Participant{ID: fmt.Sprint(i), Name: n}
	}
	return out
}

func balanceMap(balances []models.Balance) map[string]string {
	out := make(map[string]string, len(balances))
	for _, b := range balances {
		out[b.Key] = b.Amount.StringFixed(2)
	}
	return out
}

// =============================================================================
// Scenarios
// =============================================================================

func TestScenario_TwoPeopleUnevenPayments(t *testing.T) {
	expenses := []models.ExpenseRecord{expense("1", "A", "30.00"), expense("2", "B", "10.00")}
	group := SplitGroup(roster("A", "B"), expenses)
	require.Equal(t, []string{"A", "B"}, group)

	balances := ComputeBalances(expenses, group)
	assert.Equal(t, map[string]string{"A": "10.00", "B": "-10.00"}, balanceMap(balances))

	plan := GeneratePlan(balances)
	require.False(t, plan.Settled)
	assert.Equal(t, []string{"B → A: 10.00 €"}, plan.Lines("EUR"))
}

func TestScenario_OnePayerThreeMembers(t *testing.T) {
	expenses := []models.ExpenseRecord{expense("1", "A", "60.00")}
	balances := ComputeBalances(expenses, SplitGroup(roster("A", "B", "C"), expenses))
	assert.Equal(t, map[string]string{"A": "40.00", "B": "-20.00", "C": "-20.00"}, balanceMap(balances))

	plan := GeneratePlan(balances)
	assert.Equal(t, []string{"B → A: 20.00 €", "C → A: 20.00 €"}, plan.Lines("EUR"))
}

func TestScenario_EmptyRosterEvenPayers(t *testing.T) {
	expenses := []models.ExpenseRecord{expense("1", "Tom", "50.00"), expense("2", "Jerry", "50.00")}
	group := SplitGroup(nil, expenses)
	assert.Equal(t, []string{"Tom", "Jerry"}, group)

	plan := Settle(nil, expenses)
	assert.True(t, plan.Settled)
	assert.Empty(t, plan.Transfers)
	assert.Equal(t, []string{SettledLine}, plan.Lines("EUR"))
}

func TestSettle_NoExpensesIsSettled(t *testing.T) {
	plan := Settle(roster("A", "B"), nil)
	require.NotNil(t, plan)
	assert.True(t, plan.Settled)
}

// =============================================================================
// Split group
// =============================================================================

func TestSplitGroup(t *testing.T) {
	expenses := []models.ExpenseRecord{expense("1", "Zed", "5"), expense("2", "Amy", "5"), expense("3", "Zed", "1")}

	tests := []struct {
		name   string
		roster []models.Participant
		want   []string
	}{
		{"roster wins over payers", roster("A", "B"), []string{"A", "B"}},
		{"blank and duplicate names dropped", roster("A", "", "A", "B"), []string{"A", "B"}},
		{"all blank falls back to payers", roster("", ""), []string{"Zed", "Amy"}},
		{"empty roster uses payers", nil, []string{"Zed", "Amy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitGroup(tt.roster, expenses))
		})
	}
}

// =============================================================================
// Balances
// =============================================================================

func TestComputeBalances_GuestPayerIsCreditedButNotCharged(t *testing.T) {
	expenses := []models.ExpenseRecord{expense("1", "Guest", "30.00")}
	balances := ComputeBalances(expenses, []string{"A", "B", "C"})

	assert.Equal(t, map[string]string{"A": "-10.00", "B": "-10.00", "C": "-10.00", "Guest": "30.00"}, balanceMap(balances))
	assert.Equal(t, "Guest", balances[3].Key, "outside payers come after the split group")
}

func TestComputeBalances_RoundsEachBalanceOnItsOwn(t *testing.T) {
	tests := []struct {
		name   string
		payer  string
		amount string
		group  []string
		want   map[string]string
	}{
		{"10 over 3", "A", "10.00", []string{"A", "B", "C"}, map[string]string{"A": "6.67", "B": "-3.33", "C": "-3.33"}},
		{"20 over 3", "A", "20.00", []string{"A", "B", "C"}, map[string]string{"A": "13.33", "B": "-6.67", "C": "-6.67"}},
		// 1.00 over 7 leaves the rounded total 2 cents above zero
		{"1 over 7", "A", "1.00", []string{"A", "B", "C", "D", "E", "F", "G"},
			map[string]string{"A": "0.86", "B": "-0.14", "C": "-0.14", "D": "-0.14", "E": "-0.14", "F": "-0.14", "G": "-0.14"}},
		// shares of 0.025 round to 0.03 in magnitude
		{"half away from zero", "Guest", "0.05", []string{"A", "B"}, map[string]string{"A": "-0.03", "B": "-0.03", "Guest": "0.05"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := ComputeBalances([]models.ExpenseRecord{expense("1", tt.payer, tt.amount)}, tt.group)
			assert.Equal(t, tt.want, balanceMap(balances))
		})
	}
}

func TestSettle_TwentyOverThree(t *testing.T) {
	plan := Settle(roster("A", "B", "C"), []models.ExpenseRecord{expense("1", "A", "20.00")})
	assert.Equal(t, []string{"B → A: 6.67 €", "C → A: 6.66 €"}, plan.Lines("EUR"))
}

func TestSettle_TenOverThree(t *testing.T) {
	plan := Settle(roster("A", "B", "C"), []models.ExpenseRecord{expense("1", "A", "10.00")})
	assert.Equal(t, []string{"B → A: 3.33 €", "C → A: 3.33 €"}, plan.Lines("EUR"))
}

func TestComputeBalances_OrderIndependentAndIdempotent(t *testing.T) {
	expenses := []models.ExpenseRecord{
		expense("1", "A", "12.34"),
		expense("2", "B", "56.78"),
		expense("3", "C", "9.99"),
		expense("4", "A", "0.01"),
	}
	reversed := []models.ExpenseRecord{expenses[3], expenses[2], expenses[1], expenses[0]}
	group := []string{"A", "B", "C"}

	first := ComputeBalances(expenses, group)
	assert.Equal(t, balanceMap(first), balanceMap(ComputeBalances(expenses, group)))
	assert.Equal(t, balanceMap(first), balanceMap(ComputeBalances(reversed, group)))
}

func TestClassify_Tolerance(t *testing.T) {
	balances := []models.Balance{
		{Key: "a", Amount: d("-0.01")},
		{Key: "b", Amount: d("0.01")},
		{Key: "c", Amount: d("-0.02")},
		{Key: "e", Amount: d("0.02")},
		{Key: "f", Amount: decimal.Zero},
	}
	debtors, creditors := Classify(balances)
	assert.Equal(t, []models.Balance{{Key: "c", Amount: d("-0.02")}}, debtors)
	assert.Equal(t, []models.Balance{{Key: "e", Amount: d("0.02")}}, creditors)
}

// =============================================================================
// Plan
// =============================================================================

func TestGeneratePlan_OrdersLargestFirst(t *testing.T) {
	plan := GeneratePlan([]models.Balance{
		{Key: "small", Amount: d("-5")},
		{Key: "big", Amount: d("-25")},
		{Key: "c1", Amount: d("10")},
		{Key: "c2", Amount: d("20")},
	})
	require.Len(t, plan.Transfers, 3)
	assert.Equal(t, models.TransferInstruction{From: "big", To: "c2", Amount: d("20")}, plan.Transfers[0])
	assert.Equal(t, "big", plan.Transfers[1].From)
	assert.Equal(t, "c1", plan.Transfers[1].To)
	assert.True(t, d("5").Equal(plan.Transfers[1].Amount))
	assert.Equal(t, "small", plan.Transfers[2].From)
	assert.True(t, d("30").Equal(plan.Total()))
}

func TestGeneratePlan_AllSettled(t *testing.T) {
	plan := GeneratePlan([]models.Balance{{Key: "a", Amount: d("0.01")}, {Key: "b", Amount: d("-0.01")}})
	assert.True(t, plan.Settled)
	assert.True(t, plan.Total().IsZero())
}

func TestGeneratePlan_RandomLedgersHoldGuarantees(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	names := []string{"Ala", "Ola", "Jan", "Ewa", "Piotr", "Kasia", "Tomek"}
	halfCent := decimal.New(5, -3)
	balanced := 0

	for round := 0; round < 200; round++ {
		size := 1 + rng.Intn(len(names))
		group := names[:size]

		var expenses []models.ExpenseRecord
		for i := 0; i < 1+rng.Intn(12); i++ {
			payer := names[rng.Intn(len(names))] // sometimes outside the group
			cents := 1 + rng.Int63n(50000)
			expenses = append(expenses, models.ExpenseRecord{
				ID:        fmt.Sprint(i),
				Amount:    decimal.New(cents, -2),
				PayerName: payer,
			})
		}

		balances := ComputeBalances(expenses, group)
		sum := decimal.Zero
		for _, b := range balances {
			sum = sum.Add(b.Amount)
		}
		drift := halfCent.Mul(decimal.NewFromInt(int64(len(balances))))
		require.True(t, sum.Abs().LessThanOrEqual(drift), "round %d: balances sum to %s", round, sum)

		debtors, creditors := Classify(balances)
		plan := GeneratePlan(balances)
		if plan.Settled {
			assert.True(t, len(debtors) == 0 || len(creditors) == 0, "round %d", round)
			continue
		}
		assert.LessOrEqual(t, len(plan.Transfers), len(debtors)+len(creditors)-1, "round %d", round)

		paid := map[string]decimal.Decimal{}
		received := map[string]decimal.Decimal{}
		for _, tr := range plan.Transfers {
			require.True(t, tr.Amount.IsPositive(), "round %d: non-positive transfer", round)
			paid[tr.From] = paid[tr.From].Add(tr.Amount)
			received[tr.To] = received[tr.To].Add(tr.Amount)
		}
		for _, b := range debtors {
			assert.True(t, paid[b.Key].LessThanOrEqual(b.Amount.Abs()), "round %d: %s paid %s, owed %s", round, b.Key, paid[b.Key], b.Amount)
		}
		for _, b := range creditors {
			assert.True(t, received[b.Key].LessThanOrEqual(b.Amount), "round %d: %s received %s, owed %s", round, b.Key, received[b.Key], b.Amount)
		}

		// when debts and credits match, the plan settles them exactly
		owed, owing := decimal.Zero, decimal.Zero
		for _, b := range debtors {
			owed = owed.Add(b.Amount.Abs())
		}
		for _, b := range creditors {
			owing = owing.Add(b.Amount)
		}
		if !owed.Equal(owing) {
			continue
		}
		balanced++
		for _, b := range debtors {
			assert.True(t, paid[b.Key].Equal(b.Amount.Abs()), "round %d: %s paid %s, owed %s", round, b.Key, paid[b.Key], b.Amount)
		}
		for _, b := range creditors {
			assert.True(t, received[b.Key].Equal(b.Amount), "round %d: %s received %s, owed %s", round, b.Key, received[b.Key], b.Amount)
		}
	}
	assert.Greater(t, balanced, 5)
}

func TestPlanLines_Currencies(t *testing.T) {
	plan := &Plan{Transfers: []models.TransferInstruction{{From: "A", To: "B", Amount: d("3.5")}}}

	assert.Equal(t, []string{"A → B: 3.50 €"}, plan.Lines("EUR"))
	assert.Equal(t, []string{"A → B: 4 ¥"}, plan.Lines("JPY"))
	assert.Equal(t, []string{"A → B: 3.50 XYZ"}, plan.Lines("XYZ"))
}
