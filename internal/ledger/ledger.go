package ledger

import (
	"errors"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sheikh-saqib/tripsync/internal/models"
	"github.com/sheikh-saqib/tripsync/internal/settlement"
	"github.com/sheikh-saqib/tripsync/internal/synced"
	"github.com/shopspring/decimal"
)

// DefaultHeadCount is the group size assumed by the per-head estimate while the
// roster is still empty.
const DefaultHeadCount = 4

// inputValidate checks the shape of ledger input. Amounts are checked by hand:
// the validator has no notion of decimal.Decimal.
var inputValidate *validator.Validate

func init() {
	inputValidate = validator.New()
	inputValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("json")
	})
}

type expenseInput struct {
	Description string `json:"description" validate:"required"`
	PayerName   string `json:"payer" validate:"required"`
}

// Ledger is the expense list of the trip plus the squad it is shared by.
// Both live in synced cells, so every mutation is applied locally first and then
// replaces the whole remote list.
type Ledger struct {
	expenses *synced.Cell[[]models.ExpenseRecord] // "budget" path
	squad    *synced.Cell[[]models.Participant]   // "squad" path
	newID    func() string
	logger   *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDGenerator replaces the default time-ordered UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// NewLedger creates a Ledger over the two cells.
func NewLedger(expenses *synced.Cell[[]models.ExpenseRecord], squad *synced.Cell[[]models.Participant], opts ...Option) *Ledger {
	l := &Ledger{
		expenses: expenses,
		squad:    squad,
		newID:    newTimeOrderedID,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddExpense validates the input and appends a new record at the end of the list.
func (l *Ledger) AddExpense(description string, amount decimal.Decimal, payerName string) (models.ExpenseRecord, error) {
	in := expenseInput{
		Description: strings.TrimSpace(description),
		PayerName:   strings.TrimSpace(payerName),
	}
	if err := inputValidate.Struct(in); err != nil {
		return models.ExpenseRecord{}, validationError(err)
	}
	if !amount.IsPositive() {
		return models.ExpenseRecord{}, &models.ValidationError{Field: "amount", Reason: "must be a positive number"}
	}

	record := models.ExpenseRecord{
		ID:          l.newID(),
		Description: in.Description,
		Amount:      amount,
		PayerName:   payerName, // kept verbatim, it must match a roster name
	}
	l.expenses.Update(func(current []models.ExpenseRecord) []models.ExpenseRecord {
		next := make([]models.ExpenseRecord, 0, len(current)+1)
		next = append(next, current...)
		return append(next, record)
	})

	l.logger.Info("expense added", "expense_id", record.ID, "payer", record.PayerName, "amount", record.Amount.String())
	return record, nil
}

// RemoveExpense deletes the record with id.
func (l *Ledger) RemoveExpense(id string) error {
	match := func(e models.ExpenseRecord) bool { return e.ID == id }
	if !slices.ContainsFunc(l.expenses.Read(), match) {
		return &models.NotFoundError{Kind: "expense", ID: id}
	}

	l.expenses.Update(func(current []models.ExpenseRecord) []models.ExpenseRecord {
		return slices.DeleteFunc(slices.Clone(current), match)
	})

	l.logger.Info("expense removed", "expense_id", id)
	return nil
}

// List returns a copy of the records in insertion order.
func (l *Ledger) List() []models.ExpenseRecord {
	return slices.Clone(l.expenses.Read())
}

// Total returns the sum of all amounts.
func (l *Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.expenses.Read() {
		total = total.Add(e.Amount)
	}
	return total
}

// PerHeadEstimate divides the total by headCount (at least 1). It is a display
// figure only; settlement never uses it.
func (l *Ledger) PerHeadEstimate(headCount int) decimal.Decimal {
	return l.Total().Div(decimal.NewFromInt(int64(max(headCount, 1))))
}

// HeadCount is the roster size, or DefaultHeadCount when nobody is on it yet.
func (l *Ledger) HeadCount() int {
	if n := len(l.squad.Read()); n > 0 {
		return n
	}
	return DefaultHeadCount
}

// Balances returns the net balance of everyone involved in the current snapshot.
func (l *Ledger) Balances() []models.Balance {
	expenses := l.expenses.Read()
	return settlement.ComputeBalances(expenses, settlement.SplitGroup(l.squad.Read(), expenses))
}

// Settle computes a transfer plan from the current roster and expenses.
func (l *Ledger) Settle() *settlement.Plan {
	return settlement.Settle(l.squad.Read(), l.expenses.Read())
}

// ParseAmount reads a user-typed amount. Both "12.50" and "12,50" are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &models.ValidationError{Field: "amount", Reason: "not a number"}
	}
	return amount, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &models.ValidationError{Field: verrs[0].Field(), Reason: "must not be empty"}
	}
	return &models.ValidationError{Field: "input", Reason: err.Error()}
}

func newTimeOrderedID() string {
	return uuid.Must(uuid.NewV7()).String()
}
