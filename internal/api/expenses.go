package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sheikh-saqib/tripsync/internal/ledger"
	"github.com/sheikh-saqib/tripsync/internal/models"
	"github.com/sheikh-saqib/tripsync/internal/settlement"
)

type addExpenseRequest struct {
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"` // number or string, "12,50" allowed
	Payer       string          `json:"payer"`
}

type expensesResponse struct {
	Expenses  []models.ExpenseRecord `json:"expenses"`
	Total     string                 `json:"total"`
	PerHead   string                 `json:"per_head"`
	HeadCount int                    `json:"head_count"`
}

type settlementResponse struct {
	Settled   bool                         `json:"settled"`
	Transfers []models.TransferInstruction `json:"transfers"`
	Total     string                       `json:"total"`
	Lines     []string                     `json:"lines"`
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	l := s.app.Ledger
	heads := l.HeadCount()
	currency := s.app.Config.Currency
	writeJSON(w, http.StatusOK, expensesResponse{
		Expenses:  l.List(),
		Total:     settlement.FormatAmount(l.Total(), currency),
		PerHead:   settlement.FormatAmount(l.PerHeadEstimate(heads), currency),
		HeadCount: heads,
	})
}

func (s *Server) addExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := ledger.ParseAmount(strings.Trim(string(req.Amount), `"`))
	if err != nil {
		s.writeError(w, err)
		return
	}
	record, err := s.app.Ledger.AddExpense(req.Description, amount, req.Payer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) removeExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Ledger.RemoveExpense(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) balances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Ledger.Balances())
}

func (s *Server) settlement(w http.ResponseWriter, r *http.Request) {
	plan := s.app.Ledger.Settle()
	transfers := plan.Transfers
	if transfers == nil {
		transfers = []models.TransferInstruction{}
	}
	writeJSON(w, http.StatusOK, settlementResponse{
		Settled:   plan.Settled,
		Transfers: transfers,
		Total:     settlement.FormatAmount(plan.Total(), s.app.Config.Currency),
		Lines:     plan.Lines(s.app.Config.Currency),
	})
}
