package http

import (
	"net/http"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway"
	applog "budgettracker/internal/log"
)

// sessionExpenseResponse is returned after a session expense. PersistError
// is set when the expense counted but was not stored.
type sessionExpenseResponse struct {
	Expense      core.Expense           `json:"expense"`
	Stored       *gateway.StoredExpense `json:"stored,omitempty"`
	View         core.View              `json:"view"`
	PersistError string                 `json:"persist_error,omitempty"`
}

type budgetResponse struct {
	View         core.View `json:"view"`
	Ignored      []string  `json:"ignored"`
	PersistError string    `json:"persist_error,omitempty"`
}

// handleExpenses is the persistence gateway endpoint used by remote clients.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		items, err := s.expenses.List(r.Context())
		if err != nil {
			writeErrorFor(w, r, err)
			return
		}
		if items == nil {
			items = []gateway.StoredExpense{}
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeErrorFor(w, r, err)
		return
	}
	stored, err := s.expenses.Create(r.Context(), p.RawExpense())
	if err != nil {
		applog.FromContext(r.Context()).Warn("Expense rejected", applog.FieldError, err.Error())
		writeErrorFor(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.session.View())
}

func (s *Server) handleSessionExpense(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeErrorFor(w, r, err)
		return
	}
	res, err := s.session.AddExpense(r.Context(), p.RawExpense())
	if err != nil {
		writeErrorFor(w, r, err)
		return
	}
	resp := sessionExpenseResponse{Expense: res.Expense, Stored: res.Stored, View: res.View}
	if res.PersistErr != nil {
		resp.PersistError = res.PersistErr.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSessionBudget(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeErrorFor(w, r, err)
		return
	}
	res := s.session.SetBudgetAndGoal(r.Context(), p.Get("budget"), p.Get("savingsGoal", "savings_goal", "goal"))
	resp := budgetResponse{View: res.View, Ignored: res.Ignored}
	if res.PersistErr != nil {
		resp.PersistError = res.PersistErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionChart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.session.Chart())
}
