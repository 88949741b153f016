package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/EedwinGglez11/dinaree/internal/core"
)

// Section names used in state-changed events. They double as the mutation
// routing key suffix on the broker side.
const (
	sectionIncomes  = "incomes"
	sectionExpenses = "expenses"
	sectionLoans    = "loans"
	sectionCards    = "creditCards"
	sectionGoals    = "goals"
)

func (s *Server) loadState(w http.ResponseWriter, r *http.Request) (core.FinanceState, bool) {
	state, err := s.store.LoadState(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load finance state", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to load data")
		return core.FinanceState{}, false
	}
	return state, true
}

func (s *Server) writeMutationError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, core.ErrNotFound) {
		errorJSON(w, http.StatusNotFound, "record not found")
		return
	}
	slog.ErrorContext(r.Context(), "Mutation failed", "operation", op, "error", err)
	errorJSON(w, http.StatusInternalServerError, "operation failed")
}

// --- incomes ---

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	out := make([]incomeResponse, 0, len(state.Incomes))
	for _, in := range state.Incomes {
		out = append(out, newIncomeResponse(in))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toIncome()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	created, version, err := s.store.CreateIncome(r.Context(), in)
	if err != nil {
		s.writeMutationError(w, r, "create income", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionIncomes, created.ID, version)
	writeJSON(w, http.StatusCreated, mutationResponse{ID: created.ID, Version: version})
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toIncome()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	in.ID = r.PathValue("id")

	version, err := s.store.UpdateIncome(r.Context(), in)
	if err != nil {
		s.writeMutationError(w, r, "update income", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionIncomes, in.ID, version)
	writeJSON(w, http.StatusOK, mutationResponse{ID: in.ID, Version: version})
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	version, err := s.store.DeleteIncome(r.Context(), id)
	if err != nil {
		s.writeMutationError(w, r, "delete income", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionIncomes, id, version)
	writeJSON(w, http.StatusOK, mutationResponse{ID: id, Version: version})
}

// --- expenses ---

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	out := make([]expenseResponse, 0, len(state.Expenses))
	for _, e := range state.Expenses {
		out = append(out, newExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := req.toExpense()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	created, version, err := s.store.CreateExpense(r.Context(), e)
	if err != nil {
		s.writeMutationError(w, r, "create expense", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionExpenses, created.ID, version)
	writeJSON(w, http.StatusCreated, mutationResponse{ID: created.ID, Version: version})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := req.toExpense()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	e.ID = r.PathValue("id")

	version, err := s.store.UpdateExpense(r.Context(), e)
	if err != nil {
		s.writeMutationError(w, r, "update expense", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionExpenses, e.ID, version)
	writeJSON(w, http.StatusOK, mutationResponse{ID: e.ID, Version: version})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	version, err := s.store.DeleteExpense(r.Context(), id)
	if err != nil {
		s.writeMutationError(w, r, "delete expense", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionExpenses, id, version)
	writeJSON(w, http.StatusOK, mutationResponse{ID: id, Version: version})
}

// --- loans ---

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	out := make([]loanResponse, 0, len(state.Loans)+len(state.Debts))
	for _, l := range state.Loans {
		out = append(out, newLoanResponse(l, false))
	}
	for _, l := range state.Debts {
		out = append(out, newLoanResponse(l, true))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	l, err := req.toLoan()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	created, version, err := s.store.CreateLoan(r.Context(), l)
	if err != nil {
		s.writeMutationError(w, r, "create loan", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionLoans, created.ID, version)
	writeJSON(w, http.StatusCreated, mutationResponse{ID: created.ID, Version: version})
}

func (s *Server) handleUpdateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	l, err := req.toLoan()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	l.ID = r.PathValue("id")

	version, err := s.store.UpdateLoan(r.Context(), l)
	if err != nil {
		s.writeMutationError(w, r, "update loan", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionLoans, l.ID, version)
	writeJSON(w, http.StatusOK, mutationResponse{ID: l.ID, Version: version})
}

func (s *Server) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	version, err := s.store.DeleteLoan(r.Context(), id)
	if err != nil {
		s.writeMutationError(w, r, "delete loan", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionLoans, id, version)
	writeJSON(w, http.StatusOK, mutationResponse{ID: id, Version: version})
}

// --- credit cards ---

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	out := make([]cardResponse, 0, len(state.CreditCards))
	for _, c := range state.CreditCards {
		out = append(out, newCardResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := req.toCreditCard()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	created, version, err := s.store.CreateCreditCard(r.Context(), c)
	if err != nil {
		s.writeMutationError(w, r, "create credit card", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionCards, created.ID, version)
	writeJSON(w, http.StatusCreated, mutationResponse{ID: created.ID, Version: version})
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := req.toCreditCard()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	c.ID = r.PathValue("id")

	version, err := s.store.UpdateCreditCard(r.Context(), c)
	if err != nil {
		s.writeMutationError(w, r, "update credit card", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionCards, c.ID, version)
	writeJSON(w, http.StatusOK, mutationResponse{ID: c.ID, Version: version})
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	version, err := s.store.DeleteCreditCard(r.Context(), id)
	if err != nil {
		s.writeMutationError(w, r, "delete credit card", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionCards, id, version)
	writeJSON(w, http.StatusOK, mutationResponse{ID: id, Version: version})
}

// --- goals ---

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	out := make([]goalResponse, 0, len(state.Goals))
	for _, g := range state.Goals {
		out = append(out, newGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := req.toGoal()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	created, version, err := s.store.CreateGoal(r.Context(), g)
	if err != nil {
		s.writeMutationError(w, r, "create goal", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionGoals, created.ID, version)
	writeJSON(w, http.StatusCreated, mutationResponse{ID: created.ID, Version: version})
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := req.toGoal()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	g.ID = r.PathValue("id")

	version, err := s.store.UpdateGoal(r.Context(), g)
	if err != nil {
		s.writeMutationError(w, r, "update goal", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionGoals, g.ID, version)
	writeJSON(w, http.StatusOK, mutationResponse{ID: g.ID, Version: version})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	version, err := s.store.DeleteGoal(r.Context(), id)
	if err != nil {
		s.writeMutationError(w, r, "delete goal", err)
		return
	}
	s.publishStateChanged(r.Context(), sectionGoals, id, version)
	writeJSON(w, http.StatusOK, mutationResponse{ID: id, Version: version})
}
