package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fiado/internal/core"
	"fiado/internal/storage"
)

// Personal expenses are the user's own bills, tracked next to debts owed by
// others but never included in the dashboard aggregates.

func (s *Server) handlePersonalExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPersonalExpenses(w, r)
	case http.MethodPost:
		s.createPersonalExpense(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) renderPersonalExpenses(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	expenses, err := s.store.ListPersonalExpenses(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Personal expense list error", "error", err)
		InternalServerError("Erro carregando gastos").Write(w)
		return
	}

	type row struct {
		ID          string
		Description string
		Category    string
		Amount      string
		DueDate     string
		Paid        bool
	}
	data := struct {
		Rows []row
	}{}
	for _, e := range expenses {
		due := ""
		if !e.DueDate.IsZero() {
			due = e.DueDate.Format("02/01/2006")
		}
		data.Rows = append(data.Rows, row{
			ID:          e.ID,
			Description: e.Description,
			Category:    e.CategoryName,
			Amount:      e.Amount.FormatBRL(),
			DueDate:     due,
			Paid:        e.Status == core.StatusPaid,
		})
	}
	s.renderPartial(w, r, "expense_list.html", data)
}

func (s *Server) createPersonalExpense(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		UnprocessableEntityError("Valor inválido").Write(w)
		return
	}

	expense := core.PersonalExpense{
		CategoryID:  sanitizeInput(r.Form.Get("category")),
		Description: sanitizeInput(r.Form.Get("description")),
		Amount:      core.Money{Cents: cents},
		DueDate:     ParseDateOrNow(r.Form.Get("due_date")),
		Status:      core.StatusPending,
	}
	if err := expense.Validate(); err != nil {
		UnprocessableEntityError("Dados inválidos").Write(w)
		return
	}

	created, err := s.store.CreatePersonalExpense(r.Context(), expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create personal expense", "error", err)
		InternalServerError("Erro ao salvar gasto").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Personal expense created",
		"expense_id", created.ID,
		"amount_cents", created.Amount.Cents)

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Gasto registrado: %s", created.Description)).
		Write(w)
}

func (s *Server) handlePayPersonalExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.PathValue("id"))
	if err := s.store.MarkPersonalExpensePaid(r.Context(), id, time.Now()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Gasto não encontrado").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to mark personal expense paid", "expense_id", id, "error", err)
		InternalServerError("Erro ao marcar como pago").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerSuccessNotification("Gasto marcado como pago").
		Write(w)
}

func (s *Server) handleDeletePersonalExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.PathValue("id"))
	if err := s.store.DeletePersonalExpense(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Gasto não encontrado").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete personal expense", "expense_id", id, "error", err)
		InternalServerError("Erro ao excluir gasto").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerSuccessNotification("Gasto excluído").
		Write(w)
}

// Cards group monthly bills; bills group card expenses. Deleting a card drops
// its bills and their expenses.

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderCards(w, r)
	case http.MethodPost:
		s.createCard(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) renderCards(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	cards, err := s.store.ListCards(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Card list error", "error", err)
		InternalServerError("Erro carregando cartões").Write(w)
		return
	}
	s.renderPartial(w, r, "card_list.html", struct {
		Cards []core.Card
	}{Cards: cards})
}

func (s *Server) createCard(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	var limit core.Money
	if v := strings.TrimSpace(r.Form.Get("credit_limit")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			UnprocessableEntityError("Limite inválido").Write(w)
			return
		}
		limit = core.Money{Cents: cents}
	}

	card := core.Card{
		Name:        sanitizeInput(r.Form.Get("name")),
		Brand:       sanitizeInput(r.Form.Get("brand")),
		CreditLimit: limit,
		Color:       sanitizeInput(r.Form.Get("color")),
	}
	if err := card.Validate(); err != nil {
		UnprocessableEntityError("Dados inválidos").Write(w)
		return
	}

	created, err := s.store.CreateCard(r.Context(), card)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create card", "error", err)
		InternalServerError("Erro ao salvar cartão").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Cartão cadastrado: %s", created.Name)).
		Write(w)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.PathValue("id"))
	if err := s.store.DeleteCard(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Cartão não encontrado").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete card", "card_id", id, "error", err)
		InternalServerError("Erro ao excluir cartão").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerSuccessNotification("Cartão excluído").
		Write(w)
}

func (s *Server) handleCardBills(w http.ResponseWriter, r *http.Request) {
	cardID := sanitizeInput(r.PathValue("id"))
	switch r.Method {
	case http.MethodGet:
		s.renderBills(w, r, cardID)
	case http.MethodPost:
		s.createBill(w, r, cardID)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) renderBills(w http.ResponseWriter, r *http.Request, cardID string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	bills, err := s.store.ListBills(r.Context(), cardID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Bill list error", "card_id", cardID, "error", err)
		InternalServerError("Erro carregando faturas").Write(w)
		return
	}

	type row struct {
		ID             string
		MonthReference string
		Amount         string
		DueDate        string
		Paid           bool
	}
	data := struct {
		CardID string
		Rows   []row
	}{CardID: cardID}
	for _, b := range bills {
		data.Rows = append(data.Rows, row{
			ID:             b.ID,
			MonthReference: b.MonthReference,
			Amount:         b.Amount.FormatBRL(),
			DueDate:        b.DueDate.Format("02/01/2006"),
			Paid:           b.Status == core.StatusPaid,
		})
	}
	s.renderPartial(w, r, "bill_list.html", data)
}

func (s *Server) createBill(w http.ResponseWriter, r *http.Request, cardID string) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		UnprocessableEntityError("Valor inválido").Write(w)
		return
	}

	bill := core.Bill{
		CardID:         cardID,
		Amount:         core.Money{Cents: cents},
		DueDate:        ParseDateOrNow(r.Form.Get("due_date")),
		MonthReference: sanitizeInput(r.Form.Get("month_reference")),
		Status:         core.StatusPending,
	}
	if err := bill.Validate(); err != nil {
		UnprocessableEntityError("Dados inválidos").Write(w)
		return
	}

	created, err := s.store.CreateBill(r.Context(), bill)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create bill", "card_id", cardID, "error", err)
		InternalServerError("Erro ao salvar fatura").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Fatura criada: %s", created.MonthReference)).
		Write(w)
}

func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.PathValue("id"))
	if err := s.store.MarkBillPaid(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Fatura não encontrada").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to mark bill paid", "bill_id", id, "error", err)
		InternalServerError("Erro ao marcar fatura como paga").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerSuccessNotification("Fatura marcada como paga").
		Write(w)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.PathValue("id"))
	if err := s.store.DeleteBill(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Fatura não encontrada").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete bill", "bill_id", id, "error", err)
		InternalServerError("Erro ao excluir fatura").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerSuccessNotification("Fatura excluída").
		Write(w)
}

func (s *Server) handleBillExpenses(w http.ResponseWriter, r *http.Request) {
	billID := sanitizeInput(r.PathValue("id"))
	switch r.Method {
	case http.MethodGet:
		s.renderBillExpenses(w, r, billID)
	case http.MethodPost:
		s.createCardExpense(w, r, billID)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) renderBillExpenses(w http.ResponseWriter, r *http.Request, billID string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	expenses, err := s.store.ListCardExpenses(r.Context(), billID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Card expense list error", "bill_id", billID, "error", err)
		InternalServerError("Erro carregando lançamentos").Write(w)
		return
	}

	type row struct {
		ID               string
		Description      string
		Amount           string
		IsPaidSeparately bool
	}
	data := struct {
		BillID string
		Rows   []row
	}{BillID: billID}
	for _, e := range expenses {
		data.Rows = append(data.Rows, row{
			ID:               e.ID,
			Description:      e.Description,
			Amount:           e.Amount.FormatBRL(),
			IsPaidSeparately: e.IsPaidSeparately,
		})
	}
	s.renderPartial(w, r, "card_expense_list.html", data)
}

func (s *Server) createCardExpense(w http.ResponseWriter, r *http.Request, billID string) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		UnprocessableEntityError("Valor inválido").Write(w)
		return
	}

	expense := core.CardExpense{
		BillID:           billID,
		CategoryID:       sanitizeInput(r.Form.Get("category")),
		Description:      sanitizeInput(r.Form.Get("description")),
		Amount:           core.Money{Cents: cents},
		IsPaidSeparately: r.Form.Get("paid_separately") == "on",
	}
	if err := expense.Validate(); err != nil {
		UnprocessableEntityError("Dados inválidos").Write(w)
		return
	}

	created, err := s.store.CreateCardExpense(r.Context(), expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create card expense", "bill_id", billID, "error", err)
		InternalServerError("Erro ao salvar lançamento").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Lançamento registrado: %s", created.Description)).
		Write(w)
}

func (s *Server) handleDeleteCardExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.PathValue("id"))
	if err := s.store.DeleteCardExpense(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Lançamento não encontrado").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete card expense", "card_expense_id", id, "error", err)
		InternalServerError("Erro ao excluir lançamento").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerSuccessNotification("Lançamento excluído").
		Write(w)
}
