package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fiado/internal/allocator"
	"fiado/internal/core"
	"fiado/internal/services"
	"fiado/internal/storage"
)

// handleCreateDebt registers a single debt for one person.
func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	personID := sanitizeInput(r.Form.Get("person"))
	categoryID := sanitizeInput(r.Form.Get("category"))
	desc := sanitizeInput(r.Form.Get("description"))
	amountStr := strings.TrimSpace(r.Form.Get("amount"))
	dueDate := ParseDateOrNow(r.Form.Get("due_date"))

	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		UnprocessableEntityError("Valor inválido").Write(w)
		return
	}

	debt, err := s.debts.CreateDebt(r.Context(), storage.DebtDraft{
		PersonID:    personID,
		CategoryID:  categoryID,
		AmountCents: cents,
		Description: desc,
		DueDate:     dueDate,
	})
	if err != nil {
		s.writeDebtError(w, r, err, "create")
		return
	}

	s.invalidateDebts()
	slog.InfoContext(r.Context(), "Debt created",
		"debt_id", debt.ID,
		"person_id", debt.PersonID,
		"amount_cents", debt.Amount.Cents)

	NewHTMXResponse().
		TriggerDebtCreated(1).
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Dívida registrada: %s — %s", debt.Description, debt.Amount.FormatBRL())).
		Write(w)
}

// handleSplitDebts divides one total across several people, honoring manual
// per-person overrides, and creates one debt each.
func (s *Server) handleSplitDebts(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	desc := sanitizeInput(r.Form.Get("description"))
	categoryID := sanitizeInput(r.Form.Get("category"))
	dueDate := ParseDateOrNow(r.Form.Get("due_date"))
	totalStr := strings.TrimSpace(r.Form.Get("total"))

	totalCents, err := core.ParseDecimalToCents(totalStr)
	if err != nil {
		UnprocessableEntityError("Valor total inválido").Write(w)
		return
	}

	ids := r.Form["participants"]
	if len(ids) == 0 {
		UnprocessableEntityError("Selecione ao menos um participante").Write(w)
		return
	}

	people, err := s.getPeople(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "People list error", "error", err)
		InternalServerError("Erro carregando pessoas").Write(w)
		return
	}
	names := make(map[string]string, len(people))
	for _, p := range people {
		names[p.ID] = p.Name
	}

	participants := make([]allocator.Participant, 0, len(ids))
	custom := make(map[string]int64)
	for _, id := range ids {
		id = sanitizeInput(id)
		participants = append(participants, allocator.Participant{ID: id, Name: names[id]})
		// Empty or unparsable overrides fall back to the automatic share.
		if v := strings.TrimSpace(r.Form.Get("custom_" + id)); v != "" {
			if cents, err := core.ParseDecimalToCents(v); err == nil {
				custom[id] = cents
			}
		}
	}

	debts, mismatch, err := s.debts.CreateSplitDebts(r.Context(), services.SplitRequest{
		TotalCents:   totalCents,
		Participants: participants,
		CustomCents:  custom,
		Description:  desc,
		CategoryID:   categoryID,
		DueDate:      dueDate,
	})
	if err != nil {
		s.writeDebtError(w, r, err, "split")
		return
	}

	s.invalidateDebts()
	slog.InfoContext(r.Context(), "Split debts created",
		"count", len(debts),
		"total_cents", totalCents,
		"mismatch", mismatch)

	resp := NewHTMXResponse().
		TriggerDebtCreated(len(debts)).
		TriggerFormReset()
	if mismatch {
		resp.TriggerWarningNotification("Dívidas criadas, mas os valores informados não somam o total")
	} else {
		resp.TriggerSuccessNotification(fmt.Sprintf("%d dívidas criadas", len(debts)))
	}
	resp.Write(w)
}

// handleInstallmentDebts expands one total into a monthly installment plan.
func (s *Server) handleInstallmentDebts(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	personID := sanitizeInput(r.Form.Get("person"))
	categoryID := sanitizeInput(r.Form.Get("category"))
	desc := sanitizeInput(r.Form.Get("description"))
	totalStr := strings.TrimSpace(r.Form.Get("total"))
	firstDue := ParseDateOrNow(r.Form.Get("first_due"))

	totalCents, err := core.ParseDecimalToCents(totalStr)
	if err != nil {
		UnprocessableEntityError("Valor total inválido").Write(w)
		return
	}

	count, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("installments")))
	if err != nil {
		UnprocessableEntityError("Número de parcelas inválido").Write(w)
		return
	}

	debts, err := s.debts.CreateInstallmentDebts(r.Context(), services.InstallmentRequest{
		PersonID:    personID,
		CategoryID:  categoryID,
		TotalCents:  totalCents,
		Description: desc,
		FirstDue:    firstDue,
		Count:       count,
	})
	if err != nil {
		s.writeDebtError(w, r, err, "installments")
		return
	}

	s.invalidateDebts()
	NewHTMXResponse().
		TriggerDebtCreated(len(debts)).
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Parcelamento criado: %d parcelas", len(debts))).
		Write(w)
}

// handlePayDebt marks a debt as paid. Payment is terminal: there is no unpay.
func (s *Server) handlePayDebt(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		BadRequestError("ID da dívida ausente").Write(w)
		return
	}

	if err := s.debts.MarkPaid(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Dívida não encontrada").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to mark debt paid", "debt_id", id, "error", err)
		InternalServerError("Erro ao marcar como paga").Write(w)
		return
	}

	s.invalidateDebts()
	NewHTMXResponse().
		TriggerDebtPaid().
		TriggerSuccessNotification("Dívida marcada como paga").
		Write(w)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		BadRequestError("ID da dívida ausente").Write(w)
		return
	}

	if err := s.debts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Dívida não encontrada").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete debt", "debt_id", id, "error", err)
		InternalServerError("Erro ao excluir dívida").Write(w)
		return
	}

	s.invalidateDebts()
	NewHTMXResponse().
		TriggerDebtDeleted().
		TriggerSuccessNotification("Dívida excluída").
		Write(w)
}

// writeDebtError maps domain validation errors to 422 and everything else to
// 500, logging the latter.
func (s *Server) writeDebtError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, core.ErrMissingPerson):
		UnprocessableEntityError("Selecione uma pessoa").Write(w)
	case errors.Is(err, core.ErrEmptyDescription):
		UnprocessableEntityError("Descrição obrigatória").Write(w)
	case errors.Is(err, core.ErrInvalidAmount):
		UnprocessableEntityError("Valor inválido").Write(w)
	case errors.Is(err, core.ErrEmptyParticipants):
		UnprocessableEntityError("Selecione ao menos um participante").Write(w)
	case errors.Is(err, allocator.ErrInstallmentCount):
		UnprocessableEntityError("Número de parcelas deve estar entre 2 e 48").Write(w)
	default:
		slog.ErrorContext(r.Context(), "Debt operation failed", "operation", op, "error", err)
		InternalServerError("Erro ao salvar dívida").Write(w)
	}
}
