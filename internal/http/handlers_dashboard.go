package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"fiado/internal/core"
	"fiado/internal/ledger"
	"fiado/internal/log"
)

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleReady performs a readiness check with dependency verification.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	// A cheap read proves the database is reachable.
	if _, err := s.store.ListPeople(ctx); err != nil {
		checks["storage"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	checks["cache"] = map[string]int{
		"debt_entries":     s.debtsCache.Size(),
		"people_entries":   s.peopleCache.Size(),
		"category_entries": s.catsCache.Size(),
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	people, err := s.getPeople(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "People list error", "error", err)
	}
	cats, err := s.getCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list error", "error", err)
	}
	cards, err := s.store.ListCards(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Card list error", "error", err)
	}

	data := struct {
		Today      string
		People     []core.Person
		Categories []core.Category
		Cards      []core.Card
	}{
		Today:      time.Now().Format(dateOnly),
		People:     people,
		Categories: cats,
		Cards:      cards,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleMetricsPartial renders the headline totals of the filtered snapshot.
func (s *Server) handleMetricsPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	filtered, ok := s.filteredDebts(w, r)
	if !ok {
		return
	}
	m := ledger.ComputeMetrics(filtered)

	data := struct {
		TotalPending  string
		TotalReceived string
		TotalDebts    int
		PaidDebts     int
	}{
		TotalPending:  m.TotalPending.FormatBRL(),
		TotalReceived: m.TotalReceived.FormatBRL(),
		TotalDebts:    m.TotalDebts,
		PaidDebts:     m.PaidDebts,
	}

	s.renderPartial(w, r, "metrics.html", data)
}

// handleDebtsByPerson renders the pending-by-person chart partial.
func (s *Server) handleDebtsByPerson(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	filtered, ok := s.filteredDebts(w, r)
	if !ok {
		return
	}
	totals := ledger.GroupByPerson(filtered)

	// Scale bars against the largest total.
	var maxCents int64
	for _, t := range totals {
		if t.Total.Cents > maxCents {
			maxCents = t.Total.Cents
		}
	}

	type row struct {
		Name   string
		Amount string
		Width  int
	}
	data := struct {
		Rows []row
	}{}
	for _, t := range totals {
		width := 0
		if maxCents > 0 && t.Total.Cents > 0 {
			width = int((t.Total.Cents*100 + maxCents/2) / maxCents)
			if width > 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		data.Rows = append(data.Rows, row{Name: t.Name, Amount: t.Total.FormatBRL(), Width: width})
	}

	s.renderPartial(w, r, "debts_by_person.html", data)
}

// handleDebtsByMonth renders the year chart partial. The chart deliberately
// ignores the date filter and buckets the full snapshot by calendar month.
func (s *Server) handleDebtsByMonth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	all, err := s.getDebts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Debt snapshot error", "error", err)
		InternalServerError("Erro carregando dívidas").Write(w)
		return
	}
	buckets := ledger.GroupByMonth(all)

	var maxCents int64
	for _, b := range buckets {
		if total := b.Pending.Cents + b.Paid.Cents; total > maxCents {
			maxCents = total
		}
	}

	type row struct {
		Name          string
		Pending, Paid string
		PendingWidth  int
		PaidWidth     int
	}
	data := struct {
		Rows []row
	}{}
	for _, b := range buckets {
		pw, qw := 0, 0
		if maxCents > 0 {
			pw = int((b.Pending.Cents*100 + maxCents/2) / maxCents)
			qw = int((b.Paid.Cents*100 + maxCents/2) / maxCents)
		}
		data.Rows = append(data.Rows, row{
			Name:         b.Name,
			Pending:      b.Pending.FormatBRL(),
			Paid:         b.Paid.FormatBRL(),
			PendingWidth: pw,
			PaidWidth:    qw,
		})
	}

	s.renderPartial(w, r, "debts_by_month.html", data)
}

// handleDebtList renders the filtered debt table.
func (s *Server) handleDebtList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	filtered, ok := s.filteredDebts(w, r)
	if !ok {
		return
	}

	type row struct {
		ID          string
		Person      string
		Category    string
		Description string
		Amount      string
		CreatedAt   string
		DueDate     string
		Paid        bool
		Installment string
	}
	data := struct {
		Rows []row
	}{}
	for _, d := range filtered {
		name := d.PersonName
		if name == "" {
			name = ledger.UnknownPersonLabel
		}
		due := ""
		if !d.DueDate.IsZero() {
			due = d.DueDate.Format("02/01/2006")
		}
		inst := ""
		if d.InstallmentGroupID != "" {
			inst = formatInstallment(d.InstallmentNumber, d.TotalInstallments)
		}
		data.Rows = append(data.Rows, row{
			ID:          d.ID,
			Person:      name,
			Category:    d.CategoryName,
			Description: d.Description,
			Amount:      d.Amount.FormatBRL(),
			CreatedAt:   d.CreatedAt.Format("02/01/2006"),
			DueDate:     due,
			Paid:        d.IsPaid(),
			Installment: inst,
		})
	}

	s.renderPartial(w, r, "debt_list.html", data)
}

// filteredDebts loads the snapshot and applies the request's filter params.
// On storage failure it writes the error response and returns ok=false.
func (s *Server) filteredDebts(w http.ResponseWriter, r *http.Request) ([]core.Debt, bool) {
	all, err := s.getDebts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Debt snapshot error", "error", err)
		InternalServerError("Erro carregando dívidas").Write(w)
		return nil, false
	}
	f := ParseFilterParams(r.URL.Query())
	return ledger.FilterDebts(all, f), true
}

func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		InternalServerError("Templates não carregados").Write(w)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error",
			log.FieldError, err,
			log.FieldComponent, log.ComponentHTTP,
			log.FieldPath, r.URL.Path,
			"template", name)
	}
}
