// Package services orchestrates debt mutations: allocation, persistence and
// event publication. In-memory/cached state is only refreshed from confirmed
// storage results, never optimistically.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fiado/internal/allocator"
	"fiado/internal/amqp"
	"fiado/internal/core"
	"fiado/internal/log"
	"fiado/internal/storage"
)

// EventPublisher is the outbound side of the realtime collaborator. A nil
// publisher disables events without changing the persistence path.
type EventPublisher interface {
	PublishDebtEvent(ctx context.Context, id, action string) error
}

// DebtService coordinates debt creation, payment and deletion.
type DebtService struct {
	store  storage.Store
	events EventPublisher
}

func NewDebtService(store storage.Store, events EventPublisher) *DebtService {
	return &DebtService{store: store, events: events}
}

// SplitRequest creates one debt per participant from a single total.
type SplitRequest struct {
	TotalCents   int64
	Participants []allocator.Participant
	// CustomCents maps person ID to a manually entered amount. Zero or
	// missing means the automatic share.
	CustomCents map[string]int64
	Description string
	CategoryID  string
	DueDate     time.Time
}

// InstallmentRequest creates a monthly installment plan for one person.
type InstallmentRequest struct {
	PersonID    string
	CategoryID  string
	TotalCents  int64
	Description string
	FirstDue    time.Time
	Count       int
}

// CreateDebt validates and persists a single debt, then publishes a created
// event. The returned debt is the stored row.
func (s *DebtService) CreateDebt(ctx context.Context, draft storage.DebtDraft) (core.Debt, error) {
	if err := validateDraft(draft); err != nil {
		return core.Debt{}, err
	}

	debt, err := s.store.CreateDebt(ctx, draft)
	if err != nil {
		return core.Debt{}, fmt.Errorf("save debt: %w", err)
	}

	s.publish(ctx, debt.ID, amqp.ActionCreated)
	return debt, nil
}

// CreateSplitDebts allocates the total across participants and persists the
// whole batch in one transaction. The mismatch flag reports custom amounts not
// reconciling with the total; the debts are still created as entered.
func (s *DebtService) CreateSplitDebts(ctx context.Context, req SplitRequest) ([]core.Debt, bool, error) {
	if len(req.Description) == 0 {
		return nil, false, core.ErrEmptyDescription
	}

	result, err := allocator.Split(req.TotalCents, req.Participants, req.CustomCents)
	if err != nil {
		return nil, false, err
	}

	drafts := make([]storage.DebtDraft, 0, len(result.Shares))
	for _, share := range result.Shares {
		if share.Amount.Cents <= 0 {
			return nil, result.Mismatch, fmt.Errorf("share for %s: %w", share.PersonName, core.ErrInvalidAmount)
		}
		drafts = append(drafts, storage.DebtDraft{
			PersonID:    share.PersonID,
			CategoryID:  req.CategoryID,
			AmountCents: share.Amount.Cents,
			Description: req.Description,
			DueDate:     req.DueDate,
		})
	}

	debts, err := s.store.CreateDebts(ctx, drafts)
	if err != nil {
		return nil, result.Mismatch, fmt.Errorf("save split debts: %w", err)
	}

	if result.Mismatch {
		slog.WarnContext(ctx, "Split amounts do not reconcile with total",
			"total_cents", req.TotalCents,
			"difference_cents", result.Difference)
	}

	for _, d := range debts {
		s.publish(ctx, d.ID, amqp.ActionCreated)
	}
	return debts, result.Mismatch, nil
}

// CreateInstallmentDebts expands the total into monthly installments sharing
// one group ID and persists them atomically.
func (s *DebtService) CreateInstallmentDebts(ctx context.Context, req InstallmentRequest) ([]core.Debt, error) {
	if req.PersonID == "" {
		return nil, core.ErrMissingPerson
	}
	if len(req.Description) == 0 {
		return nil, core.ErrEmptyDescription
	}

	plan, err := allocator.Installments(req.TotalCents, req.FirstDue, req.Count)
	if err != nil {
		return nil, err
	}

	drafts := make([]storage.DebtDraft, 0, len(plan.Installments))
	for _, inst := range plan.Installments {
		drafts = append(drafts, storage.DebtDraft{
			PersonID:           req.PersonID,
			CategoryID:         req.CategoryID,
			AmountCents:        inst.Amount.Cents,
			Description:        fmt.Sprintf("%s - Parcela %d/%d", req.Description, inst.Number, inst.Total),
			DueDate:            inst.DueDate,
			InstallmentGroupID: plan.GroupID,
			InstallmentNumber:  inst.Number,
			TotalInstallments:  inst.Total,
		})
	}

	debts, err := s.store.CreateDebts(ctx, drafts)
	if err != nil {
		return nil, fmt.Errorf("save installment debts: %w", err)
	}

	slog.InfoContext(ctx, "Installment plan created",
		"installment_group_id", plan.GroupID,
		"count", len(debts),
		"total_cents", req.TotalCents)

	for _, d := range debts {
		s.publish(ctx, d.ID, amqp.ActionCreated)
	}
	return debts, nil
}

// MarkPaid transitions a pending debt to paid, stamping the payment time.
func (s *DebtService) MarkPaid(ctx context.Context, id string) error {
	if err := s.store.MarkDebtPaid(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("mark debt paid: %w", err)
	}
	s.publish(ctx, id, amqp.ActionPaid)
	return nil
}

// Delete removes a debt permanently.
func (s *DebtService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteDebt(ctx, id); err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

// publish emits a debt event. Failures are logged, never surfaced: the
// mutation already succeeded and the worker catches up via its pending scan.
func (s *DebtService) publish(ctx context.Context, id, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishDebtEvent(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish debt event",
			log.FieldDebtID, id,
			log.FieldComponent, log.ComponentAMQP,
			"action", action,
			log.FieldError, err)
	}
}

func validateDraft(draft storage.DebtDraft) error {
	if draft.PersonID == "" {
		return core.ErrMissingPerson
	}
	if len(draft.Description) == 0 {
		return core.ErrEmptyDescription
	}
	if draft.AmountCents <= 0 {
		return core.ErrInvalidAmount
	}
	return nil
}

// Close releases the underlying store.
func (s *DebtService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
