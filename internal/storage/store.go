// Package storage is the persistence collaborator: a SQLite-backed CRUD layer
// for people, categories, debts and the credit-card ledger. All operations are
// context-aware and fallible; callers update their own state only after a call
// returns successfully.
package storage

import (
	"context"
	"errors"
	"time"

	"fiado/internal/core"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// DebtDraft is a creation request for one debt row. The repository assigns ID
// and CreatedAt.
type DebtDraft struct {
	PersonID           string
	CategoryID         string
	AmountCents        int64
	Description        string
	DueDate            time.Time
	InstallmentGroupID string
	InstallmentNumber  int
	TotalInstallments  int
}

// Store abstracts the persistence layer so the service and HTTP layers can be
// exercised against fakes in tests.
type Store interface {
	// Debts
	CreateDebt(ctx context.Context, draft DebtDraft) (core.Debt, error)
	// CreateDebts inserts all drafts in a single transaction: either every
	// row lands or none does.
	CreateDebts(ctx context.Context, drafts []DebtDraft) ([]core.Debt, error)
	ListDebts(ctx context.Context) ([]core.Debt, error)
	GetDebt(ctx context.Context, id string) (core.Debt, error)
	MarkDebtPaid(ctx context.Context, id string, paidAt time.Time) error
	DeleteDebt(ctx context.Context, id string) error

	// People
	CreatePerson(ctx context.Context, name string) (core.Person, error)
	ListPeople(ctx context.Context) ([]core.Person, error)
	DeletePerson(ctx context.Context, id string) error

	// Categories
	CreateCategory(ctx context.Context, name, color string) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// Personal expenses
	CreatePersonalExpense(ctx context.Context, e core.PersonalExpense) (core.PersonalExpense, error)
	ListPersonalExpenses(ctx context.Context) ([]core.PersonalExpense, error)
	MarkPersonalExpensePaid(ctx context.Context, id string, paidAt time.Time) error
	DeletePersonalExpense(ctx context.Context, id string) error

	// Cards, bills, card expenses
	CreateCard(ctx context.Context, c core.Card) (core.Card, error)
	ListCards(ctx context.Context) ([]core.Card, error)
	DeleteCard(ctx context.Context, id string) error
	CreateBill(ctx context.Context, b core.Bill) (core.Bill, error)
	ListBills(ctx context.Context, cardID string) ([]core.Bill, error)
	MarkBillPaid(ctx context.Context, id string) error
	DeleteBill(ctx context.Context, id string) error
	CreateCardExpense(ctx context.Context, e core.CardExpense) (core.CardExpense, error)
	ListCardExpenses(ctx context.Context, billID string) ([]core.CardExpense, error)
	DeleteCardExpense(ctx context.Context, id string) error

	Close() error
}

// BackupStore is the extra surface the backup worker needs on top of Store.
type BackupStore interface {
	Store
	// ListPendingBackup returns debts not yet mirrored to the backup sheet.
	ListPendingBackup(ctx context.Context, limit int) ([]core.Debt, error)
	MarkBackedUp(ctx context.Context, id string) error
	MarkBackupError(ctx context.Context, id string) error
}
