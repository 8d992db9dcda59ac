package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fiado/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCreatePerson(t *testing.T, repo *SQLiteRepository, name string) core.Person {
	t.Helper()
	p, err := repo.CreatePerson(context.Background(), name)
	if err != nil {
		t.Fatalf("CreatePerson(%q): %v", name, err)
	}
	return p
}

func mustCreateDebt(t *testing.T, repo *SQLiteRepository, draft DebtDraft) core.Debt {
	t.Helper()
	d, err := repo.CreateDebt(context.Background(), draft)
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}
	return d
}

func TestPersonCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreatePerson(t, repo, "Carlos")
	mustCreatePerson(t, repo, "Ana")

	people, err := repo.ListPeople(ctx)
	if err != nil {
		t.Fatalf("ListPeople: %v", err)
	}
	if len(people) != 2 {
		t.Fatalf("got %d people, want 2", len(people))
	}
	// Ordered by name.
	if people[0].Name != "Ana" || people[1].Name != "Carlos" {
		t.Errorf("people order = %q, %q, want Ana, Carlos", people[0].Name, people[1].Name)
	}

	if err := repo.DeletePerson(ctx, people[0].ID); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}
	people, _ = repo.ListPeople(ctx)
	if len(people) != 1 {
		t.Errorf("got %d people after delete, want 1", len(people))
	}

	if err := repo.DeletePerson(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeletePerson(missing) = %v, want ErrNotFound", err)
	}
}

func TestCreatePersonValidation(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.CreatePerson(context.Background(), "  "); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("CreatePerson(blank) = %v, want ErrEmptyName", err)
	}
}

func TestDebtRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := mustCreatePerson(t, repo, "Maria")
	cat, err := repo.CreateCategory(ctx, "Lanches", "#ff0000")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	due := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)
	created := mustCreateDebt(t, repo, DebtDraft{
		PersonID:    p.ID,
		CategoryID:  cat.ID,
		AmountCents: 2500,
		Description: "coxinha",
		DueDate:     due,
	})

	got, err := repo.GetDebt(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetDebt: %v", err)
	}
	if got.PersonName != "Maria" {
		t.Errorf("PersonName = %q, want Maria", got.PersonName)
	}
	if got.CategoryName != "Lanches" {
		t.Errorf("CategoryName = %q, want Lanches", got.CategoryName)
	}
	if got.Amount.Cents != 2500 {
		t.Errorf("Amount = %d, want 2500", got.Amount.Cents)
	}
	if got.Status != core.StatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}
	if !got.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, due)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if !got.PaidAt.IsZero() {
		t.Error("PaidAt set on a pending debt")
	}
}

func TestCreateDebtsAtomicity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := mustCreatePerson(t, repo, "Ana")

	// Second draft violates the person foreign key: the whole batch must
	// roll back.
	_, err := repo.CreateDebts(ctx, []DebtDraft{
		{PersonID: p.ID, AmountCents: 1000, Description: "ok"},
		{PersonID: "ghost", AmountCents: 1000, Description: "bad fk"},
	})
	if err == nil {
		t.Fatal("CreateDebts with broken foreign key should fail")
	}

	debts, err := repo.ListDebts(ctx)
	if err != nil {
		t.Fatalf("ListDebts: %v", err)
	}
	if len(debts) != 0 {
		t.Errorf("got %d debts after failed batch, want 0", len(debts))
	}
}

func TestCreateDebtsBatch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := mustCreatePerson(t, repo, "Ana")
	b := mustCreatePerson(t, repo, "Bia")

	debts, err := repo.CreateDebts(ctx, []DebtDraft{
		{PersonID: a.ID, AmountCents: 5000, Description: "pizza"},
		{PersonID: b.ID, AmountCents: 5000, Description: "pizza"},
	})
	if err != nil {
		t.Fatalf("CreateDebts: %v", err)
	}
	if len(debts) != 2 {
		t.Fatalf("got %d debts, want 2", len(debts))
	}
	for _, d := range debts {
		if d.ID == "" {
			t.Error("debt without ID")
		}
		if d.Status != core.StatusPending {
			t.Errorf("Status = %q, want pending", d.Status)
		}
	}

	// Empty batch is a no-op.
	if out, err := repo.CreateDebts(ctx, nil); err != nil || out != nil {
		t.Errorf("CreateDebts(nil) = %v, %v, want nil, nil", out, err)
	}
}

func TestInstallmentFieldsPersist(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := mustCreatePerson(t, repo, "Ana")

	d := mustCreateDebt(t, repo, DebtDraft{
		PersonID:           p.ID,
		AmountCents:        4000,
		Description:        "geladeira - Parcela 2/3",
		InstallmentGroupID: "grupo-1",
		InstallmentNumber:  2,
		TotalInstallments:  3,
	})

	got, err := repo.GetDebt(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDebt: %v", err)
	}
	if got.InstallmentGroupID != "grupo-1" || got.InstallmentNumber != 2 || got.TotalInstallments != 3 {
		t.Errorf("installment fields = %q %d/%d, want grupo-1 2/3",
			got.InstallmentGroupID, got.InstallmentNumber, got.TotalInstallments)
	}
}

func TestMarkDebtPaidIsOneWay(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := mustCreatePerson(t, repo, "Ana")
	d := mustCreateDebt(t, repo, DebtDraft{PersonID: p.ID, AmountCents: 100, Description: "café"})

	paidAt := time.Date(2026, time.August, 29, 15, 0, 0, 0, time.UTC)
	if err := repo.MarkDebtPaid(ctx, d.ID, paidAt); err != nil {
		t.Fatalf("MarkDebtPaid: %v", err)
	}

	got, _ := repo.GetDebt(ctx, d.ID)
	if got.Status != core.StatusPaid {
		t.Errorf("Status = %q, want paid", got.Status)
	}
	if !got.PaidAt.Equal(paidAt) {
		t.Errorf("PaidAt = %v, want %v", got.PaidAt, paidAt)
	}

	// Paying again does not match any pending row.
	if err := repo.MarkDebtPaid(ctx, d.ID, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second MarkDebtPaid = %v, want ErrNotFound", err)
	}
	if err := repo.MarkDebtPaid(ctx, "missing", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkDebtPaid(missing) = %v, want ErrNotFound", err)
	}
}

func TestDeletePersonCascadesToDebts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := mustCreatePerson(t, repo, "Ana")
	keep := mustCreatePerson(t, repo, "Bia")

	mustCreateDebt(t, repo, DebtDraft{PersonID: p.ID, AmountCents: 100, Description: "um"})
	mustCreateDebt(t, repo, DebtDraft{PersonID: p.ID, AmountCents: 200, Description: "dois"})
	kept := mustCreateDebt(t, repo, DebtDraft{PersonID: keep.ID, AmountCents: 300, Description: "três"})

	if err := repo.DeletePerson(ctx, p.ID); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}

	debts, err := repo.ListDebts(ctx)
	if err != nil {
		t.Fatalf("ListDebts: %v", err)
	}
	if len(debts) != 1 {
		t.Fatalf("got %d debts after cascade, want 1", len(debts))
	}
	if debts[0].ID != kept.ID {
		t.Errorf("surviving debt = %q, want %q", debts[0].ID, kept.ID)
	}
}

func TestDeleteCategoryNullsDebtReference(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := mustCreatePerson(t, repo, "Ana")
	cat, err := repo.CreateCategory(ctx, "Lanches", "")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	d := mustCreateDebt(t, repo, DebtDraft{
		PersonID: p.ID, CategoryID: cat.ID, AmountCents: 100, Description: "café",
	})

	if err := repo.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	got, err := repo.GetDebt(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDebt after category delete: %v", err)
	}
	if got.CategoryID != "" || got.CategoryName != "" {
		t.Errorf("category reference not nulled: %q %q", got.CategoryID, got.CategoryName)
	}
}

func TestCreateCategoryDefaultColor(t *testing.T) {
	repo := newTestRepo(t)
	cat, err := repo.CreateCategory(context.Background(), "Mercado", "")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if cat.Color == "" {
		t.Error("empty color not defaulted")
	}
}

func TestBackupQueue(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := mustCreatePerson(t, repo, "Ana")

	first := mustCreateDebt(t, repo, DebtDraft{PersonID: p.ID, AmountCents: 100, Description: "um"})
	second := mustCreateDebt(t, repo, DebtDraft{PersonID: p.ID, AmountCents: 200, Description: "dois"})

	// New debts start pending backup.
	pending, err := repo.ListPendingBackup(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingBackup: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}

	// The limit caps the batch.
	limited, err := repo.ListPendingBackup(ctx, 1)
	if err != nil {
		t.Fatalf("ListPendingBackup(1): %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d pending with limit 1, want 1", len(limited))
	}

	if err := repo.MarkBackedUp(ctx, first.ID); err != nil {
		t.Fatalf("MarkBackedUp: %v", err)
	}
	if err := repo.MarkBackupError(ctx, second.ID); err != nil {
		t.Fatalf("MarkBackupError: %v", err)
	}

	pending, _ = repo.ListPendingBackup(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("got %d pending after marking both, want 0", len(pending))
	}

	// Paying a synced debt re-enters it into the backup queue.
	if err := repo.MarkDebtPaid(ctx, first.ID, time.Now()); err != nil {
		t.Fatalf("MarkDebtPaid: %v", err)
	}
	pending, _ = repo.ListPendingBackup(ctx, 10)
	if len(pending) != 1 || pending[0].ID != first.ID {
		t.Errorf("paid debt not re-queued for backup: %v", pending)
	}
}

func TestPersonalExpenseLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e, err := repo.CreatePersonalExpense(ctx, core.PersonalExpense{
		Description: "internet",
		Amount:      core.Money{Cents: 9990},
	})
	if err != nil {
		t.Fatalf("CreatePersonalExpense: %v", err)
	}
	if e.Status != core.StatusPending {
		t.Errorf("Status = %q, want pending", e.Status)
	}

	if err := repo.MarkPersonalExpensePaid(ctx, e.ID, time.Now()); err != nil {
		t.Fatalf("MarkPersonalExpensePaid: %v", err)
	}
	list, err := repo.ListPersonalExpenses(ctx)
	if err != nil {
		t.Fatalf("ListPersonalExpenses: %v", err)
	}
	if len(list) != 1 || list[0].Status != core.StatusPaid {
		t.Errorf("expense not marked paid: %+v", list)
	}

	if err := repo.DeletePersonalExpense(ctx, e.ID); err != nil {
		t.Fatalf("DeletePersonalExpense: %v", err)
	}
	list, _ = repo.ListPersonalExpenses(ctx)
	if len(list) != 0 {
		t.Errorf("got %d expenses after delete, want 0", len(list))
	}
}

func TestCardBillExpenseLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	card, err := repo.CreateCard(ctx, core.Card{Name: "Nubank", Brand: "Mastercard"})
	if err != nil {
		t.Fatalf("CreateCard: %v", err)
	}
	if card.Color == "" {
		t.Error("card color not defaulted")
	}

	bill, err := repo.CreateBill(ctx, core.Bill{
		CardID:         card.ID,
		Amount:         core.Money{Cents: 120000},
		DueDate:        time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC),
		MonthReference: "2026-08",
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	if _, err := repo.CreateCardExpense(ctx, core.CardExpense{
		BillID:           bill.ID,
		Description:      "mercado",
		Amount:           core.Money{Cents: 15000},
		IsPaidSeparately: true,
	}); err != nil {
		t.Fatalf("CreateCardExpense: %v", err)
	}

	expenses, err := repo.ListCardExpenses(ctx, bill.ID)
	if err != nil {
		t.Fatalf("ListCardExpenses: %v", err)
	}
	if len(expenses) != 1 || !expenses[0].IsPaidSeparately {
		t.Errorf("card expense round trip: %+v", expenses)
	}

	if err := repo.MarkBillPaid(ctx, bill.ID); err != nil {
		t.Fatalf("MarkBillPaid: %v", err)
	}
	bills, err := repo.ListBills(ctx, card.ID)
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 1 || bills[0].Status != core.StatusPaid {
		t.Errorf("bill not marked paid: %+v", bills)
	}

	// Deleting the card cascades through bills to their expenses.
	if err := repo.DeleteCard(ctx, card.ID); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}
	bills, _ = repo.ListBills(ctx, card.ID)
	if len(bills) != 0 {
		t.Errorf("got %d bills after card delete, want 0", len(bills))
	}
	expenses, _ = repo.ListCardExpenses(ctx, bill.ID)
	if len(expenses) != 0 {
		t.Errorf("got %d card expenses after card delete, want 0", len(expenses))
	}
}

func TestGetDebtNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetDebt(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDebt(missing) = %v, want ErrNotFound", err)
	}
}
