package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fiado/internal/core"
)

const debtColumns = `
	d.id, d.person_id, COALESCE(p.name, ''), COALESCE(d.category_id, ''),
	COALESCE(c.name, ''), d.amount_cents, d.description,
	COALESCE(d.due_date, ''), d.created_at, COALESCE(d.paid_at, ''), d.status,
	COALESCE(d.installment_group_id, ''), COALESCE(d.installment_number, 0),
	COALESCE(d.total_installments, 0)`

const debtJoins = `
	FROM debts d
	LEFT JOIN people p ON p.id = d.person_id
	LEFT JOIN categories c ON c.id = d.category_id`

func scanDebt(row interface{ Scan(...any) error }) (core.Debt, error) {
	var d core.Debt
	var dueDate, createdAt, paidAt string
	err := row.Scan(
		&d.ID, &d.PersonID, &d.PersonName, &d.CategoryID,
		&d.CategoryName, &d.Amount.Cents, &d.Description,
		&dueDate, &createdAt, &paidAt, &d.Status,
		&d.InstallmentGroupID, &d.InstallmentNumber, &d.TotalInstallments,
	)
	if err != nil {
		return core.Debt{}, err
	}
	d.DueDate = parseTime(dueDate)
	d.CreatedAt = parseTime(createdAt)
	d.PaidAt = parseTime(paidAt)
	return d, nil
}

// CreateDebt inserts one pending debt and returns the stored row with its
// joined person and category names.
func (r *SQLiteRepository) CreateDebt(ctx context.Context, draft DebtDraft) (core.Debt, error) {
	debts, err := r.CreateDebts(ctx, []DebtDraft{draft})
	if err != nil {
		return core.Debt{}, err
	}
	return debts[0], nil
}

// CreateDebts inserts every draft in one transaction. Split and installment
// batches rely on this being all-or-nothing.
func (r *SQLiteRepository) CreateDebts(ctx context.Context, drafts []DebtDraft) ([]core.Debt, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	ids := make([]string, 0, len(drafts))
	for _, draft := range drafts {
		id := uuid.New().String()
		var groupID sql.NullString
		var number, total sql.NullInt64
		if draft.InstallmentGroupID != "" {
			groupID = nullString(draft.InstallmentGroupID)
			number = sql.NullInt64{Int64: int64(draft.InstallmentNumber), Valid: true}
			total = sql.NullInt64{Int64: int64(draft.TotalInstallments), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO debts (id, person_id, category_id, amount_cents, description,
				due_date, created_at, status, installment_group_id,
				installment_number, total_installments)
			VALUES (?, ?, ?, ?, ?, ?, ?, 'pending', ?, ?, ?)`,
			id, draft.PersonID, nullString(draft.CategoryID), draft.AmountCents,
			draft.Description, nullTime(draft.DueDate), formatTime(now),
			groupID, number, total,
		)
		if err != nil {
			return nil, fmt.Errorf("insert debt: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	debts := make([]core.Debt, 0, len(ids))
	for _, id := range ids {
		d, err := r.GetDebt(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("read back debt: %w", err)
		}
		debts = append(debts, d)
	}

	slog.InfoContext(ctx, "Debts saved",
		"count", len(debts),
		"first_id", ids[0])
	return debts, nil
}

// ListDebts returns every debt with joined names, newest first.
func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT"+debtColumns+debtJoins+" ORDER BY d.created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var debts []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate debts: %w", err)
	}
	return debts, nil
}

func (r *SQLiteRepository) GetDebt(ctx context.Context, id string) (core.Debt, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT"+debtColumns+debtJoins+" WHERE d.id = ?", id)
	d, err := scanDebt(row)
	if err == sql.ErrNoRows {
		return core.Debt{}, fmt.Errorf("debt %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt: %w", err)
	}
	return d, nil
}

// MarkDebtPaid is the only status transition a debt supports: one-way
// pending -> paid, stamping paid_at. The row also re-enters the backup queue.
func (r *SQLiteRepository) MarkDebtPaid(ctx context.Context, id string, paidAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE debts SET status = 'paid', paid_at = ?, sync_status = 'pending'
		WHERE id = ? AND status = 'pending'`,
		formatTime(paidAt), id)
	if err != nil {
		return fmt.Errorf("mark debt paid: %w", err)
	}
	return logAffected(ctx, "mark debt paid", id, res)
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM debts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return logAffected(ctx, "delete debt", id, res)
}

// ListPendingBackup returns debts the backup worker still has to mirror.
func (r *SQLiteRepository) ListPendingBackup(ctx context.Context, limit int) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT"+debtColumns+debtJoins+
			" WHERE d.sync_status = 'pending' ORDER BY d.created_at LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list pending backup: %w", err)
	}
	defer rows.Close()

	var debts []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending debt: %w", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending debts: %w", err)
	}
	return debts, nil
}

func (r *SQLiteRepository) MarkBackedUp(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE debts SET sync_status = 'synced' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark backed up: %w", err)
	}
	return logAffected(ctx, "mark backed up", id, res)
}

func (r *SQLiteRepository) MarkBackupError(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE debts SET sync_status = 'error' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark backup error: %w", err)
	}
	return logAffected(ctx, "mark backup error", id, res)
}

// CreatePerson inserts a person. Deleting one later cascades to their debts.
func (r *SQLiteRepository) CreatePerson(ctx context.Context, name string) (core.Person, error) {
	p := core.Person{ID: uuid.New().String(), Name: name, CreatedAt: time.Now()}
	if err := p.Validate(); err != nil {
		return core.Person{}, err
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO people (id, name, created_at) VALUES (?, ?, ?)",
		p.ID, p.Name, formatTime(p.CreatedAt))
	if err != nil {
		return core.Person{}, fmt.Errorf("insert person: %w", err)
	}
	slog.InfoContext(ctx, "Person saved", "id", p.ID, "name", p.Name)
	return p, nil
}

func (r *SQLiteRepository) ListPeople(ctx context.Context) ([]core.Person, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM people ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []core.Person
	for rows.Next() {
		var p core.Person
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		p.CreatedAt = parseTime(createdAt)
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return people, nil
}

// DeletePerson removes a person; the foreign key cascades to all their debts.
func (r *SQLiteRepository) DeletePerson(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return logAffected(ctx, "delete person", id, res)
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name, color string) (core.Category, error) {
	if color == "" {
		color = "#8884d8"
	}
	c := core.Category{ID: uuid.New().String(), Name: name, Color: color}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, color) VALUES (?, ?, ?)",
		c.ID, c.Name, c.Color)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, color FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes a category; dependent debts and expenses keep their
// rows with the category reference nulled by the foreign key.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return logAffected(ctx, "delete category", id, res)
}
