package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fiado/internal/core"
)

// CreatePersonalExpense inserts a personal ledger entry (no person attached).
func (r *SQLiteRepository) CreatePersonalExpense(ctx context.Context, e core.PersonalExpense) (core.PersonalExpense, error) {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now()
	e.Status = core.StatusPending
	if err := e.Validate(); err != nil {
		return core.PersonalExpense{}, err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO personal_expenses (id, category_id, description, amount_cents,
			due_date, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?, 'pending')`,
		e.ID, nullString(e.CategoryID), e.Description, e.Amount.Cents,
		nullTime(e.DueDate), formatTime(e.CreatedAt))
	if err != nil {
		return core.PersonalExpense{}, fmt.Errorf("insert personal expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListPersonalExpenses(ctx context.Context) ([]core.PersonalExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, COALESCE(e.category_id, ''), COALESCE(c.name, ''),
			e.description, e.amount_cents, COALESCE(e.due_date, ''),
			e.created_at, COALESCE(e.paid_at, ''), e.status
		FROM personal_expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		ORDER BY e.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list personal expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.PersonalExpense
	for rows.Next() {
		var e core.PersonalExpense
		var dueDate, createdAt, paidAt string
		if err := rows.Scan(&e.ID, &e.CategoryID, &e.CategoryName,
			&e.Description, &e.Amount.Cents, &dueDate,
			&createdAt, &paidAt, &e.Status); err != nil {
			return nil, fmt.Errorf("scan personal expense: %w", err)
		}
		e.DueDate = parseTime(dueDate)
		e.CreatedAt = parseTime(createdAt)
		e.PaidAt = parseTime(paidAt)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate personal expenses: %w", err)
	}
	return expenses, nil
}

func (r *SQLiteRepository) MarkPersonalExpensePaid(ctx context.Context, id string, paidAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE personal_expenses SET status = 'paid', paid_at = ?
		WHERE id = ? AND status = 'pending'`,
		formatTime(paidAt), id)
	if err != nil {
		return fmt.Errorf("mark personal expense paid: %w", err)
	}
	return logAffected(ctx, "mark personal expense paid", id, res)
}

func (r *SQLiteRepository) DeletePersonalExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM personal_expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete personal expense: %w", err)
	}
	return logAffected(ctx, "delete personal expense", id, res)
}

func (r *SQLiteRepository) CreateCard(ctx context.Context, c core.Card) (core.Card, error) {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()
	if c.Color == "" {
		c.Color = "#6366f1"
	}
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	var limit sql.NullInt64
	if c.CreditLimit.Cents > 0 {
		limit = sql.NullInt64{Int64: c.CreditLimit.Cents, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (id, name, brand, credit_limit_cents, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullString(c.Brand), limit, c.Color, formatTime(c.CreatedAt))
	if err != nil {
		return core.Card{}, fmt.Errorf("insert card: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(brand, ''), COALESCE(credit_limit_cents, 0),
			color, created_at
		FROM cards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []core.Card
	for rows.Next() {
		var c core.Card
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.Brand, &c.CreditLimit.Cents,
			&c.Color, &createdAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		c.CreatedAt = parseTime(createdAt)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

// DeleteCard cascades to the card's bills and their expenses.
func (r *SQLiteRepository) DeleteCard(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return logAffected(ctx, "delete card", id, res)
}

func (r *SQLiteRepository) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	b.ID = uuid.New().String()
	b.CreatedAt = time.Now()
	b.Status = core.StatusPending
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bills (id, card_id, amount_cents, due_date, month_reference,
			status, created_at)
		VALUES (?, ?, ?, ?, ?, 'pending', ?)`,
		b.ID, b.CardID, b.Amount.Cents, formatTime(b.DueDate),
		b.MonthReference, formatTime(b.CreatedAt))
	if err != nil {
		return core.Bill{}, fmt.Errorf("insert bill: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBills(ctx context.Context, cardID string) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, card_id, amount_cents, due_date, month_reference, status, created_at
		FROM bills WHERE card_id = ? ORDER BY due_date DESC`, cardID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		var b core.Bill
		var dueDate, createdAt string
		if err := rows.Scan(&b.ID, &b.CardID, &b.Amount.Cents, &dueDate,
			&b.MonthReference, &b.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		b.DueDate = parseTime(dueDate)
		b.CreatedAt = parseTime(createdAt)
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return bills, nil
}

func (r *SQLiteRepository) MarkBillPaid(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bills SET status = 'paid' WHERE id = ? AND status = 'pending'", id)
	if err != nil {
		return fmt.Errorf("mark bill paid: %w", err)
	}
	return logAffected(ctx, "mark bill paid", id, res)
}

func (r *SQLiteRepository) DeleteBill(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	return logAffected(ctx, "delete bill", id, res)
}

func (r *SQLiteRepository) CreateCardExpense(ctx context.Context, e core.CardExpense) (core.CardExpense, error) {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now()
	if err := e.Validate(); err != nil {
		return core.CardExpense{}, err
	}
	paidSep := 0
	if e.IsPaidSeparately {
		paidSep = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO card_expenses (id, bill_id, category_id, description,
			amount_cents, is_paid_separately, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.BillID, nullString(e.CategoryID), nullString(e.Description),
		e.Amount.Cents, paidSep, formatTime(e.CreatedAt))
	if err != nil {
		return core.CardExpense{}, fmt.Errorf("insert card expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListCardExpenses(ctx context.Context, billID string) ([]core.CardExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, bill_id, COALESCE(category_id, ''), COALESCE(description, ''),
			amount_cents, is_paid_separately, created_at
		FROM card_expenses WHERE bill_id = ? ORDER BY created_at DESC`, billID)
	if err != nil {
		return nil, fmt.Errorf("list card expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.CardExpense
	for rows.Next() {
		var e core.CardExpense
		var paidSep int
		var createdAt string
		if err := rows.Scan(&e.ID, &e.BillID, &e.CategoryID, &e.Description,
			&e.Amount.Cents, &paidSep, &createdAt); err != nil {
			return nil, fmt.Errorf("scan card expense: %w", err)
		}
		e.IsPaidSeparately = paidSep != 0
		e.CreatedAt = parseTime(createdAt)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card expenses: %w", err)
	}
	return expenses, nil
}

func (r *SQLiteRepository) DeleteCardExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM card_expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete card expense: %w", err)
	}
	return logAffected(ctx, "delete card expense", id, res)
}
