package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending DebtStatus = "pending"
	StatusPaid    DebtStatus = "paid"
)

type (
	DebtStatus string

	Money struct {
		Cents int64
	}

	Person struct {
		ID        string
		Name      string
		CreatedAt time.Time
	}

	Category struct {
		ID    string
		Name  string
		Color string
	}

	Debt struct {
		ID           string
		PersonID     string
		PersonName   string // joined for display
		CategoryID   string
		CategoryName string
		Amount       Money
		Description  string
		DueDate      time.Time
		CreatedAt    time.Time
		PaidAt       time.Time
		Status       DebtStatus

		// Installment linkage. Zero values mean "not an installment".
		InstallmentGroupID string
		InstallmentNumber  int
		TotalInstallments  int
	}

	PersonalExpense struct {
		ID           string
		CategoryID   string
		CategoryName string
		Description  string
		Amount       Money
		DueDate      time.Time
		CreatedAt    time.Time
		PaidAt       time.Time
		Status       DebtStatus
	}

	Card struct {
		ID          string
		Name        string
		Brand       string
		CreditLimit Money
		Color       string
		CreatedAt   time.Time
	}

	Bill struct {
		ID             string
		CardID         string
		Amount         Money
		DueDate        time.Time
		MonthReference string
		Status         DebtStatus
		CreatedAt      time.Time
	}

	CardExpense struct {
		ID               string
		BillID           string
		CategoryID       string
		Description      string
		Amount           Money
		IsPaidSeparately bool
		CreatedAt        time.Time
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyName         = errors.New("empty name")
	ErrMissingPerson     = errors.New("missing person")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrEmptyParticipants = errors.New("empty participant set")
)

func (s DebtStatus) Validate() error {
	switch s {
	case StatusPending, StatusPaid:
		return nil
	}
	return ErrInvalidStatus
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsPaid reports whether the debt reached its terminal state. The paid_at
// timestamp and the status column always move together.
func (d Debt) IsPaid() bool {
	return d.Status == StatusPaid
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.PersonID) == "" {
		return ErrMissingPerson
	}
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(d.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if err := d.Status.Validate(); err != nil {
		return err
	}
	if d.Status == StatusPaid && d.PaidAt.IsZero() {
		return errors.New("paid debt without paid_at")
	}
	if d.Status == StatusPending && !d.PaidAt.IsZero() {
		return errors.New("pending debt with paid_at")
	}
	return nil
}

func (p Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e PersonalExpense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return e.Status.Validate()
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	// Credit limit is optional, but never negative.
	if c.CreditLimit.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.CardID) == "" {
		return errors.New("missing card")
	}
	if strings.TrimSpace(b.MonthReference) == "" {
		return errors.New("empty month reference")
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	return b.Status.Validate()
}

func (e CardExpense) Validate() error {
	if strings.TrimSpace(e.BillID) == "" {
		return errors.New("missing bill")
	}
	return e.Amount.Validate()
}
