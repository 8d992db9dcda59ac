package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validDebt() Debt {
	return Debt{
		ID:          "d1",
		PersonID:    "p1",
		Description: "lanche",
		Amount:      Money{Cents: 1500},
		Status:      StatusPending,
	}
}

func TestDebtValidate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		mutate  func(*Debt)
		wantErr error
	}{
		{name: "valid pending", mutate: func(d *Debt) {}},
		{name: "valid paid", mutate: func(d *Debt) {
			d.Status = StatusPaid
			d.PaidAt = now
		}},
		{name: "missing person", mutate: func(d *Debt) { d.PersonID = "  " }, wantErr: ErrMissingPerson},
		{name: "empty description", mutate: func(d *Debt) { d.Description = "" }, wantErr: ErrEmptyDescription},
		{name: "blank description", mutate: func(d *Debt) { d.Description = "   " }, wantErr: ErrEmptyDescription},
		{name: "zero amount", mutate: func(d *Debt) { d.Amount.Cents = 0 }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(d *Debt) { d.Amount.Cents = -100 }, wantErr: ErrInvalidAmount},
		{name: "bogus status", mutate: func(d *Debt) { d.Status = "done" }, wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDebt()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDebtValidatePaidAtConsistency(t *testing.T) {
	d := validDebt()
	d.Status = StatusPaid
	if err := d.Validate(); err == nil {
		t.Error("paid debt without paid_at should not validate")
	}

	d = validDebt()
	d.PaidAt = time.Now()
	if err := d.Validate(); err == nil {
		t.Error("pending debt with paid_at should not validate")
	}
}

func TestDebtValidateDescriptionLength(t *testing.T) {
	d := validDebt()
	d.Description = strings.Repeat("x", 200)
	if err := d.Validate(); err != nil {
		t.Errorf("200-char description should validate, got %v", err)
	}
	d.Description = strings.Repeat("x", 201)
	if err := d.Validate(); err == nil {
		t.Error("201-char description should not validate")
	}
}

func TestDebtIsPaid(t *testing.T) {
	d := validDebt()
	if d.IsPaid() {
		t.Error("pending debt reported as paid")
	}
	d.Status = StatusPaid
	d.PaidAt = time.Now()
	if !d.IsPaid() {
		t.Error("paid debt not reported as paid")
	}
}

func TestPersonValidate(t *testing.T) {
	if err := (Person{Name: "Maria"}).Validate(); err != nil {
		t.Errorf("valid person: %v", err)
	}
	if err := (Person{Name: "  "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank name = %v, want ErrEmptyName", err)
	}
	if err := (Person{Name: strings.Repeat("a", 101)}).Validate(); err == nil {
		t.Error("101-char name should not validate")
	}
}

func TestCardValidate(t *testing.T) {
	if err := (Card{Name: "Nubank"}).Validate(); err != nil {
		t.Errorf("card without limit should validate, got %v", err)
	}
	if err := (Card{Name: "Nubank", CreditLimit: Money{Cents: -1}}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Error("negative credit limit should not validate")
	}
	if err := (Card{}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Error("unnamed card should not validate")
	}
}

func TestBillValidate(t *testing.T) {
	b := Bill{CardID: "c1", MonthReference: "2026-08", Amount: Money{Cents: 50000}, Status: StatusPending}
	if err := b.Validate(); err != nil {
		t.Errorf("valid bill: %v", err)
	}
	b.MonthReference = ""
	if err := b.Validate(); err == nil {
		t.Error("bill without month reference should not validate")
	}
}
