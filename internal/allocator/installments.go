package allocator

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"fiado/internal/core"
)

const (
	// MinInstallments and MaxInstallments bound the plan size; the UI offers
	// the same 2..48 range.
	MinInstallments = 2
	MaxInstallments = 48
)

var ErrInstallmentCount = errors.New("installment count must be between 2 and 48")

// Installment is one monthly slice of an installment plan.
type Installment struct {
	Amount  core.Money
	DueDate time.Time
	Number  int // 1-based
	Total   int
}

// Plan is the full set of installments sharing one group ID.
type Plan struct {
	GroupID      string
	Installments []Installment
}

// Installments divides totalCents into count equal monthly slices starting at
// firstDue. The division is cent-exact: every slice gets total/count and the
// last one absorbs the remainder, so the plan always reconciles to the total.
// Due dates advance by calendar months keeping the day of the month, clamped
// to the last day of shorter months (Jan 31 -> Feb 28).
func Installments(totalCents int64, firstDue time.Time, count int) (Plan, error) {
	if totalCents <= 0 {
		return Plan{}, core.ErrInvalidAmount
	}
	if count < MinInstallments || count > MaxInstallments {
		return Plan{}, ErrInstallmentCount
	}
	if firstDue.IsZero() {
		return Plan{}, errors.New("missing first due date")
	}

	per := totalCents / int64(count)
	last := totalCents - per*int64(count-1)

	plan := Plan{
		GroupID:      uuid.New().String(),
		Installments: make([]Installment, 0, count),
	}
	for i := 0; i < count; i++ {
		amount := per
		if i == count-1 {
			amount = last
		}
		plan.Installments = append(plan.Installments, Installment{
			Amount:  core.Money{Cents: amount},
			DueDate: addMonthsClamped(firstDue, i),
			Number:  i + 1,
			Total:   count,
		})
	}
	return plan, nil
}

// addMonthsClamped advances t by n calendar months. Unlike time.AddDate it
// never rolls into the following month: Jan 31 plus one month is Feb 28 (or
// 29), not Mar 3.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
