package allocator

import (
	"errors"
	"testing"
	"time"

	"fiado/internal/core"
)

func TestInstallmentsEvenDivision(t *testing.T) {
	first := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	plan, err := Installments(12000, first, 3)
	if err != nil {
		t.Fatalf("Installments: %v", err)
	}
	if plan.GroupID == "" {
		t.Error("empty group ID")
	}
	if len(plan.Installments) != 3 {
		t.Fatalf("got %d installments, want 3", len(plan.Installments))
	}
	for i, inst := range plan.Installments {
		if inst.Amount.Cents != 4000 {
			t.Errorf("installment %d amount = %d, want 4000", i+1, inst.Amount.Cents)
		}
		if inst.Number != i+1 {
			t.Errorf("installment %d Number = %d", i+1, inst.Number)
		}
		if inst.Total != 3 {
			t.Errorf("installment %d Total = %d, want 3", i+1, inst.Total)
		}
		wantDue := first.AddDate(0, i, 0)
		if !inst.DueDate.Equal(wantDue) {
			t.Errorf("installment %d due %v, want %v", i+1, inst.DueDate, wantDue)
		}
	}
}

func TestInstallmentsRemainderOnLast(t *testing.T) {
	plan, err := Installments(10000, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), 3)
	if err != nil {
		t.Fatalf("Installments: %v", err)
	}
	want := []int64{3333, 3333, 3334}
	var sum int64
	for i, inst := range plan.Installments {
		if inst.Amount.Cents != want[i] {
			t.Errorf("installment %d = %d, want %d", i+1, inst.Amount.Cents, want[i])
		}
		sum += inst.Amount.Cents
	}
	if sum != 10000 {
		t.Errorf("plan sums to %d, want 10000", sum)
	}
}

func TestInstallmentsEndOfMonthClamping(t *testing.T) {
	// First due on Jan 31: February has no 31st, so the second slice lands on
	// Feb 28 and the third recovers to Mar 31 (months are counted from the
	// first due date, not chained).
	first := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	plan, err := Installments(30000, first, 3)
	if err != nil {
		t.Fatalf("Installments: %v", err)
	}
	want := []time.Time{
		time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
	for i, inst := range plan.Installments {
		if !inst.DueDate.Equal(want[i]) {
			t.Errorf("installment %d due %v, want %v", i+1, inst.DueDate, want[i])
		}
	}
}

func TestInstallmentsLeapFebruary(t *testing.T) {
	first := time.Date(2028, time.January, 31, 0, 0, 0, 0, time.UTC)
	plan, err := Installments(20000, first, 2)
	if err != nil {
		t.Fatalf("Installments: %v", err)
	}
	want := time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC)
	if !plan.Installments[1].DueDate.Equal(want) {
		t.Errorf("second installment due %v, want %v", plan.Installments[1].DueDate, want)
	}
}

func TestInstallmentsYearRollover(t *testing.T) {
	first := time.Date(2026, time.November, 15, 0, 0, 0, 0, time.UTC)
	plan, err := Installments(40000, first, 4)
	if err != nil {
		t.Fatalf("Installments: %v", err)
	}
	last := plan.Installments[3].DueDate
	if last.Year() != 2027 || last.Month() != time.February || last.Day() != 15 {
		t.Errorf("fourth installment due %v, want 2027-02-15", last)
	}
}

func TestInstallmentsErrors(t *testing.T) {
	due := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		total   int64
		due     time.Time
		count   int
		wantErr error
	}{
		{name: "zero total", total: 0, due: due, count: 3, wantErr: core.ErrInvalidAmount},
		{name: "count below minimum", total: 1000, due: due, count: 1, wantErr: ErrInstallmentCount},
		{name: "count above maximum", total: 1000, due: due, count: 49, wantErr: ErrInstallmentCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Installments(tt.total, tt.due, tt.count); !errors.Is(err, tt.wantErr) {
				t.Errorf("Installments() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Installments(1000, time.Time{}, 3); err == nil {
		t.Error("zero first due date should error")
	}
}

func TestInstallmentsBoundsAccepted(t *testing.T) {
	due := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	for _, count := range []int{MinInstallments, MaxInstallments} {
		plan, err := Installments(100000, due, count)
		if err != nil {
			t.Errorf("count %d: %v", count, err)
			continue
		}
		if len(plan.Installments) != count {
			t.Errorf("count %d: got %d installments", count, len(plan.Installments))
		}
	}
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		n    int
		want time.Time
	}{
		{
			name: "normal day",
			t:    time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "day 31 into 30-day month",
			t:    time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "december rollover",
			t:    time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2027, time.January, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "zero months",
			t:    time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC),
			n:    0,
			want: time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := addMonthsClamped(tt.t, tt.n); !got.Equal(tt.want) {
				t.Errorf("addMonthsClamped(%v, %d) = %v, want %v", tt.t, tt.n, got, tt.want)
			}
		})
	}
}
