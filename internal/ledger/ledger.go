// Package ledger contains the pure aggregation pipeline behind the dashboard:
// date/person filtering of debt snapshots and the derived metrics and grouped
// series. All functions are side-effect free over immutable input slices, so
// they are safe to re-run on every filter change or data refresh.
package ledger

import (
	"sort"
	"time"

	"fiado/internal/core"
)

// FilterKind selects the date window applied to Debt.CreatedAt.
//
// Filtering happens on creation date, not due date. That mirrors the product's
// current behavior; see DESIGN.md before "fixing" it.
type FilterKind string

const (
	FilterAll    FilterKind = "all"
	FilterWeek   FilterKind = "week"
	FilterMonth  FilterKind = "month"
	FilterCustom FilterKind = "custom"
)

// DateRange is an inclusive interval for custom filters.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Filter describes one dashboard query: a date window kind, an optional person
// restriction, the custom range (required only for FilterCustom) and the
// reference instant used to resolve "this week"/"this month".
type Filter struct {
	Kind     FilterKind
	PersonID string
	Range    *DateRange
	Now      time.Time
}

// Metrics are the dashboard headline numbers for one filtered snapshot.
type Metrics struct {
	TotalPending  core.Money
	TotalReceived core.Money
	TotalDebts    int
	PaidDebts     int
}

// PersonTotal is one bar of the pending-by-person chart.
type PersonTotal struct {
	Name  string
	Total core.Money
}

// MonthTotal is one bucket of the by-month chart.
type MonthTotal struct {
	Name    string
	Pending core.Money
	Paid    core.Money
}

// UnknownPersonLabel is used when a debt's person name was lost (for example
// after a join against a deleted row).
const UnknownPersonLabel = "Desconhecido"

var monthLabels = [12]string{
	"Jan", "Fev", "Mar", "Abr", "Mai", "Jun",
	"Jul", "Ago", "Set", "Out", "Nov", "Dez",
}

// FilterDebts returns the subset of debts matching the filter, sorted by
// CreatedAt descending (newest first). The input slice is never mutated and
// identical inputs always produce the identical ordered result.
//
// A custom filter without a range degrades to FilterAll.
func FilterDebts(all []core.Debt, f Filter) []core.Debt {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}

	out := make([]core.Debt, 0, len(all))
	for _, d := range all {
		if f.PersonID != "" && d.PersonID != f.PersonID {
			continue
		}
		if !matchesWindow(d.CreatedAt, f, now) {
			continue
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesWindow(created time.Time, f Filter, now time.Time) bool {
	switch f.Kind {
	case FilterWeek:
		start, end := weekBounds(now)
		return within(created, start, end)
	case FilterMonth:
		start, end := monthBounds(now)
		return within(created, start, end)
	case FilterCustom:
		if f.Range == nil {
			return true // no range yet: behave as "all"
		}
		return within(created, f.Range.Start, f.Range.End)
	default:
		return true
	}
}

// within is inclusive on both ends.
func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// weekBounds returns the enclosing Sunday-to-Saturday week of t, at full-day
// resolution in t's location.
func weekBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}

func monthBounds(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// ComputeMetrics derives the headline totals from an already-filtered
// snapshot. Sums are exact to the cent.
func ComputeMetrics(filtered []core.Debt) Metrics {
	var m Metrics
	m.TotalDebts = len(filtered)
	for _, d := range filtered {
		if d.IsPaid() {
			m.TotalReceived.Cents += d.Amount.Cents
			m.PaidDebts++
		} else {
			m.TotalPending.Cents += d.Amount.Cents
		}
	}
	return m
}

// GroupByPerson sums pending amounts per person name, descending by total.
// Ties keep first-encountered insertion order. Debts without a person name
// fall into the UnknownPersonLabel bucket.
func GroupByPerson(filtered []core.Debt) []PersonTotal {
	totals := make(map[string]int64)
	var order []string
	for _, d := range filtered {
		if d.IsPaid() {
			continue
		}
		name := d.PersonName
		if name == "" {
			name = UnknownPersonLabel
		}
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] += d.Amount.Cents
	}

	out := make([]PersonTotal, 0, len(order))
	for _, name := range order {
		out = append(out, PersonTotal{Name: name, Total: core.Money{Cents: totals[name]}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cents > out[j].Total.Cents
	})
	return out
}

// GroupByMonth buckets every debt into one of the 12 calendar months of the
// year by CreatedAt month. The chart deliberately uses the unfiltered set, and
// debts from different years sharing a month are merged into the same bucket.
func GroupByMonth(all []core.Debt) [12]MonthTotal {
	var out [12]MonthTotal
	for i := range out {
		out[i].Name = monthLabels[i]
	}
	for _, d := range all {
		idx := int(d.CreatedAt.Month()) - 1
		if idx < 0 || idx > 11 {
			continue
		}
		if d.IsPaid() {
			out[idx].Paid.Cents += d.Amount.Cents
		} else {
			out[idx].Pending.Cents += d.Amount.Cents
		}
	}
	return out
}
