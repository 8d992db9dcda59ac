// Package core holds the domain model for the fiado ledger: people,
// categories, debts and their credit-card counterparts, plus money parsing
// and formatting helpers.
//
// Amounts are always integer cents. Summations over cents are exact, which
// the dashboard aggregation relies on.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDecimalToCents reads a user-typed amount ("25,50", "25.5", "25") and
// returns integer cents. Comma and dot both work as the decimal separator
// since Brazilian users type either. A third decimal digit rounds half-up:
// "12.344" gives 1234, "12.345" gives 1235. Signs, zero and anything
// non-numeric come back as ErrInvalidAmount; a debt always has a positive
// amount.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, ErrInvalidAmount
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	// allDigits also rejects signs and a second separator left in frac.
	if !allDigits(whole) || !allDigits(frac) {
		return 0, ErrInvalidAmount
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > (1<<63-1)/100 {
		return 0, ErrInvalidAmount
	}

	cents := units * 100
	switch {
	case len(frac) == 1:
		cents += int64(frac[0]-'0') * 10
	case len(frac) >= 2:
		cents += int64(frac[0]-'0')*10 + int64(frac[1]-'0')
		if len(frac) > 2 && frac[2] >= '5' {
			cents++
		}
	}

	if cents == 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Reais returns the value as a float64 for display purposes only.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// FormatBRL renders cents as a Brazilian currency string (R$ 12,34).
func (m Money) FormatBRL() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	rem := cents % 100
	s := strconv.FormatInt(whole, 10) + "," + fmt.Sprintf("%02d", rem)
	if neg {
		return "-R$ " + s
	}
	return "R$ " + s
}
