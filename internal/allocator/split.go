// Package allocator turns one user-entered total into the per-debt amounts of
// a split or an installment plan. Everything here is pure computation over
// cents; persistence of the resulting debts belongs to the service layer.
package allocator

import (
	"fiado/internal/core"
)

// Participant references one person taking part in a split.
type Participant struct {
	ID   string
	Name string
}

// Share is the computed amount owed by one participant.
type Share struct {
	PersonID   string
	PersonName string
	Amount     core.Money
	Custom     bool // true when the amount was entered by hand
}

// SplitResult carries the computed shares plus the reconciliation warning.
// Mismatch is informational: manually entered amounts are returned exactly as
// typed even when they do not add up to the total, so the caller can surface
// the discrepancy and let the user correct it before submitting.
type SplitResult struct {
	Shares   []Share
	Mismatch bool
	// Difference is sum(shares) - total in cents; zero when reconciled.
	Difference int64
}

// mismatchToleranceCents keeps a one-cent slack so that rounding of manual
// entries does not trip the warning.
const mismatchToleranceCents = 1

// Split distributes totalCents across participants. Participants present in
// custom keep their entered amount; the remainder (total minus the custom sum)
// is divided equally among the rest, with the leftover cents of the integer
// division handed out one per participant starting from the first automatic
// one, so the automatic portion always adds up exactly.
//
// A custom entry of zero or negative cents counts as "no override". The sum of
// all shares is NOT forced to equal the total: overshooting or undershooting
// custom amounts only raise the Mismatch flag.
func Split(totalCents int64, participants []Participant, custom map[string]int64) (SplitResult, error) {
	if totalCents <= 0 {
		return SplitResult{}, core.ErrInvalidAmount
	}
	if len(participants) == 0 {
		return SplitResult{}, core.ErrEmptyParticipants
	}

	var customTotal int64
	var autoCount int64
	for _, p := range participants {
		if c, ok := custom[p.ID]; ok && c > 0 {
			customTotal += c
		} else {
			autoCount++
		}
	}

	var perShare, leftover int64
	if autoCount > 0 {
		remainder := totalCents - customTotal
		if remainder > 0 {
			perShare = remainder / autoCount
			leftover = remainder % autoCount
		}
		// Custom amounts exceeding the total leave nothing to distribute;
		// automatic participants get zero and the mismatch flag fires below.
	}

	result := SplitResult{Shares: make([]Share, 0, len(participants))}
	var sum int64
	for _, p := range participants {
		share := Share{PersonID: p.ID, PersonName: p.Name}
		if c, ok := custom[p.ID]; ok && c > 0 {
			share.Amount = core.Money{Cents: c}
			share.Custom = true
		} else {
			cents := perShare
			if leftover > 0 {
				cents++
				leftover--
			}
			share.Amount = core.Money{Cents: cents}
		}
		sum += share.Amount.Cents
		result.Shares = append(result.Shares, share)
	}

	result.Difference = sum - totalCents
	if result.Difference > mismatchToleranceCents || result.Difference < -mismatchToleranceCents {
		result.Mismatch = true
	}
	return result, nil
}
