package http

import (
	"fmt"
	"strings"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// formatInstallment renders the position of a debt inside its plan (3/12).
func formatInstallment(number, total int) string {
	return fmt.Sprintf("%d/%d", number, total)
}
