package util

import (
	"fmt"
	"strconv"
	"strings"
)

// Helper functions

// FormatRVU renders an RVU or GPCI component with trailing zeros trimmed,
// matching how CMS publishes them (1.3, 0.55, 1.008).
func FormatRVU(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".00"
	}
	return s
}

// FormatCurrency formats a dollar amount with comma separators for thousands.
func FormatCurrency(amount float64) string {
	str := fmt.Sprintf("%.2f", amount)

	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	if len(intPart) > 3 {
		chars := []rune(intPart)
		result := []rune{}
		for i := len(chars) - 1; i >= 0; i-- {
			if len(result) > 0 && len(result)%4 == 3 {
				result = append([]rune{','}, result...)
			}
			result = append([]rune{chars[i]}, result...)
		}
		intPart = string(result)
	}

	return fmt.Sprintf("$%s.%s", intPart, decPart)
}
