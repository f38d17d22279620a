package services

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatQuantity formats a quantity with up to 2 decimal places, dropping
// trailing zeros (e.g. 12.50 -> "12.5", 12.00 -> "12").
func FormatQuantity(q float64) string {
	raw := strconv.FormatFloat(q, 'f', 2, 64)
	raw = strings.TrimRight(raw, "0")
	raw = strings.TrimSuffix(raw, ".")
	if raw == "" || raw == "-" {
		return "0"
	}
	return raw
}

// FormatPercent formats a completion ratio (0..1) as a percentage with one
// decimal place.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatMoney formats a monetary amount with thousands separators and
// exactly 2 decimal places (e.g. 1234567.8 -> "1 234 567.80").
func FormatMoney(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(raw, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	result := strings.Join(grouped, " ") + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}
