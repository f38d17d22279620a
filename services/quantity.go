package services

import (
	"math"
	"strings"
)

// QuantityResult is the outcome of resolving one (phase item, interval)
// measurement. Manual and Computed are nil when absent; a nil Effective
// means "not yet measured", which downstream aggregation must not read
// as zero.
type QuantityResult struct {
	Manual    *float64
	Computed  *float64
	ErrorText string
}

// Effective returns the quantity used for progress and valuation: the
// manual override when present, otherwise the computed value, otherwise
// nil.
func (r QuantityResult) Effective() *float64 {
	if r.Manual != nil {
		return r.Manual
	}
	return r.Computed
}

// ResolveQuantity combines a phase item's optional formula, its normalized
// input values and an optional manual override into the quantity to
// persist. The formula is evaluated even when a manual override is present
// so the computed value stays stored for traceability; evaluation failures
// are carried as row-level diagnostic text, never as an error return.
func ResolveQuantity(expression string, values map[string]float64, manual *float64) QuantityResult {
	result := QuantityResult{}

	if manual != nil && !math.IsNaN(*manual) && !math.IsInf(*manual, 0) {
		m := *manual
		result.Manual = &m
	}

	if strings.TrimSpace(expression) != "" {
		computed, err := Evaluate(expression, values)
		if err != nil {
			result.ErrorText = err.Error()
		} else {
			result.Computed = &computed
		}
	}

	return result
}
