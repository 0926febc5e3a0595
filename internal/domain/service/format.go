package service

import (
	"fmt"
	"strconv"
)

// Formatter is the single place amounts are rendered for detection reasons,
// labels, and reports. Call sites never hand-roll SOL/USD formatting.
type Formatter struct {
	SOLPriceUSD float64 // 0 disables USD rendering
}

// NewFormatter creates a formatter. A zero or negative price disables the
// USD suffix.
func NewFormatter(solPriceUSD float64) *Formatter {
	return &Formatter{SOLPriceUSD: solPriceUSD}
}

// SOL renders an amount in SOL at full precision, trimming zeros.
func (f *Formatter) SOL(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64) + " SOL"
}

// SOLWithUSD renders an amount in SOL with the USD equivalent appended when
// a price is configured.
func (f *Formatter) SOLWithUSD(amount float64) string {
	if f.SOLPriceUSD <= 0 {
		return f.SOL(amount)
	}
	return fmt.Sprintf("%s (~$%.2f)", f.SOL(amount), amount*f.SOLPriceUSD)
}

// AmountBucket renders the canonical 2-decimal bucket key used by
// amount-based clustering.
func (f *Formatter) AmountBucket(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
