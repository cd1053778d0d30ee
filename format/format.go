// Package format renders values for display in a given locale.
// All functions are pure.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rogpeppe/ehz/locale"
)

// Unavailable is shown in place of a number that can't be shown.
const Unavailable = "--"

// DefaultDecimals holds the number of decimal places used for
// status values.
const DefaultDecimals = 1

// Number formats v with the given number of decimal places
// using the decimal separator of the given locale. No grouping
// separators are used. Halves are rounded away from zero.
// If v is NaN or infinite, Unavailable is returned.
func Number(cat *locale.Catalog, v float64, tag locale.Tag, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable
	}
	if decimals < 0 {
		decimals = 0
	}
	s := decimal.NewFromFloat(v).StringFixed(int32(decimals))
	if sep := cat.DecimalSeparator(tag); sep != "." {
		s = strings.Replace(s, ".", sep, 1)
	}
	return s
}

// OptNumber is like Number except that it returns Unavailable
// when v is nil.
func OptNumber(cat *locale.Catalog, v *float64, tag locale.Tag, decimals int) string {
	if v == nil {
		return Unavailable
	}
	return Number(cat, *v, tag, decimals)
}

// StatusLabel returns the label for the flow direction.
func StatusLabel(cat *locale.Catalog, feedIn bool, tag locale.Tag) string {
	if feedIn {
		return cat.Lookup(tag, locale.KeyStatusFeedIn)
	}
	return cat.Lookup(tag, locale.KeyStatusConsumption)
}
