package tf

import (
	"fmt"
	"math"
	"strings"
)

// FormatPolynomial renders the coefficients c (highest power first) term by
// term, e.g. "1.00000s^2 - 0.50000s + 3.00000". Zero terms are skipped and
// every magnitude is printed with five decimals.
func FormatPolynomial(c []float64) string {
	terms := make([]string, 0, len(c))
	order := len(c) - 1
	for index, coef := range c {
		if coef == 0 {
			continue
		}
		exponent := order - index
		var term string
		switch exponent {
		case 0:
			term = fmt.Sprintf("%.5f", math.Abs(coef))
		case 1:
			term = fmt.Sprintf("%.5fs", math.Abs(coef))
		default:
			term = fmt.Sprintf("%.5fs^%d", math.Abs(coef), exponent)
		}
		switch {
		case coef < 0:
			terms = append(terms, "- "+term)
		case len(terms) > 0:
			terms = append(terms, "+ "+term)
		default:
			terms = append(terms, term)
		}
	}
	return strings.Join(terms, " ")
}

// String renders the transfer function on one line as "(num) / (den)".
func (h TransferFunction) String() string {
	return "(" + FormatPolynomial(h.Num) + ") / (" + FormatPolynomial(h.Den) + ")"
}
