package mimo

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/HaoMAFRLu/toy-mimo-system/tf"
)

const ruleWidth = 60

// WriteReport writes one block per grid cell:
//
//	H_{row}{col}(s) =
//
//	numerator
//	------------------------------------------------------------
//	denominator
//
//	============================================================
func WriteReport(w io.Writer, grid [][]tf.TransferFunction) error {
	bw := bufio.NewWriter(w)
	dash := strings.Repeat("-", ruleWidth)
	equal := strings.Repeat("=", ruleWidth)
	for row := range grid {
		for col, h := range grid[row] {
			fmt.Fprintf(bw, "H_%d%d(s) = \n", row, col)
			fmt.Fprintln(bw)
			fmt.Fprintln(bw, tf.FormatPolynomial(h.Num))
			fmt.Fprintln(bw, dash)
			fmt.Fprintln(bw, tf.FormatPolynomial(h.Den))
			fmt.Fprintln(bw)
			fmt.Fprintln(bw, equal)
			fmt.Fprintln(bw)
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}

// Report returns the transfer function report of the system.
func (s *System) Report() string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = WriteReport(&sb, s.grid)
	return sb.String()
}
