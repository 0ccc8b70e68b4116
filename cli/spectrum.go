package cli

import (
	"fmt"
	"math/cmplx"
	"strings"
	"text/tabwriter"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/spectrum"
	"github.com/spf13/cobra"
)

// SpectrumOptions holds flags for the spectrum command.
type SpectrumOptions struct {
	*RootOptions
	Bins int
}

// NewSpectrumCommand creates the spectrum command.
func NewSpectrumCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SpectrumOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "spectrum <response>",
		Short: "Print the amplitude spectra of a stored response",
		Long: `Transform the inputs and outputs of a stored response to the frequency
domain and print the amplitude |X(f)| / N of every channel for the lowest
non-negative frequency bins. The sample rate is taken from the first and
last time stamp.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpectrum(opts, cmd, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Bins, "bins", 20, "number of frequency bins to print")

	return cmd
}

func runSpectrum(opts *SpectrumOptions, cmd *cobra.Command, id string) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	r, err := st.ReadResponse(cmd.Context(), id)
	if err != nil {
		return err
	}
	n := len(r.T)
	if n < 2 {
		return fmt.Errorf("%w: response %q has %d samples", errs.ErrInvalidInput, id, n)
	}
	fs := float64(n-1) / (r.T[n-1] - r.T[0])
	freqs := spectrum.Frequencies(n, fs)
	U := spectrum.ToFrequency(r.U)
	Y := spectrum.ToFrequency(r.Y)

	bins := opts.Bins
	if half := n/2 + 1; bins > half || bins < 1 {
		bins = half
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	header := []string{"FREQ"}
	for j := range U {
		header = append(header, fmt.Sprintf("|U_%d|", j))
	}
	for i := range Y {
		header = append(header, fmt.Sprintf("|Y_%d|", i))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	channels := append(U, Y...)
	for k := 0; k < bins; k++ {
		row := []string{fmt.Sprintf("%.5f", freqs[k])}
		for _, X := range channels {
			row = append(row, fmt.Sprintf("%.5f", cmplx.Abs(X[k])/float64(n)))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}
