package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/HaoMAFRLu/toy-mimo-system/mimo"
	"github.com/spf13/cobra"
)

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var dcGain bool

	cmd := &cobra.Command{
		Use:   "report <system>",
		Short: "Print the transfer functions of a stored system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer rootOpts.closeStore(st)

			p, err := loadParameters(cmd.Context(), rootOpts, st, args[0])
			if err != nil {
				return err
			}
			if err := mimo.WriteReport(cmd.OutOrStdout(), p.Grid); err != nil {
				return err
			}
			if !dcGain {
				return nil
			}
			return writeDCGains(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().BoolVar(&dcGain, "dc-gain", false, "also print the steady state gain of every channel")

	return cmd
}

// writeDCGains builds the system and prints its gain matrix, one row per
// output.
func writeDCGains(out io.Writer, p mimo.Parameters) error {
	sys, err := mimo.FromParameters(p)
	if err != nil {
		return err
	}
	if err := sys.Build(); err != nil {
		return err
	}
	gains, err := sys.DCGains()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "DC gain:")
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "OUTPUT")
	for col := 0; col < sys.NumberOfInputs(); col++ {
		fmt.Fprintf(w, "\tu_%d", col+1)
	}
	fmt.Fprintln(w)
	for row, gain := range gains {
		fmt.Fprintf(w, "y_%d", row+1)
		for _, g := range gain {
			fmt.Fprintf(w, "\t%.6g", g)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var system string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored systems, or the responses of one system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer rootOpts.closeStore(st)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if system != "" {
				responses, err := st.ListResponses(cmd.Context(), system)
				if err != nil {
					return err
				}
				if len(responses) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No responses found for system %s.\n", system)
					return nil
				}
				fmt.Fprintln(w, "ID\tSIGNAL\tSAMPLES\tCREATED")
				for _, r := range responses {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.SignalName, len(r.T), r.CreatedAt.Format(time.RFC3339))
				}
				return w.Flush()
			}

			infos, err := st.ListSystems(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No systems found in database.")
				return nil
			}
			fmt.Fprintln(w, "NAME\tINPUTS\tOUTPUTS\tCREATED")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", info.ID, info.NrInputs, info.NrOutputs, info.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "list the responses of this system")

	return cmd
}
