package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/HaoMAFRLu/toy-mimo-system/mimo"
	"github.com/HaoMAFRLu/toy-mimo-system/plotting"
	"github.com/HaoMAFRLu/toy-mimo-system/simulate"
	"github.com/HaoMAFRLu/toy-mimo-system/store"
	"github.com/spf13/cobra"
)

// ExciteOptions holds flags for the excite command.
type ExciteOptions struct {
	*RootOptions
	System string
	Signal string
	Plot   string
}

// NewExciteCommand creates the excite command.
func NewExciteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExciteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "excite",
		Short: "Excite a stored system with a stored signal",
		Long: `Simulate the response of a stored system to a stored excitation dataset,
starting from zero state, and store the response. The response id is printed.

Examples:
  toymimo excite --system plant --signal test
  toymimo excite --system plant --signal test --plot response.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExcite(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.System, "system", "", "system name (required)")
	_ = cmd.MarkFlagRequired("system")
	cmd.Flags().StringVar(&opts.Signal, "signal", "", "signal name (required)")
	_ = cmd.MarkFlagRequired("signal")
	cmd.Flags().StringVar(&opts.Plot, "plot", "", "write a PNG plot of inputs and outputs to this path")

	return cmd
}

func runExcite(opts *ExciteOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	p, err := loadParameters(ctx, opts.RootOptions, st, opts.System)
	if err != nil {
		return err
	}
	e, err := st.ReadSignal(ctx, opts.Signal)
	if err != nil {
		return err
	}

	sys, err := mimo.FromParameters(p)
	if err != nil {
		return err
	}
	if err := sys.Build(); err != nil {
		return err
	}
	simOpts, err := opts.Config.SimulatorOptions()
	if err != nil {
		return err
	}
	sim := simulate.New(simOpts...)
	opts.Logger.Debug("exciting system", "system", sys.Name(), "signal", e.Name, "samples", len(e.T), "method", sim.Method())
	Y, err := sim.Excite(sys, e.U, e.T)
	if err != nil {
		return err
	}

	id, err := st.WriteResponse(ctx, store.Response{
		SystemID:   sys.Name(),
		SignalName: e.Name,
		U:          e.U,
		Y:          Y,
		T:          e.T,
	})
	if err != nil {
		return err
	}
	opts.Logger.Info("response stored", "id", id, "system", sys.Name(), "signal", e.Name)

	if opts.Plot != "" {
		if err := plotting.SaveResponse(opts.Plot, e.T, e.U, Y); err != nil {
			return err
		}
		opts.Logger.Info("plot written", "path", opts.Plot)
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

// loadParameters reads a system from the database and falls back to its
// parameter file under the data directory. A system found only on disk is
// written to the database.
func loadParameters(ctx context.Context, opts *RootOptions, st *store.Store, name string) (mimo.Parameters, error) {
	p, err := st.ReadSystem(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return mimo.Parameters{}, err
	}
	p, err = store.LoadSystemFile(opts.Config.Storage.DataDir, name)
	if err != nil {
		return mimo.Parameters{}, err
	}
	opts.Logger.Debug("system loaded from file", "name", name, "data_dir", opts.Config.Storage.DataDir)
	if err := st.WriteSystem(ctx, p); err != nil {
		return mimo.Parameters{}, err
	}
	return p, nil
}
