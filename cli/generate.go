package cli

import (
	"fmt"

	toymimo "github.com/HaoMAFRLu/toy-mimo-system"
	"github.com/HaoMAFRLu/toy-mimo-system/mimo"
	"github.com/spf13/cobra"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Name     string
	Inputs   int
	Outputs  int
	OrderMax int
	Seed     uint64
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store a random MIMO system",
		Long: `Draw a random stable transfer function for every input/output pair,
build the system and store it in the database and under
<data_dir>/systems/<name>/.

Flags left unset fall back to the configuration file.

Examples:
  toymimo generate
  toymimo generate --inputs 4 --outputs 2 --seed 7 --name plant`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "system name (default: a fresh UUIDv7)")
	cmd.Flags().IntVar(&opts.Inputs, "inputs", 0, "number of inputs")
	cmd.Flags().IntVar(&opts.Outputs, "outputs", 0, "number of outputs")
	cmd.Flags().IntVar(&opts.OrderMax, "order-max", 0, "largest numerator order")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	cfg := opts.Config.System
	if cmd.Flags().Changed("inputs") {
		cfg.Inputs = opts.Inputs
	}
	if cmd.Flags().Changed("outputs") {
		cfg.Outputs = opts.Outputs
	}
	if cmd.Flags().Changed("order-max") {
		cfg.OrderMax = opts.OrderMax
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = opts.Seed
	}

	sysOpts := []toymimo.Option{
		toymimo.WithOrderMax(cfg.OrderMax),
		toymimo.WithSeed(cfg.Seed),
		toymimo.WithLogger(opts.Logger),
	}
	if opts.Name != "" {
		sysOpts = append(sysOpts, toymimo.WithIDGenerator(mimo.FixedGenerator(opts.Name)))
	}
	sys := toymimo.New(cfg.Inputs, cfg.Outputs, sysOpts...)
	if err := sys.Initialize(); err != nil {
		return err
	}
	if err := sys.Build(); err != nil {
		return err
	}
	if _, err := sys.Save(opts.Config.Storage.DataDir); err != nil {
		return err
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer opts.closeStore(st)
	if err := st.WriteSystem(cmd.Context(), sys.System().Parameters()); err != nil {
		return err
	}
	opts.Logger.Info("system stored", "name", sys.Name(), "db", opts.Config.Storage.Database)

	fmt.Fprintln(cmd.OutOrStdout(), sys.Name())
	return nil
}
