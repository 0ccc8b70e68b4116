package cli

import (
	"fmt"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/signal"
	"github.com/HaoMAFRLu/toy-mimo-system/tf"
	"github.com/spf13/cobra"
)

// SignalKinds lists the waveforms of the signal command.
var SignalKinds = []string{"step", "sine", "multisine", "zeros"}

// SignalOptions holds flags for the signal command.
type SignalOptions struct {
	*RootOptions
	Name        string
	Inputs      int
	Kind        string
	Duration    float64
	SampleRate  float64
	Amplitude   float64
	Frequencies []float64
	Seed        uint64
}

// NewSignalCommand creates the signal command.
func NewSignalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SignalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "signal",
		Short: "Create and store an excitation dataset",
		Long: `Sample one input signal per system input on a shared time grid and store
the dataset in the database under its name.

Kinds:
  step       amplitude from t = 0 on
  sine       amplitude * sin(2 pi f t) with the first frequency
  multisine  sum of sines at all frequencies with random phases,
             scaled to peak amplitude, independent per input
  zeros      all zero

Examples:
  toymimo signal --name test
  toymimo signal --name chirpy --kind multisine --frequencies 0.1,0.5,2 --duration 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "signal name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().IntVar(&opts.Inputs, "inputs", 0, "number of input signals (default: system.inputs)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "step", "waveform (step|sine|multisine|zeros)")
	cmd.Flags().Float64Var(&opts.Duration, "duration", 10, "duration in seconds")
	cmd.Flags().Float64Var(&opts.SampleRate, "rate", 100, "sample rate in Hz")
	cmd.Flags().Float64Var(&opts.Amplitude, "amplitude", 1, "amplitude")
	cmd.Flags().Float64SliceVar(&opts.Frequencies, "frequencies", []float64{1}, "frequencies in Hz")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for multisine phases (default: system.seed)")

	return cmd
}

func runSignal(opts *SignalOptions, cmd *cobra.Command) error {
	inputs := opts.Config.System.Inputs
	if cmd.Flags().Changed("inputs") {
		inputs = opts.Inputs
	}
	seed := opts.Config.System.Seed
	if cmd.Flags().Changed("seed") {
		seed = opts.Seed
	}

	e, err := buildExcitation(opts.Name, opts.Kind, inputs, opts.Duration, opts.SampleRate, opts.Amplitude, opts.Frequencies, seed)
	if err != nil {
		return err
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer opts.closeStore(st)
	if err := st.WriteSignal(cmd.Context(), e); err != nil {
		return err
	}
	opts.Logger.Info("signal stored", "name", e.Name, "kind", opts.Kind, "inputs", inputs, "samples", len(e.T))

	fmt.Fprintln(cmd.OutOrStdout(), e.Name)
	return nil
}

func buildExcitation(name, kind string, inputs int, duration, rate, amplitude float64, frequencies []float64, seed uint64) (signal.Excitation, error) {
	if inputs < 1 {
		return signal.Excitation{}, fmt.Errorf("%w: %d inputs", errs.ErrInvalidConfiguration, inputs)
	}
	t, err := signal.TimeStamps(0, duration, rate)
	if err != nil {
		return signal.Excitation{}, err
	}

	var U [][]float64
	switch kind {
	case "step":
		U = signal.Repeat(signal.Step(t, 0, amplitude), inputs)
	case "sine":
		if len(frequencies) == 0 {
			return signal.Excitation{}, fmt.Errorf("%w: sine needs a frequency", errs.ErrInvalidConfiguration)
		}
		U = signal.Repeat(signal.Sine(t, amplitude, frequencies[0], 0), inputs)
	case "multisine":
		if len(frequencies) == 0 {
			return signal.Excitation{}, fmt.Errorf("%w: multisine needs frequencies", errs.ErrInvalidConfiguration)
		}
		rnd := tf.NewRand(seed)
		U = make([][]float64, inputs)
		for row := range U {
			U[row] = signal.Multisine(rnd, t, frequencies, amplitude)
		}
	case "zeros":
		U = signal.Repeat(signal.Zeros(len(t)), inputs)
	default:
		return signal.Excitation{}, fmt.Errorf("%w: signal kind %q, must be one of %v", errs.ErrInvalidConfiguration, kind, SignalKinds)
	}
	return signal.Excitation{Name: name, T: t, U: U}, nil
}
