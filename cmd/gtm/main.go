package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/flightdyn/gtm/internal/config"
	"github.com/flightdyn/gtm/internal/gtm"
	"github.com/flightdyn/gtm/internal/integrators"
	"github.com/flightdyn/gtm/internal/odefunc"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

var (
	stm        bool
	noSimplify bool
	modelName  string
	configFile string
	preset     string
	dt         float64
	duration   float64
	plotState  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gtm",
		Short: "NASA GTM longitudinal dynamics toolbox",
	}
	rootCmd.PersistentFlags().BoolVar(&stm, "stm", false, "augment with the state-transition matrix")
	rootCmd.PersistentFlags().BoolVar(&noSimplify, "no-simplify", false, "skip structural simplification")
	rootCmd.PersistentFlags().StringVar(&modelName, "name", gtm.DefaultName, "model name")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "preset configuration")

	equationsCmd := &cobra.Command{
		Use:   "equations",
		Short: "print the symbolic equations of motion",
		RunE:  runEquations,
	}

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate the state derivative at the configured point",
		RunE:  runEval,
	}

	jacobianCmd := &cobra.Command{
		Use:   "jacobian",
		Short: "evaluate the analytic jacobian at the configured point",
		RunE:  runJacobian,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "integrate a trajectory and plot one state",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (default from config)")
	simulateCmd.Flags().Float64Var(&duration, "time", 0, "duration (default from config)")
	simulateCmd.Flags().StringVar(&plotState, "plot", "alpha", "state to plot")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Run: func(cmd *cobra.Command, args []string) {
			for _, n := range config.ListPresets() {
				fmt.Println(n)
			}
		},
	}

	rootCmd.AddCommand(equationsCmd, evalCmd, jacobianCmd, simulateCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
	case configFile != "":
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	// Flags win over file and preset values.
	if stm {
		cfg.STM = true
	}
	if noSimplify {
		cfg.Simplify = false
	}
	if modelName != gtm.DefaultName {
		cfg.Name = modelName
	}
	return cfg, nil
}

func runEquations(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sys, err := gtm.Build(cfg.BuildOptions())
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(sys.Name()))
	fmt.Println(dimStyle.Render("states: " + strings.Join(sys.States(), ", ")))
	fmt.Println(dimStyle.Render("inputs: " + strings.Join(sys.Inputs(), ", ")))
	fmt.Println()
	for _, eq := range sys.Equations() {
		fmt.Println(eq)
	}
	return nil
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := odefunc.GTMFunction(cfg.BuildOptions(), nil)
	if err != nil {
		return err
	}

	x, u := startVectors(cfg, f)
	dx, err := f.Eval(x, u, 0)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(f.System().Name() + " derivative"))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, name := range f.System().States() {
		fmt.Fprintf(w, "d/dt %s\t%+.9e\n", name, dx[i])
	}
	return w.Flush()
}

func runJacobian(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := odefunc.GTMFunction(cfg.BuildOptions(), nil)
	if err != nil {
		return err
	}

	x, u := startVectors(cfg, f)
	jac, err := f.Jacobian(x, u, 0)
	if err != nil {
		return err
	}

	states := f.System().States()
	fmt.Println(headerStyle.Render(f.System().Name() + " jacobian"))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "\t%s\t\n", strings.Join(states, "\t"))
	for i, name := range states {
		fmt.Fprintf(w, "%s\t", name)
		for j := range states {
			fmt.Fprintf(w, "%+.4e\t", jac.At(i, j))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dt > 0 {
		cfg.Dt = dt
	}
	if duration > 0 {
		cfg.Duration = duration
	}

	f, err := odefunc.GTMFunction(cfg.BuildOptions(), nil)
	if err != nil {
		return err
	}
	states := f.System().States()
	plotIdx := -1
	for i, n := range states {
		if n == plotState {
			plotIdx = i
		}
	}
	if plotIdx < 0 {
		return fmt.Errorf("unknown state %q (have %s)", plotState, strings.Join(states, ", "))
	}

	x, u := startVectors(cfg, f)
	stepper := integrators.NewRK4()
	steps := int(cfg.Duration / cfg.Dt)
	series := make([]float64, 0, steps+1)
	series = append(series, x[plotIdx])
	for i := 0; i < steps; i++ {
		x, err = stepper.Step(f, x, u, float64(i)*cfg.Dt, cfg.Dt)
		if err != nil {
			return err
		}
		series = append(series, x[plotIdx])
	}

	fmt.Println(asciigraph.Plot(series,
		asciigraph.Height(15),
		asciigraph.Width(72),
		asciigraph.Caption(fmt.Sprintf("%s over %.1fs (dt=%.3f)", plotState, cfg.Duration, cfg.Dt)),
	))
	fmt.Println()
	fmt.Println(dimStyle.Render("final state"))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, name := range states {
		fmt.Fprintf(w, "%s\t%+.6e\n", name, x[i])
	}
	return w.Flush()
}

// startVectors composes the initial state and input: system defaults
// (which carry the STM identity block when present) with the base
// states and inputs overridden from the config.
func startVectors(cfg *config.Config, f *odefunc.Func) ([]float64, []float64) {
	x := f.System().DefaultState()
	copy(x, cfg.StateVector())
	return x, cfg.InputVector()
}
