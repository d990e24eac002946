// Command embedci solves the embedding Hamiltonians of impurities stored in a dataset database.
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(os.Args[1:]); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "embedci",
		Short:         "Configuration interaction ground states of impurity embedding Hamiltonians",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSolveCmd(), newVerifyCmd(), newDumpCmd(), newSeedCmd())
	return root
}

// inputFlags select the dataset and the restriction of a solve.
type inputFlags struct {
	db         string
	configPath string
	projection string
	target     float64
	verbose    bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.db, "db", "embedci.db", "dataset database")
	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&f.projection, "projection", "none", "projected quantum number, one of none, sz, jz")
	cmd.Flags().Float64Var(&f.target, "target", 0, "quantum number of the retained states, all if unset")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log solver progress")
}

// config returns the configuration file overridden by the flags set on cmd.
func (f *inputFlags) config(cmd *cobra.Command) (Config, error) {
	cfg := defaultConfig()
	if f.configPath != "" {
		var err error
		cfg, err = loadConfig(f.configPath)
		if err != nil {
			return Config{}, errors.Wrap(err, "")
		}
	}
	if cmd.Flags().Changed("projection") {
		cfg.Restriction.Projection = f.projection
	}
	if cmd.Flags().Changed("target") {
		t := f.target
		cfg.Restriction.Target = &t
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	return cfg, nil
}

func (f *inputFlags) logger() *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
