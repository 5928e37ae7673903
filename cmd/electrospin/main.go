// Command electrospin generates Box–Behnken designs, sweeps the Uc response
// model and fits polynomial response surfaces from measured runs.
//
//	electrospin design --factors 3
//	electrospin uc sweep --x H --y h --const1 50 --const2 0.02 --png uc.png
//	electrospin regress runs.csv --out-dir plots --model surface.json
//	electrospin serve --addr :8080
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/YuminosukeSato/electrospin/config"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/pkg/log"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand.
type app struct {
	cfg    config.Config
	out    io.Writer
	errOut io.Writer

	logLevel  string
	logFormat string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, out, errOut io.Writer) int {
	a := &app{out: out, errOut: errOut}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.Execute(); err != nil {
		if strings.HasPrefix(err.Error(), "unknown command") {
			err = &usageError{err: err}
		}
		fmt.Fprintf(errOut, "%s: %v\n", errorKind(err), err)
		return 1
	}
	return 0
}

// errorKind names err for the "<kind>: <message>" line. Flag and argument
// errors raised by cobra are caller errors.
func errorKind(err error) string {
	var usage *usageError
	if errors.As(err, &usage) {
		return errors.KindInvalidArgument
	}
	return errors.Kind(err)
}

// usageError marks command-line mistakes detected by cobra.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "electrospin",
		Short:         "Design-of-experiments tools for electrospinning",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error (default from "+config.EnvLogLevel+")")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: console|json (default from "+config.EnvLogFormat+")")

	root.AddCommand(
		a.designCmd(),
		a.ucCmd(),
		a.regressCmd(),
		a.surfacesCmd(),
		a.serveCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.SetupLogger(a.errOut, cfg.LogLevel, cfg.LogFormat); err != nil {
		return errors.NewValueError("logger", err.Error())
	}
	a.cfg = cfg

	log.GetLoggerWithName("cli").Debug("command started",
		log.ComponentKey, "cli",
		log.OperationKey, cmd.CommandPath(),
	)
	return nil
}

// requireFlags fails unless every named flag was set explicitly.
func requireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string
	for _, name := range names {
		if !cmd.Flags().Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return &usageError{err: fmt.Errorf("required flag(s) %s not set", strings.Join(missing, ", "))}
	}
	return nil
}

// positionalArgs wraps a cobra argument validator so its failures are
// reported as usage errors.
func positionalArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}
