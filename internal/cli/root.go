// Package cli holds the routectl cobra commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/appconf"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/logging"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/metrics"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/plan"
)

// app is the state shared by every subcommand. It is filled in by the root
// command's pre-run hook.
type app struct {
	envFile    string
	configFile string
	logLevel   string
	verbose    bool

	cfg     appconf.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Execute runs routectl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "routectl: %v\n", err)
		return 1
	}
	return 0
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "routectl",
		Short:         "Build and inspect transit routes and schedules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file read before the environment")
	flags.StringVarP(&a.configFile, "config", "c", "", "JSON config file; replaces environment configuration")
	flags.StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "print every domain event")

	cmd.AddCommand(
		a.planCmd(),
		a.importGTFSCmd(),
		a.nearbyCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if cfg.LogLevel, err = logging.ParseLevel(a.logLevel); err != nil {
			return err
		}
	}
	if a.verbose {
		cfg.Verbose = true
	}

	a.cfg = cfg
	a.logger = logging.NewLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel).
		With(slog.String("component", "routectl"), slog.String("env", cfg.Env.String()))
	a.metrics = metrics.NewWithLogger(a.logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))
	return nil
}

func (a *app) loadConfig() (appconf.Config, error) {
	if a.configFile != "" {
		jc, err := appconf.LoadFromFile(a.configFile)
		if err != nil {
			return appconf.Config{}, err
		}
		return jc.ToAppConfig()
	}
	return appconf.LoadFromEnv(a.envFile)
}

func (a *app) builder() (*plan.Builder, error) {
	dc, err := a.cfg.DomainConfig()
	if err != nil {
		return nil, err
	}
	return plan.NewBuilder(dc, plan.WithLocation(a.cfg.Location())), nil
}

// fail counts err when it is a rule violation and wraps it with what was
// being attempted.
func (a *app) fail(action string, err error) error {
	if a.metrics.ObserveError(err) {
		logging.LogOperation(a.logger, "business_rule_violation",
			slog.String("action", action),
			slog.String("code", string(domainerr.CodeOf(err))))
	}
	return fmt.Errorf("%s: %w", action, err)
}

// now is the configured clock's current time in the configured zone.
func (a *app) now() (time.Time, error) {
	clk, err := a.cfg.Clock()
	if err != nil {
		return time.Time{}, err
	}
	return clk.Now().In(a.cfg.Location()), nil
}
