// Package gstctl implements the gstctl command line tool.
package gstctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/kbukum/gstclient/errors"
	"github.com/kbukum/gstclient/gstd"
	"github.com/kbukum/gstclient/logger"
	"github.com/kbukum/gstclient/observability"
	"github.com/kbukum/gstclient/validation"
)

var outputFormats = []string{"table", "json"}

// app holds flag values and the state built in PersistentPreRunE.
type app struct {
	cfgFile      string
	serverURL    string
	outputFormat string

	out    io.Writer
	errOut io.Writer

	cfg      *Config
	log      *logger.Logger
	client   *gstd.Client
	shutdown observability.ShutdownFunc
}

// Execute runs gstctl with os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes the command line args, writing results to out and errors
// to errOut, and returns the exit code.
func Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	a := &app{out: out, errOut: errOut}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if a.shutdown != nil {
		if serr := a.shutdown(context.Background()); serr != nil {
			a.log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", serr))
		}
	}
	if err == nil {
		return apperrors.ExitOK
	}
	return a.reportError(err)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gstctl",
		Short: "Control a GStreamer Daemon over HTTP",
		Long: `gstctl drives a running gstd instance through its HTTP API.
The daemon address comes from --server, GSTD_BASE_URL or the config file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Path to the gstctl config file")
	root.PersistentFlags().StringVar(&a.serverURL, "server", "", "Override the gstd base URL")
	root.PersistentFlags().StringVarP(&a.outputFormat, "output", "o", "table", "Output format: table|json")

	root.AddCommand(
		a.pipelinesCommand(),
		a.pipelineCommand(),
		a.elementCommand(),
		a.busCommand(),
		a.debugCommand(),
		a.healthCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads configuration and builds the logger, telemetry and client.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.outputFormat = strings.ToLower(a.outputFormat)
	if err := validation.New().OneOf("output", a.outputFormat, outputFormats).Err(); err != nil {
		return err
	}
	if cmd.Name() == "version" {
		a.log = logger.Nop()
		return nil
	}

	cfg, err := LoadConfig(a.cfgFile)
	if err != nil {
		return err
	}
	if a.serverURL != "" {
		cfg.Gstd.BaseURL = a.serverURL
	}
	a.cfg = cfg

	if cfg.Logging.Writer == nil {
		cfg.Logging.Writer = a.errOut
	}
	a.log = logger.New(&cfg.Logging, cfg.Name)

	ctx := cmd.Context()
	a.shutdown, err = observability.Setup(ctx, cfg.Tracing, cfg.Metrics, cfg.ServiceInfo())
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	opts := []gstd.Option{gstd.WithLogger(a.log)}
	if cfg.Metrics.Enabled {
		metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
		if err != nil {
			return err
		}
		opts = append(opts, gstd.WithMetrics(metrics))
	}
	a.client, err = gstd.NewFromConfig(cfg.Gstd, opts...)
	return err
}

type usageErr struct{ error }

func (e usageErr) Unwrap() error { return e.error }

func usageError(err error) error { return usageErr{err} }

// reportError prints err in the selected format and returns its exit code.
func (a *app) reportError(err error) int {
	appErr := toAppError(err)
	if a.outputFormat == "json" {
		_ = printJSON(a.errOut, appErr.Report())
	} else {
		fmt.Fprintf(a.errOut, "Error: %s\n", err)
	}
	return appErr.ExitCode
}

func toAppError(err error) *apperrors.AppError {
	var gerr *gstd.Error
	if errors.As(err, &gerr) {
		return gerr.AppError()
	}
	var uerr usageErr
	if errors.As(err, &uerr) {
		return apperrors.InvalidInput("", uerr.Error()).WithCause(err)
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	if isCobraUsage(err) {
		return apperrors.InvalidInput("", err.Error()).WithCause(err)
	}
	return apperrors.Wrap(err)
}

// isCobraUsage matches the argument and flag errors cobra produces.
func isCobraUsage(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "accepts ", "requires at least", "flag needs an argument", "invalid argument"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
