// Package cli implements the report-filler command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"report-workers/internal/common/config"
	"report-workers/internal/common/errors"
	"report-workers/internal/common/logger"
	"report-workers/internal/report"
)

const (
	ExitOK      = 0
	ExitFailure = 1
)

type runOptions struct {
	fs         afero.Fs
	now        func() time.Time
	loadConfig func() (*config.Config, error)
}

type Option func(*runOptions)

// WithFs sets the filesystem the template is read from and the report
// written to.
func WithFs(fs afero.Fs) Option {
	return func(o *runOptions) { o.fs = fs }
}

// WithClock sets the time source of the default report date.
func WithClock(now func() time.Time) Option {
	return func(o *runOptions) { o.now = now }
}

// WithConfigLoader replaces config.Load.
func WithConfigLoader(load func() (*config.Config, error)) Option {
	return func(o *runOptions) { o.loadConfig = load }
}

type successResult struct {
	Success    bool   `json:"success"`
	OutputPath string `json:"outputPath"`
}

type failureResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Run executes the command with args (program name excluded) and returns
// the process exit code. stdout only ever carries usage text or the JSON
// result; diagnostics go to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...Option) int {
	o := &runOptions{
		fs:         afero.NewOsFs(),
		now:        time.Now,
		loadConfig: config.Load,
	}
	for _, opt := range opts {
		opt(o)
	}

	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}

	code := ExitOK
	cmd := newRootCmd(o, stdout, stderr, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.HasCode(err, errors.ErrCodeInvalidArguments) {
			fmt.Fprint(stdout, cmd.UsageString())
			return ExitFailure
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitFailure
	}
	return code
}

func newRootCmd(o *runOptions, stdout, stderr io.Writer, code *int) *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "report-filler <template_path> <data_json> <output_path>",
		Short: "Fill the development report template with a JSON record",
		Long: `Fills the fixed cells of a development report template (.docx) with the
values of a JSON record and writes the result to output_path.

Prints {"success": true, "outputPath": ...} on success and
{"success": false, "error": ...} when the report could not be generated.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return errors.NewArgumentError(fmt.Sprintf("expected 3 arguments, got %d", len(args)))
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := o.config(stderr)
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Logging.Format = logFormat
			}
			log := logger.NewZapAdapter(logger.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, stderr))

			*code = fill(o, cfg, log, args[0], args[1], args[2], stdout, stderr)
			return nil
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	return cmd
}

// config returns the loaded configuration, or the built-in defaults when it
// cannot be loaded.
func (o *runOptions) config(stderr io.Writer) *config.Config {
	cfg, err := o.loadConfig()
	if err != nil || cfg == nil {
		if err != nil {
			fmt.Fprintf(stderr, "configuration unavailable, using defaults: %v\n", err)
		}
		cfg = &config.Config{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	return cfg
}

func fill(o *runOptions, cfg *config.Config, log logger.Logger, templatePath, dataJSON, outputPath string, stdout, stderr io.Writer) int {
	rec, err := report.ParseRecord([]byte(dataJSON))
	if err != nil {
		stdErr := errors.Normalize(err)
		if stdErr.Code == errors.ErrCodeInputParseFailed {
			fmt.Fprintf(stderr, "Invalid JSON data: %s\n", stdErr.Details)
			return ExitFailure
		}
		log.Error("Error filling template", map[string]interface{}{
			"template": templatePath,
			"output":   outputPath,
			"error":    stdErr.Details,
		})
		writeResult(stdout, failureResult{Success: false, Error: stdErr.Message})
		return ExitFailure
	}

	loc, err := cfg.Report.Location()
	if err != nil {
		log.Warn("falling back to local time zone", map[string]interface{}{"error": err})
		loc = time.Local
	}

	filler := report.NewFiller(
		report.WithFs(o.fs),
		report.WithClock(o.now),
		report.WithLocation(loc),
		report.WithLogger(log),
	)

	if err := filler.Fill(templatePath, rec, outputPath); err != nil {
		writeResult(stdout, failureResult{Success: false, Error: errors.Normalize(err).Message})
		return ExitFailure
	}

	log.Debug("report generated", map[string]interface{}{"template": templatePath, "output": outputPath})
	writeResult(stdout, successResult{Success: true, OutputPath: outputPath})
	return ExitOK
}

func writeResult(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
