package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"logpuzzle/internal/downloader"
	"logpuzzle/pkg/config"
	"logpuzzle/pkg/extractor"
	"logpuzzle/pkg/fetcher"
	"logpuzzle/pkg/logger"
	"logpuzzle/pkg/metrics"
	"logpuzzle/pkg/ratelimit"
	"logpuzzle/pkg/retry"
	"logpuzzle/pkg/storage"
	"logpuzzle/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// errUsage marks a run that already printed usage and should exit 1
var errUsage = errors.New("missing log file argument")

// rootOptions holds the command line flags
type rootOptions struct {
	toDir       string
	configFile  string
	logLevel    string
	timeout     time.Duration
	retries     int
	indexMode   string
	metricsFile string
	noColor     bool
}

// Execute runs the CLI with args and returns the process exit code
func Execute(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errUsage) {
			ui.PrintError(cmd.ErrOrStderr(), "ERROR", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "logpuzzle [flags] <logfile>",
		Short: "Extract puzzle image URLs from an access log and download them",
		Long: `logpuzzle scans an Apache access log for requests to puzzle images,
sorts and deduplicates them, and either prints the image URLs or downloads
them into a directory together with an index.html that shows the picture.

The server host is taken from the log file name: everything after the first
underscore, so access_code.google.com.log yields code.google.com.`,
		Example: `  # Print the image URLs
  logpuzzle animal_code.google.com

  # Download the images and build index.html
  logpuzzle --todir animaldir animal_code.google.com`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.SetOut(cmd.ErrOrStderr())
				_ = cmd.Usage()
				return errUsage
			}
			return runRoot(cmd, opts, args[0])
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default is ./.logpuzzle.yaml or ~/.config/logpuzzle/config.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.Flags().StringVarP(&opts.toDir, "todir", "d", "", "download the images into this directory")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default 30s)")
	cmd.Flags().IntVar(&opts.retries, "retries", 0, "total download attempts per image (default 1)")
	cmd.Flags().StringVar(&opts.indexMode, "index-mode", "", "index page write mode: append or overwrite (default append)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write prometheus metrics to this file after the run")

	cmd.SetVersionTemplate(`logpuzzle {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

// flagOverrides collects only the flags the user actually set
func flagOverrides(cmd *cobra.Command, opts *rootOptions) map[string]interface{} {
	overrides := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("timeout") {
		overrides["timeout"] = opts.timeout
	}
	if changed("retries") {
		overrides["retries"] = opts.retries
	}
	if changed("index-mode") {
		overrides["index-mode"] = opts.indexMode
	}
	if changed("log-level") {
		overrides["log-level"] = opts.logLevel
	}
	if changed("metrics-file") {
		overrides["metrics-file"] = opts.metricsFile
	}
	return overrides
}

func runRoot(cmd *cobra.Command, opts *rootOptions, logPath string) error {
	ui.SetColor(!opts.noColor)

	cfg, err := config.Load(opts.configFile, flagOverrides(cmd, opts))
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()
	log.WithFields(map[string]interface{}{
		"version": version,
		"logfile": logPath,
	}).Info("logpuzzle starting")

	m := metrics.New()

	urls, err := extractor.Extract(logPath)
	if err != nil {
		log.WithError(err).Error("Extraction failed")
		return err
	}
	m.SetExtracted(len(urls))
	log.WithField("urls", len(urls)).Debug("Extraction finished")

	out := cmd.OutOrStdout()
	if opts.toDir == "" {
		for _, u := range urls {
			fmt.Fprintln(out, u)
		}
		return writeMetrics(m, cfg, log)
	}

	result, err := fetchAll(cmd.Context(), cfg, m, log, out, opts.toDir, urls)
	if mErr := writeMetrics(m, cfg, log); mErr != nil && err == nil {
		err = mErr
	}
	if err != nil {
		log.WithError(err).Error("Fetch run failed")
		return err
	}

	logger.LogRunSummary(log, opts.toDir, len(result.Files), result.Bytes, result.Duration)
	ui.PrintBanner(out, ui.TerminalWidth(), opts.toDir)
	return nil
}

func fetchAll(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log logger.Logger, out io.Writer, dir string, urls []string) (*downloader.Result, error) {
	store, err := storage.NewManager(dir)
	if err != nil {
		return nil, err
	}

	client := fetcher.NewClient(cfg.Download.Timeout, cfg.Download.UserAgent, log)

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Download.RetryAttempts
	retryCfg.Backoff = &retry.ExponentialBackoff{
		BaseDelay:    cfg.Download.RetryBaseDelay,
		MaxDelay:     cfg.Download.RetryMaxDelay,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
	retryCfg.Logger = log

	d := downloader.New(client, store,
		downloader.WithOutput(out),
		downloader.WithLogger(log),
		downloader.WithMetrics(m),
		downloader.WithLimiter(ratelimit.New(cfg.Download.RequestsPerMinute)),
		downloader.WithRetry(retryCfg),
		downloader.WithIndex(cfg.Output.IndexFile, storage.IndexMode(cfg.Output.IndexMode)),
	)

	return d.FetchAll(ctx, urls)
}

func writeMetrics(m *metrics.Metrics, cfg *config.Config, log logger.Logger) error {
	if cfg.Metrics.File == "" {
		return nil
	}
	if err := m.WriteTextfile(cfg.Metrics.File); err != nil {
		return err
	}
	log.WithField("file", cfg.Metrics.File).Debug("Metrics written")
	return nil
}
