package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/couchcryptid/quakewatch/internal/adapter/jma"
	"github.com/couchcryptid/quakewatch/internal/domain"
	"github.com/couchcryptid/quakewatch/internal/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// QuakeSource fetches earthquake records.
type QuakeSource interface {
	Fetch(ctx context.Context, opts ...jma.FetchOption) []domain.EarthquakeRecord
}

// SourceFactory builds a QuakeSource from the global flags.
type SourceFactory func(feedURL string, timeout time.Duration, reporter domain.Reporter) QuakeSource

// Dependencies wires runtime services.
type Dependencies struct {
	NewSource SourceFactory
	Version   string
}

// DefaultSource builds a jma.Client.
func DefaultSource(feedURL string, timeout time.Duration, reporter domain.Reporter) QuakeSource {
	return jma.NewClient(timeout, reporter, jma.WithFeedURL(feedURL))
}

type globalOptions struct {
	feedURL  string
	timeout  time.Duration
	logLevel string
	format   string
}

// Execute runs the CLI with injected dependencies and returns the process exit code.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}
	return 0
}

// NewRootCommand builds the complete command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	if deps.NewSource == nil {
		deps.NewSource = DefaultSource
	}
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "quakectl",
		Short:         "List recent JMA hypocenter reports and summarize their depth.",
		Version:       deps.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.feedURL, "url", jma.DefaultFeedURL, "JMA earthquake list endpoint.")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "HTTP timeout for the feed request.")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Diagnostic log level (debug, info, warn, error).")
	flags.StringVarP(&opts.format, "format", "f", string(FormatTable), "Output format: table, json, or yaml.")

	root.AddCommand(newListCommand(deps, opts))
	root.AddCommand(newAverageCommand(deps, opts))

	return root
}

// fetch runs a single feed fetch, honouring --max-depth only when it was set.
func fetch(cmd *cobra.Command, deps Dependencies, opts *globalOptions, maxDepth float64) []domain.EarthquakeRecord {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: observability.ParseLevel(opts.logLevel),
	}))
	source := deps.NewSource(opts.feedURL, opts.timeout, observability.NewReporter(logger, nil))

	var fetchOpts []jma.FetchOption
	if maxDepthSet(cmd.Flags()) {
		fetchOpts = append(fetchOpts, jma.WithMaxDepth(maxDepth))
	}
	return source.Fetch(cmd.Context(), fetchOpts...)
}

func maxDepthSet(fs *pflag.FlagSet) bool {
	f := fs.Lookup("max-depth")
	return f != nil && f.Changed
}

var errInvalidDepth = errors.New("--max-depth must be a finite, non-negative number")

func validateMaxDepth(km float64) error {
	if km < 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		return errInvalidDepth
	}
	return nil
}
