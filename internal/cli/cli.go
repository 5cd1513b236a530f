package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bizevents/internal/browser"
	"github.com/pfrederiksen/bizevents/internal/config"
	"github.com/pfrederiksen/bizevents/internal/fetch"
	"github.com/pfrederiksen/bizevents/internal/ingest"
	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/metrics"
	"github.com/pfrederiksen/bizevents/internal/siteconfig"
	"github.com/pfrederiksen/bizevents/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	// ExitPartial means the run finished but at least one site failed.
	ExitPartial = 2
)

// ErrPartial is returned by run when some sites failed.
var ErrPartial = errors.New("some sites failed")

// app is the state shared by the subcommands of one invocation
type app struct {
	configPath string
	verbose    bool

	cfg *config.Config
	log *logger.Logger
	out io.Writer
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	cmd := &cobra.Command{
		Use:   "bizevents",
		Short: "Collect business networking events from association websites",
		Long: `A tool that scrapes upcoming events from commercial real estate and
business association websites, normalizes them and stores them for the REST API.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "Path to the YAML configuration file")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(a.newRunCmd(), a.newServeCmd(), a.newSitesCmd(), a.newExportCmd())
	return cmd
}

// setup loads .env, the configuration and the logger before any subcommand.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.out = cmd.OutOrStdout()
	_ = godotenv.Load()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.verbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}
	a.cfg = cfg
	a.log = logger.New(logger.ParseLevel(cfg.LogLevel), cmd.ErrOrStderr())
	logger.SetDefault(a.log)
	return nil
}

func (a *app) openStore(ctx context.Context) (*storage.SQLStore, error) {
	store, err := storage.Open(ctx, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return store, nil
}

func (a *app) coordinator(store storage.Store, m *metrics.Metrics) *ingest.Coordinator {
	opts := ingest.Options{
		SitesDir: a.cfg.SitesDir,
		Store:    store,
		Workers:  a.cfg.Workers,
		Metrics:  m,
		Log:      a.log,
		HTTP: fetch.Options{
			UserAgent: a.cfg.UserAgent,
			Timeout:   a.cfg.HTTPTimeout,
			Gate:      fetch.NewHostGate(a.cfg.HostSpacing),
		},
		Renderer: browser.New(browser.Options{
			ExecPath:  a.cfg.ChromePath,
			UserAgent: a.cfg.UserAgent,
			Wait:      a.cfg.RenderWait,
		}),
	}
	return ingest.New(opts)
}

// siteNames resolves the sites to run: the arguments, every configured site
// with --all, or the configured default list.
func (a *app) siteNames(args []string, all bool) ([]string, error) {
	switch {
	case all:
		names, err := siteconfig.List(a.cfg.SitesDir)
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("no site configurations in %s", a.cfg.SitesDir)
		}
		return names, nil
	case len(args) > 0:
		return args, nil
	case len(a.cfg.Sites) > 0:
		return a.cfg.Sites, nil
	default:
		return nil, fmt.Errorf("no sites given: pass site names, --all, or set sites in the config")
	}
}

func (a *app) newRunCmd() *cobra.Command {
	var (
		flagAll    bool
		flagDryRun bool
		flagFormat string
		flagSort   string
	)

	cmd := &cobra.Command{
		Use:   "run [site...]",
		Short: "Scrape sites and store their events",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(strings.ToLower(flagFormat))
			if err != nil {
				return err
			}
			order, err := parseSortOrder(flagSort)
			if err != nil {
				return err
			}
			names, err := a.siteNames(args, flagAll)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			m := metrics.New(prometheus.NewRegistry())

			var report *ingest.Report
			if flagDryRun {
				report, err = a.coordinator(nil, m).DryRun(ctx, names)
			} else {
				store, openErr := a.openStore(ctx)
				if openErr != nil {
					return openErr
				}
				defer store.Close()
				report, err = a.coordinator(store, m).Run(ctx, names)
			}
			if err != nil && report == nil {
				return fmt.Errorf("running sites: %w", err)
			}

			if writeErr := WriteReport(a.out, report, format, order, a.verbose); writeErr != nil {
				return fmt.Errorf("writing output: %w", writeErr)
			}
			if err != nil {
				return err
			}
			if n := report.Failures(); n > 0 {
				return fmt.Errorf("%w: %d of %d", ErrPartial, n, len(report.Sites))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagAll, "all", false, "Run every site with a configuration file")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Scrape without storing anything")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", "date", "Sort events by: date, organizer or title")
	return cmd
}

func (a *app) newSitesCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "sites",
		Short: "List registered sites and whether they are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(strings.ToLower(flagFormat))
			if err != nil {
				return err
			}
			return writeSites(a.out, ingest.SiteInfos(a.cfg.SitesDir), format)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	return cmd
}

// exitCode maps a command error to the process exit status.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrPartial):
		fmt.Fprintf(stderr, "Warning: %v\n", err)
		return ExitPartial
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	os.Exit(exitCode(NewRootCmd().Execute(), os.Stderr))
}
