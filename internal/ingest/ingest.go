// Package ingest runs site adapters and stores what they find.
//
// Each site is processed on its own: its configuration is loaded, the adapter
// runs, candidates are deduplicated and the batch is upserted. A site that
// fails entirely is logged and recorded in the report, and the remaining sites
// still run. Sites run one at a time unless more workers are configured; a
// shared host gate keeps at most one request in flight per host either way.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/fetch"
	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/metrics"
	"github.com/pfrederiksen/bizevents/internal/scraper"
	"github.com/pfrederiksen/bizevents/internal/siteconfig"
	"github.com/pfrederiksen/bizevents/internal/sites"
	"github.com/pfrederiksen/bizevents/internal/storage"
)

// ErrUnknownSite is recorded for site names with no registered adapter.
var ErrUnknownSite = errors.New("unknown site")

// SiteReport is the outcome of one site
type SiteReport struct {
	Site       string        `json:"site"`
	Candidates int           `json:"candidates"`
	Duplicates int           `json:"duplicates"`
	Dropped    int           `json:"dropped"`
	Filtered   int           `json:"filtered"`
	Inserted   int           `json:"inserted"`
	Updated    int           `json:"updated"`
	Skipped    int           `json:"skipped"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Failed reports whether the site produced nothing because of an error.
func (s SiteReport) Failed() bool {
	return s.Error != ""
}

// Report is the outcome of one ingestion run
type Report struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	DryRun     bool            `json:"dry_run,omitempty"`
	Sites      []SiteReport    `json:"sites"`
	Events     []storage.Event `json:"events"`
}

// Failures returns the number of sites that failed.
func (r *Report) Failures() int {
	n := 0
	for _, s := range r.Sites {
		if s.Failed() {
			n++
		}
	}
	return n
}

// Options configures a Coordinator
type Options struct {
	SitesDir string
	// Store receives upserts. It may be nil for dry runs.
	Store   storage.Store
	Workers int
	HTTP    fetch.Options
	// Renderer is handed to adapters that need a browser.
	Renderer scraper.Renderer
	Metrics  *metrics.Metrics
	Log      *logger.Logger
	Now      func() time.Time
	// Lookup resolves adapters by site name. Defaults to the site registry.
	Lookup func(name string) (scraper.Adapter, bool)
}

// Coordinator runs sites and persists their events
type Coordinator struct {
	opts Options
	env  *scraper.Env
}

// New creates a Coordinator. Every session it opens shares one host gate.
func New(opts Options) *Coordinator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Log == nil {
		opts.Log = logger.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Lookup == nil {
		opts.Lookup = sites.Lookup
	}
	if opts.HTTP.Gate == nil {
		opts.HTTP.Gate = fetch.NewHostGate(0)
	}
	if opts.HTTP.OnResponse == nil && opts.Metrics != nil {
		opts.HTTP.OnResponse = opts.Metrics.Response
	}

	return &Coordinator{
		opts: opts,
		env: &scraper.Env{
			HTTP:     opts.HTTP,
			Renderer: opts.Renderer,
			Now:      opts.Now,
			Log:      opts.Log,
		},
	}
}

// Run processes every site and upserts its events.
func (c *Coordinator) Run(ctx context.Context, names []string) (*Report, error) {
	if c.opts.Store == nil {
		return nil, errors.New("no store configured")
	}
	return c.run(ctx, names, true)
}

// DryRun processes every site without storing anything. The report's events
// are the deduplicated candidates, unsaved.
func (c *Coordinator) DryRun(ctx context.Context, names []string) (*Report, error) {
	return c.run(ctx, names, false)
}

// Scrape processes a single site without storing anything. Its candidates
// are deduplicated in the order the adapter produced them.
func (c *Coordinator) Scrape(ctx context.Context, name string) (*SiteReport, []event.Candidate, error) {
	sr := SiteReport{Site: name}
	started := c.opts.Now()
	cands, err := c.process(ctx, name, &sr)
	sr.Duration = c.opts.Now().Sub(started)
	if err != nil {
		sr.Error = err.Error()
		return &sr, nil, err
	}
	return &sr, cands, nil
}

func (c *Coordinator) run(ctx context.Context, names []string, persist bool) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: c.opts.Now(),
		DryRun:    !persist,
		Sites:     make([]SiteReport, len(names)),
	}
	log := c.opts.Log.With(logger.Fields{"run_id": report.RunID})
	log.Info("Starting ingestion", logger.Fields{"sites": len(names), "workers": c.opts.Workers, "dry_run": !persist})

	events := make([][]storage.Event, len(names))
	var g errgroup.Group
	g.SetLimit(c.opts.Workers)
	for i, name := range names {
		g.Go(func() error {
			if ctx.Err() != nil {
				report.Sites[i] = SiteReport{Site: name, Error: ctx.Err().Error()}
				return nil
			}
			report.Sites[i], events[i] = c.site(ctx, log, name, persist)
			return nil
		})
	}
	_ = g.Wait()

	report.Events = []storage.Event{}
	for _, evs := range events {
		report.Events = append(report.Events, evs...)
	}
	report.FinishedAt = c.opts.Now()

	log.Info("Finished ingestion", logger.Fields{
		"sites":    len(names),
		"failures": report.Failures(),
		"events":   len(report.Events),
		"duration": report.FinishedAt.Sub(report.StartedAt).String(),
	})
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// site processes one site. It never fails the run.
func (c *Coordinator) site(ctx context.Context, log *logger.Logger, name string, persist bool) (SiteReport, []storage.Event) {
	log = log.With(logger.Fields{"site": name})

	var stored []storage.Event
	sr, cands, err := c.Scrape(ctx, name)
	if err == nil {
		rows := make([]storage.Event, 0, len(cands))
		for _, cand := range cands {
			rows = append(rows, storage.FromCandidate(cand))
		}
		if persist {
			started := c.opts.Now()
			stored, err = c.store(ctx, name, rows, sr)
			sr.Duration += c.opts.Now().Sub(started)
		} else {
			stored = rows
		}
	}

	c.opts.Metrics.Site(name, sr.Candidates, sr.Duplicates, sr.Dropped, sr.Filtered, sr.Duration, err != nil)

	if err != nil {
		sr.Error = err.Error()
		log.Error("Site failed", logger.Fields{"duration": sr.Duration.String()}, err)
		return *sr, nil
	}
	log.Info("Site processed", logger.Fields{
		"candidates": sr.Candidates,
		"duplicates": sr.Duplicates,
		"dropped":    sr.Dropped,
		"filtered":   sr.Filtered,
		"inserted":   sr.Inserted,
		"updated":    sr.Updated,
		"duration":   sr.Duration.String(),
	})
	return *sr, stored
}

// process loads the site's configuration, runs its adapter and removes
// duplicate candidates.
func (c *Coordinator) process(ctx context.Context, name string, sr *SiteReport) ([]event.Candidate, error) {
	adapter, ok := c.opts.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSite, name)
	}
	cfg, err := siteconfig.Load(c.opts.SitesDir, name)
	if err != nil {
		return nil, err
	}

	res, err := c.safeProcess(ctx, adapter, cfg)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", name, err)
	}

	unique, dups := event.Deduplicate(res.Candidates)
	for _, d := range dups {
		c.opts.Log.Debug("Duplicate dropped", logger.Fields{"site": name, "title": d.Title, "link": d.Link})
	}
	sr.Candidates = len(res.Candidates)
	sr.Duplicates = len(dups)
	sr.Dropped = res.Dropped
	sr.Filtered = res.Filtered
	return unique, nil
}

func (c *Coordinator) store(ctx context.Context, name string, rows []storage.Event, sr *SiteReport) ([]storage.Event, error) {
	res, err := c.opts.Store.UpsertBatch(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", name, err)
	}
	sr.Inserted, sr.Updated, sr.Skipped = res.Inserted, res.Updated, res.Skipped
	c.opts.Metrics.Stored(name, res.Inserted, res.Updated)
	return res.Events, nil
}

func (c *Coordinator) safeProcess(ctx context.Context, a scraper.Adapter, cfg *siteconfig.Config) (res *scraper.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			c.opts.Log.Debug("Adapter panic", logger.Fields{"site": a.Name(), "stack": string(debug.Stack())})
			err = fmt.Errorf("adapter panic: %v", p)
		}
	}()
	res, err = a.Process(ctx, c.env, cfg)
	if err == nil && res == nil {
		res = &scraper.Result{}
	}
	return res, err
}

// Sites returns the registered site names, sorted.
func Sites() []string {
	return sites.Names()
}

// SiteInfo describes one registered adapter
type SiteInfo struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

// SiteInfos reports for every registered adapter whether sitesDir holds its
// configuration.
func SiteInfos(sitesDir string) []SiteInfo {
	names := Sites()
	out := make([]SiteInfo, 0, len(names))
	for _, name := range names {
		_, err := os.Stat(filepath.Join(sitesDir, name+".json"))
		out = append(out, SiteInfo{Name: name, Configured: err == nil})
	}
	return out
}
