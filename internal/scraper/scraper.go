package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/fetch"
	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/siteconfig"
)

// ErrSkip marks an item an adapter deliberately excluded (category, community,
// address or type filters). Skipped items are counted apart from dropped ones.
var ErrSkip = errors.New("skipped")

// Skip returns an ErrSkip carrying the reason.
func Skip(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSkip, fmt.Sprintf(format, args...))
}

// Adapter turns one site's listings into candidates
type Adapter interface {
	Name() string
	Process(ctx context.Context, env *Env, cfg *siteconfig.Config) (*Result, error)
}

// Renderer loads a page in a JavaScript-capable browser and returns the
// resulting HTML.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Env carries what an adapter invocation may use besides its configuration
type Env struct {
	HTTP     fetch.Options
	Renderer Renderer
	Now      func() time.Time
	Log      *logger.Logger
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) log() *logger.Logger {
	if e.Log != nil {
		return e.Log
	}
	return logger.Default()
}

// Result is what one adapter invocation produced
type Result struct {
	Candidates []event.Candidate
	// Dropped counts items lost to fetch or parse failures.
	Dropped int
	// Filtered counts items excluded on purpose.
	Filtered int
}

// Item is a listing entry on its way to becoming a candidate. List-only sites
// fill in the dates during listing; two-phase sites leave them for Detail.
type Item struct {
	Title string
	Link  string
	Start event.Timestamp
	End   event.Timestamp

	// Overrides for the configured attribution fields.
	Organizer string
	Industry  string
	Market    string
	Address   string
}

// HasDates reports whether both timestamps are set.
func (it Item) HasDates() bool {
	return !it.Start.IsZero() && !it.End.IsZero()
}

// Pipeline is the list-then-detail flow shared by the site adapters
type Pipeline struct {
	Site string
	// Require lists configuration keys checked before any request.
	Require []string
	// List fetches the listing and returns its items. An error here fails the site.
	List func(ctx context.Context, r *Run) ([]Item, error)
	// Detail completes an item from its detail page. Nil for list-only sites.
	Detail func(ctx context.Context, r *Run, it Item) (Item, error)
	// JitterMin and JitterMax add a random delay after each detail fetch. No
	// jitter is added when the site's interval is zero.
	JitterMin time.Duration
	JitterMax time.Duration
}

// Name returns the site name.
func (p *Pipeline) Name() string {
	return p.Site
}

// Run is the state of one adapter invocation
type Run struct {
	Cfg  *siteconfig.Config
	HTTP *fetch.Client
	Env  *Env
	Log  *logger.Logger

	result *Result
}

// Now returns the run's clock.
func (r *Run) Now() time.Time {
	return r.Env.now()
}

// Pause waits for the configured scraper interval.
func (r *Run) Pause(ctx context.Context) error {
	return fetch.Pause(ctx, r.Cfg.Interval())
}

// Filter records an item excluded during listing.
func (r *Run) Filter(reason string, fields logger.Fields) {
	r.result.Filtered++
	r.Log.Debug("Filtered "+reason, fields)
}

// Drop records an item lost during listing.
func (r *Run) Drop(reason string, fields logger.Fields, err error) {
	r.result.Dropped++
	r.Log.Warn("Dropped "+reason, fields, err)
}

// NewRun prepares a run for cfg without executing a pipeline. Adapters that
// do not follow the list/detail shape use it for their session.
func NewRun(env *Env, cfg *siteconfig.Config) *Run {
	opts := env.HTTP
	opts.InsecureTLS = opts.InsecureTLS || !cfg.VerifyTLS()
	return &Run{
		Cfg:    cfg,
		HTTP:   fetch.New(opts),
		Env:    env,
		Log:    env.log().With(logger.Fields{"site": cfg.Name}),
		result: &Result{},
	}
}

// Process runs the pipeline. Only listing and configuration failures are
// returned as errors; every per-item failure drops that item and is logged.
func (p *Pipeline) Process(ctx context.Context, env *Env, cfg *siteconfig.Config) (*Result, error) {
	if err := cfg.Require(p.Require...); err != nil {
		return nil, err
	}

	r := NewRun(env, cfg)
	items, err := p.List(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	r.Log.Info("Fetched event list", logger.Fields{"items": len(items)})

	if err := r.Pause(ctx); err != nil {
		return nil, err
	}

	for _, it := range items {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if p.Detail != nil && !it.HasDates() {
			detailed, err := p.safeDetail(ctx, r, it)
			if pauseErr := r.Pause(ctx); pauseErr != nil {
				return nil, pauseErr
			}
			if p.JitterMax > 0 && r.Cfg.Interval() > 0 {
				if pauseErr := fetch.Pause(ctx, fetch.Jitter(p.JitterMin, p.JitterMax)); pauseErr != nil {
					return nil, pauseErr
				}
			}
			if err != nil {
				fields := logger.Fields{"link": it.Link, "title": it.Title}
				if errors.Is(err, ErrSkip) {
					r.Filter("event", fields)
					continue
				}
				r.Drop("event", fields, err)
				continue
			}
			it = detailed
		}

		r.Accept(it)
	}

	return r.result, nil
}

// Accept validates it and appends it to the run's candidates.
func (r *Run) Accept(it Item) {
	c := event.Candidate{
		Title:     it.Title,
		Link:      it.Link,
		Start:     it.Start,
		End:       it.End,
		Organizer: firstNonEmpty(it.Organizer, r.Cfg.Organizer),
		Industry:  firstNonEmpty(it.Industry, r.Cfg.Industry),
		Market:    firstNonEmpty(it.Market, r.Cfg.Market),
		Address:   it.Address,
		Weekday:   it.Start.Weekday(),
	}
	if err := c.Validate(); err != nil {
		r.Drop("incomplete event", logger.Fields{"link": it.Link, "title": it.Title}, err)
		return
	}
	r.result.Candidates = append(r.result.Candidates, c)
}

// Result returns what the run has collected so far.
func (r *Run) Result() *Result {
	return r.result
}

func (p *Pipeline) safeDetail(ctx context.Context, r *Run, it Item) (out Item, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("detail parser panic: %v", rec)
		}
	}()
	return p.Detail(ctx, r, it)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
