// Package browser renders JavaScript-driven pages with headless Chrome.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const DefaultWait = 5 * time.Second

// Options configures a Renderer
type Options struct {
	// ExecPath points at the Chrome binary. Empty lets chromedp look it up.
	ExecPath  string
	UserAgent string
	// Wait is how long a page may run scripts before its HTML is read.
	Wait    time.Duration
	Timeout time.Duration
}

// Renderer loads pages in a fresh headless browser per call
type Renderer struct {
	opts Options
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	if opts.Wait <= 0 {
		opts.Wait = DefaultWait
	}
	if opts.Timeout <= 0 {
		opts.Timeout = opts.Wait + 60*time.Second
	}
	return &Renderer{opts: opts}
}

func (r *Renderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if r.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.opts.ExecPath))
	}
	if r.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.opts.UserAgent))
	}
	return opts
}

// Render navigates to url, waits for the page to settle and returns the
// document's outer HTML.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(r.opts.Wait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", url, err)
	}
	return html, nil
}
