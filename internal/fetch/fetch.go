// Package fetch provides the HTTP session each site adapter uses: a client with
// a fixed user agent and timeout, optional relaxed TLS verification, polite
// pauses between requests and a per-host gate shared across sessions.
//
// Requests are never retried. A failed request is reported to the caller,
// which decides whether the whole site or a single item is lost.
package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	UserAgent = "Mozilla/5.0 (compatible; bizevents/1.0; +https://github.com/pfrederiksen/bizevents)"
	Timeout   = 30 * time.Second
	// MaxBody caps the size of a response body read by Bytes.
	MaxBody = 10 << 20
)

// ErrBodyTooLarge is returned when a response exceeds the client's MaxBody.
var ErrBodyTooLarge = errors.New("response body too large")

// Options configures a Client
type Options struct {
	UserAgent   string
	Timeout     time.Duration
	InsecureTLS bool
	// MaxBody is the largest body Bytes accepts. Zero means MaxBody.
	MaxBody int64
	Gate    *HostGate
	// OnResponse is called once per request with the host and status code
	// (0 when the request failed before a response arrived).
	OnResponse func(host string, status int)
}

// Client is one adapter invocation's HTTP session
type Client struct {
	http *http.Client
	opts Options
}

// New creates a Client. Zero option values fall back to the package defaults.
func New(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = MaxBody
	}

	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if opts.InsecureTLS {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		http: &http.Client{Timeout: opts.Timeout, Transport: tr},
		opts: opts,
	}
}

// Get issues a GET for rawURL with the given query parameters. The host gate
// is held until the caller closes the response body. Any status other than
// 200 is an error and the body is already closed.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	release := func() {}
	if c.opts.Gate != nil {
		release, err = c.opts.Gate.Acquire(ctx, u.Host)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		release()
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		release()
		c.observe(u.Host, 0)
		return nil, fmt.Errorf("fetching %s: %w", u.Redacted(), err)
	}
	c.observe(u.Host, resp.StatusCode)
	resp.Body = &gatedBody{ReadCloser: resp.Body, release: release}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp, nil
}

// Bytes fetches rawURL with the given query parameters and returns the body.
// Bodies larger than the client's MaxBody are an error.
func (c *Client) Bytes(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(body)) > c.opts.MaxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.opts.MaxBody)
	}
	return body, nil
}

// gatedBody releases the host gate once the body is closed.
type gatedBody struct {
	io.ReadCloser
	release func()
	once    sync.Once
}

func (b *gatedBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}

// Document fetches rawURL and parses it as HTML.
func (c *Client) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	return c.DocumentQuery(ctx, rawURL, nil)
}

// DocumentQuery fetches rawURL with query parameters and parses it as HTML.
func (c *Client) DocumentQuery(ctx context.Context, rawURL string, query url.Values) (*goquery.Document, error) {
	resp, err := c.Bytes(ctx, rawURL, query)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// JSON fetches rawURL with query parameters and decodes the body into v.
func (c *Client) JSON(ctx context.Context, rawURL string, query url.Values, v any) error {
	body, err := c.Bytes(ctx, rawURL, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding JSON: %w", err)
	}
	return nil
}

func (c *Client) observe(host string, status int) {
	if c.opts.OnResponse != nil {
		c.opts.OnResponse(host, status)
	}
}
