// Package browser implements the Browser Session Facade: a launcher for
// Playwright-backed browser instances and a Session type that exposes the
// capability surface the Controller dispatches actions against.
//
// Grounded on the teacher's internal/tools/browser/pool.go for the
// Playwright launch/connect shape and user-agent rotation, adapted to
// spec.md section 5's single-session-per-run model: a run acquires exactly
// one Instance and owns it for the run's lifetime, so Pool does not pool
// instances for reuse the way the teacher's BrowserInstance pool does. What
// it does still pool is the one genuinely expensive, shareable resource:
// the Playwright process itself, plus the user-agent rotation across the
// Instances it launches over a process's lifetime.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Instance wraps one Playwright browser/context/page triple backing a
// single Session.
type Instance struct {
	Browser playwright.Browser
	Context playwright.BrowserContext
	Page    playwright.Page
	ID      string
}

// Pool owns the shared Playwright runtime and launches the one Instance
// each Session needs.
type Pool struct {
	config    PoolConfig
	mu        sync.Mutex
	closed    bool
	pw        *playwright.Playwright
	userAgent int
	launched  int
}

// PoolConfig configures browser launch behavior.
type PoolConfig struct {
	Timeout        time.Duration
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	RemoteURL      string // optional Playwright server URL (ws:// or http(s)://)
}

func (c *PoolConfig) withDefaults() PoolConfig {
	out := *c
	if out.Timeout == 0 {
		out.Timeout = 30 * time.Second
	}
	if out.ViewportWidth == 0 {
		out.ViewportWidth = 1920
	}
	if out.ViewportHeight == 0 {
		out.ViewportHeight = 1080
	}
	return out
}

// NewPool starts the shared Playwright runtime, installing it first unless
// the config points at a remote Playwright server.
func NewPool(config PoolConfig) (*Pool, error) {
	config = config.withDefaults()

	if strings.TrimSpace(config.RemoteURL) == "" {
		if err := playwright.Install(&playwright.RunOptions{Verbose: false}); err != nil {
			return &Pool{config: config}, nil // fails on first NewInstance instead, matching teacher's degrade-not-abort behavior
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("browser: start playwright: %w", err)
	}

	return &Pool{config: config, pw: pw}, nil
}

// NewInstance launches a fresh browser/context/page for one Session. Each
// call produces an Instance the caller owns exclusively until it calls
// Instance.cleanupRoot (via Session.Close); Pool keeps no reference to it.
func (p *Pool) NewInstance(ctx context.Context) (*Instance, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("browser: pool is closed")
	}
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	instance, err := p.createInstance()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.launched++
	p.mu.Unlock()
	return instance, nil
}

// Close stops the shared Playwright runtime. Call it once every Session
// backed by this Pool has already closed its own Instance.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.pw != nil {
		if err := p.pw.Stop(); err != nil {
			return fmt.Errorf("browser: stop playwright: %w", err)
		}
	}
	return nil
}

func (p *Pool) createInstance() (*Instance, error) {
	if p.pw == nil {
		return nil, fmt.Errorf("browser: playwright not initialized")
	}

	var browserHandle playwright.Browser
	if remoteURL := normalizeRemoteURL(p.config.RemoteURL); remoteURL != "" {
		var err error
		browserHandle, err = p.pw.Chromium.Connect(remoteURL)
		if err != nil {
			return nil, fmt.Errorf("browser: connect to remote browser: %w", err)
		}
	} else {
		var err error
		browserHandle, err = p.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(p.config.Headless),
			Timeout:  playwright.Float(float64(p.config.Timeout.Milliseconds())),
		})
		if err != nil {
			return nil, fmt.Errorf("browser: launch browser: %w", err)
		}
	}

	userAgent := p.nextUserAgent()
	browserContext, err := browserHandle.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport: &playwright.Size{
			Width:  p.config.ViewportWidth,
			Height: p.config.ViewportHeight,
		},
		AcceptDownloads:   playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		browserHandle.Close()
		return nil, fmt.Errorf("browser: create browser context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browserContext.Close()
		browserHandle.Close()
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	page.SetDefaultTimeout(float64(p.config.Timeout.Milliseconds()))

	return &Instance{
		Browser: browserHandle,
		Context: browserContext,
		Page:    page,
		ID:      fmt.Sprintf("browser-%d", time.Now().UnixNano()),
	}, nil
}

func normalizeRemoteURL(raw string) string {
	value := strings.TrimSpace(raw)
	switch {
	case value == "":
		return ""
	case strings.HasPrefix(value, "http://"):
		return "ws://" + strings.TrimPrefix(value, "http://")
	case strings.HasPrefix(value, "https://"):
		return "wss://" + strings.TrimPrefix(value, "https://")
	default:
		return value
	}
}

func (p *Pool) nextUserAgent() string {
	userAgents := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2.1 Safari/605.1.15",
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ua := userAgents[p.userAgent%len(userAgents)]
	p.userAgent++
	return ua
}

// cleanup tears instance down. Only the Page is unique to a tab; Context
// and Browser are shared across a Session's tabs and must be closed once,
// by the Session that owns the root Instance.
func (instance *Instance) cleanup() {
	if instance.Page != nil {
		instance.Page.Close()
	}
}

func (instance *Instance) cleanupRoot() {
	instance.cleanup()
	if instance.Context != nil {
		instance.Context.Close()
	}
	if instance.Browser != nil {
		instance.Browser.Close()
	}
}

// SetCookie sets one or more cookies on the underlying browser context.
func (instance *Instance) SetCookie(cookies ...playwright.OptionalCookie) error {
	return instance.Context.AddCookies(cookies)
}

// GetCookies retrieves all cookies from the underlying browser context.
func (instance *Instance) GetCookies() ([]playwright.Cookie, error) {
	return instance.Context.Cookies()
}

// SetViewport sets the viewport size for the page.
func (instance *Instance) SetViewport(width, height int) error {
	return instance.Page.SetViewportSize(width, height)
}

// Stats reports how many Instances this Pool has launched, for monitoring.
type Stats struct {
	Launched int
	IsClosed bool
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Launched: p.launched, IsClosed: p.closed}
}
