// Package fetch - session.go provides a headless browser session for
// JavaScript-rendered search pages.
package fetch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultPageTimeout bounds a single browser navigation. A page that takes
// longer is treated as a strategy failure by the caller, never a hang.
const DefaultPageTimeout = 30 * time.Second

// Session is a headless browser scoped to one strategy-chain invocation.
// It is created at the start of a run and released deterministically at the
// end; it is never shared across runs.
type Session struct {
	allocCancel context.CancelFunc
	ctxCancel   context.CancelFunc
	ctx         context.Context
	verbose     bool
}

// NewSession starts a headless Chrome instance.
// Requires Chrome/Chromium to be installed on the system.
func NewSession(ctx context.Context, verbose bool) (*Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.WindowSize(1920, 1080),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)

	browserCtx, ctxCancel := chromedp.NewContext(allocCtx)

	// Starting the browser eagerly surfaces a missing Chrome install as a
	// session-creation error instead of a failure on first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		ctxCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{
		allocCancel: allocCancel,
		ctxCancel:   ctxCancel,
		ctx:         browserCtx,
		verbose:     verbose,
	}, nil
}

// Close releases the browser. Safe to call once per session.
func (s *Session) Close() {
	s.ctxCancel()
	s.allocCancel()
}

// Navigate loads a URL, waits for the body to be ready plus a settle delay
// for client-side rendering, and returns the rendered HTML.
func (s *Session) Navigate(url string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if s.verbose {
		log.Printf("[VERBOSE] browser navigating to: %s", url)
	}

	var html string
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser navigation failed: %w", err)
	}

	if s.verbose {
		log.Printf("[VERBOSE] browser rendered %d bytes", len(html))
	}
	return html, nil
}

// ScrollBottom scrolls the page to the bottom to trigger lazy result loading
// and returns the updated HTML.
func (s *Session) ScrollBottom(timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser scroll failed: %w", err)
	}
	return html, nil
}
