// Package scraper extracts the contribution calendar from a Codeforces
// profile page rendered in a shared headless browser. Each extraction runs in
// its own isolated page context which is closed on every exit path.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/shehryarbajwa/cf-calendar-api/internal/browser"
	"github.com/shehryarbajwa/cf-calendar-api/internal/config"
	"github.com/shehryarbajwa/cf-calendar-api/pkg/models"
)

// Extractor drives the shared browser to pull contribution data for one
// username at a time. A semaphore bounds how many page contexts are open at
// once so a burst of cache misses cannot exhaust the engine.
type Extractor struct {
	sessions *browser.Manager
	log      *zap.SugaredLogger

	urlTemplate    string
	userAgent      string
	acceptLanguage string
	navTimeout     time.Duration
	probeTimeout   time.Duration
	slots          *semaphore.Weighted
}

// NewExtractor wires an Extractor against the shared session manager.
func NewExtractor(sessions *browser.Manager, cfg config.Config, log *zap.SugaredLogger) *Extractor {
	return &Extractor{
		sessions:       sessions,
		log:            log,
		urlTemplate:    cfg.ProfileURLTemplate,
		userAgent:      cfg.UserAgent,
		acceptLanguage: cfg.AcceptLanguage,
		navTimeout:     cfg.NavTimeout,
		probeTimeout:   cfg.ProbeTimeout,
		slots:          semaphore.NewWeighted(cfg.MaxPages),
	}
}

// Extract loads the profile page for username, waits for the calendar to
// render, and returns the filtered records in document order. Failure modes:
// *browser.StartError when the engine cannot start, *NavigationError when the
// page fails to load, *TimeoutError when a step runs past its bound, and
// ErrNotFound when the page loads but no day cell appears within the probe
// window.
func (e *Extractor) Extract(ctx context.Context, username string) (models.ScrapeResult, error) {
	if err := e.slots.Acquire(ctx, 1); err != nil {
		return models.ScrapeResult{}, err
	}
	defer e.slots.Release(1)

	b, err := e.sessions.Browser(ctx)
	if err != nil {
		return models.ScrapeResult{}, err
	}

	url := fmt.Sprintf(e.urlTemplate, username)

	page, err := e.openPage(ctx, b)
	if err != nil {
		return models.ScrapeResult{}, &NavigationError{URL: url, Err: err}
	}
	defer page.Close()

	if err := e.navigate(page, url); err != nil {
		return models.ScrapeResult{}, err
	}

	// The calendar is client-rendered; probe for the first day cell within
	// a bounded window so an empty profile answers fast instead of riding
	// out the full navigation timeout.
	if _, err := page.Timeout(e.probeTimeout).Element(daySelector); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			e.log.Debugw("no day cells rendered", "username", username, "probe_timeout", e.probeTimeout)
			return models.ScrapeResult{}, ErrNotFound
		}
		return models.ScrapeResult{}, fmt.Errorf("probe day cells: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return models.ScrapeResult{}, fmt.Errorf("read page markup: %w", err)
	}

	records, err := ParseContributions(html)
	if err != nil {
		return models.ScrapeResult{}, fmt.Errorf("parse contributions: %w", err)
	}

	e.log.Infow("extracted contributions", "username", username, "records", len(records))
	return models.ScrapeResult{Records: records}, nil
}

// openPage creates an isolated page scoped to this extraction, with the
// realistic user agent applied before any navigation.
func (e *Extractor) openPage(ctx context.Context, b *rod.Browser) (*rod.Page, error) {
	incognito, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	page = page.Context(ctx)

	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent:      e.userAgent,
		AcceptLanguage: e.acceptLanguage,
	}).Call(page); err != nil {
		e.log.Warnw("failed to override user agent", "error", err)
	}

	return page, nil
}

// navigate loads url and waits for network traffic to settle, since the
// calendar widget populates well after the initial document parse.
func (e *Extractor) navigate(page *rod.Page, url string) error {
	nav := page.Timeout(e.navTimeout)

	wait := nav.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := nav.Navigate(url); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &TimeoutError{Stage: "navigation", Err: err}
		}
		return &NavigationError{URL: url, Err: err}
	}
	wait()

	return nil
}
