// Package browser owns the process-wide browser engine. One rod.Browser is
// lazily created on first demand, shared by every request, and torn down once
// on shutdown. Requests never hold the browser across calls; they borrow it
// for the duration of a single extraction.
package browser

import (
	"context"
	"errors"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"

	"github.com/shehryarbajwa/cf-calendar-api/internal/config"
)

// StartError reports that the browser engine could not be started or attached
// to. It is surfaced per-request rather than crashing the process; the next
// request triggers a fresh start attempt.
type StartError struct {
	Err error
}

func (e *StartError) Error() string { return "browser engine failed to start: " + e.Err.Error() }

func (e *StartError) Unwrap() error { return e.Err }

// Conn is a live engine connection: the browser handle, the CDP control URL
// it was dialed on, and a cleanup for whatever was launched to back it (local
// Chrome process, Docker container, nothing for a remote attach).
type Conn struct {
	Browser    *rod.Browser
	ControlURL string
	Cleanup    func()
}

type connectFunc func(ctx context.Context) (*Conn, error)

// Manager guards the single shared browser behind a one-time-creation lock.
type Manager struct {
	log     *zap.SugaredLogger
	connect connectFunc

	mu     sync.Mutex
	conn   *Conn
	closed bool
}

// NewManager builds a Manager whose engine location follows cfg: a remote CDP
// endpoint when BROWSER_REMOTE_URL is set, a browserless/chrome container in
// deployed Docker mode, otherwise a locally launched Chrome.
func NewManager(cfg config.Config, log *zap.SugaredLogger) *Manager {
	return &Manager{
		log:     log,
		connect: chooseConnector(cfg, log),
	}
}

// NewManagerWithConnector is for tests that substitute the engine.
func NewManagerWithConnector(connect func(ctx context.Context) (*Conn, error), log *zap.SugaredLogger) *Manager {
	return &Manager{
		log:     log,
		connect: connect,
	}
}

func chooseConnector(cfg config.Config, log *zap.SugaredLogger) connectFunc {
	switch {
	case cfg.RemoteURL != "":
		return func(ctx context.Context) (*Conn, error) {
			u, err := launcher.ResolveURL(cfg.RemoteURL)
			if err != nil {
				return nil, err
			}
			return connectControlURL(u, func() {})
		}

	case cfg.Environment == config.EnvDeployed && cfg.UseDocker:
		return func(ctx context.Context) (*Conn, error) {
			engine, err := NewDockerEngine(log)
			if err != nil {
				return nil, err
			}
			controlURL, stop, err := engine.Launch(ctx)
			if err != nil {
				engine.Close()
				return nil, err
			}
			return connectControlURL(controlURL, func() {
				stop()
				engine.Close()
			})
		}

	default:
		return func(ctx context.Context) (*Conn, error) {
			l := launcher.New().
				Headless(true).
				NoSandbox(true).
				Set("disable-blink-features", "AutomationControlled").
				Set("lang", "en-US")
			if cfg.BrowserBin != "" {
				l = l.Bin(cfg.BrowserBin)
			}
			controlURL, err := l.Launch()
			if err != nil {
				return nil, err
			}
			return connectControlURL(controlURL, l.Cleanup)
		}
	}
}

// connectControlURL dials the engine. The browser is deliberately not bound
// to the caller's context: it outlives the request that triggered the cold
// start. Pages layered on top carry per-request contexts.
func connectControlURL(controlURL string, cleanup func()) (*Conn, error) {
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		cleanup()
		return nil, err
	}
	return &Conn{Browser: b, ControlURL: controlURL, Cleanup: cleanup}, nil
}

// Browser returns the shared browser, creating it on first call. Concurrent
// cold starts are serialized so exactly one engine is ever launched.
func (m *Manager) Browser(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, &StartError{Err: errors.New("session manager is shut down")}
	}
	if m.conn != nil {
		return m.conn.Browser, nil
	}

	conn, err := m.connect(ctx)
	if err != nil {
		return nil, &StartError{Err: err}
	}

	m.conn = conn
	m.log.Infow("browser engine started", "control_url", conn.ControlURL)
	return conn.Browser, nil
}

// ControlURL returns the CDP endpoint of the running engine, or "" when the
// engine has not started.
func (m *Manager) ControlURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return ""
	}
	return m.conn.ControlURL
}

// Started reports whether the engine is currently up.
func (m *Manager) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Shutdown tears the engine down exactly once. Calling it before any session
// was created is a no-op.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.conn == nil {
		return nil
	}

	err := m.conn.Browser.Close()
	if m.conn.Cleanup != nil {
		m.conn.Cleanup()
	}
	m.conn = nil
	m.log.Infow("browser engine stopped")
	return err
}
