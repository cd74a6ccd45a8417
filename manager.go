package xtid

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// homePageURL is the page whose markup carries every derivation signal.
const homePageURL = "https://x.com"

const defaultRefreshInterval = 30 * time.Minute

// Manager fetches the x.com page, owns a Session and rebuilds it when the
// derived state goes stale. Thread-safe. Keeps serving the old state when a
// refresh fails.
type Manager struct {
	fetch           Fetcher
	refreshInterval time.Duration

	mu          sync.RWMutex
	session     *Session
	lastRefresh time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerFetcher replaces the fetcher used for both the page and the
// ondemand script.
func WithManagerFetcher(f Fetcher) ManagerOption {
	return func(m *Manager) { m.fetch = f }
}

// WithRefreshInterval controls how long derived state is trusted before the
// page is re-fetched.
func WithRefreshInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.refreshInterval = d }
}

// NewManager creates a transaction id manager. Call Initialize up front, or
// let the first GenerateID trigger it.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		fetch:           NewHTTPFetcher(),
		refreshInterval: defaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize fetches the home page, builds a fresh session over it and runs
// the extraction chain.
func (m *Manager) Initialize(ctx context.Context) error {
	markup, err := m.fetch.Fetch(ctx, homePageURL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", homePageURL, err)
	}
	doc, err := ParseDocument(markup)
	if err != nil {
		return fmt.Errorf("parse home page: %w", err)
	}

	sess := NewSession(doc, WithFetcher(m.fetch))
	if err := sess.Initialize(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.session = sess
	m.lastRefresh = time.Now()
	m.mu.Unlock()

	prefix := sess.AnimationKey()
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	slog.Info("xtid: initialized", slog.String("anim_key", prefix+"..."))
	return nil
}

// GenerateID returns a new x-client-transaction-id for the given HTTP method
// and URL path, refreshing the derived state when it is older than the
// refresh interval. A failed refresh falls back to the previous state.
func (m *Manager) GenerateID(ctx context.Context, method, path string) (string, error) {
	m.mu.RLock()
	needRefresh := m.session == nil || time.Since(m.lastRefresh) > m.refreshInterval
	m.mu.RUnlock()

	if needRefresh {
		if err := m.Initialize(ctx); err != nil {
			m.mu.RLock()
			hasOld := m.session != nil
			m.mu.RUnlock()
			if !hasOld {
				return "", fmt.Errorf("xtid init failed: %w", err)
			}
			slog.Warn("xtid: refresh failed, using stale keys", slog.Any("error", err))
		}
	}

	m.mu.RLock()
	sess := m.session
	m.mu.RUnlock()
	if sess == nil {
		return "", ErrNotInitialized
	}
	return sess.Generate(method, path)
}
