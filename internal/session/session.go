// Package session maps browser cookies to per-session stores.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/darte/storefront/internal/catalog"
	"github.com/darte/storefront/internal/messaging"
	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/store"
	"github.com/darte/storefront/pkg/logger"
	"github.com/google/uuid"
)

// Session is the state owned by one browser
type Session struct {
	ID      string
	Store   *store.Store
	Threads *messaging.Threads

	lastSeen time.Time // guarded by Manager.mu
}

// Options configures a Manager
type Options struct {
	CookieName     string
	IdleTimeout    time.Duration
	StartLoggedIn  bool
	AutoReplyDelay time.Duration
}

// Manager creates, looks up and expires sessions
type Manager struct {
	catalog *catalog.Catalog
	opts    Options
	metrics *metrics.AppMetrics
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager seeding stores from cat
func NewManager(cat *catalog.Catalog, opts Options, m *metrics.AppMetrics) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "darte_session"
	}
	return &Manager{
		catalog:  cat,
		opts:     opts,
		metrics:  m,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session
func (m *Manager) Create(ctx context.Context) *Session {
	st := store.New(m.catalog.Products)
	if m.opts.StartLoggedIn {
		st.Login(m.catalog.SessionUser)
	}

	s := &Session{
		ID:      uuid.NewString(),
		Store:   st,
		Threads: messaging.NewThreads(m.opts.AutoReplyDelay, m.metrics),
	}

	m.mu.Lock()
	s.lastSeen = m.now()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.metrics.ActiveSessions.Record(ctx, int64(count), m.metrics.Attrs())
	logger.Debug(ctx).Str("session_id", s.ID).Msg("session created")
	return s
}

// Get returns the session with the given ID and marks it as used
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if ok {
		s.lastSeen = m.now()
	}
	return s, ok
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Evict removes sessions idle for longer than the idle timeout and cancels
// their pending message replies. It returns the number evicted.
func (m *Manager) Evict(ctx context.Context) int {
	if m.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.opts.IdleTimeout)

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.Threads.CloseAll()
	}
	m.metrics.ActiveSessions.Record(ctx, int64(count), m.metrics.Attrs())
	if len(expired) > 0 {
		logger.Info(ctx).Int("evicted", len(expired)).Int("active", count).Msg("expired idle sessions")
	}
	return len(expired)
}

// Run evicts idle sessions every interval until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Evict(ctx)
		}
	}
}

// Close ends every session
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Threads.CloseAll()
	}
}

// Middleware attaches the caller's session, creating one when the cookie is
// missing or stale.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var s *Session
		if c, err := r.Cookie(m.opts.CookieName); err == nil {
			s, _ = m.Get(c.Value)
		}
		if s == nil {
			s = m.Create(r.Context())
			http.SetCookie(w, &http.Cookie{
				Name:     m.opts.CookieName,
				Value:    s.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := NewContext(r.Context(), s)
		ctx = store.NewContext(ctx, s.Store)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ctxKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}
