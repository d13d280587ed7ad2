package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blockedby/npb-dashboard/internal/logger"
)

// errors
var (
	ErrSessionNotFound = errors.New("session not found")
)

const publishTimeout = 5 * time.Second

// Option configures a Manager.
type Option func(*Manager)

// WithPublisher publishes every resolved fetch. It may be given more than
// once; publishers are called in order.
func WithPublisher(p EventPublisher) Option {
	return func(m *Manager) { m.publishers = append(m.publishers, p) }
}

// WithChangeHook receives every view change, including loading.
func WithChangeHook(h ChangeHook) Option {
	return func(m *Manager) { m.hooks = append(m.hooks, h) }
}

// WithTTL sets how long an untouched session is kept.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// Manager owns the sessions of all connected browsers
// thread-safe
type Manager struct {
	src        Source
	publishers []EventPublisher
	hooks      []ChangeHook
	ttl        time.Duration
	log        *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager over src.
func NewManager(src Source, opts ...Option) *Manager {
	m := &Manager{
		src:      src,
		ttl:      30 * time.Minute,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Get().Component("dashboard")
	}
	return m
}

// Create starts a new session with a fresh id.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	s := newSession(id, m.src, m.dispatch, m.log)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.log.Debug().Str("session", id).Msg("session created")
	return s
}

// Get returns the session with id and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

// GetOrCreate returns the session with id, or a new one when id is unknown
// or empty. The boolean reports whether a new session was created.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, err := m.Get(id); err == nil {
			return s, false
		}
	}
	return m.Create(), true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Remove closes and forgets a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep(now time.Time) int {
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) > m.ttl {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
		m.log.Debug().Str("session", s.ID).Msg("session expired")
	}
	return len(expired)
}

// Run sweeps expired sessions until ctx is done, then closes every session.
func (m *Manager) Run(ctx context.Context) {
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return
		case now := <-ticker.C:
			if n := m.Sweep(now); n > 0 {
				m.log.Info().Int("expired", n).Int("active", m.Len()).Msg("swept idle sessions")
			}
		}
	}
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (m *Manager) dispatch(sessionID string, ch Change) {
	for _, h := range m.hooks {
		h(sessionID, ch)
	}

	if len(m.publishers) == 0 || !ch.Resolved() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	event := newFetchEvent(sessionID, ch)
	for _, p := range m.publishers {
		if err := p.PublishFetchCompleted(ctx, event); err != nil {
			m.log.Warn().Err(err).Str("session", sessionID).Str("view", ch.View).Msg("failed to publish fetch event")
		}
	}
}
