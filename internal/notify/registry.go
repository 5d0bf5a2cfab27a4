package notify

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Session is one live connection. A user may hold several at once.
type Session struct {
	ID     string
	UserID string

	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
}

// Events yields notifications addressed to the session's user.
func (s *Session) Events() <-chan Event { return s.ch }

// Done is closed when the registry closes the session.
func (s *Session) Done() <-chan struct{} { return s.done }

// Dropped counts events discarded because the session buffer was full.
func (s *Session) Dropped() int64 { return s.dropped.Load() }

func (s *Session) deliver(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.ch <- ev:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

func (s *Session) close() { s.closeOnce.Do(func() { close(s.done) }) }

// Registry tracks the sessions connected to this process, keyed by user id.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]map[string]*Session
	queueSize int
}

func NewRegistry(queueSize int) *Registry {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Registry{sessions: make(map[string]map[string]*Session), queueSize: queueSize}
}

// Open registers a new session for userID.
func (r *Registry) Open(userID string) *Session {
	s := &Session{
		ID:     uuid.New().String(),
		UserID: userID,
		ch:     make(chan Event, r.queueSize),
		done:   make(chan struct{}),
	}
	r.mu.Lock()
	byID, ok := r.sessions[userID]
	if !ok {
		byID = make(map[string]*Session)
		r.sessions[userID] = byID
	}
	byID[s.ID] = s
	r.mu.Unlock()
	return s
}

// Close unregisters s. Closing twice is a no-op.
func (r *Registry) Close(s *Session) {
	r.mu.Lock()
	if byID, ok := r.sessions[s.UserID]; ok {
		delete(byID, s.ID)
		if len(byID) == 0 {
			delete(r.sessions, s.UserID)
		}
	}
	r.mu.Unlock()
	s.close()
}

// Deliver fans ev out to every session of userID without blocking and
// returns how many sessions accepted it.
func (r *Registry) Deliver(userID string, ev Event) int {
	r.mu.RLock()
	targets := make([]*Session, 0, len(r.sessions[userID]))
	for _, s := range r.sessions[userID] {
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	n := 0
	for _, s := range targets {
		if s.deliver(ev) {
			n++
		}
	}
	return n
}

// Count returns the number of open sessions for userID.
func (r *Registry) Count(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID])
}

// CloseAll closes every session, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]map[string]*Session)
	r.mu.Unlock()
	for _, byID := range all {
		for _, s := range byID {
			s.close()
		}
	}
}
