package bot

import (
	"context"
	"sync"
	"time"

	"github.com/voxpage/voxpage/internal/observe"
)

// Session is the per-user dialogue state between a file upload and the
// language choice. A user with a Session is awaiting a language reply; a
// user without one is idle. Sessions are transient — they do not survive a
// process restart.
type Session struct {
	// UserID is the chat user the session belongs to.
	UserID int64

	// FilePath is the staged download of the uploaded document.
	FilePath string

	// CreatedAt is when the file was staged.
	CreatedAt time.Time
}

// SessionStore is a mutex-guarded per-user session map. Sessions are keyed
// by user ID, so concurrent users never share dialogue state or staged
// files. All methods are safe for concurrent use.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	metrics  *observe.Metrics
}

// NewSessionStore creates an empty store. When metrics is nil,
// [observe.DefaultMetrics] is used.
func NewSessionStore(metrics *observe.Metrics) *SessionStore {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &SessionStore{
		sessions: make(map[int64]*Session),
		metrics:  metrics,
	}
}

// Put stages a new session for userID and returns the replaced session, if
// any, so the caller can release its staged file.
func (s *SessionStore) Put(userID int64, filePath string) (replaced *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced = s.sessions[userID]
	s.sessions[userID] = &Session{
		UserID:    userID,
		FilePath:  filePath,
		CreatedAt: time.Now(),
	}
	if replaced == nil {
		s.metrics.ActiveSessions.Add(context.Background(), 1)
	}
	return replaced
}

// Get returns the active session for userID, if any.
func (s *SessionStore) Get(userID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Evict removes and returns the session for userID, if any.
func (s *SessionStore) Evict(userID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
		s.metrics.ActiveSessions.Add(context.Background(), -1)
	}
	return sess, ok
}

// Len returns the number of active sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
