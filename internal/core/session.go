package core

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/DataSweeper/internal/codec"
	"github.com/JonMunkholm/DataSweeper/internal/table"
)

var (
	// ErrSessionNotFound is returned for an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the store is at capacity.
	ErrTooManySessions = errors.New("too many sessions")
)

// Step records one action applied to a session's table.
type Step struct {
	Action string    `json:"action"`
	Detail string    `json:"detail"`
	At     time.Time `json:"at"`
}

// session is the state of one uploaded file. All fields except lastUsed are
// guarded by mu.
type session struct {
	mu sync.Mutex

	id        string
	fileName  string
	format    codec.Format
	createdAt time.Time

	base *table.Table

	// selection is the projected column list; nil means every column.
	selection []string
	steps     []Step

	lastUsed atomic.Int64
}

func (s *session) touch(now time.Time) { s.lastUsed.Store(now.UnixNano()) }

func (s *session) idleSince() time.Time { return time.Unix(0, s.lastUsed.Load()) }

// view returns the table as currently projected.
func (s *session) view() (*table.Table, error) {
	if s.selection == nil {
		return s.base, nil
	}
	return table.Select(s.base, s.selection)
}

func (s *session) record(action, detail string, at time.Time) {
	s.steps = append(s.steps, Step{Action: action, Detail: detail, At: at})
}

// sessionStore holds sessions in memory, bounded by max and expired by ttl.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session

	max int
	ttl time.Duration
	now func() time.Time
}

func newSessionStore(max int, ttl time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		max:      max,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (st *sessionStore) add(s *session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.max > 0 && len(st.sessions) >= st.max {
		return fmt.Errorf("%w: limit is %d", ErrTooManySessions, st.max)
	}
	s.touch(st.now())
	st.sessions[s.id] = s
	return nil
}

func (st *sessionStore) get(id string) (*session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.touch(st.now())
	return s, nil
}

func (st *sessionStore) remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// evictExpired drops sessions idle for longer than ttl and returns their ids.
func (st *sessionStore) evictExpired() []string {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	var evicted []string
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

func (st *sessionStore) len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
