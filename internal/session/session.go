// Package session holds one user's master table between requests.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"crewswap/internal/identity"
	"crewswap/internal/roster"
	"crewswap/internal/swap"
)

var (
	// ErrTableHeld is returned by Load while a non-empty table is held; Clear it first.
	ErrTableHeld = errors.New("a master table is already loaded")
	// ErrNotFound is returned by Store lookups for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")
	// ErrNoTable is returned by queries on a session without a loaded table.
	ErrNoTable = errors.New("no master table loaded")
)

// ArtifactWriter persists the master table after a successful load.
type ArtifactWriter func(*roster.MasterTable) error

// LoadResult summarises one Load call.
type LoadResult struct {
	Rows     int              `json:"rows"`
	Dates    int              `json:"dates"`
	Warnings []roster.Warning `json:"warnings,omitempty"`
}

// Session is the per-user context passed to every core operation.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	master   *roster.MasterTable
	artifact ArtifactWriter
}

// New creates a session with a fresh random ID.
func New() *Session {
	now := time.Now()
	return &Session{ID: uuid.NewString(), CreatedAt: now, lastSeen: now}
}

// SetArtifactWriter installs a callback run after every successful Load.
func (s *Session) SetArtifactWriter(w ArtifactWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifact = w
}

// Load ingests docs into the session's table. It refuses while a non-empty
// table is held. When every document fails the table stays empty.
func (s *Session) Load(docs []roster.NamedDocument) (LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if !s.master.Empty() {
		return LoadResult{}, ErrTableHeld
	}

	m, warnings := roster.BuildMaster(docs)
	res := LoadResult{Rows: m.Len(), Dates: len(m.Dates()), Warnings: warnings}
	if m.Empty() {
		s.master = nil
		return res, nil
	}

	s.master = m
	if s.artifact != nil {
		if err := s.artifact(m); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Clear drops the held table so a new batch can be loaded.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.master = nil
}

// Master returns the held table, or nil.
func (s *Session) Master() *roster.MasterTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.master
}

// Resolve matches query against the held table's aliases.
func (s *Session) Resolve(query string, r identity.Resolver) (identity.Match, bool, error) {
	m := s.Master()
	if m.Empty() {
		return identity.Match{}, false, ErrNoTable
	}
	match, ok := r.Resolve(query, m.Rows())
	return match, ok, nil
}

// Search runs a swap search over the held table.
func (s *Session) Search(req swap.Request) (swap.Result, error) {
	m := s.Master()
	if m.Empty() {
		return swap.Result{}, ErrNoTable
	}
	return swap.Find(m, req), nil
}

// LastSeen reports when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch() {
	s.lastSeen = time.Now()
}

// Store keeps sessions by ID for the served mode.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create adds a new session and returns it.
func (st *Store) Create() *Session {
	s := New()
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session for id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes the session for id.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many were removed.
// Idle times are read without holding the store lock, so a session busy loading
// does not stall lookups of other sessions.
func (st *Store) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	st.mu.RLock()
	all := make(map[string]*Session, len(st.sessions))
	for id, s := range st.sessions {
		all[id] = s
	}
	st.mu.RUnlock()

	var idle []string
	for id, s := range all {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	if len(idle) == 0 {
		return 0
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for _, id := range idle {
		// Skip sessions replaced or already deleted since the scan.
		if s, ok := st.sessions[id]; ok && s == all[id] {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
