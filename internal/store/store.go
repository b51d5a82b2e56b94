// Package store holds the active (in-memory) and persisted (sqlite-backed)
// sets of matches, and the per-match locking that keeps concurrent updates
// to the same match serialized.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"tennis-score-go/internal/apperrors"
	"tennis-score-go/internal/scoreengine"
)

// Store owns the active match set and the persisted match set.
type Store struct {
	mu     sync.RWMutex
	active map[string]*scoreengine.Match
	locks  map[string]*sync.Mutex

	db *sql.DB
}

// New returns a Store backed by db. db is expected to already be migrated
// (see internal/database.OpenAndMigrate).
func New(db *sql.DB) *Store {
	return &Store{
		active: map[string]*scoreengine.Match{},
		locks:  map[string]*sync.Mutex{},
		db:     db,
	}
}

// Create starts a new active match between the two named players and
// returns it. Names must both be non-empty and different.
func (s *Store) Create(playerOneName, playerTwoName string) (*scoreengine.Match, error) {
	if playerOneName == "" || playerTwoName == "" || playerOneName == playerTwoName {
		return nil, apperrors.ErrInvalidPlayers
	}

	m := scoreengine.NewMatch(uuid.NewString(), playerOneName, playerTwoName)

	s.mu.Lock()
	s.active[m.UUID] = m
	s.locks[m.UUID] = &sync.Mutex{}
	s.mu.Unlock()

	return m, nil
}

// WithActiveLocked finds the active match with the given uuid, holds its
// per-match lock for the duration of fn, and runs fn against it. It returns
// ok=false without calling fn if no active match has that uuid.
func (s *Store) WithActiveLocked(matchUUID string, fn func(*scoreengine.Match) error) (ok bool, err error) {
	s.mu.RLock()
	m, found := s.active[matchUUID]
	lock := s.locks[matchUUID]
	s.mu.RUnlock()
	if !found {
		return false, nil
	}

	lock.Lock()
	defer lock.Unlock()

	// Re-check under the per-match lock: SaveCompleted may have removed the
	// match from the active set while we waited for the lock.
	s.mu.RLock()
	m, found = s.active[matchUUID]
	s.mu.RUnlock()
	if !found {
		return false, nil
	}

	return true, fn(m)
}

// PeekActive returns a locked, cloned snapshot of an active match's current
// state, safe to read without racing concurrent AwardPoint/Reset calls on
// the same match.
func (s *Store) PeekActive(matchUUID string) (*scoreengine.Match, bool) {
	var snapshot *scoreengine.Match
	found, _ := s.WithActiveLocked(matchUUID, func(m *scoreengine.Match) error {
		snapshot = m.Clone()
		return nil
	})
	return snapshot, found
}

// removeActive drops matchUUID from the active set and its lock table. The
// caller must already hold the per-match lock for matchUUID.
func (s *Store) removeActive(matchUUID string) {
	s.mu.Lock()
	delete(s.active, matchUUID)
	delete(s.locks, matchUUID)
	s.mu.Unlock()
}

// snapshotActive returns a stable slice of deep copies of the currently
// active matches, taking each match's per-match lock briefly to clone it.
func (s *Store) snapshotActive() []*scoreengine.Match {
	s.mu.RLock()
	uuids := make([]string, 0, len(s.active))
	for id := range s.active {
		uuids = append(uuids, id)
	}
	s.mu.RUnlock()

	out := make([]*scoreengine.Match, 0, len(uuids))
	for _, id := range uuids {
		var copyMatch *scoreengine.Match
		found, _ := s.WithActiveLocked(id, func(m *scoreengine.Match) error {
			copyMatch = m.Clone()
			return nil
		})
		if found {
			out = append(out, copyMatch)
		}
	}
	return out
}

func wrapStorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", apperrors.ErrStorageFailure, op, err)
}
