package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tennis-score-go/internal/apperrors"
	"tennis-score-go/internal/database"
	"tennis-score-go/internal/scoreengine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenAndMigrate(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func TestCreateRejectsInvalidPlayers(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("", "Bob")
	require.ErrorIs(t, err, apperrors.ErrInvalidPlayers)

	_, err = s.Create("Alice", "Alice")
	require.ErrorIs(t, err, apperrors.ErrInvalidPlayers)
}

func TestWithActiveLockedRunsUnderLock(t *testing.T) {
	s := newTestStore(t)
	m, err := s.Create("Alice", "Bob")
	require.NoError(t, err)

	found, err := s.WithActiveLocked(m.UUID, func(match *scoreengine.Match) error {
		scoreengine.AwardPoint(match, scoreengine.PlayerOne, scoreengine.DefaultRulesConfig())
		return nil
	})
	require.NoError(t, err)
	require.True(t, found)

	found, err = s.WithActiveLocked("does-not-exist", func(*scoreengine.Match) error {
		t.Fatal("fn should not run for an unknown uuid")
		return nil
	})
	require.NoError(t, err)
	require.False(t, found)
}

func winMatchFor(t *testing.T, s *Store, uuid string, side scoreengine.Side) {
	t.Helper()
	cfg := scoreengine.DefaultRulesConfig()
	for set := 0; set < cfg.SetsToWin; set++ {
		for game := 0; game < 6; game++ {
			for point := 0; point < 4; point++ {
				_, err := s.WithActiveLocked(uuid, func(m *scoreengine.Match) error {
					scoreengine.AwardPoint(m, side, cfg)
					return nil
				})
				require.NoError(t, err)
			}
		}
	}
}

func TestSaveCompletedIsIdempotentAndRemovesFromActive(t *testing.T) {
	s := newTestStore(t)
	m, err := s.Create("Alice", "Bob")
	require.NoError(t, err)

	winMatchFor(t, s, m.UUID, scoreengine.PlayerOne)

	var persisted *Persisted
	found, err := s.WithActiveLocked(m.UUID, func(match *scoreengine.Match) error {
		p, saveErr := s.SaveCompleted(match)
		persisted = p
		return saveErr
	})
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, persisted)
	require.Equal(t, "6-0, 6-0", persisted.ScoreStr)

	_, stillActive := s.PeekActive(m.UUID)
	require.False(t, stillActive)

	again, err := s.SaveCompleted(m)
	require.NoError(t, err)
	require.Equal(t, persisted.DBID, again.DBID)
}

func TestListUnifiesActiveAndPersisted(t *testing.T) {
	s := newTestStore(t)

	active, err := s.Create("Ann", "Zoe")
	require.NoError(t, err)
	_ = active

	completed, err := s.Create("Nadal", "Federer")
	require.NoError(t, err)
	winMatchFor(t, s, completed.UUID, scoreengine.PlayerOne)
	_, err = s.SaveCompleted(completed)
	require.NoError(t, err)

	items, totalPages, err := s.List(1, 20, "")
	require.NoError(t, err)
	require.Equal(t, 1, totalPages)
	require.Len(t, items, 2)

	var sawActive, sawCompleted bool
	for _, it := range items {
		if it.UUID == active.UUID {
			sawActive = true
			require.False(t, it.Completed)
		}
		if it.UUID == completed.UUID {
			sawCompleted = true
			require.True(t, it.Completed)
		}
	}
	require.True(t, sawActive)
	require.True(t, sawCompleted)

	filtered, _, err := s.List(1, 20, "nadal")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, completed.UUID, filtered[0].UUID)
}

func TestListPaginates(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.Create("Player"+string(rune('A'+i)), "Opponent"+string(rune('A'+i)))
		require.NoError(t, err)
	}

	page1, totalPages, err := s.List(1, 2, "")
	require.NoError(t, err)
	require.Equal(t, 3, totalPages)
	require.Len(t, page1, 2)

	page3, _, err := s.List(3, 2, "")
	require.NoError(t, err)
	require.Len(t, page3, 1)
}
