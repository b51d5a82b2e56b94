package matchsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tennis-score-go/internal/apperrors"
	"tennis-score-go/internal/database"
	"tennis-score-go/internal/scoreengine"
	"tennis-score-go/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.OpenAndMigrate(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(store.New(db), scoreengine.DefaultRulesConfig())
}

func TestCreateAndGetMatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	view, err := svc.CreateMatch(ctx, "Alice", "Bob")
	require.NoError(t, err)
	require.Equal(t, "Alice", view.PlayerOneName)
	require.NotNil(t, view.Score.Live)
	require.Equal(t, [2]string{"0", "0"}, view.Score.Live.Points)

	got, ok, err := svc.GetMatch(ctx, view.MatchUUID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, view.MatchUUID, got.MatchUUID)
}

func TestCreateMatchRejectsInvalidPlayers(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateMatch(ctx, "Alice", "Alice")
	require.ErrorIs(t, err, apperrors.ErrInvalidPlayers)
}

func TestUpdateScoreUnknownMatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	view, err := svc.UpdateScore(ctx, "no-such-uuid", scoreengine.PlayerOne)
	require.ErrorIs(t, err, apperrors.ErrUnknownMatch)
	require.NotEmpty(t, view.Error)
}

func TestUpdateScoreInvalidSide(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreateMatch(ctx, "Alice", "Bob")
	require.NoError(t, err)

	view, err := svc.UpdateScore(ctx, created.MatchUUID, scoreengine.Side("player9"))
	require.ErrorIs(t, err, apperrors.ErrInvalidSide)
	require.NotNil(t, view.Score.Live)
}

func TestUpdateScoreToMatchWinPersistsAndStopsAcceptingPoints(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreateMatch(ctx, "Nadal", "Federer")
	require.NoError(t, err)

	var last MatchView
	for set := 0; set < 2; set++ {
		for game := 0; game < 6; game++ {
			for point := 0; point < 4; point++ {
				last, err = svc.UpdateScore(ctx, created.MatchUUID, scoreengine.PlayerOne)
				require.NoError(t, err)
			}
		}
	}
	require.True(t, last.MatchCompleted)
	require.Equal(t, "Nadal", last.Winner)
	require.NotNil(t, last.Score.Final)
	require.Equal(t, "6-0, 6-0", *last.Score.Final)

	again, err := svc.UpdateScore(ctx, created.MatchUUID, scoreengine.PlayerTwo)
	require.ErrorIs(t, err, apperrors.ErrAlreadyCompleted)
	require.True(t, again.MatchCompleted)
}

func TestResetRejectsCompletedMatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreateMatch(ctx, "Nadal", "Federer")
	require.NoError(t, err)
	for set := 0; set < 2; set++ {
		for game := 0; game < 6; game++ {
			for point := 0; point < 4; point++ {
				_, err = svc.UpdateScore(ctx, created.MatchUUID, scoreengine.PlayerOne)
				require.NoError(t, err)
			}
		}
	}

	view, err := svc.Reset(ctx, created.MatchUUID)
	require.ErrorIs(t, err, apperrors.ErrNotResettable)
	require.True(t, view.MatchCompleted)
}

func TestResetClearsActiveMatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreateMatch(ctx, "Alice", "Bob")
	require.NoError(t, err)
	_, err = svc.UpdateScore(ctx, created.MatchUUID, scoreengine.PlayerOne)
	require.NoError(t, err)

	view, err := svc.Reset(ctx, created.MatchUUID)
	require.NoError(t, err)
	require.Equal(t, [2]string{"0", "0"}, view.Score.Live.Points)
}

func TestListMatches(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateMatch(ctx, "Ann", "Zoe")
	require.NoError(t, err)

	views, totalPages, err := svc.ListMatches(ctx, 1, 20, "")
	require.NoError(t, err)
	require.Equal(t, 1, totalPages)
	require.Len(t, views, 1)
}
