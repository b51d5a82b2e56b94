package scoreengine

import "testing"

func newTestMatch() *Match {
	return NewMatch("test-uuid", "Alice", "Bob")
}

func award(m *Match, side Side) Outcome {
	return AwardPoint(m, side, DefaultRulesConfig())
}

func TestLoveGame(t *testing.T) {
	m := newTestMatch()
	for i := 0; i < 3; i++ {
		if out := award(m, PlayerOne); out.Kind != Continued {
			t.Fatalf("point %d: got %v, want Continued", i, out.Kind)
		}
	}
	out := award(m, PlayerOne)
	if out.Kind != Continued {
		t.Fatalf("game point: got %v, want Continued", out.Kind)
	}
	if m.score(PlayerOne).Games != 1 {
		t.Fatalf("games = %d, want 1", m.score(PlayerOne).Games)
	}
	if m.score(PlayerOne).Points != 0 || m.score(PlayerTwo).Points != 0 {
		t.Fatalf("points not reset after game: %+v %+v", m.score(PlayerOne), m.score(PlayerTwo))
	}
	if err := ValidateInvariants(m); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestDeuceThenHold(t *testing.T) {
	m := newTestMatch()
	for i := 0; i < 3; i++ {
		award(m, PlayerOne)
		award(m, PlayerTwo)
	}
	// Both at 40: deuce.
	if m.score(PlayerOne).Points != 3 || m.score(PlayerTwo).Points != 3 {
		t.Fatalf("expected deuce, got %+v %+v", m.score(PlayerOne), m.score(PlayerTwo))
	}

	award(m, PlayerOne) // player one takes advantage
	if !m.score(PlayerOne).Advantage {
		t.Fatalf("expected player one to hold advantage")
	}

	award(m, PlayerTwo) // back to deuce
	if m.score(PlayerOne).Advantage || m.score(PlayerTwo).Advantage {
		t.Fatalf("advantage should be cleared back to deuce")
	}

	award(m, PlayerOne) // advantage again
	out := award(m, PlayerOne) // holds: wins the game
	if out.Kind != Continued {
		t.Fatalf("game win from advantage: got %v", out.Kind)
	}
	if m.score(PlayerOne).Games != 1 {
		t.Fatalf("games = %d, want 1", m.score(PlayerOne).Games)
	}
	if err := ValidateInvariants(m); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func playGames(t *testing.T, m *Match, side Side, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		for j := 0; j < 4; j++ {
			award(m, side)
		}
	}
}

func TestTiebreakEntryAndWin(t *testing.T) {
	m := newTestMatch()
	// Run the game score to 6-6 without deciding the set.
	for i := 0; i < 6; i++ {
		playGames(t, m, PlayerOne, 1)
		playGames(t, m, PlayerTwo, 1)
	}
	if !m.IsTiebreak {
		t.Fatalf("expected tiebreak at 6-6, got games %d-%d", m.score(PlayerOne).Games, m.score(PlayerTwo).Games)
	}

	for i := 0; i < 6; i++ {
		award(m, PlayerOne)
	}
	out := award(m, PlayerOne) // 7-0: wins the tiebreak and the set
	if out.Kind != SetWon {
		t.Fatalf("tiebreak win: got %v, want SetWon", out.Kind)
	}
	if m.IsTiebreak {
		t.Fatalf("tiebreak flag should clear after the set is decided")
	}
	if len(m.SetHistory) != 1 {
		t.Fatalf("set history length = %d, want 1", len(m.SetHistory))
	}
	rec := m.SetHistory[0]
	if rec.PlayerOneGames != 7 || rec.PlayerTwoGames != 6 {
		t.Fatalf("set record games = %d-%d, want 7-6", rec.PlayerOneGames, rec.PlayerTwoGames)
	}
	if rec.PlayerOneTB == nil || *rec.PlayerOneTB != 7 {
		t.Fatalf("set record player one tiebreak points wrong: %+v", rec)
	}
	if err := ValidateInvariants(m); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestBestOfThreeMatchWin(t *testing.T) {
	m := newTestMatch()
	for set := 0; set < 2; set++ {
		var out Outcome
		for i := 0; i < 6; i++ {
			out = Outcome{}
			for j := 0; j < 4; j++ {
				out = award(m, PlayerOne)
			}
		}
		if set == 0 {
			if out.Kind != SetWon {
				t.Fatalf("set 1: got %v, want SetWon", out.Kind)
			}
		} else {
			if out.Kind != MatchWon {
				t.Fatalf("set 2: got %v, want MatchWon", out.Kind)
			}
		}
	}
	if m.Winner != PlayerOne {
		t.Fatalf("winner = %q, want player1", m.Winner)
	}
	if got := RenderFinalScore(m); got != "6-0, 6-0" {
		t.Fatalf("final score = %q, want 6-0, 6-0", got)
	}
}

func TestPlayerTwoWinsSetRecordedInPlayerOneFirstOrder(t *testing.T) {
	m := newTestMatch()
	playGames(t, m, PlayerTwo, 6) // 0-6: player two takes the set
	if len(m.SetHistory) != 1 {
		t.Fatalf("set history length = %d, want 1", len(m.SetHistory))
	}
	rec := m.SetHistory[0]
	if rec.PlayerOneGames != 0 || rec.PlayerTwoGames != 6 {
		t.Fatalf("set record games = %d-%d, want 0-6 (player-one-first order preserved)", rec.PlayerOneGames, rec.PlayerTwoGames)
	}
	if got := RenderFinalScore(m); got != "0-6" {
		t.Fatalf("final score = %q, want 0-6", got)
	}
	if err := ValidateInvariants(m); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestAwardPointRejectsAfterMatchWon(t *testing.T) {
	m := newTestMatch()
	for set := 0; set < 2; set++ {
		for i := 0; i < 6; i++ {
			for j := 0; j < 4; j++ {
				award(m, PlayerOne)
			}
		}
	}
	out := award(m, PlayerTwo)
	if out.Kind != Rejected || out.Reason != ReasonAlreadyTerminal {
		t.Fatalf("got %+v, want Rejected/AlreadyTerminal", out)
	}
}

func TestAwardPointRejectsUnknownSide(t *testing.T) {
	m := newTestMatch()
	out := AwardPoint(m, Side("player3"), DefaultRulesConfig())
	if out.Kind != Rejected || out.Reason != ReasonUnknownSide {
		t.Fatalf("got %+v, want Rejected/UnknownSide", out)
	}
}

func TestResetRejectsTerminalMatch(t *testing.T) {
	m := newTestMatch()
	for set := 0; set < 2; set++ {
		for i := 0; i < 6; i++ {
			for j := 0; j < 4; j++ {
				award(m, PlayerOne)
			}
		}
	}
	if err := Reset(m); err == nil {
		t.Fatalf("expected reset of a completed match to fail")
	}
}

func TestResetClearsLiveMatch(t *testing.T) {
	m := newTestMatch()
	award(m, PlayerOne)
	award(m, PlayerOne)
	if err := Reset(m); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if m.score(PlayerOne).Points != 0 || m.IsTiebreak || m.Winner != "" || len(m.SetHistory) != 0 {
		t.Fatalf("match not fully reset: %+v", m)
	}
}

func TestRenderFinalScoreWithTiebreak(t *testing.T) {
	m := newTestMatch()
	p1tb, p2tb := 7, 3
	m.SetHistory = []SetRecord{
		{PlayerOneGames: 6, PlayerTwoGames: 4},
		{PlayerOneGames: 7, PlayerTwoGames: 6, PlayerOneTB: &p1tb, PlayerTwoTB: &p2tb},
	}
	got := RenderFinalScore(m)
	want := "6-4, 7-6(7-3)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPointDisplay(t *testing.T) {
	m := newTestMatch()
	if got := PointDisplay(m, PlayerOne); got != "0" {
		t.Fatalf("got %q, want 0", got)
	}
	award(m, PlayerOne)
	if got := PointDisplay(m, PlayerOne); got != "15" {
		t.Fatalf("got %q, want 15", got)
	}
	for i := 0; i < 3; i++ {
		award(m, PlayerTwo)
	}
	award(m, PlayerOne) // 30-40
	award(m, PlayerOne) // deuce
	award(m, PlayerOne) // player one advantage
	if got := PointDisplay(m, PlayerOne); got != "AD" {
		t.Fatalf("got %q, want AD", got)
	}
	if got := PointDisplay(m, PlayerTwo); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
