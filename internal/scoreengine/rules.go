package scoreengine

import "fmt"

// OutcomeKind classifies the result of a single rules-engine transition.
type OutcomeKind int

const (
	Continued OutcomeKind = iota
	SetWon
	MatchWon
	Rejected
)

// RejectReason explains an Outcome of kind Rejected.
type RejectReason int

const (
	ReasonNone RejectReason = iota
	ReasonUnknownSide
	ReasonAlreadyTerminal
)

// Outcome is what AwardPoint returns instead of an error: the engine never
// panics or throws on a normal "point doesn't apply" case, it reports it.
type Outcome struct {
	Kind   OutcomeKind
	Reason RejectReason
}

// RulesConfig carries the one tunable the rule tables depend on: how many
// sets a side must win to take the match.
type RulesConfig struct {
	SetsToWin int
}

// DefaultRulesConfig is best-of-three: first to two sets.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{SetsToWin: 2}
}

// AwardPoint advances match by one point won by side, mutating it in place.
// It never mutates a terminal match and never accepts an unrecognized side;
// both are reported via Outcome.Kind == Rejected rather than an error, since
// neither is a failure of the engine itself.
func AwardPoint(m *Match, side Side, cfg RulesConfig) Outcome {
	if m.IsTerminal() {
		return Outcome{Kind: Rejected, Reason: ReasonAlreadyTerminal}
	}
	if !ValidSide(side) {
		return Outcome{Kind: Rejected, Reason: ReasonUnknownSide}
	}

	opp := Opponent(side)
	if m.IsTiebreak {
		return awardTiebreakPoint(m, side, opp, cfg)
	}
	return awardRegularPoint(m, side, opp, cfg)
}

func awardRegularPoint(m *Match, side, opp Side, cfg RulesConfig) Outcome {
	p := m.score(side)
	o := m.score(opp)

	switch {
	case p.Advantage:
		return wonGame(m, side, cfg)
	case o.Advantage:
		o.Advantage = false
		return Outcome{Kind: Continued}
	case p.Points < 3:
		p.Points++
		return Outcome{Kind: Continued}
	case o.Points < 3:
		// p.Points == 3 (40), opponent below 40: game point.
		return wonGame(m, side, cfg)
	default:
		// Both at 40: deuce. This point gives side the advantage.
		p.Advantage = true
		return Outcome{Kind: Continued}
	}
}

// wonGame applies winning the current game to side: clears points and
// advantage for both sides, increments the game count, and runs the set-win
// check.
func wonGame(m *Match, side Side, cfg RulesConfig) Outcome {
	resetGamePoints(m)
	p := m.score(side)
	p.Games++
	return afterGameWon(m, side, cfg)
}

func resetGamePoints(m *Match) {
	for _, s := range m.Scores {
		s.Points = 0
		s.Advantage = false
	}
}

// afterGameWon checks whether the game just won also decides the set, or
// opens a tiebreak, per the 6-games-by-2 / 7-5 / 6-6 rule.
func afterGameWon(m *Match, side Side, cfg RulesConfig) Outcome {
	p := m.score(side)
	o := m.score(Opponent(side))

	p1Games, p2Games := p.Games, o.Games
	if side == PlayerTwo {
		p1Games, p2Games = o.Games, p.Games
	}

	switch {
	case p.Games >= 6 && p.Games >= o.Games+2:
		return wonSet(m, side, p1Games, p2Games, nil, nil, cfg)
	case p.Games == 7 && o.Games == 5:
		return wonSet(m, side, p1Games, p2Games, nil, nil, cfg)
	case p.Games == 6 && o.Games == 6:
		m.IsTiebreak = true
		resetGamePoints(m)
		return Outcome{Kind: Continued}
	default:
		return Outcome{Kind: Continued}
	}
}

func awardTiebreakPoint(m *Match, side, opp Side, cfg RulesConfig) Outcome {
	p := m.score(side)
	o := m.score(opp)
	p.TiebreakPoints++

	if p.TiebreakPoints >= 7 && p.TiebreakPoints >= o.TiebreakPoints+2 {
		p1TB, p2TB := m.score(PlayerOne).TiebreakPoints, m.score(PlayerTwo).TiebreakPoints
		p1Games, p2Games := 6, 6
		if side == PlayerOne {
			p1Games = 7
		} else {
			p2Games = 7
		}
		return wonSet(m, side, p1Games, p2Games, &p1TB, &p2TB, cfg)
	}
	return Outcome{Kind: Continued}
}

// wonSet records the completed set (in player-one/player-two order) and
// checks whether it also decides the match.
func wonSet(m *Match, side Side, p1Games, p2Games int, p1TB, p2TB *int, cfg RulesConfig) Outcome {
	m.SetHistory = append(m.SetHistory, SetRecord{
		PlayerOneGames: p1Games,
		PlayerTwoGames: p2Games,
		PlayerOneTB:    p1TB,
		PlayerTwoTB:    p2TB,
	})

	for _, s := range m.Scores {
		s.Games = 0
		s.Points = 0
		s.Advantage = false
		s.TiebreakPoints = 0
	}
	m.IsTiebreak = false

	m.score(side).Sets++
	return afterSetWon(m, side, cfg)
}

func afterSetWon(m *Match, side Side, cfg RulesConfig) Outcome {
	if m.score(side).Sets >= cfg.SetsToWin {
		m.Winner = side
		return Outcome{Kind: MatchWon}
	}
	return Outcome{Kind: SetWon}
}

// Reset clears a match back to its unplayed state. It refuses to reset a
// terminal match; the caller (the store/service layer) decides whether a
// persisted match may be reset at all.
func Reset(m *Match) error {
	if m.IsTerminal() {
		return fmt.Errorf("scoreengine: cannot reset a completed match")
	}
	for side := range m.Scores {
		m.Scores[side] = &PlayerSideScore{}
	}
	m.IsTiebreak = false
	m.Winner = ""
	m.SetHistory = nil
	return nil
}

// RenderFinalScore renders a completed (or in-progress) match's set history
// as the conventional comma-joined score line, e.g. "6-4, 7-6(7-3)". A
// tiebreak segment prints the set winner's tiebreak count first.
func RenderFinalScore(m *Match) string {
	if len(m.SetHistory) == 0 {
		p1 := m.score(PlayerOne)
		p2 := m.score(PlayerTwo)
		return fmt.Sprintf("%d-%d", p1.Sets, p2.Sets)
	}

	out := ""
	for i, rec := range m.SetHistory {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d-%d", rec.PlayerOneGames, rec.PlayerTwoGames)
		if rec.PlayerOneTB != nil && rec.PlayerTwoTB != nil {
			winTB, loseTB := *rec.PlayerOneTB, *rec.PlayerTwoTB
			if rec.PlayerTwoGames > rec.PlayerOneGames {
				winTB, loseTB = *rec.PlayerTwoTB, *rec.PlayerOneTB
			}
			out += fmt.Sprintf("(%d-%d)", winTB, loseTB)
		}
	}
	return out
}

// PointDisplay renders one side's current point value the way a scoreboard
// would: "AD" under advantage, blank while the opponent holds advantage,
// otherwise the ordinal label.
func PointDisplay(m *Match, side Side) string {
	p := m.score(side)
	o := m.score(Opponent(side))
	switch {
	case p.Advantage:
		return "AD"
	case o.Advantage:
		return ""
	default:
		return pointLabel(p.Points)
	}
}

// ValidateInvariants reports the first broken structural invariant found in
// m, if any. It exists for tests and for the service's defensive check after
// each accepted point; a non-nil return here is a programmer error, not a normal
// rejection, and callers should treat it as fatal.
func ValidateInvariants(m *Match) error {
	if len(m.Scores) != 2 {
		return fmt.Errorf("scoreengine: match has %d score sides, want 2", len(m.Scores))
	}
	p1, p2 := m.score(PlayerOne), m.score(PlayerTwo)
	if p1 == nil || p2 == nil {
		return fmt.Errorf("scoreengine: missing side score")
	}
	if p1.Advantage && p2.Advantage {
		return fmt.Errorf("scoreengine: both sides hold advantage")
	}
	if m.IsTiebreak && (p1.Advantage || p2.Advantage) {
		return fmt.Errorf("scoreengine: advantage flag set during a tiebreak")
	}
	if m.Winner != "" && !ValidSide(m.Winner) {
		return fmt.Errorf("scoreengine: winner set to invalid side %q", m.Winner)
	}
	if m.Winner != "" && m.score(m.Winner).Sets < 1 {
		return fmt.Errorf("scoreengine: winner recorded with zero sets")
	}
	return nil
}
