// Package scoreengine implements a tennis match's score state and the rules
// that advance it one point at a time. It has no I/O and no locking of its
// own; callers are responsible for serializing access to a given Match.
package scoreengine

// Side identifies one of the two players in a match. It is the only
// representation of "who" the engine and the store ever use internally —
// player names are a view concern, not a state concern.
type Side string

const (
	PlayerOne Side = "player1"
	PlayerTwo Side = "player2"
)

// Opponent returns the other side. Panics on an invalid side; callers must
// validate the side before reaching internal engine code.
func Opponent(s Side) Side {
	switch s {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	default:
		panic("scoreengine: invalid side " + string(s))
	}
}

// ValidSide reports whether s is one of the two recognized sides.
func ValidSide(s Side) bool {
	return s == PlayerOne || s == PlayerTwo
}

// PlayerSideScore is one side's running score within the current game, set,
// and (if applicable) tiebreak.
type PlayerSideScore struct {
	Sets           int
	Games          int
	Points         int // ordinal index: 0, 1, 2, 3 -> "0", "15", "30", "40"
	Advantage      bool
	TiebreakPoints int
}

// SetRecord is a completed set, kept in player-one/player-two order
// regardless of who won it. Tiebreak fields are nil for sets that were not
// decided by a tiebreak.
type SetRecord struct {
	PlayerOneGames int
	PlayerTwoGames int
	PlayerOneTB    *int
	PlayerTwoTB    *int
}

// Match is the mutable score state of a single match in progress. It carries
// no rules and performs no I/O; scoreengine functions mutate it in place.
type Match struct {
	UUID          string
	DBID          *int64 // set once the match has been persisted
	PlayerOneName string
	PlayerTwoName string
	PlayerOneID   *int64
	PlayerTwoID   *int64

	Scores map[Side]*PlayerSideScore

	IsTiebreak bool
	Winner     Side // empty until the match is won
	SetHistory []SetRecord
}

// NewMatch returns a fresh, unplayed match between the two named players.
func NewMatch(uuid, playerOneName, playerTwoName string) *Match {
	return &Match{
		UUID:          uuid,
		PlayerOneName: playerOneName,
		PlayerTwoName: playerTwoName,
		Scores: map[Side]*PlayerSideScore{
			PlayerOne: {},
			PlayerTwo: {},
		},
	}
}

func (m *Match) score(s Side) *PlayerSideScore {
	return m.Scores[s]
}

// IsTerminal reports whether the match has a decided winner.
func (m *Match) IsTerminal() bool {
	return m.Winner != ""
}

// Clone returns a deep copy of m, safe to read after the caller releases
// whatever lock protected the original. A shallow struct copy would still
// share the Scores map and SetHistory backing array with the live match.
func (m *Match) Clone() *Match {
	c := *m
	c.Scores = make(map[Side]*PlayerSideScore, len(m.Scores))
	for side, score := range m.Scores {
		s := *score
		c.Scores[side] = &s
	}
	c.SetHistory = append([]SetRecord(nil), m.SetHistory...)
	return &c
}

// pointLabel renders a points ordinal (0..3) as the conventional tennis
// point name. Callers never see 4; a side reaching 3 (i.e. "40") with the
// game still live is handled by the rules engine before a fifth point.
func pointLabel(points int) string {
	switch points {
	case 0:
		return "0"
	case 1:
		return "15"
	case 2:
		return "30"
	case 3:
		return "40"
	default:
		return "40"
	}
}
