package matchsvc

import (
	"encoding/json"

	"tennis-score-go/internal/scoreengine"
	"tennis-score-go/internal/store"
)

// LiveScore is the scoreboard view of a match still in progress.
type LiveScore struct {
	Sets           [2]int    `json:"sets"`
	Games          [2]int    `json:"games"`
	Points         [2]string `json:"points"`
	TiebreakPoints [2]int    `json:"tiebreak_points,omitempty"`
	IsTiebreak     bool      `json:"is_tiebreak"`
}

// Score is a tagged union of the two shapes a match's score can take: a
// structured LiveScore while the match is in progress, or a single rendered
// string once it's finished. This replaces a duck-typed field (sometimes a
// dict, sometimes a string) with an explicit variant that marshals to the
// same two JSON shapes.
type Score struct {
	Live  *LiveScore
	Final *string
}

func (s Score) MarshalJSON() ([]byte, error) {
	if s.Final != nil {
		return json.Marshal(*s.Final)
	}
	return json.Marshal(s.Live)
}

// UnmarshalJSON accepts either shape MarshalJSON produces: a JSON string
// becomes Final, an object becomes Live. null leaves s unchanged.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var rendered string
	if err := json.Unmarshal(data, &rendered); err == nil {
		s.Live, s.Final = nil, &rendered
		return nil
	}
	var live LiveScore
	if err := json.Unmarshal(data, &live); err != nil {
		return err
	}
	s.Live, s.Final = &live, nil
	return nil
}

// MatchView is the read-only projection of a match handed to callers: the
// HTTP layer and tests consume this, never scoreengine.Match or
// store.Persisted directly.
type MatchView struct {
	MatchUUID      string `json:"match_uuid"`
	PlayerOneName  string `json:"player_one_name"`
	PlayerTwoName  string `json:"player_two_name"`
	Score          Score  `json:"score"`
	Winner         string `json:"winner,omitempty"`
	MatchCompleted bool   `json:"match_completed,omitempty"`
	Error          string `json:"error,omitempty"`
}

func fromActive(m *scoreengine.Match) MatchView {
	p1 := m.Scores[scoreengine.PlayerOne]
	p2 := m.Scores[scoreengine.PlayerTwo]

	live := &LiveScore{
		Sets:       [2]int{p1.Sets, p2.Sets},
		Games:      [2]int{p1.Games, p2.Games},
		Points:     [2]string{scoreengine.PointDisplay(m, scoreengine.PlayerOne), scoreengine.PointDisplay(m, scoreengine.PlayerTwo)},
		IsTiebreak: m.IsTiebreak,
	}
	if m.IsTiebreak {
		live.TiebreakPoints = [2]int{p1.TiebreakPoints, p2.TiebreakPoints}
	}

	return MatchView{
		MatchUUID:     m.UUID,
		PlayerOneName: m.PlayerOneName,
		PlayerTwoName: m.PlayerTwoName,
		Score:         Score{Live: live},
	}
}

func fromPersisted(p *store.Persisted) MatchView {
	rendered := p.ScoreStr
	winnerName := ""
	switch p.Winner {
	case scoreengine.PlayerOne:
		winnerName = p.PlayerOneName
	case scoreengine.PlayerTwo:
		winnerName = p.PlayerTwoName
	}
	return MatchView{
		MatchUUID:      p.UUID,
		PlayerOneName:  p.PlayerOneName,
		PlayerTwoName:  p.PlayerTwoName,
		Score:          Score{Final: &rendered},
		Winner:         winnerName,
		MatchCompleted: true,
	}
}
