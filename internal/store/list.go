package store

import (
	"database/sql"
	"sort"
	"strings"

	"tennis-score-go/internal/scoreengine"
)

// ListItem is one row of a unified active+persisted match listing.
type ListItem struct {
	UUID          string
	PlayerOneName string
	PlayerTwoName string
	Completed     bool

	Active    *scoreengine.Match // non-nil when Completed is false
	Persisted *Persisted         // non-nil when Completed is true
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// List returns a page of matches, active matches first (ordered by uuid
// among themselves), followed by persisted matches ordered by
// descending db id. filter, when non-empty, is matched case-insensitively
// against either player's name.
func (s *Store) List(page, perPage int, filter string) (items []ListItem, totalPages int, err error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	needle := strings.ToLower(strings.TrimSpace(filter))

	active := s.snapshotActive()
	activeItems := make([]ListItem, 0, len(active))
	for _, m := range active {
		if needle != "" && !matchesFilter(m.PlayerOneName, m.PlayerTwoName, needle) {
			continue
		}
		activeItems = append(activeItems, ListItem{
			UUID:          m.UUID,
			PlayerOneName: m.PlayerOneName,
			PlayerTwoName: m.PlayerTwoName,
			Active:        m,
		})
	}
	// Active matches carry no creation-order field; sort by uuid only to make
	// output deterministic across repeated calls, not to reflect recency.
	sort.SliceStable(activeItems, func(i, j int) bool {
		return activeItems[i].UUID < activeItems[j].UUID
	})

	persisted, err := s.listPersisted(needle)
	if err != nil {
		return nil, 0, err
	}

	all := append(activeItems, persisted...)
	total := len(all)
	if total == 0 {
		return []ListItem{}, 0, nil
	}
	totalPages = (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start >= total {
		return []ListItem{}, totalPages, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return all[start:end], totalPages, nil
}

func matchesFilter(p1, p2, needle string) bool {
	return strings.Contains(strings.ToLower(p1), needle) || strings.Contains(strings.ToLower(p2), needle)
}

func (s *Store) listPersisted(needle string) ([]ListItem, error) {
	query := `
		SELECT m.id, m.uuid, m.player1_id, m.player2_id, p1.name, p2.name, m.winner_id, m.score_str
		FROM matches m
		JOIN players p1 ON p1.id = m.player1_id
		JOIN players p2 ON p2.id = m.player2_id`
	args := []any{}
	if needle != "" {
		query += ` WHERE LOWER(p1.name) LIKE ? OR LOWER(p2.name) LIKE ?`
		like := "%" + needle + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY m.id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapStorageErr("list persisted matches", err)
	}
	defer rows.Close()

	var out []ListItem
	for rows.Next() {
		var p Persisted
		var winnerID sql.NullInt64
		var p1ID, p2ID int64
		if err := rows.Scan(&p.DBID, &p.UUID, &p1ID, &p2ID, &p.PlayerOneName, &p.PlayerTwoName, &winnerID, &p.ScoreStr); err != nil {
			return nil, wrapStorageErr("scan persisted match", err)
		}
		if winnerID.Valid {
			switch winnerID.Int64 {
			case p1ID:
				p.Winner = scoreengine.PlayerOne
			case p2ID:
				p.Winner = scoreengine.PlayerTwo
			}
		}
		out = append(out, ListItem{
			UUID:          p.UUID,
			PlayerOneName: p.PlayerOneName,
			PlayerTwoName: p.PlayerTwoName,
			Completed:     true,
			Persisted:     &p,
		})
	}
	return out, rows.Err()
}
