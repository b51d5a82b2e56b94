package store

import (
	"database/sql"
	"errors"
	"strings"

	"tennis-score-go/internal/scoreengine"
)

// Persisted is a completed match as it lives in durable storage: immutable,
// identified by both its uuid and its db id.
type Persisted struct {
	DBID          int64
	UUID          string
	PlayerOneName string
	PlayerTwoName string
	Winner        scoreengine.Side
	ScoreStr      string
}

// getOrCreatePlayer resolves a player id by name, inserting a new row if the
// name hasn't been seen before. Mirrors the retry-on-unique-constraint shape
// used elsewhere in this codebase for concurrent get-or-create.
func getOrCreatePlayer(tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM players WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := tx.Exec(`INSERT INTO players(name) VALUES (?)`, name)
	if err != nil {
		// Lost a race with a concurrent insert of the same name; re-read.
		if isUniqueConstraint(err) {
			if readErr := tx.QueryRow(`SELECT id FROM players WHERE name = ?`, name).Scan(&id); readErr == nil {
				return id, nil
			}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func isUniqueConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetPersisted looks up a completed match by uuid.
func (s *Store) GetPersisted(matchUUID string) (*Persisted, bool, error) {
	var p Persisted
	var winnerID sql.NullInt64
	var p1ID, p2ID int64

	row := s.db.QueryRow(`
		SELECT m.id, m.uuid, m.player1_id, m.player2_id, p1.name, p2.name, m.winner_id, m.score_str
		FROM matches m
		JOIN players p1 ON p1.id = m.player1_id
		JOIN players p2 ON p2.id = m.player2_id
		WHERE m.uuid = ?`, matchUUID)

	if err := row.Scan(&p.DBID, &p.UUID, &p1ID, &p2ID, &p.PlayerOneName, &p.PlayerTwoName, &winnerID, &p.ScoreStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, wrapStorageErr("get persisted match", err)
	}

	if winnerID.Valid {
		switch winnerID.Int64 {
		case p1ID:
			p.Winner = scoreengine.PlayerOne
		case p2ID:
			p.Winner = scoreengine.PlayerTwo
		}
	}
	return &p, true, nil
}

// SaveCompleted persists m, which must already have a decided winner. It is
// idempotent on m.UUID: a second call for a match that is already persisted
// returns the existing row instead of erroring or inserting a duplicate.
// On success it removes m from the active set; on a storage failure it
// leaves m active so a later retry (e.g. the next update_score call) can
// try again.
func (s *Store) SaveCompleted(m *scoreengine.Match) (*Persisted, error) {
	if !m.IsTerminal() {
		return nil, errors.New("store: SaveCompleted called on a non-terminal match")
	}

	if existing, ok, err := s.GetPersisted(m.UUID); err != nil {
		return nil, err
	} else if ok {
		s.removeActive(m.UUID)
		return existing, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, wrapStorageErr("begin save", err)
	}
	defer func() { _ = tx.Rollback() }()

	p1ID, err := getOrCreatePlayer(tx, m.PlayerOneName)
	if err != nil {
		return nil, wrapStorageErr("resolve player one", err)
	}
	p2ID, err := getOrCreatePlayer(tx, m.PlayerTwoName)
	if err != nil {
		return nil, wrapStorageErr("resolve player two", err)
	}

	var winnerID int64
	switch m.Winner {
	case scoreengine.PlayerOne:
		winnerID = p1ID
	case scoreengine.PlayerTwo:
		winnerID = p2ID
	}

	scoreStr := scoreengine.RenderFinalScore(m)

	res, err := tx.Exec(
		`INSERT INTO matches(uuid, player1_id, player2_id, winner_id, score_str) VALUES (?, ?, ?, ?, ?)`,
		m.UUID, p1ID, p2ID, winnerID, scoreStr,
	)
	if err != nil {
		if isUniqueConstraint(err) {
			// Another goroutine won the race to persist this uuid first.
			_ = tx.Rollback()
			existing, ok, getErr := s.GetPersisted(m.UUID)
			if getErr == nil && ok {
				s.removeActive(m.UUID)
				return existing, nil
			}
		}
		return nil, wrapStorageErr("insert match", err)
	}
	dbID, err := res.LastInsertId()
	if err != nil {
		return nil, wrapStorageErr("read inserted match id", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrapStorageErr("commit save", err)
	}
	m.DBID = &dbID

	s.removeActive(m.UUID)

	return &Persisted{
		DBID:          dbID,
		UUID:          m.UUID,
		PlayerOneName: m.PlayerOneName,
		PlayerTwoName: m.PlayerTwoName,
		Winner:        m.Winner,
		ScoreStr:      scoreStr,
	}, nil
}
