package userstore

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Session operations serialize on a store-level mutex: generating a session
// replaces the user's list wholesale, and a concurrent resume must never
// observe a half-written list. Clearing is idempotent.

// SessionInfo identifies the goal and scheduling profile that produced the
// user's current session. The review processor uses it to attribute bandit
// outcomes.
type SessionInfo struct {
	SessionID string
	GoalID    string
	Profile   string
	CreatedAt int64
}

// SaveSession replaces the user's stored session with the given ordered list
// and returns the new session id. profile records which scheduling profile
// produced the ordering.
func (s *Store) SaveSession(userID, goalID, profile string, ukeys []string, now int64) (string, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	tx, err := s.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM session_items WHERE user_id = ?`, userID); err != nil {
		return "", mapBusy("clearing session items", err)
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return "", mapBusy("clearing session", err)
	}

	id := uuid.NewString()
	if _, err := tx.Exec(`
		INSERT INTO sessions (user_id, session_id, goal_id, profile, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, id, goalID, profile, now); err != nil {
		return "", mapBusy("storing session", err)
	}
	for i, u := range ukeys {
		if _, err := tx.Exec(`
			INSERT INTO session_items (user_id, position, ukey) VALUES (?, ?, ?)
		`, userID, i, u); err != nil {
			return "", mapBusy("storing session item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", mapBusy("committing session", err)
	}
	return id, nil
}

// SessionInfo returns the metadata of the user's stored session, or false if
// none exists.
func (s *Store) SessionInfo(userID string) (SessionInfo, bool, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	var info SessionInfo
	err := s.conn.QueryRow(`
		SELECT session_id, goal_id, profile, created_at FROM sessions WHERE user_id = ?
	`, userID).Scan(&info.SessionID, &info.GoalID, &info.Profile, &info.CreatedAt)
	if err == sql.ErrNoRows {
		return SessionInfo{}, false, nil
	}
	if err != nil {
		return SessionInfo{}, false, fmt.Errorf("loading session info for %s: %w", userID, err)
	}
	return info, true, nil
}

// SessionContains reports whether the user's stored session includes ukey.
func (s *Store) SessionContains(userID, ukey string) (bool, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	var one int
	err := s.conn.QueryRow(`
		SELECT 1 FROM session_items WHERE user_id = ? AND ukey = ?
	`, userID, ukey).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking session membership for %s: %w", userID, err)
	}
	return true, nil
}

// ResumeSession returns the user's stored session list in order. No stored
// session yields an empty list, not an error.
func (s *Store) ResumeSession(userID string) ([]string, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	rows, err := s.conn.Query(`
		SELECT ukey FROM session_items WHERE user_id = ? ORDER BY position ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("resuming session for %s: %w", userID, err)
	}
	defer rows.Close()

	var ukeys []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		ukeys = append(ukeys, u)
	}
	return ukeys, rows.Err()
}

// ClearSession discards the user's stored session. Idempotent; clearing a
// user with no session is a no-op.
func (s *Store) ClearSession(userID string) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM session_items WHERE user_id = ?`, userID); err != nil {
		return mapBusy("clearing session items", err)
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return mapBusy("clearing session", err)
	}
	return tx.Commit()
}
