package userstore

import (
	"database/sql"
	"fmt"
)

// MemoryState is one (user, ukey) spaced-repetition row. Zero-valued fields
// mean "never reviewed"; rows are created lazily on first touch and never
// deleted, so progress survives content-graph swaps.
type MemoryState struct {
	UserID         string
	Ukey           string
	Stability      float64
	Difficulty     float64
	Energy         float64
	LastReviewedAt int64 // Unix millis, 0 = never
	DueAt          int64 // Unix millis
	ReviewCount    int64
}

// GetMemoryState loads the row for (userID, ukey), or a zero-valued default
// if none exists yet. The bool reports whether a stored row was found.
func GetMemoryState(q Querier, userID, ukey string) (MemoryState, bool, error) {
	row := q.QueryRow(`
		SELECT stability, difficulty, energy, last_reviewed_at, due_at, review_count
		FROM memory_states WHERE user_id = ? AND ukey = ?
	`, userID, ukey)

	ms := MemoryState{UserID: userID, Ukey: ukey}
	err := row.Scan(&ms.Stability, &ms.Difficulty, &ms.Energy,
		&ms.LastReviewedAt, &ms.DueAt, &ms.ReviewCount)
	if err == sql.ErrNoRows {
		return ms, false, nil
	}
	if err != nil {
		return ms, false, fmt.Errorf("loading memory state (%s, %s): %w", userID, ukey, err)
	}
	return ms, true, nil
}

// PutMemoryState upserts the row for (ms.UserID, ms.Ukey).
func PutMemoryState(q Querier, ms MemoryState) error {
	_, err := q.Exec(`
		INSERT INTO memory_states
			(user_id, ukey, stability, difficulty, energy, last_reviewed_at, due_at, review_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, ukey) DO UPDATE SET
			stability = excluded.stability,
			difficulty = excluded.difficulty,
			energy = excluded.energy,
			last_reviewed_at = excluded.last_reviewed_at,
			due_at = excluded.due_at,
			review_count = excluded.review_count
	`, ms.UserID, ms.Ukey, ms.Stability, ms.Difficulty, ms.Energy,
		ms.LastReviewedAt, ms.DueAt, ms.ReviewCount)
	if err != nil {
		return mapBusy(fmt.Sprintf("storing memory state (%s, %s)", ms.UserID, ms.Ukey), err)
	}
	return nil
}

// StatesForUser returns every memory row of a user, keyed by ukey.
func (s *Store) StatesForUser(userID string) (map[string]MemoryState, error) {
	rows, err := s.conn.Query(`
		SELECT ukey, stability, difficulty, energy, last_reviewed_at, due_at, review_count
		FROM memory_states WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing memory states for %s: %w", userID, err)
	}
	defer rows.Close()

	states := make(map[string]MemoryState)
	for rows.Next() {
		ms := MemoryState{UserID: userID}
		if err := rows.Scan(&ms.Ukey, &ms.Stability, &ms.Difficulty, &ms.Energy,
			&ms.LastReviewedAt, &ms.DueAt, &ms.ReviewCount); err != nil {
			return nil, err
		}
		states[ms.Ukey] = ms
	}
	return states, rows.Err()
}

// DistinctUkeys returns every ukey a user has memory state for, in no
// particular order. Used by the orphan diagnostic.
func (s *Store) DistinctUkeys(userID string) ([]string, error) {
	rows, err := s.conn.Query(`
		SELECT ukey FROM memory_states WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing ukeys for %s: %w", userID, err)
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

// UserStats are per-user aggregates for the stats command.
type UserStats struct {
	TrackedNodes  int64
	DueNow        int64
	ReviewedSince int64
	MeanEnergy    float64
}

// Stats computes aggregates over a user's memory and review log. now and
// since are Unix millis.
func (s *Store) Stats(userID string, now, since int64) (UserStats, error) {
	var st UserStats
	err := s.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN review_count > 0 AND due_at <= ? THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(energy), 0)
		FROM memory_states WHERE user_id = ?
	`, now, userID).Scan(&st.TrackedNodes, &st.DueNow, &st.MeanEnergy)
	if err != nil {
		return st, fmt.Errorf("computing stats for %s: %w", userID, err)
	}

	err = s.conn.QueryRow(`
		SELECT COUNT(*) FROM review_log WHERE user_id = ? AND reviewed_at >= ?
	`, userID, since).Scan(&st.ReviewedSince)
	if err != nil {
		return st, fmt.Errorf("counting reviews for %s: %w", userID, err)
	}
	return st, nil
}
