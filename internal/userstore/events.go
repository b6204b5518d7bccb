package userstore

import "fmt"

// PropagationEvent is the write-once audit record of one review's
// propagation. Diagnostic only; the core never reads it back.
type PropagationEvent struct {
	ID         string
	UserID     string
	SourceUkey string
	CreatedAt  int64 // Unix millis
	Details    []PropagationDetail
}

// PropagationDetail is one energy transfer within an event.
type PropagationDetail struct {
	TargetUkey  string
	EnergyDelta float64
	Reason      string
}

// AppendPropagationEvent writes an event and its details. Runs inside the
// review transaction so the audit trail commits with the state it describes.
func AppendPropagationEvent(q Querier, ev PropagationEvent) error {
	_, err := q.Exec(`
		INSERT INTO propagation_events (id, user_id, source_ukey, created_at)
		VALUES (?, ?, ?, ?)
	`, ev.ID, ev.UserID, ev.SourceUkey, ev.CreatedAt)
	if err != nil {
		return mapBusy("storing propagation event", err)
	}
	for _, d := range ev.Details {
		_, err := q.Exec(`
			INSERT INTO propagation_details (event_id, target_ukey, energy_delta, reason)
			VALUES (?, ?, ?, ?)
		`, ev.ID, d.TargetUkey, d.EnergyDelta, d.Reason)
		if err != nil {
			return mapBusy("storing propagation detail", err)
		}
	}
	return nil
}

// DetailsForSource returns the audit details of every event a user triggered
// from one source node, newest event first.
func (s *Store) DetailsForSource(userID, sourceUkey string) ([]PropagationDetail, error) {
	rows, err := s.conn.Query(`
		SELECT d.target_ukey, d.energy_delta, d.reason
		FROM propagation_details d
		JOIN propagation_events e ON e.id = d.event_id
		WHERE e.user_id = ? AND e.source_ukey = ?
		ORDER BY e.created_at DESC, d.rowid ASC
	`, userID, sourceUkey)
	if err != nil {
		return nil, fmt.Errorf("listing propagation details: %w", err)
	}
	defer rows.Close()

	var details []PropagationDetail
	for rows.Next() {
		var d PropagationDetail
		if err := rows.Scan(&d.TargetUkey, &d.EnergyDelta, &d.Reason); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// AppendReviewLog records one review outcome. Append-only.
func AppendReviewLog(q Querier, userID, ukey, rating string, reviewedAt int64) error {
	_, err := q.Exec(`
		INSERT INTO review_log (user_id, ukey, rating, reviewed_at)
		VALUES (?, ?, ?, ?)
	`, userID, ukey, rating, reviewedAt)
	if err != nil {
		return mapBusy("appending review log", err)
	}
	return nil
}
