package userstore

import "fmt"

// BanditState is the Beta posterior of one scheduling profile for a
// (user, goal group). Successes is α, Failures is β; the prior is
// Beta(1, 1), uniform.
type BanditState struct {
	Profile     string
	Successes   float64
	Failures    float64
	LastUpdated int64 // Unix millis
}

// BanditStates returns the persisted state of every profile seen for
// (userID, goalGroup), keyed by profile name. Profiles with no row yet keep
// the uniform prior; callers fill those in.
func BanditStates(q Querier, userID, goalGroup string) (map[string]BanditState, error) {
	rows, err := q.Query(`
		SELECT profile, successes, failures, last_updated
		FROM bandit_states WHERE user_id = ? AND goal_group = ?
	`, userID, goalGroup)
	if err != nil {
		return nil, fmt.Errorf("listing bandit states (%s, %s): %w", userID, goalGroup, err)
	}
	defer rows.Close()

	states := make(map[string]BanditState)
	for rows.Next() {
		var b BanditState
		if err := rows.Scan(&b.Profile, &b.Successes, &b.Failures, &b.LastUpdated); err != nil {
			return nil, err
		}
		states[b.Profile] = b
	}
	return states, rows.Err()
}

// RecordBanditOutcome increments α on success or β on failure for one
// profile, creating the row at the Beta(1, 1) prior if absent. Persisted
// immediately — no batching — so state survives restarts.
func RecordBanditOutcome(q Querier, userID, goalGroup, profile string, success bool, now int64) error {
	dAlpha, dBeta := 0.0, 1.0
	if success {
		dAlpha, dBeta = 1.0, 0.0
	}
	_, err := q.Exec(`
		INSERT INTO bandit_states (user_id, goal_group, profile, successes, failures, last_updated)
		VALUES (?, ?, ?, 1.0 + ?, 1.0 + ?, ?)
		ON CONFLICT (user_id, goal_group, profile) DO UPDATE SET
			successes = successes + ?,
			failures = failures + ?,
			last_updated = ?
	`, userID, goalGroup, profile, dAlpha, dBeta, now, dAlpha, dBeta, now)
	if err != nil {
		return mapBusy(fmt.Sprintf("recording bandit outcome (%s, %s, %s)", userID, goalGroup, profile), err)
	}
	return nil
}
