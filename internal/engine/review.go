package engine

import (
	"errors"
	"fmt"
	"time"

	"hifz/engine/internal/errs"
	"hifz/engine/internal/fsrs"
	"hifz/engine/internal/ukey"
	"hifz/engine/internal/userstore"
)

// RecordReview is the single write entry point into the core. It runs the
// review pipeline — validate, memory update, propagation — inside one
// user-store transaction, so either all of it commits or none of it does.
// The bandit attribution afterwards is explicitly best-effort: its failure is
// logged and never rolls back a committed review.
func (e *Engine) RecordReview(userID, rawUkey string, rating fsrs.Rating) error {
	// Validate.
	if userID == "" {
		return fmt.Errorf("empty user id: %w", errs.ErrInvalid)
	}
	if !rating.IsValid() {
		return fmt.Errorf("rating %d out of range: %w", int(rating), errs.ErrInvalid)
	}
	key, err := ukey.Parse(rawUkey)
	if err != nil {
		return fmt.Errorf("%v: %w", err, errs.ErrInvalid)
	}
	nodeID, err := e.Registry.Resolve(key.String())
	if err != nil {
		// Retired content: non-fatal upstream, but this review aborts.
		return err
	}

	now := e.now()
	tx, err := e.Users.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Memory update.
	ms, _, err := userstore.GetMemoryState(tx, userID, key.String())
	if err != nil {
		return err
	}

	var rev fsrs.Review
	if ms.ReviewCount == 0 {
		rev = e.Model.FirstReview(rating, now)
	} else {
		elapsed := now.Sub(time.UnixMilli(ms.LastReviewedAt))
		rev = e.Model.NextReview(ms.Stability, ms.Difficulty, elapsed, rating, now)
	}

	energyDelta := rating.EnergyDelta()
	ms.Stability = rev.Stability
	ms.Difficulty = rev.Difficulty
	ms.Energy = clampEnergy(ms.Energy + energyDelta)
	ms.LastReviewedAt = now.UnixMilli()
	ms.DueAt = rev.Due.UnixMilli()
	ms.ReviewCount++

	if err := userstore.PutMemoryState(tx, ms); err != nil {
		return err
	}
	if err := userstore.AppendReviewLog(tx, userID, key.String(), rating.String(), now.UnixMilli()); err != nil {
		return err
	}

	// Propagation. Negative outcomes touch only the reviewed node; they
	// never spread to neighbors.
	if energyDelta > e.epsilon {
		if _, err := e.propagate(tx, nodeID, energyDelta, userID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing review: %w", err)
	}

	// Bandit attribution, best-effort after commit.
	e.updateBandit(userID, key.String(), rating)
	return nil
}

// updateBandit credits the scheduling profile that produced the reviewed node:
// the outcome counts only when the node is part of the user's current session.
// Reviews outside the session carry no attribution. Failures here are logged,
// never surfaced: the review already committed.
func (e *Engine) updateBandit(userID, reviewedUkey string, rating fsrs.Rating) {
	info, found, err := e.Users.SessionInfo(userID)
	if err != nil {
		e.logger.Printf("bandit update skipped for %s: %v", userID, err)
		return
	}
	if !found {
		return
	}
	member, err := e.Users.SessionContains(userID, reviewedUkey)
	if err != nil {
		e.logger.Printf("bandit update skipped for %s: %v", userID, err)
		return
	}
	if !member {
		return
	}

	group, err := e.Content.GoalGroup(info.GoalID)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			e.logger.Printf("bandit update skipped for %s: %v", userID, err)
		}
		return
	}

	err = userstore.RecordBanditOutcome(e.Users.Conn(), userID, group, info.Profile,
		rating.Success(), e.now().UnixMilli())
	if err != nil {
		e.logger.Printf("bandit update failed for %s (%s/%s): %v", userID, group, info.Profile, err)
	}
}

// ListOrphans reports the ukeys a user has progress on that no longer
// resolve in the current content version. With the stability check gating
// every swap this should stay empty; the diagnostic exists for maintenance
// tooling.
func (e *Engine) ListOrphans(userID string) ([]string, error) {
	ukeys, err := e.Users.DistinctUkeys(userID)
	if err != nil {
		return nil, err
	}
	var orphans []string
	for _, u := range ukeys {
		if _, err := e.Registry.Resolve(u); err != nil {
			orphans = append(orphans, u)
		}
	}
	return orphans, nil
}
