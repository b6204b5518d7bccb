package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"hifz/engine/internal/bandit"
	"hifz/engine/internal/content"
	"hifz/engine/internal/errs"
	"hifz/engine/internal/userstore"
)

// propagate spreads a positive energy delta from the reviewed node to its
// direct neighbors. Single hop only: outgoing edges of sourceID are read
// once, no transitive chase, which bounds the transaction cost.
//
// For each edge a multiplier is sampled from the edge's distribution; deltas
// below epsilon are skipped to avoid pointless writes. Every surviving edge
// adds its delta to the target's energy (clamped to [0,1]) and one audit
// detail; edges sharing a target stack onto the same state. Returns
// nil when nothing survived; the caller commits everything or nothing.
func (e *Engine) propagate(tx userstore.Querier, sourceID int64, baseDelta float64, userID string) (*userstore.PropagationEvent, error) {
	edges, err := e.Content.OutgoingEdges(sourceID)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, nil
	}

	sourceUkey, err := e.Registry.Reverse(sourceID)
	if err != nil {
		return nil, fmt.Errorf("propagation source: %w", err)
	}

	// Parallel edges may share a target, so states accumulate per ukey:
	// each surviving edge adds its delta to the pending state, not to the
	// stored one, and every target is written exactly once.
	pending := make(map[string]userstore.MemoryState)
	var details []userstore.PropagationDetail
	for _, edge := range edges {
		m, err := e.sampleMultiplier(edge.Dist)
		if err != nil {
			return nil, err
		}
		delta := baseDelta * m
		if math.Abs(delta) < e.epsilon {
			continue
		}

		targetUkey, err := e.Registry.Reverse(edge.TargetID)
		if err != nil {
			// An edge endpoint missing from the current version is a store
			// bug, not a user condition.
			return nil, fmt.Errorf("edge %d→%d target: %v: %w",
				edge.SourceID, edge.TargetID, err, errs.ErrIntegrity)
		}

		ms, loaded := pending[targetUkey]
		if !loaded {
			ms, _, err = userstore.GetMemoryState(tx, userID, targetUkey)
			if err != nil {
				return nil, err
			}
		}
		ms.Energy = clampEnergy(ms.Energy + delta)
		pending[targetUkey] = ms
		details = append(details, userstore.PropagationDetail{
			TargetUkey:  targetUkey,
			EnergyDelta: delta,
			Reason:      edge.EdgeType,
		})
	}

	if len(details) == 0 {
		return nil, nil
	}

	for _, ms := range pending {
		if err := userstore.PutMemoryState(tx, ms); err != nil {
			return nil, err
		}
	}

	ev := userstore.PropagationEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		SourceUkey: sourceUkey,
		CreatedAt:  e.now().UnixMilli(),
		Details:    details,
	}
	if err := userstore.AppendPropagationEvent(tx, ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// sampleMultiplier draws the propagation multiplier for one edge.
func (e *Engine) sampleMultiplier(d content.Distribution) (float64, error) {
	switch d.Kind {
	case content.DistConst:
		return d.P1, nil
	case content.DistNormal:
		e.rngMu.Lock()
		x := e.rng.NormFloat64()*d.P2 + d.P1
		e.rngMu.Unlock()
		return math.Max(x, 0), nil
	case content.DistBeta:
		if d.P1 <= 0 || d.P2 <= 0 {
			return 0, fmt.Errorf("beta distribution wants positive params, got (%g, %g): %w",
				d.P1, d.P2, errs.ErrInvalid)
		}
		e.rngMu.Lock()
		x := bandit.SampleBeta(e.rng, d.P1, d.P2)
		e.rngMu.Unlock()
		return x, nil
	default:
		return 0, fmt.Errorf("unknown distribution kind %q: %w", d.Kind, errs.ErrInvalid)
	}
}
