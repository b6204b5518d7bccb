package engine

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hifz/engine/internal/content"
	"hifz/engine/internal/errs"
	"hifz/engine/internal/fsrs"
	"hifz/engine/internal/ukey"
	"hifz/engine/internal/userstore"
)

type fixture struct {
	engine  *Engine
	content *content.Store
	users   *userstore.Store
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	cs, err := content.Create(filepath.Join(dir, "content.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	us, err := userstore.Open(filepath.Join(dir, "user.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { us.Close() })

	// The registry and engine are built by build() once the test has
	// populated its content graph.
	return &fixture{
		content: cs,
		users:   us,
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) build(t *testing.T) {
	t.Helper()
	reg, err := content.NewRegistry(f.content)
	require.NoError(t, err)

	model, err := fsrs.New(fsrs.Config{})
	require.NoError(t, err)

	f.engine = New(f.content, reg, f.users, model,
		WithClock(func() time.Time { return f.now }),
		WithRand(rand.New(rand.NewSource(1))),
	)
}

func (f *fixture) addKnowledge(t *testing.T, key string, importance float64, seq int64) int64 {
	t.Helper()
	id, err := f.content.AddNode(content.Node{
		Ukey: key, NodeType: content.TypeKnowledge,
		Axis: ukey.Memorization.String(), Importance: importance, Seq: seq,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) state(t *testing.T, user, key string) userstore.MemoryState {
	t.Helper()
	ms, _, err := userstore.GetMemoryState(f.users.Conn(), user, key)
	require.NoError(t, err)
	return ms
}

// Scenario: a fresh user rates Again. Energy clamps at 0, one review is
// counted, and nothing propagates.
func TestFreshReviewAgain(t *testing.T) {
	f := newFixture(t)
	a := f.addKnowledge(t, "VERSE:1:1:memorization", 0.9, 1)
	b := f.addKnowledge(t, "VERSE:1:2:memorization", 0.8, 2)
	require.NoError(t, f.content.AddEdge(content.Edge{
		SourceID: a, TargetID: b, EdgeType: content.EdgeDependency,
		Dist: content.Distribution{Kind: content.DistConst, P1: 0.8},
	}))
	f.build(t)

	require.NoError(t, f.engine.RecordReview("u1", "VERSE:1:1:memorization", fsrs.Again))

	ms := f.state(t, "u1", "VERSE:1:1:memorization")
	require.Equal(t, 0.0, ms.Energy, "max(0, 0 - 0.15) = 0")
	require.EqualValues(t, 1, ms.ReviewCount)
	require.Greater(t, ms.Stability, 0.0)
	require.Equal(t, f.now.UnixMilli(), ms.LastReviewedAt)

	// Negative deltas never spread.
	details, err := f.users.DetailsForSource("u1", "VERSE:1:1:memorization")
	require.NoError(t, err)
	require.Empty(t, details)
	target := f.state(t, "u1", "VERSE:1:2:memorization")
	require.Zero(t, target.Energy)
	require.Zero(t, target.ReviewCount)
}

// Scenario: Good with one Const(0.8) outgoing edge moves exactly
// 0.1 * 0.8 = 0.08 to the target, with one audit detail.
func TestGoodPropagatesConstEdge(t *testing.T) {
	f := newFixture(t)
	a := f.addKnowledge(t, "VERSE:1:1:memorization", 0.9, 1)
	b := f.addKnowledge(t, "VERSE:1:2:memorization", 0.8, 2)
	require.NoError(t, f.content.AddEdge(content.Edge{
		SourceID: a, TargetID: b, EdgeType: content.EdgeDependency,
		Dist: content.Distribution{Kind: content.DistConst, P1: 0.8},
	}))
	f.build(t)

	require.NoError(t, f.engine.RecordReview("u1", "VERSE:1:1:memorization", fsrs.Good))

	source := f.state(t, "u1", "VERSE:1:1:memorization")
	require.InDelta(t, 0.10, source.Energy, 1e-9)

	target := f.state(t, "u1", "VERSE:1:2:memorization")
	require.InDelta(t, 0.08, target.Energy, 1e-9)
	require.Zero(t, target.ReviewCount, "propagation is not a review")

	details, err := f.users.DetailsForSource("u1", "VERSE:1:1:memorization")
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Equal(t, "VERSE:1:2:memorization", details[0].TargetUkey)
	require.InDelta(t, 0.08, details[0].EnergyDelta, 1e-9)
	require.Equal(t, content.EdgeDependency, details[0].Reason)
}

// Parallel edges to the same target stack: each edge's delta lands on the
// target's energy, and the audit details add up to the applied change.
func TestParallelEdgesAccumulate(t *testing.T) {
	f := newFixture(t)
	a := f.addKnowledge(t, "VERSE:1:1:memorization", 0.9, 1)
	b := f.addKnowledge(t, "VERSE:1:2:memorization", 0.8, 2)
	require.NoError(t, f.content.AddEdge(content.Edge{
		SourceID: a, TargetID: b, EdgeType: content.EdgeDependency,
		Dist: content.Distribution{Kind: content.DistConst, P1: 0.5},
	}))
	require.NoError(t, f.content.AddEdge(content.Edge{
		SourceID: a, TargetID: b, EdgeType: content.EdgeKnowledge,
		Dist: content.Distribution{Kind: content.DistConst, P1: 0.5},
	}))
	f.build(t)

	require.NoError(t, f.engine.RecordReview("u1", "VERSE:1:1:memorization", fsrs.Good))

	target := f.state(t, "u1", "VERSE:1:2:memorization")
	require.InDelta(t, 0.10, target.Energy, 1e-9, "0.1*0.5 from each edge")

	details, err := f.users.DetailsForSource("u1", "VERSE:1:1:memorization")
	require.NoError(t, err)
	require.Len(t, details, 2)
	sum := 0.0
	for _, d := range details {
		sum += d.EnergyDelta
	}
	require.InDelta(t, target.Energy, sum, 1e-9, "audit must match applied energy")
}

// Propagation only ever writes to targets of outgoing edges; incoming edges
// are ignored and a zero-out-degree node produces zero details.
func TestPropagationDirectionality(t *testing.T) {
	f := newFixture(t)
	a := f.addKnowledge(t, "VERSE:1:1:memorization", 0.9, 1)
	b := f.addKnowledge(t, "VERSE:1:2:memorization", 0.8, 2)
	// Edge points b → a, so reviewing a must touch nothing.
	require.NoError(t, f.content.AddEdge(content.Edge{
		SourceID: b, TargetID: a, EdgeType: content.EdgeDependency,
		Dist: content.Distribution{Kind: content.DistConst, P1: 1.0},
	}))
	f.build(t)

	require.NoError(t, f.engine.RecordReview("u1", "VERSE:1:1:memorization", fsrs.Easy))

	details, err := f.users.DetailsForSource("u1", "VERSE:1:1:memorization")
	require.NoError(t, err)
	require.Empty(t, details)
	require.Zero(t, f.state(t, "u1", "VERSE:1:2:memorization").Energy)
}

// Energy stays inside [0,1] for arbitrary review sequences, and
// review_count never decreases.
func TestEnergyInvariantOverSequences(t *testing.T) {
	f := newFixture(t)
	a := f.addKnowledge(t, "VERSE:1:1:memorization", 0.9, 1)
	b := f.addKnowledge(t, "VERSE:1:2:memorization", 0.8, 2)
	require.NoError(t, f.content.AddEdge(content.Edge{
		SourceID: a, TargetID: b, EdgeType: content.EdgeKnowledge,
		Dist: content.Distribution{Kind: content.DistBeta, P1: 2, P2: 2},
	}))
	require.NoError(t, f.content.AddEdge(content.Edge{
		SourceID: b, TargetID: a, EdgeType: content.EdgeKnowledge,
		Dist: content.Distribution{Kind: content.DistNormal, P1: 0.5, P2: 0.3},
	}))
	f.build(t)

	rng := rand.New(rand.NewSource(99))
	ratings := []fsrs.Rating{fsrs.Again, fsrs.Hard, fsrs.Good, fsrs.Easy}
	keys := []string{"VERSE:1:1:memorization", "VERSE:1:2:memorization"}

	var lastCount [2]int64
	for i := 0; i < 60; i++ {
		ki := rng.Intn(len(keys))
		require.NoError(t, f.engine.RecordReview("u1", keys[ki], ratings[rng.Intn(4)]))
		f.now = f.now.Add(13 * time.Hour)

		for j, k := range keys {
			ms := f.state(t, "u1", k)
			require.GreaterOrEqual(t, ms.Energy, 0.0)
			require.LessOrEqual(t, ms.Energy, 1.0)
			require.GreaterOrEqual(t, ms.ReviewCount, lastCount[j])
			lastCount[j] = ms.ReviewCount
		}
	}
}

func TestReviewValidation(t *testing.T) {
	f := newFixture(t)
	f.addKnowledge(t, "VERSE:1:1:memorization", 0.9, 1)
	f.build(t)

	err := f.engine.RecordReview("u1", "VERSE:1:1:memorization", fsrs.Rating(7))
	require.ErrorIs(t, err, errs.ErrInvalid)

	err = f.engine.RecordReview("u1", "not a ukey", fsrs.Good)
	require.ErrorIs(t, err, errs.ErrInvalid)

	err = f.engine.RecordReview("", "VERSE:1:1:memorization", fsrs.Good)
	require.ErrorIs(t, err, errs.ErrInvalid)

	// Retired content aborts the transaction with NotFound; no state written.
	err = f.engine.RecordReview("u1", "VERSE:9:9:memorization", fsrs.Good)
	require.ErrorIs(t, err, errs.ErrNotFound)
	states, err := f.users.StatesForUser("u1")
	require.NoError(t, err)
	require.Empty(t, states)
}

func TestSecondReviewUsesElapsedTime(t *testing.T) {
	f := newFixture(t)
	f.addKnowledge(t, "VERSE:1:1:memorization", 0.9, 1)
	f.build(t)

	require.NoError(t, f.engine.RecordReview("u1", "VERSE:1:1:memorization", fsrs.Good))
	first := f.state(t, "u1", "VERSE:1:1:memorization")

	f.now = f.now.Add(72 * time.Hour)
	require.NoError(t, f.engine.RecordReview("u1", "VERSE:1:1:memorization", fsrs.Good))
	second := f.state(t, "u1", "VERSE:1:1:memorization")

	require.EqualValues(t, 2, second.ReviewCount)
	require.Greater(t, second.Stability, first.Stability)
	require.Greater(t, second.DueAt, first.DueAt)
	require.InDelta(t, 0.20, second.Energy, 1e-9, "two Good reviews stack energy")
}

// Bandit attribution follows the stored session's goal group and profile,
// and a review without a session leaves bandit state untouched.
func TestBanditAttribution(t *testing.T) {
	f := newFixture(t)
	a := f.addKnowledge(t, "VERSE:1:1:memorization", 0.9, 1)
	f.addKnowledge(t, "VERSE:1:2:memorization", 0.8, 2)
	require.NoError(t, f.content.AddGoal("memorization:chapters-1-3", "memorization"))
	require.NoError(t, f.content.BindGoalNode("memorization:chapters-1-3", a, 1))
	f.build(t)

	// No session: no attribution.
	require.NoError(t, f.engine.RecordReview("u1", "VERSE:1:1:memorization", fsrs.Good))
	states, err := userstore.BanditStates(f.users.Conn(), "u1", "memorization")
	require.NoError(t, err)
	require.Empty(t, states)

	_, err = f.users.SaveSession("u1", "memorization:chapters-1-3", "review-heavy",
		[]string{"VERSE:1:1:memorization"}, f.now.UnixMilli())
	require.NoError(t, err)

	require.NoError(t, f.engine.RecordReview("u1", "VERSE:1:1:memorization", fsrs.Good))
	require.NoError(t, f.engine.RecordReview("u1", "VERSE:1:1:memorization", fsrs.Again))

	states, err = userstore.BanditStates(f.users.Conn(), "u1", "memorization")
	require.NoError(t, err)
	rh := states["review-heavy"]
	require.Equal(t, 2.0, rh.Successes, "prior 1 + one Good")
	require.Equal(t, 2.0, rh.Failures, "prior 1 + one Again")

	// A node outside the stored session earns the profile nothing.
	require.NoError(t, f.engine.RecordReview("u1", "VERSE:1:2:memorization", fsrs.Good))
	states, err = userstore.BanditStates(f.users.Conn(), "u1", "memorization")
	require.NoError(t, err)
	require.Equal(t, rh, states["review-heavy"], "off-session review must not attribute")
}

func TestListOrphans(t *testing.T) {
	f := newFixture(t)
	f.addKnowledge(t, "VERSE:1:1:memorization", 0.9, 1)
	f.build(t)

	require.NoError(t, f.engine.RecordReview("u1", "VERSE:1:1:memorization", fsrs.Good))

	orphans, err := f.engine.ListOrphans("u1")
	require.NoError(t, err)
	require.Empty(t, orphans, "everything resolves while content is live")

	// Simulate a (forbidden) content regression by planting a row for a
	// ukey the graph never had.
	require.NoError(t, userstore.PutMemoryState(f.users.Conn(), userstore.MemoryState{
		UserID: "u1", Ukey: "VERSE:7:7:memorization", Energy: 0.3, ReviewCount: 1,
	}))
	orphans, err = f.engine.ListOrphans("u1")
	require.NoError(t, err)
	require.Equal(t, []string{"VERSE:7:7:memorization"}, orphans)
}
