// Package scheduler selects and orders the next batch of study candidates
// for a (user, goal). The ordering chain is fixed — overdue reviews first,
// then unseen or low-energy material by importance, then everything else by
// canonical sequence — while a bandit-selected profile tunes how much of the
// session each of the first two rules may claim.
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"hifz/engine/internal/bandit"
	"hifz/engine/internal/content"
	"hifz/engine/internal/errs"
	"hifz/engine/internal/ukey"
	"hifz/engine/internal/userstore"
)

// DefaultEnergyFloor is the energy below which a touched node still counts
// as new material.
const DefaultEnergyFloor = 0.2

// Profile weights the mix of due reviews vs new material in one session.
// DueShare is the fraction of the limit reserved for overdue nodes; the
// rest goes to new material first. Shares steer quotas, never ordering.
type Profile struct {
	Name     string  `yaml:"name"`
	DueShare float64 `yaml:"due_share"`
}

// DefaultProfiles are the candidate arms when no config overrides them.
var DefaultProfiles = []Profile{
	{Name: "balanced", DueShare: 0.6},
	{Name: "new-heavy", DueShare: 0.3},
	{Name: "review-heavy", DueShare: 0.8},
}

// Scheduler produces sessions. Read-only over both stores except for the
// session list it persists for resume. Candidates already carry their ukeys
// from the goal query, so no registry lookups happen on this path.
type Scheduler struct {
	Content *content.Store
	Users   *userstore.Store

	selector    *bandit.Selector
	profiles    []Profile
	energyFloor float64
	now         func() time.Time
}

// Option tweaks a Scheduler at construction time.
type Option func(*Scheduler)

// WithProfiles overrides the candidate scheduling profiles.
func WithProfiles(ps []Profile) Option {
	return func(s *Scheduler) {
		if len(ps) > 0 {
			s.profiles = ps
		}
	}
}

// WithEnergyFloor overrides the low-energy threshold for rule 2.
func WithEnergyFloor(floor float64) Option {
	return func(s *Scheduler) { s.energyFloor = floor }
}

// WithClock injects the time source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New assembles a Scheduler. The bandit selector carries the RNG; seed it
// for reproducible sessions.
func New(cs *content.Store, us *userstore.Store, sel *bandit.Selector, opts ...Option) *Scheduler {
	s := &Scheduler{
		Content:     cs,
		Users:       us,
		selector:    sel,
		profiles:    DefaultProfiles,
		energyFloor: DefaultEnergyFloor,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateSession builds, persists, and returns the ordered candidate list
// for a goal. axisFilter narrows Knowledge nodes to one learning axis; plain
// content nodes are included only when no filter is given. Fewer candidates
// than limit is not an error. The stored session replaces any previous one.
func (s *Scheduler) GenerateSession(userID, goalID string, axisFilter ukey.Axis, limit int) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("empty user id: %w", errs.ErrInvalid)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit %d must be positive: %w", limit, errs.ErrInvalid)
	}

	nodes, err := s.Content.NodesForGoal(goalID)
	if err != nil {
		return nil, err
	}
	nodes = filterAxis(nodes, axisFilter)

	profile, err := s.selectProfile(userID, goalID)
	if err != nil {
		return nil, err
	}

	states, err := s.Users.StatesForUser(userID)
	if err != nil {
		return nil, err
	}

	ordered := s.order(nodes, states, profile, limit)

	if _, err := s.Users.SaveSession(userID, goalID, profile.Name, ordered, s.now().UnixMilli()); err != nil {
		return nil, err
	}
	return ordered, nil
}

// ResumeSession returns the user's stored session in order.
func (s *Scheduler) ResumeSession(userID string) ([]string, error) {
	return s.Users.ResumeSession(userID)
}

// ClearSession discards the user's stored session. Idempotent.
func (s *Scheduler) ClearSession(userID string) error {
	return s.Users.ClearSession(userID)
}

// selectProfile runs Thompson sampling over the configured profiles using
// the persisted per-(user, goal group) counts.
func (s *Scheduler) selectProfile(userID, goalID string) (Profile, error) {
	group, err := s.Content.GoalGroup(goalID)
	if err != nil {
		return Profile{}, err
	}
	persisted, err := userstore.BanditStates(s.Users.Conn(), userID, group)
	if err != nil {
		return Profile{}, err
	}

	arms := make([]bandit.Arm, len(s.profiles))
	for i, p := range s.profiles {
		arm := bandit.Arm{Name: p.Name, Alpha: 1, Beta: 1}
		if b, ok := persisted[p.Name]; ok {
			arm.Alpha, arm.Beta = b.Successes, b.Failures
		}
		arms[i] = arm
	}

	name, err := s.selector.Select(arms)
	if err != nil {
		return Profile{}, err
	}
	for _, p := range s.profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return s.profiles[0], nil
}

// candidate pairs a node with its bucket-specific sort key.
type candidate struct {
	node content.Node
	key  float64
}

// order applies the three-rule chain and the profile's due quota.
func (s *Scheduler) order(nodes []content.Node, states map[string]userstore.MemoryState, profile Profile, limit int) []string {
	now := s.now().UnixMilli()

	var due, fresh, rest []candidate
	for _, n := range nodes {
		ms, touched := states[n.Ukey]
		switch {
		case touched && ms.ReviewCount > 0 && ms.DueAt <= now:
			// Rule 1: overdue, most overdue first.
			due = append(due, candidate{node: n, key: float64(now - ms.DueAt)})
		case !touched || ms.ReviewCount == 0 || ms.Energy < s.energyFloor:
			// Rule 2: unseen or low energy, most important first.
			fresh = append(fresh, candidate{node: n, key: n.Importance})
		default:
			rest = append(rest, candidate{node: n, key: 0})
		}
	}

	// Rule 3 everywhere: ties break on the canonical sequence key, so a
	// fixed graph and seeded bandit make the session reproducible.
	bySeq := func(c []candidate) func(i, j int) bool {
		return func(i, j int) bool {
			if c[i].key != c[j].key {
				return c[i].key > c[j].key
			}
			return c[i].node.Seq < c[j].node.Seq
		}
	}
	sort.Slice(due, bySeq(due))
	sort.Slice(fresh, bySeq(fresh))
	sort.Slice(rest, func(i, j int) bool { return rest[i].node.Seq < rest[j].node.Seq })

	// The profile reserves a due quota; new material fills the rest, then
	// leftovers of each bucket in rule order.
	quota := int(float64(limit)*profile.DueShare + 0.5)
	if quota > len(due) {
		quota = len(due)
	}

	ordered := make([]string, 0, limit)
	take := func(c []candidate, max int) []candidate {
		for len(c) > 0 && len(ordered) < limit && max != 0 {
			ordered = append(ordered, c[0].node.Ukey)
			c = c[1:]
			max--
		}
		return c
	}

	due = take(due, quota)
	fresh = take(fresh, -1)
	due = take(due, -1)
	take(rest, -1)
	return ordered
}

// filterAxis keeps Knowledge nodes matching the axis; with no filter, every
// node passes, including plain content nodes that carry no axis.
func filterAxis(nodes []content.Node, axis ukey.Axis) []content.Node {
	if axis == ukey.AxisNone {
		return nodes
	}
	want := axis.String()
	filtered := nodes[:0]
	for _, n := range nodes {
		if n.Axis == want {
			filtered = append(filtered, n)
		}
	}
	return filtered
}
