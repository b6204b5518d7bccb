// Package fsrs implements the spaced-repetition memory model: given the
// current stability/difficulty of a (user, node) pair, the elapsed time since
// the last review, and a rating, it produces the updated stability,
// difficulty, and next due date. Pure computation, no I/O.
package fsrs

import (
	"fmt"
	"math"
	"time"
)

// DefaultWeights are the FSRS v6 defaults (py-fsrs / fsrs4anki wiki).
var DefaultWeights = [21]float64{
	0.212, 1.2931, 2.3065, 8.2956, // w[0..3]  initial stability S₀(G)
	6.4133, 0.8334, 3.0194, 0.001, // w[4..7]  difficulty params
	1.8722, 0.1666, 0.796, 1.4835, // w[8..11] recall stability params
	0.0614, 0.2629, 1.6483, 0.6014, // w[12..15] forget stability params
	1.8729, 0.5425, 0.0912, 0.0658, // w[16..19] easy/short-term params
	0.1542, // w[20] decay exponent
}

var lowerBounds = [21]float64{
	0.001, 0.001, 0.001, 0.001,
	1.0, 0.001, 0.001, 0.001,
	0.0, 0.0, 0.001, 0.001,
	0.001, 0.001, 0.0, 0.0,
	1.0, 0.0, 0.0, 0.0,
	0.1,
}

var upperBounds = [21]float64{
	100.0, 100.0, 100.0, 100.0,
	10.0, 4.0, 4.0, 0.75,
	4.5, 0.8, 3.5, 5.0,
	0.25, 0.9, 4.0, 1.0,
	6.0, 2.0, 2.0, 0.8,
	0.8,
}

// Model evaluates the update function for one fixed weight vector.
// Construct once and share; Model is immutable and safe for concurrent use.
type Model struct {
	w                [21]float64
	decay            float64 // -w[20]
	factor           float64 // 0.9^(1/decay) - 1
	desiredRetention float64
	maximumInterval  int // days
}

// Config configures a Model. Zero values take defaults.
type Config struct {
	Weights          [21]float64 // zero → DefaultWeights
	DesiredRetention float64     // zero → 0.9
	MaximumInterval  int         // zero → 36500 days
}

// New creates a Model, validating weights against the FSRS parameter bounds.
func New(cfg Config) (*Model, error) {
	w := cfg.Weights
	if w == [21]float64{} {
		w = DefaultWeights
	}
	for i := range w {
		if w[i] < lowerBounds[i] || w[i] > upperBounds[i] {
			return nil, fmt.Errorf("fsrs: w[%d] = %f out of bounds [%f, %f]",
				i, w[i], lowerBounds[i], upperBounds[i])
		}
	}

	dr := cfg.DesiredRetention
	if dr == 0 {
		dr = 0.9
	}
	if dr <= 0 || dr > 1 {
		return nil, fmt.Errorf("fsrs: desired retention %f out of range (0, 1]", dr)
	}

	maxIvl := cfg.MaximumInterval
	if maxIvl == 0 {
		maxIvl = 36500
	}
	if maxIvl < 1 {
		return nil, fmt.Errorf("fsrs: maximum interval %d must be positive", maxIvl)
	}

	decay := -w[20]
	return &Model{
		w:                w,
		decay:            decay,
		factor:           math.Pow(0.9, 1.0/decay) - 1.0,
		desiredRetention: dr,
		maximumInterval:  maxIvl,
	}, nil
}

// Review is the outcome of applying one rating to a memory state.
type Review struct {
	Stability  float64
	Difficulty float64
	Due        time.Time
}

// FirstReview initializes stability and difficulty from the first rating.
func (m *Model) FirstReview(r Rating, now time.Time) Review {
	s := clampS(m.w[r-1])
	d := clampD(m.initDifficulty(r))
	return Review{
		Stability:  s,
		Difficulty: d,
		Due:        now.AddDate(0, 0, m.nextInterval(s)),
	}
}

// NextReview applies a rating to an existing memory state. elapsed is the time
// since the node was last reviewed; same-day reviews (< 24h) take the
// short-term stability branch.
func (m *Model) NextReview(stability, difficulty float64, elapsed time.Duration, r Rating, now time.Time) Review {
	elapsedDays := elapsed.Hours() / 24.0

	var s float64
	if elapsedDays < 1 {
		s = m.shortTermStability(stability, r)
	} else {
		ret := m.retrievability(elapsedDays, stability)
		if r == Again {
			s = m.forgetStability(difficulty, stability, ret)
		} else {
			s = m.recallStability(difficulty, stability, ret, r)
		}
	}
	s = clampS(s)

	return Review{
		Stability:  s,
		Difficulty: m.nextDifficulty(difficulty, r),
		Due:        now.AddDate(0, 0, m.nextInterval(s)),
	}
}

// Retrievability returns the probability of recall after elapsed time at the
// given stability. Zero stability (never reviewed) yields 0.
func (m *Model) Retrievability(stability float64, elapsed time.Duration) float64 {
	if stability <= 0 {
		return 0
	}
	return m.retrievability(elapsed.Hours()/24.0, stability)
}

// retrievability computes R(t, S) = (1 + FACTOR * t / S) ^ DECAY.
func (m *Model) retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+m.factor*elapsedDays/stability, m.decay)
}

// initDifficulty returns D₀(G) = w[4] - e^(w[5] * (G - 1)) + 1, unclamped.
func (m *Model) initDifficulty(r Rating) float64 {
	return m.w[4] - math.Exp(m.w[5]*float64(r-1)) + 1
}

// nextInterval computes the next review interval in days:
// I(r, S) = round((S / FACTOR) * (r^(1/DECAY) - 1)), clamped to [1, max].
func (m *Model) nextInterval(stability float64) int {
	ivl := stability / m.factor * (math.Pow(m.desiredRetention, 1.0/m.decay) - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > m.maximumInterval {
		days = m.maximumInterval
	}
	return days
}

// shortTermStability handles a same-day re-review.
// SInc = e^(w[17] * (G - 3 + w[18])) * S^(-w[19]); floored at 1 for Good/Easy.
func (m *Model) shortTermStability(stability float64, r Rating) float64 {
	sInc := math.Exp(m.w[17]*(float64(r)-3+m.w[18])) * math.Pow(stability, -m.w[19])
	if r == Good || r == Easy {
		sInc = math.Max(sInc, 1.0)
	}
	return stability * sInc
}

// recallStability computes stability after a successful recall.
// S' = S * (1 + e^w[8] * (11-D) * S^(-w[9]) * (e^((1-R)*w[10]) - 1) * hard * easy)
func (m *Model) recallStability(d, s, ret float64, r Rating) float64 {
	hardPenalty := 1.0
	if r == Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if r == Easy {
		easyBonus = m.w[16]
	}
	return s * (1 + math.Exp(m.w[8])*
		(11-d)*
		math.Pow(s, -m.w[9])*
		(math.Exp((1-ret)*m.w[10])-1)*
		hardPenalty*easyBonus)
}

// forgetStability computes stability after forgetting: min(long, short) where
// long = w[11] * D^(-w[12]) * ((S+1)^w[13] - 1) * e^((1-R)*w[14]) and
// short = S / e^(w[17] * w[18]).
func (m *Model) forgetStability(d, s, ret float64) float64 {
	long := m.w[11] *
		math.Pow(d, -m.w[12]) *
		(math.Pow(s+1, m.w[13]) - 1) *
		math.Exp((1-ret)*m.w[14])
	short := s / math.Exp(m.w[17]*m.w[18])
	return math.Min(long, short)
}

// nextDifficulty applies linear damping then mean reversion toward D₀(Easy).
func (m *Model) nextDifficulty(difficulty float64, r Rating) float64 {
	deltaD := -m.w[6] * (float64(r) - 3)
	dPrime := difficulty + (10-difficulty)*deltaD/9
	return clampD(m.w[7]*m.initDifficulty(Easy) + (1-m.w[7])*dPrime)
}

func clampS(s float64) float64 {
	return math.Max(s, 0.001)
}

func clampD(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
