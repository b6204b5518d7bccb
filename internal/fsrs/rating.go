package fsrs

import (
	"encoding"
	"fmt"
)

// Rating is the user's assessment of recall quality.
type Rating int

const (
	Again Rating = iota + 1 // Complete failure to recall.
	Hard                    // Recalled with significant difficulty.
	Good                    // Recalled with some effort.
	Easy                    // Recalled effortlessly.
)

var (
	ratingNames  = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}
	ratingByName = map[string]Rating{
		"Again": Again,
		"Hard":  Hard,
		"Good":  Good,
		"Easy":  Easy,
	}
)

var (
	_ fmt.Stringer             = Rating(0)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

// String returns the name of the rating ("Again", "Hard", "Good", "Easy").
// For invalid values it returns "Rating(n)".
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// IsValid reports whether r is a valid rating (Again through Easy).
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// Success reports whether r counts as a successful recall (Good or better).
func (r Rating) Success() bool {
	return r >= Good
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("fsrs: invalid rating: %d", int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, ok := ratingByName[string(text)]
	if !ok {
		return fmt.Errorf("fsrs: invalid rating: %q", text)
	}
	*r = v
	return nil
}

// energyDeltas maps each rating to the signed energy change applied to the
// reviewed node. Monotonically increasing in the rating.
var energyDeltas = [...]float64{
	Again: -0.15,
	Hard:  -0.05,
	Good:  0.10,
	Easy:  0.20,
}

// EnergyDelta returns the energy change a rating applies to the reviewed
// node's own energy. Positive deltas also drive propagation to neighbors;
// negative deltas never spread.
func (r Rating) EnergyDelta() float64 {
	if !r.IsValid() {
		return 0
	}
	return energyDeltas[r]
}
