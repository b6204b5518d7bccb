// Package ukey defines the stable string identity of knowledge-graph nodes.
//
// A ukey is the only identity that survives a content-graph regeneration; the
// integer surrogate ids handed out by the content store are volatile and valid
// within a single content version only. All parsing and formatting of the
// string form lives here — the rest of the engine passes Key values or opaque
// ids, never hand-assembled strings.
package ukey

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the node type a key refers to.
type Kind int

const (
	Chapter Kind = iota + 1
	Verse
	Word
	WordInstance
	Knowledge
)

var kindNames = [...]string{
	Chapter:      "CHAPTER",
	Verse:        "VERSE",
	Word:         "WORD",
	WordInstance: "WORDINST",
	Knowledge:    "KNOWLEDGE",
}

// String returns the wire prefix of the kind ("CHAPTER", "VERSE", ...).
func (k Kind) String() string {
	if k >= Chapter && k <= Knowledge {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Axis is a learning dimension layered over a base content node.
type Axis int

const (
	AxisNone Axis = iota
	Memorization
	Translation
	Tafsir
	Tajweed
	ContextualMemorization
	Meaning
)

var axisNames = [...]string{
	Memorization:           "memorization",
	Translation:            "translation",
	Tafsir:                 "tafsir",
	Tajweed:                "tajweed",
	ContextualMemorization: "contextual_memorization",
	Meaning:                "meaning",
}

var axisByName = map[string]Axis{
	"memorization":            Memorization,
	"translation":             Translation,
	"tafsir":                  Tafsir,
	"tajweed":                 Tajweed,
	"contextual_memorization": ContextualMemorization,
	"meaning":                 Meaning,
}

// String returns the lowercase wire name of the axis, or "" for AxisNone.
func (a Axis) String() string {
	if a > AxisNone && int(a) < len(axisNames) {
		return axisNames[a]
	}
	return ""
}

// ParseAxis parses a lowercase axis name. Returns AxisNone and false for
// unknown names.
func ParseAxis(s string) (Axis, bool) {
	a, ok := axisByName[s]
	return a, ok
}

// IsValid reports whether a is one of the defined learning axes.
func (a Axis) IsValid() bool {
	return a > AxisNone && int(a) < len(axisNames)
}

// Key is the parsed form of a ukey. Exactly one constructor shape is valid per
// kind; fields outside that shape are zero.
//
//	CHAPTER:<c>                  Chapter number.
//	VERSE:<c>:<v>                Verse within a chapter.
//	WORD:<w>                     Lemma id, shared across occurrences.
//	WORDINST:<c>:<v>:<p>         Word occurrence at position p of a verse.
//	<base>:<axis>                Knowledge node over any of the above.
type Key struct {
	Kind    Kind
	Chapter int
	Verse   int
	Pos     int
	Word    int
	Axis    Axis // set only when Kind == Knowledge
	base    Kind // base kind of a Knowledge key
}

// ChapterKey returns the key of chapter c.
func ChapterKey(c int) Key { return Key{Kind: Chapter, Chapter: c} }

// VerseKey returns the key of verse v in chapter c.
func VerseKey(c, v int) Key { return Key{Kind: Verse, Chapter: c, Verse: v} }

// WordKey returns the key of lemma w.
func WordKey(w int) Key { return Key{Kind: Word, Word: w} }

// WordInstanceKey returns the key of the word at position p of verse c:v.
func WordInstanceKey(c, v, p int) Key {
	return Key{Kind: WordInstance, Chapter: c, Verse: v, Pos: p}
}

// KnowledgeKey layers a learning axis over a base content key.
// The base must itself be a content key (not Knowledge).
func KnowledgeKey(base Key, axis Axis) (Key, error) {
	if base.Kind == Knowledge {
		return Key{}, fmt.Errorf("knowledge key cannot stack on %q", base.String())
	}
	if !axis.IsValid() {
		return Key{}, fmt.Errorf("invalid axis %d", int(axis))
	}
	k := base
	k.base = base.Kind
	k.Kind = Knowledge
	k.Axis = axis
	return k, nil
}

// Base returns the content key a Knowledge key augments. For content keys it
// returns the key itself.
func (k Key) Base() Key {
	if k.Kind != Knowledge {
		return k
	}
	b := k
	b.Kind = k.base
	b.Axis = AxisNone
	b.base = 0
	return b
}

// String renders the canonical ukey form.
func (k Key) String() string {
	base := k
	if k.Kind == Knowledge {
		base = k.Base()
	}
	var s string
	switch base.Kind {
	case Chapter:
		s = "CHAPTER:" + strconv.Itoa(base.Chapter)
	case Verse:
		s = "VERSE:" + strconv.Itoa(base.Chapter) + ":" + strconv.Itoa(base.Verse)
	case Word:
		s = "WORD:" + strconv.Itoa(base.Word)
	case WordInstance:
		s = "WORDINST:" + strconv.Itoa(base.Chapter) + ":" + strconv.Itoa(base.Verse) + ":" + strconv.Itoa(base.Pos)
	default:
		return fmt.Sprintf("Key(%d)", int(k.Kind))
	}
	if k.Kind == Knowledge {
		s += ":" + k.Axis.String()
	}
	return s
}

// Parse parses the canonical ukey form. A trailing lowercase axis segment
// turns a content key into a Knowledge key.
func Parse(s string) (Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return Key{}, fmt.Errorf("malformed ukey %q", s)
	}

	// Peel a trailing axis segment, if present.
	axis := AxisNone
	if a, ok := ParseAxis(parts[len(parts)-1]); ok {
		axis = a
		parts = parts[:len(parts)-1]
	}

	base, err := parseContent(parts, s)
	if err != nil {
		return Key{}, err
	}
	if axis == AxisNone {
		return base, nil
	}
	return KnowledgeKey(base, axis)
}

func parseContent(parts []string, raw string) (Key, error) {
	nums := make([]int, 0, 3)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Key{}, fmt.Errorf("malformed ukey %q: bad segment %q", raw, p)
		}
		nums = append(nums, n)
	}

	switch parts[0] {
	case "CHAPTER":
		if len(nums) != 1 {
			return Key{}, fmt.Errorf("malformed ukey %q: CHAPTER wants 1 segment", raw)
		}
		return ChapterKey(nums[0]), nil
	case "VERSE":
		if len(nums) != 2 {
			return Key{}, fmt.Errorf("malformed ukey %q: VERSE wants 2 segments", raw)
		}
		return VerseKey(nums[0], nums[1]), nil
	case "WORD":
		if len(nums) != 1 {
			return Key{}, fmt.Errorf("malformed ukey %q: WORD wants 1 segment", raw)
		}
		return WordKey(nums[0]), nil
	case "WORDINST":
		if len(nums) != 3 {
			return Key{}, fmt.Errorf("malformed ukey %q: WORDINST wants 3 segments", raw)
		}
		return WordInstanceKey(nums[0], nums[1], nums[2]), nil
	default:
		return Key{}, fmt.Errorf("malformed ukey %q: unknown kind %q", raw, parts[0])
	}
}
