package ukey

import "testing"

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"CHAPTER:1",
		"VERSE:1:1",
		"VERSE:114:6",
		"WORD:42",
		"WORDINST:2:255:7",
		"VERSE:1:1:memorization",
		"VERSE:3:18:tafsir",
		"WORD:42:meaning",
		"WORDINST:2:255:7:tajweed",
		"CHAPTER:1:contextual_memorization",
	}
	for _, s := range cases {
		k, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := k.String(); got != s {
			t.Errorf("round trip: Parse(%q).String() = %q", s, got)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"VERSE",
		"VERSE:1",
		"VERSE:1:1:1",
		"VERSE:one:1",
		"VERSE:-1:1",
		"SURAH:1:1",
		"VERSE:1:1:levitation",
		"memorization",
	}
	for _, s := range cases {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) should fail", s)
		}
	}
}

func TestKnowledgeBase(t *testing.T) {
	k, err := Parse("VERSE:1:1:memorization")
	if err != nil {
		t.Fatal(err)
	}
	if k.Kind != Knowledge || k.Axis != Memorization {
		t.Fatalf("got kind=%v axis=%v", k.Kind, k.Axis)
	}
	if got := k.Base().String(); got != "VERSE:1:1" {
		t.Errorf("Base() = %q, want VERSE:1:1", got)
	}
}

func TestKnowledgeCannotStack(t *testing.T) {
	k, _ := Parse("VERSE:1:1:memorization")
	if _, err := KnowledgeKey(k, Translation); err == nil {
		t.Error("stacking knowledge on knowledge should fail")
	}
}

func TestParseAxis(t *testing.T) {
	for a := Memorization; a <= Meaning; a++ {
		got, ok := ParseAxis(a.String())
		if !ok || got != a {
			t.Errorf("ParseAxis(%q) = %v, %v", a.String(), got, ok)
		}
	}
	if _, ok := ParseAxis("Memorization"); ok {
		t.Error("axis names are lowercase only")
	}
}
