package pitch

import "testing"

func TestTransposeChord_Identity(t *testing.T) {
	if got := TransposeChord("C", 12); got != "C" {
		t.Errorf("TransposeChord(C, 12) = %q, want C", got)
	}
	if got := TransposeChord("C", 0); got != "C" {
		t.Errorf("TransposeChord(C, 0) = %q, want C", got)
	}
}

func TestTransposeChord_FlatNormalized(t *testing.T) {
	if got := TransposeChord("Bb", 1); got != "B" {
		t.Errorf("TransposeChord(Bb, 1) = %q, want B", got)
	}
	if got := TransposeChord("Eb", 0); got != "D#" {
		t.Errorf("TransposeChord(Eb, 0) = %q, want D#", got)
	}
}

func TestTransposeChord_KeepsRemainder(t *testing.T) {
	cases := map[string]string{
		"Am7":    "Bm7",
		"Dsus4":  "Esus4",
		"G/B":    "A/B",
		"F#m7b5": "G#m7b5",
	}
	for in, want := range cases {
		if got := TransposeChord(in, 2); got != want {
			t.Errorf("TransposeChord(%q, 2) = %q, want %q", in, got, want)
		}
	}
}

func TestTransposeChord_Negative(t *testing.T) {
	if got := TransposeChord("A", -1); got != "G#" {
		t.Errorf("TransposeChord(A, -1) = %q, want G#", got)
	}
	if got := TransposeChord("C", -25); got != "B" {
		t.Errorf("TransposeChord(C, -25) = %q, want B", got)
	}
}

func TestTransposeChord_Unparseable(t *testing.T) {
	for _, in := range []string{"", "N.C.", "x", "hello", "Cb", "E#"} {
		if got := TransposeChord(in, 3); got != in {
			t.Errorf("TransposeChord(%q, 3) = %q, want input unchanged", in, got)
		}
	}
}

func TestTransposeChord_Composition(t *testing.T) {
	symbols := []string{"C", "C#m", "Db7", "Eb", "Gbmaj7", "Ab/C", "Bb", "E5", "F#dim"}
	for _, x := range symbols {
		for a := -14; a <= 14; a++ {
			for b := -14; b <= 14; b++ {
				got := TransposeChord(TransposeChord(x, a), b)
				want := TransposeChord(x, a+b)
				if got != want {
					t.Fatalf("compose(%q, %d, %d) = %q, want %q", x, a, b, got, want)
				}
			}
		}
	}
}

func TestShift_Wraps(t *testing.T) {
	if got := Shift(0, -1); got != 11 {
		t.Errorf("Shift(0, -1) = %d, want 11", got)
	}
	if got := Shift(11, 13); got != 0 {
		t.Errorf("Shift(11, 13) = %d, want 0", got)
	}
}

func TestIsChord(t *testing.T) {
	if !IsChord("Am") {
		t.Error("Am should be a chord")
	}
	if IsChord("Verse") {
		t.Error("Verse should not be a chord root")
	}
}
