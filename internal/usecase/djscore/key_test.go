package djscore

import "testing"

func TestScoreKey_Relationships(t *testing.T) {
	cases := []struct {
		name      string
		seed      string
		candidate string
		want      float64
		wantRel   string
	}{
		{"identical", "C", "C", 1.0, KeySame},
		{"identical minor", "Am", "Am", 1.0, KeySame},
		{"enharmonic spelling", "F#", "Gb", 1.0, KeySame},
		{"relative minor", "C", "Am", 0.9, KeyRelative},
		{"relative major", "Am", "C", 0.9, KeyRelative},
		{"parallel minor", "C", "Cm", 0.8, KeyParallel},
		{"dominant", "C", "G", 0.8, KeyDominant},
		{"subdominant wrap", "C", "B", 0.7, KeySubdominant},
		{"two steps", "C", "D", 0.6, KeyClose},
		{"distant", "C", "E", 0.2, KeyDistant},
		{"tritone", "C", "F#", 0.2, KeyDistant},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, rel := scoreKey(tc.seed, tc.candidate)
			if score != tc.want {
				t.Errorf("scoreKey(%q, %q) = %f, want %f", tc.seed, tc.candidate, score, tc.want)
			}
			if rel != tc.wantRel {
				t.Errorf("relation = %q, want %q", rel, tc.wantRel)
			}
		})
	}
}

func TestScoreKey_MissingOrUnrecognized(t *testing.T) {
	cases := []struct {
		name      string
		seed      string
		candidate string
	}{
		{"empty seed", "", "C"},
		{"empty candidate", "C", ""},
		{"both empty", "", ""},
		{"garbage", "H#", "C"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, rel := scoreKey(tc.seed, tc.candidate)
			if score != 0.5 {
				t.Errorf("score = %f, want neutral 0.5", score)
			}
			if rel != KeyUnknown {
				t.Errorf("relation = %q, want %q", rel, KeyUnknown)
			}
		})
	}
}

func TestScoreKey_NormalizesSpellings(t *testing.T) {
	cases := []struct {
		raw  string
		same string
	}{
		{"a minor", "Am"},
		{"A min", "Am"},
		{"c major", "C"},
		{"bb", "Bb"},
		{"F# Minor", "F#m"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			score, rel := scoreKey(tc.raw, tc.same)
			if score != 1.0 || rel != KeySame {
				t.Errorf("scoreKey(%q, %q) = %f/%q, want identical", tc.raw, tc.same, score, rel)
			}
		})
	}
}

func TestCircularDistance(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{0, 11, 1},
		{0, 6, 6},
		{2, 9, 5},
	}
	for _, tc := range cases {
		if got := circularDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("circularDistance(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
