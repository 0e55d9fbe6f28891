package djscore

import "strings"

// Key relationship descriptors.
const (
	KeyUnknown     = "unknown key"
	KeySame        = "same key"
	KeyRelative    = "relative major/minor"
	KeyParallel    = "parallel major/minor"
	KeyDominant    = "dominant"
	KeySubdominant = "subdominant"
	KeyClose       = "close on circle of fifths"
	KeyDistant     = "distant key"
)

// position on the circle of fifths (0..11) plus mode. Major and minor
// tonics are tagged independently: "A" and "Am" do not share a position.
type keyPosition struct {
	pos   int
	minor bool
}

// circleOfFifths maps normalized key names to their position. Minor keys
// sit at the position of their relative major (Am at C's position 0).
var circleOfFifths = map[string]keyPosition{
	"C": {0, false}, "G": {1, false}, "D": {2, false}, "A": {3, false},
	"E": {4, false}, "B": {5, false},
	"F#": {6, false}, "Gb": {6, false},
	"C#": {7, false}, "Db": {7, false},
	"G#": {8, false}, "Ab": {8, false},
	"D#": {9, false}, "Eb": {9, false},
	"A#": {10, false}, "Bb": {10, false},
	"F": {11, false},

	"Am": {0, true}, "Em": {1, true}, "Bm": {2, true},
	"F#m": {3, true}, "Gbm": {3, true},
	"C#m": {4, true}, "Dbm": {4, true},
	"G#m": {5, true}, "Abm": {5, true},
	"D#m": {6, true}, "Ebm": {6, true},
	"A#m": {7, true}, "Bbm": {7, true},
	"Fm": {8, true}, "Cm": {9, true}, "Gm": {10, true}, "Dm": {11, true},
}

// lookupKey normalizes a raw key string and resolves its circle position
// plus bare tonic letter ("a minor" -> position of Am, tonic "A").
func lookupKey(raw string) (keyPosition, string, bool) {
	k := strings.TrimSpace(raw)
	if k == "" {
		return keyPosition{}, "", false
	}
	// Accept "a min", "A Minor", "Amin" style suffixes.
	lower := strings.ToLower(k)
	minor := false
	for _, suffix := range []string{" minor", "minor", " min", "min", "m"} {
		if strings.HasSuffix(lower, suffix) && len(lower) > len(suffix) {
			minor = true
			k = strings.TrimSpace(k[:len(k)-len(suffix)])
			break
		}
	}
	for _, suffix := range []string{" major", "major", " maj", "maj"} {
		if strings.HasSuffix(strings.ToLower(k), suffix) && len(k) > len(suffix) {
			k = strings.TrimSpace(k[:len(k)-len(suffix)])
			break
		}
	}
	if k == "" {
		return keyPosition{}, "", false
	}
	tonic := strings.ToUpper(k[:1]) + k[1:]
	name := tonic
	if minor {
		name += "m"
	}
	p, ok := circleOfFifths[name]
	return p, tonic, ok
}

// scoreKey rates harmonic compatibility of two keys on the circle of fifths.
func scoreKey(seed, candidate string) (float64, string) {
	sp, stonic, sok := lookupKey(seed)
	cp, ctonic, cok := lookupKey(candidate)
	if !sok || !cok {
		return 0.5, KeyUnknown
	}

	if sp == cp {
		return 1.0, KeySame
	}
	// Relative major/minor share a position with opposite modes.
	if sp.pos == cp.pos && sp.minor != cp.minor {
		return 0.9, KeyRelative
	}
	// Parallel major/minor share a tonic letter with opposite modes.
	if sp.minor != cp.minor && stonic == ctonic {
		return 0.8, KeyParallel
	}

	dist := circularDistance(sp.pos, cp.pos)
	switch {
	case dist == 1:
		return 0.8, KeyDominant
	case dist == 5:
		return 0.7, KeySubdominant
	case dist <= 2:
		return 0.6, KeyClose
	default:
		return 0.2, KeyDistant
	}
}

// circularDistance is the shortest step count between two circle positions.
func circularDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if 12-d < d {
		return 12 - d
	}
	return d
}
