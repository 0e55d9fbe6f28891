// Package genres provides a static genre hierarchy for similarity scoring.
// Tags coming from media servers and external APIs are free-form text, so
// everything is normalized before lookup.
package genres

import "strings"

// families maps a parent genre to its subgenres.
var families = map[string][]string{
	"electronic": {
		"house", "deep house", "tech house", "techno", "trance", "ambient",
		"idm", "drum-and-bass", "dubstep", "electro", "downtempo", "synthwave",
		"breakbeat", "electronica",
	},
	"rock": {
		"indie rock", "alternative rock", "classic rock", "hard rock",
		"punk", "post-punk", "grunge", "psychedelic rock", "progressive rock",
		"garage rock", "shoegaze",
	},
	"metal": {
		"heavy metal", "thrash metal", "death metal", "black metal",
		"doom metal", "progressive metal", "metalcore",
	},
	"pop": {
		"synth-pop", "indie pop", "dream pop", "electropop", "dance pop",
		"k-pop", "art pop",
	},
	"hip-hop": {
		"rap", "trap", "boom bap", "grime", "instrumental hip-hop",
	},
	"rnb": {
		"soul", "funk", "neo-soul", "motown",
	},
	"jazz": {
		"bebop", "swing", "fusion", "smooth jazz", "free jazz", "cool jazz",
	},
	"blues": {
		"delta blues", "chicago blues", "electric blues",
	},
	"folk": {
		"indie folk", "folk rock", "singer-songwriter", "americana",
		"bluegrass",
	},
	"country": {
		"outlaw country", "country rock", "honky tonk",
	},
	"classical": {
		"baroque", "romantic", "opera", "chamber music", "modern classical",
		"minimalism",
	},
	"reggae": {
		"dub", "ska", "dancehall", "roots reggae",
	},
	"latin": {
		"salsa", "bossa nova", "cumbia", "reggaeton", "samba",
	},
}

// relatedFamilies lists cross-family affinities, scored below siblings.
var relatedFamilies = map[string][]string{
	"rock":       {"metal", "pop", "folk", "blues"},
	"metal":      {"rock"},
	"pop":        {"rock", "rnb", "electronic"},
	"electronic": {"pop", "hip-hop"},
	"hip-hop":    {"rnb", "electronic", "reggae"},
	"rnb":        {"hip-hop", "pop", "blues", "jazz"},
	"jazz":       {"blues", "rnb"},
	"blues":      {"jazz", "rock", "rnb", "country"},
	"folk":       {"country", "rock"},
	"country":    {"folk", "blues"},
	"reggae":     {"latin", "hip-hop"},
	"latin":      {"reggae"},
}

// aliases fold common spelling variants into the canonical tag.
var aliases = map[string]string{
	"hip hop":                "hip-hop",
	"hiphop":                 "hip-hop",
	"r&b":                    "rnb",
	"r'n'b":                  "rnb",
	"rhythm and blues":       "rnb",
	"drum and bass":          "drum-and-bass",
	"drum & bass":            "drum-and-bass",
	"dnb":                    "drum-and-bass",
	"d&b":                    "drum-and-bass",
	"electronic dance music": "electronic",
	"edm":                    "electronic",
	"synthpop":               "synth-pop",
	"alt rock":               "alternative rock",
	"alt-rock":               "alternative rock",
	"indie":                  "indie rock",
	"post punk":              "post-punk",
}

// familyOf maps every known genre (parents included) to its family.
var familyOf = func() map[string]string {
	m := make(map[string]string)
	for parent, subs := range families {
		m[parent] = parent
		for _, sub := range subs {
			m[sub] = parent
		}
	}
	return m
}()

// Hierarchy scores relatedness between free-form genre tags.
type Hierarchy struct{}

// New returns the static hierarchy.
func New() *Hierarchy {
	return &Hierarchy{}
}

// Normalize folds a raw tag to its canonical lowercase form.
func (*Hierarchy) Normalize(genre string) string {
	g := strings.ToLower(strings.TrimSpace(genre))
	if canonical, ok := aliases[g]; ok {
		return canonical
	}
	return g
}

// Similarity scores two tags in [0,1]: identical 1.0, parent/subgenre 0.8,
// siblings in one family 0.6, related families 0.3, otherwise 0.
// Unknown tags match only themselves.
func (h *Hierarchy) Similarity(a, b string) float64 {
	ga, gb := h.Normalize(a), h.Normalize(b)
	if ga == "" || gb == "" {
		return 0
	}
	if ga == gb {
		return 1.0
	}

	fa, oka := familyOf[ga]
	fb, okb := familyOf[gb]
	if !oka || !okb {
		return 0
	}

	if fa == fb {
		// One of them is the family parent itself.
		if ga == fa || gb == fb {
			return 0.8
		}
		return 0.6
	}
	for _, rel := range relatedFamilies[fa] {
		if rel == fb {
			return 0.3
		}
	}
	return 0
}

// RelatedGenres returns the family members of a tag, excluding the tag
// itself. Unknown tags have no relatives.
func (h *Hierarchy) RelatedGenres(genre string) []string {
	g := h.Normalize(genre)
	family, ok := familyOf[g]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(families[family])+1)
	if family != g {
		out = append(out, family)
	}
	for _, sub := range families[family] {
		if sub != g {
			out = append(out, sub)
		}
	}
	return out
}
