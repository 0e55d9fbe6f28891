package domain

// Song is one track in the local catalogue.
type Song struct {
	ID     string
	Title  string
	Artist string
	Genre  string // optional, free-form tag from the library
	DJ     *DJAttributes
}

// DJAttributes are the mixability attributes of a track. Values may be
// estimated by a resolver; nil pointers mean "unknown", never zero.
type DJAttributes struct {
	Tempo  *float64 // beats per minute
	Key    string   // musical key, e.g. "C", "Am"; empty = unknown
	Energy *float64 // normalized 0..1
}

// Float returns a pointer to v, for building DJAttributes literals.
func Float(v float64) *float64 { return &v }
