// Package stall defines the closed set of food stalls served by the hub.
//
// Stalls are known at build time. Code that holds a Stall value works with a
// compile-time checked enumeration; values arriving from the outside world
// (CLI arguments, URL segments, persisted JSON keys) go through Parse, which
// maps anything that is not exactly a stall key to Unknown so callers can
// fail soft.
package stall

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stall identifies one vendor in the hub.
type Stall int

const (
	Unknown Stall = iota
	ChaiVerse
	JuiceJunction
	MaggiMitra
	SouthStation
	SpiceHub
	SweetSpot
)

// words splits the key for display; Name title-cases it.
type descriptor struct {
	key   string
	code  string
	words string
}

var descriptors = map[Stall]descriptor{
	ChaiVerse:     {key: "chaiverse", code: "CHA", words: "chai verse"},
	JuiceJunction: {key: "juicejunction", code: "JUI", words: "juice junction"},
	MaggiMitra:    {key: "maggimitra", code: "MAG", words: "maggi mitra"},
	SouthStation:  {key: "southstation", code: "SOU", words: "south station"},
	SpiceHub:      {key: "spicehub", code: "SPI", words: "spice hub"},
	SweetSpot:     {key: "sweetspot", code: "SWT", words: "sweet spot"},
}

var ordered = []Stall{ChaiVerse, JuiceJunction, MaggiMitra, SouthStation, SpiceHub, SweetSpot}

// All returns every known stall in display order.
func All() []Stall {
	out := make([]Stall, len(ordered))
	copy(out, ordered)
	return out
}

// Parse maps a stall key such as "chaiverse" to its Stall. Keys match
// exactly; "ChaiVerse" or " chaiverse" yield Unknown.
func Parse(value string) Stall {
	if value == "" {
		return Unknown
	}
	for _, s := range ordered {
		if descriptors[s].key == value {
			return s
		}
	}
	return Unknown
}

// Valid reports whether s is one of the known stalls.
func (s Stall) Valid() bool {
	_, ok := descriptors[s]
	return ok
}

// Key returns the persisted identifier, or "" for Unknown.
func (s Stall) Key() string {
	return descriptors[s].key
}

// Code returns the three-letter token prefix, or "" for Unknown.
func (s Stall) Code() string {
	return descriptors[s].code
}

// Name returns the human readable stall name, such as "Chai Verse".
func (s Stall) Name() string {
	if d, ok := descriptors[s]; ok {
		return titleCase(d.words)
	}
	return "Unknown"
}

func (s Stall) String() string {
	if key := s.Key(); key != "" {
		return key
	}
	return fmt.Sprintf("stall(%d)", int(s))
}

// MarshalText lets Stall key JSON objects by its stall key.
func (s Stall) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("marshal unknown stall %d", int(s))
	}
	return []byte(s.Key()), nil
}

// UnmarshalText parses a stall key. Unknown keys are rejected.
func (s *Stall) UnmarshalText(text []byte) error {
	parsed := Parse(string(text))
	if parsed == Unknown {
		return fmt.Errorf("unknown stall %q", string(text))
	}
	*s = parsed
	return nil
}

func titleCase(value string) string {
	if value == "" {
		return ""
	}
	return cases.Title(language.English).String(value)
}
