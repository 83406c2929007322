package filter

import (
	"fmt"
	"sort"
)

// Tables holds the fixed vocabularies the classifier recognizes.
// A Parser copies its Tables on construction, so later edits to a Tables value
// never affect parsers already built from it.
type Tables struct {
	// Constellations maps a mnemonic, e.g. "BDS", to its constellation.
	Constellations map[string]Constellation
	// Systems maps a satellite-ID letter, e.g. 'C', to its constellation.
	Systems map[byte]Constellation
	// BandPrefixes lists the letters a carrier band label may start with.
	BandPrefixes map[byte]bool
	// Units maps a measurement unit to a short description.
	Units map[Unit]string
}

// DefaultTables returns the built-in vocabularies.
func DefaultTables() Tables {
	return Tables{
		Constellations: map[string]Constellation{
			"GPS": GPS,
			"BDS": BeiDou,
			"GAL": Galileo,
			"GLO": GLONASS,
			"QZS": QZSS,
		},
		Systems: map[byte]Constellation{
			'G': GPS,
			'C': BeiDou,
			'E': Galileo,
			'R': GLONASS,
			'J': QZSS,
		},
		BandPrefixes: map[byte]bool{
			'L': true,
			'B': true,
			'E': true,
			'G': true,
		},
		Units: map[Unit]string{
			UnitElevation: "elevation angle (deg)",
			UnitSNR:       "signal-to-noise ratio (dB-Hz)",
			UnitAzimuth:   "azimuth angle (deg)",
		},
	}
}

// Clone returns a deep copy of t.
func (t Tables) Clone() Tables {
	c := Tables{
		Constellations: make(map[string]Constellation, len(t.Constellations)),
		Systems:        make(map[byte]Constellation, len(t.Systems)),
		BandPrefixes:   make(map[byte]bool, len(t.BandPrefixes)),
		Units:          make(map[Unit]string, len(t.Units)),
	}
	for k, v := range t.Constellations {
		c.Constellations[k] = v
	}
	for k, v := range t.Systems {
		c.Systems[k] = v
	}
	for k, v := range t.BandPrefixes {
		c.BandPrefixes[k] = v
	}
	for k, v := range t.Units {
		c.Units[k] = v
	}
	return c
}

// Validate checks that every entry fits the literal grammar it is matched by.
func (t Tables) Validate() error {
	if len(t.Constellations) == 0 {
		return fmt.Errorf("tables: no constellations")
	}
	for mnemonic := range t.Constellations {
		if !isUpperWord(mnemonic, 2, 4) {
			return fmt.Errorf("tables: constellation mnemonic %q must be 2-4 uppercase letters", mnemonic)
		}
	}
	for letter := range t.Systems {
		if !isUpper(letter) {
			return fmt.Errorf("tables: system letter %q must be an uppercase letter", letter)
		}
	}
	for letter := range t.BandPrefixes {
		if !isUpper(letter) {
			return fmt.Errorf("tables: band prefix %q must be an uppercase letter", letter)
		}
	}
	for u := range t.Units {
		if u < 'a' || u > 'z' {
			return fmt.Errorf("tables: unit %q must be a lowercase letter", rune(u))
		}
	}
	return nil
}

// SortedConstellations returns the mnemonics in lexical order.
func (t Tables) SortedConstellations() []string {
	out := make([]string, 0, len(t.Constellations))
	for k := range t.Constellations {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SortedSystems returns the satellite-ID letters in lexical order.
func (t Tables) SortedSystems() []byte {
	return sortedBytes(t.Systems)
}

// SortedBandPrefixes returns the enabled band prefixes in lexical order.
func (t Tables) SortedBandPrefixes() []byte {
	var out []byte
	for k, ok := range t.BandPrefixes {
		if ok {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortedUnits returns the units in lexical order.
func (t Tables) SortedUnits() []Unit {
	out := make([]Unit, 0, len(t.Units))
	for k := range t.Units {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedBytes[V any](m map[byte]V) []byte {
	out := make([]byte, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

func isUpperWord(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isUpper(s[i]) {
			return false
		}
	}
	return true
}
