package output

import (
	"encoding/json"

	"github.com/ivoronin/gnssmask/internal/filter"
)

// TablesReport lists the lookup tables the classifier is using.
type TablesReport struct {
	Source string // "built-in" or the tables file path
	Tables filter.Tables
}

// FormatText returns one row per table entry.
func (r *TablesReport) FormatText() string {
	t := r.Tables
	tb := NewTable("TABLE", "KEY", "VALUE")
	for _, m := range t.SortedConstellations() {
		tb.Row("constellation", m, t.Constellations[m].String())
	}
	for _, l := range t.SortedSystems() {
		tb.Row("system", string(l), t.Systems[l].String())
	}
	for _, p := range t.SortedBandPrefixes() {
		tb.Row("band-prefix", string(p), "")
	}
	for _, u := range t.SortedUnits() {
		tb.Row("unit", u.String(), t.Units[u])
	}
	if tb.Len() == 0 {
		return ""
	}
	return "source: " + r.Source + "\n" + tb.String()
}

// FormatJSON returns the tables keyed by table name.
func (r *TablesReport) FormatJSON() ([]byte, error) {
	t := r.Tables
	jt := jsonTables{
		Source:         r.Source,
		Constellations: make(map[string]string, len(t.Constellations)),
		Systems:        make(map[string]string, len(t.Systems)),
		Units:          make(map[string]string, len(t.Units)),
	}
	for m, c := range t.Constellations {
		jt.Constellations[m] = c.String()
	}
	for l, c := range t.Systems {
		jt.Systems[string(l)] = c.String()
	}
	for _, p := range t.SortedBandPrefixes() {
		jt.BandPrefixes = append(jt.BandPrefixes, string(p))
	}
	for u, desc := range t.Units {
		jt.Units[u.String()] = desc
	}
	return json.MarshalIndent(jt, "", "  ")
}

type jsonTables struct {
	Source         string            `json:"source"`
	Constellations map[string]string `json:"constellations"`
	Systems        map[string]string `json:"systems"`
	BandPrefixes   []string          `json:"band_prefixes"`
	Units          map[string]string `json:"units"`
}
