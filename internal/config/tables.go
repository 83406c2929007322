package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ivoronin/gnssmask/internal/filter"
	"github.com/ivoronin/gnssmask/internal/version"
)

// TablesFile is a host-supplied lookup-tables file.
//
// Example:
//
//	{
//	  "format_version": "1.0.0",
//	  "constellations": {"IRN": "IRN"},
//	  "systems": {"I": "IRN"},
//	  "band_prefixes": ["S"],
//	  "units": {"r": "range residual (m)"}
//	}
//
// Entries extend the built-in tables unless "replace" is true.
type TablesFile struct {
	Path          string
	FormatVersion string
	Tables        filter.Tables
}

// Newer reports whether the file targets a later format than this build.
func (f *TablesFile) Newer() bool { return version.NewerTables(f.FormatVersion) }

type jsonTablesFile struct {
	FormatVersion  string            `json:"format_version"`
	Replace        bool              `json:"replace"`
	Constellations map[string]string `json:"constellations"`
	Systems        map[string]string `json:"systems"`
	BandPrefixes   []string          `json:"band_prefixes"`
	Units          map[string]string `json:"units"`
}

// LoadTables reads and validates the tables file at path.
func LoadTables(path string) (*TablesFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tables: %w", err)
	}
	defer func() { _ = f.Close() }()

	tf, err := ParseTables(f)
	if err != nil {
		return nil, fmt.Errorf("tables %s: %w", path, err)
	}
	tf.Path = path
	return tf, nil
}

// ParseTables decodes a tables file. Unknown keys are ignored.
func ParseTables(r io.Reader) (*TablesFile, error) {
	var raw jsonTablesFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := version.CheckTables(raw.FormatVersion); err != nil {
		return nil, err
	}

	t := filter.DefaultTables()
	if raw.Replace {
		t = filter.Tables{
			Constellations: map[string]filter.Constellation{},
			Systems:        map[byte]filter.Constellation{},
			BandPrefixes:   map[byte]bool{},
			Units:          map[filter.Unit]string{},
		}
	}

	for mnemonic, name := range raw.Constellations {
		t.Constellations[mnemonic] = filter.Constellation(name)
	}
	for key, name := range raw.Systems {
		letter, err := singleLetter("system", key)
		if err != nil {
			return nil, err
		}
		t.Systems[letter] = filter.Constellation(name)
	}
	for _, key := range raw.BandPrefixes {
		letter, err := singleLetter("band prefix", key)
		if err != nil {
			return nil, err
		}
		t.BandPrefixes[letter] = true
	}
	for key, desc := range raw.Units {
		letter, err := singleLetter("unit", key)
		if err != nil {
			return nil, err
		}
		t.Units[filter.Unit(letter)] = desc
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &TablesFile{FormatVersion: raw.FormatVersion, Tables: t}, nil
}

func singleLetter(what, key string) (byte, error) {
	if len(key) != 1 {
		return 0, fmt.Errorf("%s key %q must be a single letter", what, key)
	}
	return key[0], nil
}
