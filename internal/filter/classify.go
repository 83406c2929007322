package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/ivoronin/gnssmask/internal/gnsstime"
)

// classifyRule is one entry of the classifier priority list.
// Rules are tried in order; the first whose build does not return errNoMatch decides.
type classifyRule struct {
	kind    Kind
	pattern *regexp.Regexp
	build   func(t *Tables, m []string) (Value, error)
}

// errNoMatch lets a rule whose pattern matched hand the literal to the next rule.
var errNoMatch = errors.New("no match")

// classifyRules is the tie-break order for textually ambiguous literals.
// A letter followed by two digits is a satellite ID before it can be anything else,
// and a letter followed by one digit is only ever a band.
var classifyRules = []classifyRule{
	{
		kind:    KindInstant,
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:\.\d{1,18})?$`),
		build:   buildInstant,
	},
	{
		kind:    KindSatellite,
		pattern: regexp.MustCompile(`^([A-Z])(\d{2})$`),
		build:   buildSatellite,
	},
	{
		kind:    KindConstellation,
		pattern: regexp.MustCompile(`^[A-Z]{2,4}$`),
		build:   buildConstellation,
	},
	{
		kind:    KindBand,
		pattern: regexp.MustCompile(`^([A-Z])\d$`),
		build:   buildBand,
	},
	{
		kind:    KindMeasurement,
		pattern: regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)([a-z])$`),
		build:   buildMeasurement,
	},
}

// ClassificationOrder returns the kinds in the order the classifier tries them.
func ClassificationOrder() []Kind {
	out := make([]Kind, len(classifyRules))
	for i, r := range classifyRules {
		out[i] = r.kind
	}
	return out
}

// Classify turns a literal into a typed value using the parser's tables.
// The literal must not carry a comparator prefix.
func (p *Parser) Classify(text string) (Value, error) {
	for _, r := range classifyRules {
		m := r.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := r.build(&p.tables, m)
		if errors.Is(err, errNoMatch) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnrecognizedLiteral, text)
}

func buildInstant(_ *Tables, m []string) (Value, error) {
	e, err := gnsstime.Parse[gnsstime.UTC](m[0])
	if err != nil {
		return nil, err
	}
	return InstantOf(e), nil
}

func buildSatellite(t *Tables, m []string) (Value, error) {
	letter := m[1][0]
	c, ok := t.Systems[letter]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrUnknownConstellationCode, m[1], m[0])
	}
	prn, _ := strconv.Atoi(m[2])
	if prn == 0 {
		return nil, fmt.Errorf("%w: %q has slot 00", ErrUnrecognizedLiteral, m[0])
	}
	return SatelliteID{Constellation: c, System: letter, PRN: prn}, nil
}

func buildConstellation(t *Tables, m []string) (Value, error) {
	c, ok := t.Constellations[m[0]]
	if !ok {
		return nil, errNoMatch
	}
	return c, nil
}

func buildBand(t *Tables, m []string) (Value, error) {
	if !t.BandPrefixes[m[1][0]] {
		return nil, errNoMatch
	}
	return Band(m[0]), nil
}

func buildMeasurement(t *Tables, m []string) (Value, error) {
	u := Unit(m[2][0])
	if _, ok := t.Units[u]; !ok {
		return nil, errNoMatch
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnrecognizedLiteral, m[0], err)
	}
	return Measurement{Magnitude: f, Unit: u}, nil
}
