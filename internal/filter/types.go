// Package filter provides filter expression parsing and matching for GNSS observation records.
package filter

import (
	"fmt"
	"strconv"

	"github.com/ivoronin/gnssmask/internal/gnsstime"
)

// Kind identifies the type of a literal or field value.
type Kind int

const (
	KindInstant Kind = iota + 1
	KindSatellite
	KindConstellation
	KindBand
	KindMeasurement
)

var kindNames = map[Kind]string{
	KindInstant:       "instant",
	KindSatellite:     "satellite",
	KindConstellation: "constellation",
	KindBand:          "band",
	KindMeasurement:   "measurement",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a typed literal or field value. The set of implementations is closed:
// Instant, SatelliteID, Constellation, Band and Measurement.
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

// Instant is a point in time, held in GPST as the canonical scale.
type Instant struct {
	Epoch gnsstime.Epoch[gnsstime.GPST]
}

// InstantOf wraps an epoch of any scale as an Instant value.
func InstantOf[S gnsstime.Scale](e gnsstime.Epoch[S]) Instant {
	return Instant{Epoch: gnsstime.Convert[gnsstime.GPST](e)}
}

func (Instant) Kind() Kind { return KindInstant }

// String renders the instant as a UTC literal, the form it is written in expressions.
func (i Instant) String() string {
	return gnsstime.Convert[gnsstime.UTC](i.Epoch).Civil().String()
}

// Constellation is a satellite navigation system, identified by its mnemonic.
type Constellation string

const (
	GPS     Constellation = "GPS"
	BeiDou  Constellation = "BDS"
	Galileo Constellation = "GAL"
	GLONASS Constellation = "GLO"
	QZSS    Constellation = "QZS"
)

func (Constellation) Kind() Kind { return KindConstellation }

func (c Constellation) String() string { return string(c) }

// SatelliteID identifies one satellite: a system letter and a slot number in 1..99.
type SatelliteID struct {
	Constellation Constellation
	System        byte // letter the ID is written with, e.g. 'G'
	PRN           int
}

func (SatelliteID) Kind() Kind { return KindSatellite }

// String renders the ID as the letter followed by exactly two digits.
func (s SatelliteID) String() string { return fmt.Sprintf("%c%02d", s.System, s.PRN) }

// Band is a carrier frequency band label such as L1 or B1.
type Band string

func (Band) Kind() Kind { return KindBand }

func (b Band) String() string { return string(b) }

// Unit is the single-letter tag of a Measurement.
type Unit byte

const (
	UnitElevation Unit = 'e' // elevation angle, degrees
	UnitSNR       Unit = 's' // signal-to-noise ratio, dB-Hz
	UnitAzimuth   Unit = 'a' // azimuth angle, degrees
)

func (u Unit) String() string { return string(rune(u)) }

// Measurement is a magnitude tagged with a unit. The unit is part of its identity.
type Measurement struct {
	Magnitude float64
	Unit      Unit
}

func (Measurement) Kind() Kind { return KindMeasurement }

func (m Measurement) String() string {
	return strconv.FormatFloat(m.Magnitude, 'g', -1, 64) + m.Unit.String()
}

func (Instant) isValue()       {}
func (Constellation) isValue() {}
func (SatelliteID) isValue()   {}
func (Band) isValue()          {}
func (Measurement) isValue()   {}

// unitOf returns the unit of a Measurement and 0 for every other kind.
func unitOf(v Value) Unit {
	if m, ok := v.(Measurement); ok {
		return m.Unit
	}
	return 0
}

// Comparator is the relation a filter checks between a field and a literal.
type Comparator string

const (
	Equal          Comparator = "=="
	NotEqual       Comparator = "!="
	Greater        Comparator = ">"
	GreaterOrEqual Comparator = ">="
	Less           Comparator = "<"
	LessOrEqual    Comparator = "<="
)

// comparatorTokens maps every accepted operator token to its comparator.
var comparatorTokens = map[string]Comparator{
	"":   Equal,
	"=":  Equal,
	"==": Equal,
	"!=": NotEqual,
	">":  Greater,
	">=": GreaterOrEqual,
	"<":  Less,
	"<=": LessOrEqual,
}

func (c Comparator) String() string { return string(c) }

// Combinator reduces the per-candidate results of an Item to one boolean.
type Combinator string

const (
	Or  Combinator = "|"
	And Combinator = "&"
)

func (c Combinator) String() string { return string(c) }

// MismatchPolicy decides the result of comparing values of different kinds or units.
type MismatchPolicy int

const (
	// MismatchPass treats a kind or unit mismatch as vacuously satisfied.
	MismatchPass MismatchPolicy = iota
	// MismatchFail treats a kind or unit mismatch as not satisfied.
	MismatchFail
)

func (p MismatchPolicy) String() string {
	if p == MismatchFail {
		return "strict"
	}
	return "vacuous"
}
