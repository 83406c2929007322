// Package gnsstime provides exact instants and the GNSS time scales GPST, UTC and BDT.
package gnsstime

import (
	"fmt"
	"strconv"
	"strings"
)

// AttosecondsPerSecond is the number of ticks in one second.
const AttosecondsPerSecond int64 = 1_000_000_000_000_000_000

// Duration is an exact signed span of time with attosecond resolution.
// The zero value is a zero-length span.
type Duration struct {
	sec  int64
	atto int64 // always in [0, AttosecondsPerSecond)
}

// normalize folds atto into [0, AttosecondsPerSecond), carrying into sec.
func normalize(sec, atto int64) (int64, int64) {
	sec += atto / AttosecondsPerSecond
	atto %= AttosecondsPerSecond
	if atto < 0 {
		atto += AttosecondsPerSecond
		sec--
	}
	return sec, atto
}

// NewDuration returns the span of sec seconds plus atto attoseconds.
// atto may be negative or exceed one second; it is carried into sec.
func NewDuration(sec, atto int64) Duration {
	sec, atto = normalize(sec, atto)
	return Duration{sec: sec, atto: atto}
}

// Seconds returns a span of n whole seconds.
func Seconds(n int64) Duration { return Duration{sec: n} }

// Split returns the whole seconds (floored) and the attosecond remainder in [0, 1s).
func (d Duration) Split() (sec, atto int64) { return d.sec, d.atto }

// Add returns d+o.
func (d Duration) Add(o Duration) Duration { return NewDuration(d.sec+o.sec, d.atto+o.atto) }

// Neg returns -d.
func (d Duration) Neg() Duration { return NewDuration(-d.sec, -d.atto) }

// Compare returns -1, 0 or 1 as d is shorter than, equal to or longer than o.
func (d Duration) Compare(o Duration) int {
	switch {
	case d.sec < o.sec:
		return -1
	case d.sec > o.sec:
		return 1
	case d.atto < o.atto:
		return -1
	case d.atto > o.atto:
		return 1
	}
	return 0
}

// Float returns the span in seconds as a float64.
// Precision is lost once the span exceeds roughly 2^52 attoseconds.
func (d Duration) Float() float64 {
	return float64(d.sec) + float64(d.atto)/float64(AttosecondsPerSecond)
}

// String formats the span as decimal seconds, e.g. "-1.25s".
func (d Duration) String() string {
	if d.sec < 0 {
		return "-" + d.Neg().String()
	}
	return strconv.FormatInt(d.sec, 10) + formatFraction(d.atto) + "s"
}

// formatFraction renders attoseconds as ".ddd" without trailing zeros, or "" when zero.
func formatFraction(atto int64) string {
	if atto == 0 {
		return ""
	}
	return "." + strings.TrimRight(fmt.Sprintf("%018d", atto), "0")
}

// Instant is an absolute point in time counted in attoseconds on a continuous
// axis whose origin is the GPS Time epoch (1980-01-06 00:00:00 UTC).
// The axis carries no leap seconds; scales apply their offsets when read.
type Instant struct {
	sec  int64
	atto int64
}

// NewInstant returns the instant sec seconds plus atto attoseconds after the origin.
func NewInstant(sec, atto int64) Instant {
	sec, atto = normalize(sec, atto)
	return Instant{sec: sec, atto: atto}
}

// Split returns whole seconds since the origin (floored) and the attosecond remainder.
func (i Instant) Split() (sec, atto int64) { return i.sec, i.atto }

// Add returns the instant d after i.
func (i Instant) Add(d Duration) Instant { return NewInstant(i.sec+d.sec, i.atto+d.atto) }

// Sub returns the exact span i-o.
func (i Instant) Sub(o Instant) Duration { return NewDuration(i.sec-o.sec, i.atto-o.atto) }

// Compare returns -1, 0 or 1 as i is before, equal to or after o.
func (i Instant) Compare(o Instant) int {
	return Duration{i.sec, i.atto}.Compare(Duration{o.sec, o.atto})
}

// Seconds returns seconds since the origin as a float64, for reporting only.
// Precision is lost once the instant lies more than roughly 2^52 attoseconds from the origin.
func (i Instant) Seconds() float64 {
	return Duration{i.sec, i.atto}.Float()
}
