package gnsstime

import (
	"fmt"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// Epoch is an Instant tagged at the type level with the time scale it is read in.
//
// All epochs store the same absolute Instant regardless of scale, so Convert only
// retags and a round trip A->B->A returns the identical Instant. Scale offsets
// (leap seconds, the BDT-GPST constant) are applied when the epoch is read through
// Civil, SinceOrigin or Week.
type Epoch[S Scale] struct {
	at Instant
}

// At returns the epoch of instant at, read in scale S.
func At[S Scale](at Instant) Epoch[S] { return Epoch[S]{at: at} }

// Convert returns e read in scale B. It never fails.
func Convert[B, A Scale](e Epoch[A]) Epoch[B] { return Epoch[B]{at: e.at} }

// FromCivil builds an epoch from calendar fields read in scale S.
// Second 60 is accepted only for UTC at the end of a day with a tabled leap second.
func FromCivil[S Scale](c Civil) (Epoch[S], error) {
	if err := c.validate(); err != nil {
		return Epoch[S]{}, err
	}

	scale := scaleOf[S]()
	label := labelOf(c)

	if c.Second == 60 {
		if scale != ScaleUTC || c.Hour != 23 || c.Minute != 59 || !isLeapInsertion(label) {
			return Epoch[S]{}, fmt.Errorf("%w: %s is not a leap second", ErrInvalidDate, c)
		}
		// 23:59:60 follows 23:59:59 under the offset still in effect before the insertion.
		prev := label - 1
		return Epoch[S]{at: NewInstant(prev+utcOffsetForLabel(prev)+1, c.Attosecond)}, nil
	}

	var sec int64
	switch scale {
	case ScaleUTC:
		sec = label + utcOffsetForLabel(label)
	case ScaleBDT:
		sec = label + gpstMinusBDT
	default:
		sec = label
	}
	return Epoch[S]{at: NewInstant(sec, c.Attosecond)}, nil
}

// FromUTCDate builds a UTC epoch from civil date and time fields.
func FromUTCDate(year int, month time.Month, day, hour, minute, second int) (Epoch[UTC], error) {
	return FromCivil[UTC](Civil{
		Year:   year,
		Month:  month,
		Day:    day,
		Hour:   hour,
		Minute: minute,
		Second: second,
	})
}

// FromTime builds an epoch in scale S from t, taking t's fields as UTC.
func FromTime[S Scale](t time.Time) Epoch[S] {
	u := t.UTC()
	label := labelOf(Civil{
		Year:   u.Year(),
		Month:  u.Month(),
		Day:    u.Day(),
		Hour:   u.Hour(),
		Minute: u.Minute(),
		Second: u.Second(),
	})
	utc := Epoch[UTC]{at: NewInstant(label+utcOffsetForLabel(label), int64(u.Nanosecond())*1_000_000_000)}
	return Convert[S](utc)
}

// Parse parses "YYYY-MM-DD HH:MM:SS[.fraction]" read in scale S.
func Parse[S Scale](s string) (Epoch[S], error) {
	c, err := ParseCivil(s)
	if err != nil {
		return Epoch[S]{}, err
	}
	return FromCivil[S](c)
}

// Instant returns the absolute instant.
func (e Epoch[S]) Instant() Instant { return e.at }

// Scale returns the runtime identity of S.
func (e Epoch[S]) Scale() ScaleID { return scaleOf[S]() }

// label returns the epoch read on S as seconds since the 1980-01-06 00:00:00 label.
// Inside a UTC leap second the label repeats 23:59:59 and leap is true.
func (e Epoch[S]) label() (sec, atto int64, leap bool) {
	switch scaleOf[S]() {
	case ScaleUTC:
		off, inLeap := utcOffsetAt(e.at.sec)
		sec = e.at.sec - off
		if inLeap {
			sec--
		}
		return sec, e.at.atto, inLeap
	case ScaleBDT:
		return e.at.sec - gpstMinusBDT, e.at.atto, false
	default:
		return e.at.sec, e.at.atto, false
	}
}

// Civil returns the calendar date and time of day read on S.
func (e Epoch[S]) Civil() Civil {
	sec, atto, leap := e.label()
	c := civilOf(sec, atto)
	if leap {
		c.Second = 60
	}
	return c
}

// SinceOrigin returns the time elapsed since the scale's own origin as read on S.
// UTC counts from 1980-01-06 00:00:00 UTC and, like Unix time, does not count leap seconds.
func (e Epoch[S]) SinceOrigin() Duration {
	sec, atto, _ := e.label()
	return NewDuration(sec-scaleOf[S]().originLabel(), atto)
}

// Week returns the week number since the scale's origin and the time of week.
func (e Epoch[S]) Week() (week int, tow Duration) {
	sec, atto := e.SinceOrigin().Split()
	w := floorDiv(sec, secondsPerWeek)
	return int(w), NewDuration(sec-w*secondsPerWeek, atto)
}

// Seconds returns SinceOrigin as a float64 for reporting. It is lossy and is never
// used for comparisons.
func (e Epoch[S]) Seconds() float64 { return e.SinceOrigin().Float() }

// JulianDate returns the Julian date of the civil time read on S, for reporting.
func (e Epoch[S]) JulianDate() float64 {
	c := e.Civil()
	jd := satellite.JDay(c.Year, int(c.Month), c.Day, c.Hour, c.Minute, c.Second)
	return jd + float64(c.Attosecond)/float64(AttosecondsPerSecond)/secondsPerDay
}

// Time returns the civil time read on S as a time.Time in time.UTC, truncated to
// nanoseconds. A UTC leap second normalizes into the following minute.
func (e Epoch[S]) Time() time.Time {
	c := e.Civil()
	return time.Date(c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second, int(c.Attosecond/1_000_000_000), time.UTC)
}

// String formats e as "YYYY-MM-DD HH:MM:SS[.fraction] SCALE".
func (e Epoch[S]) String() string {
	return e.Civil().String() + " " + e.Scale().String()
}

// Add returns the epoch d after e.
func (e Epoch[S]) Add(d Duration) Epoch[S] { return Epoch[S]{at: e.at.Add(d)} }

// Sub returns the exact span e-o.
func (e Epoch[S]) Sub(o Epoch[S]) Duration { return e.at.Sub(o.at) }

// Compare returns -1, 0 or 1 as e is before, equal to or after o.
func (e Epoch[S]) Compare(o Epoch[S]) int { return e.at.Compare(o.at) }

// Before reports whether e is before o.
func (e Epoch[S]) Before(o Epoch[S]) bool { return e.Compare(o) < 0 }

// After reports whether e is after o.
func (e Epoch[S]) After(o Epoch[S]) bool { return e.Compare(o) > 0 }

// Equal reports whether e and o are the same instant.
func (e Epoch[S]) Equal(o Epoch[S]) bool { return e.at == o.at }
