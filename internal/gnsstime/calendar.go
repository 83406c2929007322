package gnsstime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned when civil date or time fields are out of range.
var ErrInvalidDate = errors.New("invalid date")

// CivilLayout is the textual form accepted by ParseCivil, with an optional fraction.
const CivilLayout = "YYYY-MM-DD HH:MM:SS"

const (
	secondsPerDay  = 86400
	secondsPerWeek = 7 * secondsPerDay
)

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%400 == 0 || (year%4 == 0 && year%100 != 0)
}

var monthDays = [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysIn returns the number of days in month of year, or 0 for an invalid month.
func DaysIn(year int, month time.Month) int {
	if month < time.January || month > time.December {
		return 0
	}
	if month == time.February && IsLeapYear(year) {
		return 29
	}
	return monthDays[month-1]
}

// Civil is a broken-down calendar date and time of day as read on some scale.
// Second is 60 only while UTC is inside an inserted leap second.
type Civil struct {
	Year       int
	Month      time.Month
	Day        int
	Hour       int
	Minute     int
	Second     int
	Attosecond int64
}

// String formats c as "YYYY-MM-DD HH:MM:SS" with a trailing fraction when non-zero.
func (c Civil) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d%s",
		c.Year, int(c.Month), c.Day, c.Hour, c.Minute, c.Second, formatFraction(c.Attosecond))
}

// validate checks field ranges. Second 60 is accepted here; callers decide whether it is a real leap second.
func (c Civil) validate() error {
	switch {
	case c.Month < time.January || c.Month > time.December:
		return fmt.Errorf("%w: month %d out of range", ErrInvalidDate, int(c.Month))
	case c.Day < 1 || c.Day > DaysIn(c.Year, c.Month):
		return fmt.Errorf("%w: day %d out of range for %04d-%02d", ErrInvalidDate, c.Day, c.Year, int(c.Month))
	case c.Hour < 0 || c.Hour > 23:
		return fmt.Errorf("%w: hour %d out of range", ErrInvalidDate, c.Hour)
	case c.Minute < 0 || c.Minute > 59:
		return fmt.Errorf("%w: minute %d out of range", ErrInvalidDate, c.Minute)
	case c.Second < 0 || c.Second > 60:
		return fmt.Errorf("%w: second %d out of range", ErrInvalidDate, c.Second)
	case c.Attosecond < 0 || c.Attosecond >= AttosecondsPerSecond:
		return fmt.Errorf("%w: fraction out of range", ErrInvalidDate)
	}
	return nil
}

var civilPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2}) (\d{2}):(\d{2}):(\d{2})(?:\.(\d{1,18}))?$`)

// ParseCivil parses "YYYY-MM-DD HH:MM:SS" with an optional fraction of up to 18 digits.
// Field ranges are not checked; the Epoch constructors do that.
func ParseCivil(s string) (Civil, error) {
	m := civilPattern.FindStringSubmatch(s)
	if m == nil {
		return Civil{}, fmt.Errorf("%w: %q does not match %s", ErrInvalidDate, s, CivilLayout)
	}

	// The pattern guarantees decimal digits, so Atoi cannot fail.
	atoi := func(v string) int {
		n, _ := strconv.Atoi(v)
		return n
	}

	c := Civil{
		Year:   atoi(m[1]),
		Month:  time.Month(atoi(m[2])),
		Day:    atoi(m[3]),
		Hour:   atoi(m[4]),
		Minute: atoi(m[5]),
		Second: atoi(m[6]),
	}
	if m[7] != "" {
		frac := m[7] + strings.Repeat("0", 18-len(m[7]))
		c.Attosecond, _ = strconv.ParseInt(frac, 10, 64)
	}
	return c, nil
}

// daysFromCivil returns days since 1970-01-01 in the proleptic Gregorian calendar.
func daysFromCivil(year int, month time.Month, day int) int64 {
	y := int64(year)
	m := int64(month)
	if m <= 2 {
		y--
	}
	era := y
	if era < 0 {
		era -= 399
	}
	era /= 400
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// civilFromDays is the inverse of daysFromCivil.
func civilFromDays(z int64) (int, time.Month, int) {
	z += 719468
	era := z
	if era < 0 {
		era -= 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if m > 12 {
		m -= 12
	}
	if m <= 2 {
		y++
	}
	return int(y), time.Month(m), int(d)
}

// gpsOriginDays is 1980-01-06 counted in days since 1970-01-01.
var gpsOriginDays = daysFromCivil(1980, time.January, 6)

// labelOf returns the civil fields as seconds since the 1980-01-06 00:00:00 label.
// Second 60 is counted as if it were the first second of the next minute.
func labelOf(c Civil) int64 {
	days := daysFromCivil(c.Year, c.Month, c.Day) - gpsOriginDays
	return days*secondsPerDay + int64(c.Hour)*3600 + int64(c.Minute)*60 + int64(c.Second)
}

// civilOf is the inverse of labelOf for labels that do not fall inside a leap second.
func civilOf(sec, atto int64) Civil {
	days := floorDiv(sec, secondsPerDay)
	rem := sec - days*secondsPerDay
	y, m, d := civilFromDays(days + gpsOriginDays)
	return Civil{
		Year:       y,
		Month:      m,
		Day:        d,
		Hour:       int(rem / 3600),
		Minute:     int(rem % 3600 / 60),
		Second:     int(rem % 60),
		Attosecond: atto,
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
