package generate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ivoronin/gnssmask/internal/gnsstime"
)

// dateLayout is the date format of the embedded leap-second table.
const dateLayout = "2006-01-02"

// LeapEntry is one row of the leap-second history: from 00:00:00 UTC on Date,
// TAI-UTC equals TAIMinusUTC seconds.
type LeapEntry struct {
	Date        time.Time // midnight UTC
	TAIMinusUTC int
}

// LeapTable is a parsed leap-second history with its validity window.
type LeapTable struct {
	Entries  []LeapEntry
	Updated  time.Time // last update of the source, zero if unknown
	Expires  time.Time // end of the validity window, zero if unknown
	Verified bool      // source hash was present and matched
}

// Expired reports whether the table's validity window ended before now.
func (t *LeapTable) Expired(now time.Time) bool {
	return !t.Expires.IsZero() && now.After(t.Expires)
}

// Validate checks that entries are in date order, start at midnight and step by one second.
func (t *LeapTable) Validate() error {
	if len(t.Entries) == 0 {
		return fmt.Errorf("no leap seconds")
	}
	for i, e := range t.Entries {
		if !e.Date.Equal(e.Date.Truncate(24 * time.Hour)) {
			return fmt.Errorf("leap second %s does not start at midnight UTC", e.Date.Format(time.RFC3339))
		}
		if i == 0 {
			continue
		}
		prev := t.Entries[i-1]
		if !e.Date.After(prev.Date) {
			return fmt.Errorf("leap second %s is not after %s", e.Date.Format(dateLayout), prev.Date.Format(dateLayout))
		}
		if e.TAIMinusUTC != prev.TAIMinusUTC+1 {
			return fmt.Errorf("leap second %s: TAI-UTC %d does not follow %d", e.Date.Format(dateLayout), e.TAIMinusUTC, prev.TAIMinusUTC)
		}
	}
	return nil
}

// NewSince returns the entries later than the last row of the embedded table.
func (t *LeapTable) NewSince(embedded []gnsstime.LeapSecond) []LeapEntry {
	if len(embedded) == 0 {
		return t.Entries
	}
	last := embedded[len(embedded)-1].Date
	cutoff := time.Date(last.Year, last.Month, last.Day, 0, 0, 0, 0, time.UTC)

	var added []LeapEntry
	for _, e := range t.Entries {
		if e.Date.After(cutoff) {
			added = append(added, e)
		}
	}
	return added
}

// WriteCSV writes the table in the embedded format.
// Format: date,tai_utc
// Sorted by: date (ascending)
func (t *LeapTable) WriteCSV(out io.Writer) error {
	w := csv.NewWriter(out)

	// Write header
	if err := w.Write([]string{"date", "tai_utc"}); err != nil {
		return err
	}

	// Write data
	for _, e := range t.Entries {
		if err := w.Write([]string{e.Date.Format(dateLayout), strconv.Itoa(e.TAIMinusUTC)}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
