package gnsstime

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

//go:embed data/leapseconds.csv
var dataFS embed.FS

// taiMinusGPST is the constant TAI-GPST offset in seconds.
const taiMinusGPST = 19

// LeapSecond is one row of the UTC leap-second history: from 00:00:00 UTC on Date,
// TAI-UTC equals TAIMinusUTC seconds.
type LeapSecond struct {
	Date        Civil
	TAIMinusUTC int
}

// GPSMinusUTC returns the GPST-UTC offset in seconds in effect from Date.
func (l LeapSecond) GPSMinusUTC() int { return l.TAIMinusUTC - taiMinusGPST }

// leapEntry is a LeapSecond in label form for fast lookups.
type leapEntry struct {
	label  int64 // UTC label of Date 00:00:00, seconds since 1980-01-06 00:00:00
	offset int64 // GPST-UTC from label onwards
}

var (
	leapSeconds []LeapSecond
	leapTable   []leapEntry
)

func init() {
	if err := loadLeapSeconds(); err != nil {
		panic(fmt.Sprintf("failed to load leap seconds: %v", err))
	}
}

func loadLeapSeconds() error {
	f, err := dataFS.Open("data/leapseconds.csv")
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	rows, err := parseLeapSeconds(f)
	if err != nil {
		return err
	}
	leapSeconds = rows
	leapTable = buildLeapTable(rows)
	return nil
}

// parseLeapSeconds reads "date,tai_utc" rows. Rows must be in date order and
// each step after the first must insert exactly one second.
func parseLeapSeconds(r io.Reader) ([]LeapSecond, error) {
	cr := csv.NewReader(r)

	// Skip header
	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []LeapSecond
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if len(record) != 2 {
			return nil, fmt.Errorf("record %v: want 2 fields, got %d", record, len(record))
		}

		date, err := ParseCivil(record[0] + " 00:00:00")
		if err != nil {
			return nil, fmt.Errorf("parse date %s: %w", record[0], err)
		}
		if err := date.validate(); err != nil {
			return nil, fmt.Errorf("parse date %s: %w", record[0], err)
		}
		n, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("parse offset %s: %w", record[1], err)
		}

		if len(rows) > 0 {
			prev := rows[len(rows)-1]
			if labelOf(date) <= labelOf(prev.Date) {
				return nil, fmt.Errorf("leap second %s is not after %s", date, prev.Date)
			}
			if n != prev.TAIMinusUTC+1 {
				return nil, fmt.Errorf("leap second %s: TAI-UTC %d does not follow %d", date, n, prev.TAIMinusUTC)
			}
		}
		rows = append(rows, LeapSecond{Date: date, TAIMinusUTC: n})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no leap seconds")
	}
	return rows, nil
}

func buildLeapTable(rows []LeapSecond) []leapEntry {
	table := make([]leapEntry, len(rows))
	for i, r := range rows {
		table[i] = leapEntry{label: labelOf(r.Date), offset: int64(r.GPSMinusUTC())}
	}
	return table
}

// LeapSeconds returns a copy of the leap-second history.
func LeapSeconds() []LeapSecond {
	out := make([]LeapSecond, len(leapSeconds))
	copy(out, leapSeconds)
	return out
}

// utcOffsetAt returns GPST-UTC in seconds at instant sec (seconds since the GPST origin)
// and whether sec lies inside an inserted leap second.
// Instants before the first tabled entry use the first offset.
func utcOffsetAt(sec int64) (offset int64, inLeap bool) {
	i := sort.Search(len(leapTable), func(i int) bool {
		e := leapTable[i]
		return sec < e.label+e.offset
	})
	if i == 0 {
		return leapTable[0].offset, false
	}
	offset = leapTable[i-1].offset
	if i < len(leapTable) && sec >= leapTable[i].label+offset {
		inLeap = true
	}
	return offset, inLeap
}

// utcOffsetForLabel returns GPST-UTC in seconds for a UTC label (seconds since the 1980-01-06 label).
func utcOffsetForLabel(label int64) int64 {
	i := sort.Search(len(leapTable), func(i int) bool {
		return label < leapTable[i].label
	})
	if i == 0 {
		return leapTable[0].offset
	}
	return leapTable[i-1].offset
}

// isLeapInsertion reports whether a leap second is inserted just before the given UTC label.
func isLeapInsertion(label int64) bool {
	i := sort.Search(len(leapTable), func(i int) bool {
		return leapTable[i].label >= label
	})
	return i > 0 && i < len(leapTable) && leapTable[i].label == label
}

// GPSMinusUTCAt returns the GPST-UTC offset in whole seconds at the given instant.
// Inside an inserted leap second the offset still has its previous value.
func GPSMinusUTCAt(at Instant) int {
	off, _ := utcOffsetAt(at.sec)
	return int(off)
}
