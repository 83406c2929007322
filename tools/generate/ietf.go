package generate

import (
	"bufio"
	"bytes"
	"crypto/sha1" //nolint:gosec // G505: the upstream file is hashed with SHA-1
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// IETFLeapSecondsURL is the IANA-hosted copy of the IERS leap-seconds.list.
const IETFLeapSecondsURL = "https://data.iana.org/time-zones/tzdb/leap-seconds.list"

// ntpEpoch is the origin of the NTP timestamps used in leap-seconds.list.
var ntpEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ErrHashMismatch means the #h line does not match the file contents.
var ErrHashMismatch = errors.New("leap-seconds.list hash mismatch")

// IETFGenerator implements LeapGenerator for the leap-seconds.list file.
type IETFGenerator struct {
	URL string // defaults to IETFLeapSecondsURL
	Now func() time.Time
}

// Name returns the generator's display name.
func (IETFGenerator) Name() string { return "IETF leap-seconds.list" }

// Generate fetches and parses the list. An expired or unhashed list is used with a warning.
func (g IETFGenerator) Generate() (*LeapTable, error) {
	url := g.URL
	if url == "" {
		url = IETFLeapSecondsURL
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	data, err := FetchURL(url)
	if err != nil {
		return nil, err
	}

	table, err := ParseLeapSecondsList(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if table.Expired(now()) {
		Log.Warn("leap-seconds.list expired on %s; fetch a newer copy", table.Expires.Format(dateLayout))
	}
	if !table.Verified {
		Log.Warn("leap-seconds.list has no #h hash line; contents not verified")
	}
	return table, nil
}

// ParseLeapSecondsList parses the IERS/IETF leap-seconds.list format:
//
//	#$	 3929093563          (last update, NTP seconds)
//	#@	 3960057600          (expiration, NTP seconds)
//	2272060800	10	# 1 Jan 1972
//	#h	16edd0f0 3666784f 37db6bdd e74ced87 59af48f1
//
// When a #h line is present, the SHA-1 of the update time, expiration time and
// the first two fields of every data line must match it.
func ParseLeapSecondsList(r io.Reader) (*LeapTable, error) {
	table := &LeapTable{}
	var (
		updated, expires string
		data             strings.Builder
		hash             []string
	)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())

		switch {
		case text == "":
			continue
		case strings.HasPrefix(text, "#$"):
			updated = strings.TrimSpace(text[2:])
			t, err := parseNTP(updated)
			if err != nil {
				return nil, fmt.Errorf("line %d: last update: %w", line, err)
			}
			table.Updated = t
		case strings.HasPrefix(text, "#@"):
			expires = strings.TrimSpace(text[2:])
			t, err := parseNTP(expires)
			if err != nil {
				return nil, fmt.Errorf("line %d: expiration: %w", line, err)
			}
			table.Expires = t
		case strings.HasPrefix(text, "#h"):
			hash = strings.Fields(text[2:])
		case strings.HasPrefix(text, "#"):
			continue
		default:
			fields := strings.Fields(text)
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: want NTP time and offset, got %q", line, text)
			}
			date, err := parseNTP(fields[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			offset, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: offset %q: %w", line, fields[1], err)
			}
			table.Entries = append(table.Entries, LeapEntry{Date: date, TAIMinusUTC: offset})
			data.WriteString(fields[0])
			data.WriteString(fields[1])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read leap-seconds.list: %w", err)
	}

	if hash != nil {
		if err := verifyHash(updated+expires+data.String(), hash); err != nil {
			return nil, err
		}
		table.Verified = true
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func parseNTP(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return time.Time{}, fmt.Errorf("invalid NTP timestamp %q", s)
	}
	return ntpEpoch.Add(time.Duration(n) * time.Second), nil
}

// verifyHash compares the SHA-1 of content with five hex words. Words may omit
// leading zeros.
func verifyHash(content string, words []string) error {
	sum := sha1.Sum([]byte(content)) //nolint:gosec // G401: format-defined checksum
	if len(words) != len(sum)/4 {
		return fmt.Errorf("%w: want %d hash words, got %d", ErrHashMismatch, len(sum)/4, len(words))
	}
	for i, w := range words {
		v, err := strconv.ParseUint(w, 16, 32)
		if err != nil {
			return fmt.Errorf("%w: word %q: %v", ErrHashMismatch, w, err)
		}
		if uint32(v) != binary.BigEndian.Uint32(sum[i*4:]) {
			return fmt.Errorf("%w: got %x", ErrHashMismatch, sum)
		}
	}
	return nil
}
