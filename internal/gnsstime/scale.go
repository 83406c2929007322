package gnsstime

import (
	"fmt"
	"strings"
)

// ScaleID identifies a time scale at runtime.
type ScaleID int

const (
	ScaleGPST ScaleID = iota + 1
	ScaleUTC
	ScaleBDT
)

var scaleNames = map[ScaleID]string{
	ScaleGPST: "GPST",
	ScaleUTC:  "UTC",
	ScaleBDT:  "BDT",
}

func (s ScaleID) String() string {
	if name, ok := scaleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ScaleID(%d)", int(s))
}

// ParseScaleID parses a scale name case-insensitively ("gpst", "UTC", "bdt").
func ParseScaleID(name string) (ScaleID, error) {
	for id, n := range scaleNames {
		if strings.EqualFold(n, name) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown time scale %q", name)
}

// Scale is the type-level tag carried by Epoch. GPST, UTC and BDT implement it.
type Scale interface {
	ID() ScaleID
}

// GPST is GPS Time: continuous, origin 1980-01-06 00:00:00 UTC.
type GPST struct{}

// UTC is Coordinated Universal Time, with inserted leap seconds.
type UTC struct{}

// BDT is BeiDou Time: continuous, 14 s behind GPST, origin 2006-01-01 00:00:00 UTC.
type BDT struct{}

func (GPST) ID() ScaleID { return ScaleGPST }
func (UTC) ID() ScaleID  { return ScaleUTC }
func (BDT) ID() ScaleID  { return ScaleBDT }

func scaleOf[S Scale]() ScaleID {
	var s S
	return s.ID()
}

const (
	// gpstMinusBDT is the fixed GPST-BDT offset in seconds.
	gpstMinusBDT = 14
	// bdtOriginLabel is the label of 2006-01-01 00:00:00, GPS week 1356.
	bdtOriginLabel = 1356 * secondsPerWeek
)

// originLabel returns the label of the scale's own origin.
func (s ScaleID) originLabel() int64 {
	if s == ScaleBDT {
		return bdtOriginLabel
	}
	return 0
}
