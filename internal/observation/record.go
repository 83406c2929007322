// Package observation provides GNSS observation records and their CSV reader.
package observation

import (
	"math"

	"github.com/ivoronin/gnssmask/internal/filter"
	"github.com/ivoronin/gnssmask/internal/gnsstime"
)

// Record is one observation of one signal from one satellite.
// Measurements that were not observed hold NaN.
// Constellation is reported as given and may disagree with the satellite letter;
// when empty, the satellite's constellation stands in.
type Record struct {
	Line          int // source line, 0 when not read from a file
	Time          gnsstime.Epoch[gnsstime.GPST]
	Satellite     filter.SatelliteID
	Constellation filter.Constellation
	Band          filter.Band
	Elevation     float64 // degrees
	SNR           float64 // dB-Hz
	Azimuth       float64 // degrees
}

// ConstellationOf returns the record's constellation, falling back to the satellite's.
func (r Record) ConstellationOf() filter.Constellation {
	if r.Constellation != "" {
		return r.Constellation
	}
	return r.Satellite.Constellation
}

// Field implements filter.Record.
func (r Record) Field(kind filter.Kind, unit filter.Unit) (filter.Value, bool) {
	switch kind {
	case filter.KindInstant:
		return filter.InstantOf(r.Time), true
	case filter.KindSatellite:
		return r.Satellite, true
	case filter.KindConstellation:
		return r.ConstellationOf(), true
	case filter.KindBand:
		return r.Band, r.Band != ""
	case filter.KindMeasurement:
		return r.measurement(unit)
	}
	return nil, false
}

func (r Record) measurement(unit filter.Unit) (filter.Value, bool) {
	var v float64
	switch unit {
	case filter.UnitElevation:
		v = r.Elevation
	case filter.UnitSNR:
		v = r.SNR
	case filter.UnitAzimuth:
		v = r.Azimuth
	default:
		return nil, false
	}
	if math.IsNaN(v) {
		return nil, false
	}
	return filter.Measurement{Magnitude: v, Unit: unit}, true
}
