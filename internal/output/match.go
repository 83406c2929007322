package output

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/ivoronin/gnssmask/internal/gnsstime"
	"github.com/ivoronin/gnssmask/internal/observation"
)

// MatchReport lists the records of each input file that passed a mask.
type MatchReport struct {
	Expression string
	Items      []string // multi-value items ANDed with the mask
	Policy     string
	Files      []FileMatches
}

// FileMatches holds the matching records of one input file, in input order.
type FileMatches struct {
	File    string
	Read    int
	Records []observation.Record
}

// Matched returns the total number of matching records.
func (r *MatchReport) Matched() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Records)
	}
	return n
}

// FormatText returns one table row per matching record.
func (r *MatchReport) FormatText() string {
	tb := NewTable("FILE", "LINE", "TIME (UTC)", "SATELLITE", "SYSTEM", "BAND", "ELEV", "SNR", "AZ")
	for _, f := range r.Files {
		for _, rec := range f.Records {
			tb.Row(
				f.File,
				strconv.Itoa(rec.Line),
				gnsstime.Convert[gnsstime.UTC](rec.Time).Civil().String(),
				rec.Satellite.String(),
				rec.ConstellationOf().String(),
				rec.Band.String(),
				formatMeasurement(rec.Elevation),
				formatMeasurement(rec.SNR),
				formatMeasurement(rec.Azimuth),
			)
		}
	}
	return tb.String()
}

// FormatJSON returns the report with one object per matching record.
// Missing measurements are omitted.
func (r *MatchReport) FormatJSON() ([]byte, error) {
	jr := jsonMatchReport{
		Expression: r.Expression,
		Items:      r.Items,
		Policy:     r.Policy,
		Matched:    r.Matched(),
		Files:      make([]jsonFileMatches, len(r.Files)),
	}
	for i, f := range r.Files {
		jf := jsonFileMatches{File: f.File, Read: f.Read, Records: make([]jsonRecord, len(f.Records))}
		for j, rec := range f.Records {
			week, tow := rec.Time.Week()
			jf.Records[j] = jsonRecord{
				Line:          rec.Line,
				UTC:           gnsstime.Convert[gnsstime.UTC](rec.Time).Civil().String(),
				GPSWeek:       week,
				TimeOfWeek:    tow.Float(),
				Satellite:     rec.Satellite.String(),
				Constellation: rec.ConstellationOf().String(),
				Band:          rec.Band.String(),
				Elevation:     optional(rec.Elevation),
				SNR:           optional(rec.SNR),
				Azimuth:       optional(rec.Azimuth),
			}
		}
		jr.Files[i] = jf
	}
	return json.MarshalIndent(jr, "", "  ")
}

func formatMeasurement(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

type jsonMatchReport struct {
	Expression string            `json:"expression"`
	Items      []string          `json:"items,omitempty"`
	Policy     string            `json:"policy"`
	Matched    int               `json:"matched"`
	Files      []jsonFileMatches `json:"files"`
}

type jsonFileMatches struct {
	File    string       `json:"file"`
	Read    int          `json:"read"`
	Records []jsonRecord `json:"records"`
}

type jsonRecord struct {
	Line          int      `json:"line"`
	UTC           string   `json:"utc"`
	GPSWeek       int      `json:"gps_week"`
	TimeOfWeek    float64  `json:"gps_tow"`
	Satellite     string   `json:"satellite"`
	Constellation string   `json:"constellation"`
	Band          string   `json:"band,omitempty"`
	Elevation     *float64 `json:"elevation,omitempty"`
	SNR           *float64 `json:"snr,omitempty"`
	Azimuth       *float64 `json:"azimuth,omitempty"`
}
