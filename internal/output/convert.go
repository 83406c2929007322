package output

import (
	"encoding/json"
	"strconv"

	"github.com/ivoronin/gnssmask/internal/gnsstime"
)

// Conversion is one epoch read in a target time scale.
type Conversion struct {
	Input       string
	From        gnsstime.ScaleID
	To          gnsstime.ScaleID
	Civil       gnsstime.Civil
	Week        int
	TimeOfWeek  gnsstime.Duration
	SinceOrigin gnsstime.Duration
	JulianDate  float64
	GPSMinusUTC int
}

// ConvertReport lists conversions in argument order.
type ConvertReport struct {
	Results []Conversion
}

// FormatText returns one row per conversion.
func (r *ConvertReport) FormatText() string {
	tb := NewTable("INPUT", "FROM", "TO", "CIVIL", "WEEK", "TOW", "SECONDS", "JD", "GPS-UTC")
	for _, c := range r.Results {
		tb.Row(
			c.Input,
			c.From.String(),
			c.To.String(),
			c.Civil.String(),
			strconv.Itoa(c.Week),
			c.TimeOfWeek.String(),
			c.SinceOrigin.String(),
			strconv.FormatFloat(c.JulianDate, 'f', 6, 64),
			strconv.Itoa(c.GPSMinusUTC)+"s",
		)
	}
	return tb.String()
}

// FormatJSON returns a JSON array of conversions. Durations are decimal strings
// so attosecond digits survive.
func (r *ConvertReport) FormatJSON() ([]byte, error) {
	out := make([]jsonConversion, len(r.Results))
	for i, c := range r.Results {
		out[i] = jsonConversion{
			Input:       c.Input,
			From:        c.From.String(),
			To:          c.To.String(),
			Civil:       c.Civil.String(),
			Week:        c.Week,
			TimeOfWeek:  c.TimeOfWeek.String(),
			SinceOrigin: c.SinceOrigin.String(),
			JulianDate:  c.JulianDate,
			GPSMinusUTC: c.GPSMinusUTC,
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

type jsonConversion struct {
	Input       string  `json:"input"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Civil       string  `json:"civil"`
	Week        int     `json:"week"`
	TimeOfWeek  string  `json:"time_of_week"`
	SinceOrigin string  `json:"since_origin"`
	JulianDate  float64 `json:"julian_date"`
	GPSMinusUTC int     `json:"gps_minus_utc"`
}
