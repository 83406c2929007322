package output

import (
	"encoding/json"

	"github.com/ivoronin/gnssmask/internal/filter"
)

// Classification is the outcome of classifying one literal.
type Classification struct {
	Literal string
	Value   filter.Value // nil on error
	Err     error
}

// ClassifyReport lists classified literals in argument order.
type ClassifyReport struct {
	Results []Classification
}

// Failed reports whether any literal could not be classified.
func (r *ClassifyReport) Failed() bool {
	for _, c := range r.Results {
		if c.Err != nil {
			return true
		}
	}
	return false
}

// FormatText returns a LITERAL / KIND / VALUE table. Errors replace the value.
func (r *ClassifyReport) FormatText() string {
	tb := NewTable("LITERAL", "KIND", "VALUE")
	for _, c := range r.Results {
		if c.Err != nil {
			tb.Row(c.Literal, "error", c.Err.Error())
			continue
		}
		tb.Row(c.Literal, c.Value.Kind().String(), describe(c.Value))
	}
	return tb.String()
}

// FormatJSON returns a JSON array of classifications.
func (r *ClassifyReport) FormatJSON() ([]byte, error) {
	out := make([]jsonClassification, len(r.Results))
	for i, c := range r.Results {
		jc := jsonClassification{Literal: c.Literal}
		if c.Err != nil {
			jc.Error = c.Err.Error()
		} else {
			jc.Kind = c.Value.Kind().String()
			jc.Value = c.Value.String()
			switch v := c.Value.(type) {
			case filter.SatelliteID:
				jc.Constellation = v.Constellation.String()
			case filter.Measurement:
				jc.Unit = v.Unit.String()
			case filter.Instant:
				jc.GPST = v.Epoch.Civil().String()
			}
		}
		out[i] = jc
	}
	return json.MarshalIndent(out, "", "  ")
}

// describe adds the details a bare value string leaves implicit.
func describe(v filter.Value) string {
	switch v := v.(type) {
	case filter.SatelliteID:
		return v.String() + " (" + v.Constellation.String() + ")"
	case filter.Instant:
		return v.String() + " UTC = " + v.Epoch.String()
	default:
		return v.String()
	}
}

type jsonClassification struct {
	Literal       string `json:"literal"`
	Kind          string `json:"kind,omitempty"`
	Value         string `json:"value,omitempty"`
	Constellation string `json:"constellation,omitempty"`
	Unit          string `json:"unit,omitempty"`
	GPST          string `json:"gpst,omitempty"`
	Error         string `json:"error,omitempty"`
}
