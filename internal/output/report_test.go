package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ivoronin/gnssmask/internal/filter"
	"github.com/ivoronin/gnssmask/internal/gnsstime"
	"github.com/ivoronin/gnssmask/internal/observation"
)

func sampleMatches(t *testing.T) *MatchReport {
	t.Helper()
	records, err := observation.ReadCSV(strings.NewReader(
		"time,satellite,band,elevation,snr\n" +
			"2024-10-01 08:00:01,C19,B1,42,\n" +
			"2024-10-01 08:00:02,E05,E5,7.5,28.1\n"))
	if err != nil {
		t.Fatal(err)
	}
	return &MatchReport{
		Expression: "!=G01",
		Policy:     filter.MismatchPass.String(),
		Files: []FileMatches{
			{File: "a.csv", Read: 3, Records: records[:1]},
			{File: "b.csv", Read: 1, Records: records[1:]},
		},
	}
}

func TestMatchReport_FormatText(t *testing.T) {
	t.Parallel()

	out := sampleMatches(t).FormatText()
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "FILE") {
		t.Errorf("header = %q", lines[0])
	}
	for _, want := range []string{"a.csv", "2024-10-01 08:00:01", "C19", "BDS", "B1", "42"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row 1 missing %q: %q", want, lines[1])
		}
	}
	if fields := strings.Fields(lines[1]); fields[len(fields)-1] != "-" || fields[len(fields)-2] != "-" {
		t.Errorf("missing SNR and azimuth should print as '-': %q", lines[1])
	}
}

func TestMatchReport_FormatJSON(t *testing.T) {
	t.Parallel()

	data, err := sampleMatches(t).FormatJSON()
	if err != nil {
		t.Fatalf("FormatJSON error: %v", err)
	}

	var parsed struct {
		Matched int `json:"matched"`
		Files   []struct {
			File    string                   `json:"file"`
			Records []map[string]interface{} `json:"records"`
		} `json:"files"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Matched != 2 {
		t.Errorf("matched = %d, want 2", parsed.Matched)
	}
	rec := parsed.Files[0].Records[0]
	if rec["satellite"] != "C19" || rec["constellation"] != "BDS" {
		t.Errorf("unexpected record: %v", rec)
	}
	if rec["utc"] != "2024-10-01 08:00:01" {
		t.Errorf("utc = %v", rec["utc"])
	}
	if rec["gps_week"] != float64(2334) {
		t.Errorf("gps_week = %v, want 2334", rec["gps_week"])
	}
	if _, ok := rec["snr"]; ok {
		t.Error("missing SNR should be omitted")
	}
	if rec["elevation"] != float64(42) {
		t.Errorf("elevation = %v, want 42", rec["elevation"])
	}
}

func TestMatchReportItemsAndConstellation(t *testing.T) {
	t.Parallel()

	report := sampleMatches(t)
	report.Items = []string{"==BDS|GAL"}
	// A record built without a constellation reports the satellite's.
	report.Files[1].Records[0].Constellation = ""

	data, err := report.FormatJSON()
	if err != nil {
		t.Fatal(err)
	}
	var parsed struct {
		Items []string `json:"items"`
		Files []struct {
			Records []map[string]interface{} `json:"records"`
		} `json:"files"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(parsed.Items) != 1 || parsed.Items[0] != "==BDS|GAL" {
		t.Errorf("items = %v", parsed.Items)
	}
	if got := parsed.Files[1].Records[0]["constellation"]; got != "GAL" {
		t.Errorf("constellation = %v, want GAL", got)
	}

	report.Items = nil
	data, err = report.FormatJSON()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), `"items"`) {
		t.Error("empty items should be omitted")
	}
}

func TestClassifyReport(t *testing.T) {
	t.Parallel()

	var report ClassifyReport
	for _, lit := range []string{"G01", "15.2e", "2024-10-01 08:00:01", "??"} {
		v, err := filter.Classify(lit)
		report.Results = append(report.Results, Classification{Literal: lit, Value: v, Err: err})
	}
	if !report.Failed() {
		t.Error("Failed() = false with an unrecognized literal")
	}

	text := report.FormatText()
	for _, want := range []string{"G01 (GPS)", "measurement", "2024-10-01 08:00:19 GPST", "unrecognized literal"} {
		if !strings.Contains(text, want) {
			t.Errorf("text output missing %q:\n%s", want, text)
		}
	}

	data, err := report.FormatJSON()
	if err != nil {
		t.Fatal(err)
	}
	var parsed []map[string]string
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed[0]["constellation"] != "GPS" || parsed[1]["unit"] != "e" || parsed[2]["gpst"] != "2024-10-01 08:00:19" {
		t.Errorf("unexpected details: %v", parsed)
	}
	if parsed[3]["error"] == "" || parsed[3]["kind"] != "" {
		t.Errorf("error entry = %v", parsed[3])
	}
}

func TestConvertReport(t *testing.T) {
	t.Parallel()

	utc, err := gnsstime.FromUTCDate(2024, 10, 1, 8, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	gpst := gnsstime.Convert[gnsstime.GPST](utc)
	week, tow := gpst.Week()
	report := &ConvertReport{Results: []Conversion{{
		Input:       "2024-10-01 08:00:01",
		From:        gnsstime.ScaleUTC,
		To:          gnsstime.ScaleGPST,
		Civil:       gpst.Civil(),
		Week:        week,
		TimeOfWeek:  tow,
		SinceOrigin: gpst.SinceOrigin(),
		JulianDate:  gpst.JulianDate(),
		GPSMinusUTC: gnsstime.GPSMinusUTCAt(gpst.Instant()),
	}}}

	text := report.FormatText()
	for _, want := range []string{"UTC", "GPST", "2024-10-01 08:00:19", "2334", "201619s", "18s"} {
		if !strings.Contains(text, want) {
			t.Errorf("text output missing %q:\n%s", want, text)
		}
	}

	data, err := report.FormatJSON()
	if err != nil {
		t.Fatal(err)
	}
	var parsed []map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed[0]["time_of_week"] != "201619s" || parsed[0]["gps_minus_utc"] != float64(18) {
		t.Errorf("unexpected JSON: %v", parsed[0])
	}
}

func TestTablesReport(t *testing.T) {
	t.Parallel()

	report := &TablesReport{Source: "built-in", Tables: filter.DefaultTables()}
	text := report.FormatText()
	if !strings.HasPrefix(text, "source: built-in\n") {
		t.Errorf("missing source line:\n%s", text)
	}
	for _, want := range []string{"constellation", "BDS", "system", "band-prefix", "unit"} {
		if !strings.Contains(text, want) {
			t.Errorf("text output missing %q", want)
		}
	}

	data, err := report.FormatJSON()
	if err != nil {
		t.Fatal(err)
	}
	var parsed struct {
		Systems      map[string]string `json:"systems"`
		BandPrefixes []string          `json:"band_prefixes"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Systems["C"] != "BDS" {
		t.Errorf("systems[C] = %q, want BDS", parsed.Systems["C"])
	}
	if strings.Join(parsed.BandPrefixes, "") != "BEGL" {
		t.Errorf("band_prefixes = %v, want sorted B E G L", parsed.BandPrefixes)
	}
}

type failingFormatter struct{}

func (failingFormatter) FormatText() string          { return "" }
func (failingFormatter) FormatJSON() ([]byte, error) { return nil, errors.New("boom") }

func TestWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, &TablesReport{Source: "x", Tables: filter.DefaultTables()}, FormatFor(false)); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("Write should end output with a newline")
	}

	buf.Reset()
	if err := Write(&buf, failingFormatter{}, FormatText); err != nil || buf.Len() != 0 {
		t.Errorf("empty text report: err=%v, wrote %q", err, buf.String())
	}
	if err := Write(&buf, failingFormatter{}, FormatFor(true)); err == nil {
		t.Error("expected JSON error to propagate")
	}
}
