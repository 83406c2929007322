package observation

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/ivoronin/gnssmask/internal/filter"
	"github.com/ivoronin/gnssmask/internal/gnsstime"
)

const sample = `time,satellite,band,elevation,snr,azimuth
# first epoch
2024-10-01 08:00:01,G01,L2,15.2,33.7,120.5
2024-10-01 08:00:01,C19,B1,42,,
2024-10-01 08:00:02,E05,E5,7.5,28.1,301
`

func TestReadCSV(t *testing.T) {
	t.Parallel()

	records, err := ReadCSV(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	first := records[0]
	if first.Line != 3 {
		t.Errorf("Line = %d, want 3", first.Line)
	}
	if got := first.Time.String(); got != "2024-10-01 08:00:19 GPST" {
		t.Errorf("Time = %s, want 2024-10-01 08:00:19 GPST", got)
	}
	if first.Satellite.String() != "G01" || first.Constellation != filter.GPS {
		t.Errorf("Satellite = %s (%s), want G01 (GPS)", first.Satellite, first.Constellation)
	}
	if first.Band != "L2" || first.Elevation != 15.2 || first.SNR != 33.7 || first.Azimuth != 120.5 {
		t.Errorf("unexpected values: %+v", first)
	}

	second := records[1]
	if second.Constellation != filter.BeiDou {
		t.Errorf("Constellation = %s, want BDS", second.Constellation)
	}
	if !math.IsNaN(second.SNR) || !math.IsNaN(second.Azimuth) {
		t.Errorf("empty cells should be NaN, got snr=%v azimuth=%v", second.SNR, second.Azimuth)
	}
}

func TestReadCSVColumnOrderAndOptionalAzimuth(t *testing.T) {
	t.Parallel()

	input := "SNR,Elevation,Band,Satellite,Time\n33.7,15.2,L1,R07,2016-12-31 23:59:60\n"
	records, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	rec := records[0]
	if rec.Satellite.Constellation != filter.GLONASS || rec.SNR != 33.7 || !math.IsNaN(rec.Azimuth) {
		t.Errorf("unexpected record: %+v", rec)
	}
	if got := gnsstime.Convert[gnsstime.UTC](rec.Time).Civil().Second; got != 60 {
		t.Errorf("leap second read back as second %d", got)
	}
}

func TestReadCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantLine int
		wantErr  error
	}{
		{"empty input", "", 1, ErrMalformedRecord},
		{"missing column", "time,satellite,band,elevation\n", 1, ErrMalformedRecord},
		{"duplicate column", "time,time,satellite,band,elevation,snr\n", 1, ErrMalformedRecord},
		{"bad time", "time,satellite,band,elevation,snr\n2024-02-30 00:00:00,G01,L1,1,1\n", 2, filter.ErrInvalidDate},
		{"unknown system", "time,satellite,band,elevation,snr\n2024-01-01 00:00:00,X01,L1,1,1\n", 2, filter.ErrUnknownConstellationCode},
		{"satellite is constellation", "time,satellite,band,elevation,snr\n2024-01-01 00:00:00,GPS,L1,1,1\n", 2, ErrMalformedRecord},
		{"constellation is band", "time,satellite,constellation,band,elevation,snr\n2024-01-01 00:00:00,G01,L1,L1,1,1\n", 2, ErrMalformedRecord},
		{"band is satellite", "time,satellite,band,elevation,snr\n2024-01-01 00:00:00,G01,G02,1,1\n", 2, ErrMalformedRecord},
		{"bad number", "time,satellite,band,elevation,snr\n2024-01-01 00:00:00,G01,L1,high,1\n", 2, ErrMalformedRecord},
		{"infinite number", "time,satellite,band,elevation,snr\n2024-01-01 00:00:00,G01,L1,1,+Inf\n", 2, ErrMalformedRecord},
		{"third line", "time,satellite,band,elevation,snr\n2024-01-01 00:00:00,G01,L1,1,1\n2024-01-01 00:00:00,G01,L1,1,x\n", 3, ErrMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadCSV(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			var lineErr *LineError
			if !errors.As(err, &lineErr) {
				t.Fatalf("err = %T, want *LineError", err)
			}
			if lineErr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", lineErr.Line, tt.wantLine)
			}
		})
	}
}

func TestReaderCustomTables(t *testing.T) {
	t.Parallel()

	tables := filter.DefaultTables()
	tables.Systems['I'] = filter.Constellation("IRN")
	tables.Constellations["IRN"] = filter.Constellation("IRN")
	tables.BandPrefixes['S'] = true
	p, err := filter.NewParser(tables)
	if err != nil {
		t.Fatal(err)
	}

	r := NewReader(strings.NewReader("time,satellite,band,elevation,snr\n2024-01-01 00:00:00,I03,S1,30,40\n"), p)
	rec, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rec.Constellation != "IRN" || rec.Band != "S1" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if _, err := r.Read(); err != io.EOF {
		t.Errorf("second Read err = %v, want io.EOF", err)
	}
}

func TestRecordField(t *testing.T) {
	t.Parallel()

	records, err := ReadCSV(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	rec := records[1] // C19, SNR and azimuth missing

	if v, ok := rec.Field(filter.KindConstellation, 0); !ok || v != filter.BeiDou {
		t.Errorf("constellation field = %v, %v", v, ok)
	}
	if v, ok := rec.Field(filter.KindMeasurement, filter.UnitElevation); !ok || v != (filter.Measurement{Magnitude: 42, Unit: filter.UnitElevation}) {
		t.Errorf("elevation field = %v, %v", v, ok)
	}
	if _, ok := rec.Field(filter.KindMeasurement, filter.UnitSNR); ok {
		t.Error("missing SNR should not be exposed")
	}
	if _, ok := rec.Field(filter.KindMeasurement, filter.Unit('r')); ok {
		t.Error("unknown unit should not be exposed")
	}
}

func TestRecordWithMask(t *testing.T) {
	t.Parallel()

	records, err := ReadCSV(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		expr   string
		strict bool
		want   []string
	}{
		{">=2024-10-01 08:00:00, !=G01, >15e, >35s, !=GPS, !=L1", false, []string{"C19"}},
		{">=2024-10-01 08:00:00, !=G01, >15e, >35s, !=GPS, !=L1", true, nil},
		{"GPS", false, []string{"G01"}},
		{">2024-10-01 08:00:01", false, []string{"E05"}},
		{"<300a", false, []string{"G01", "C19"}},
		{"<300a", true, []string{"G01"}},
		{"", false, []string{"G01", "C19", "E05"}},
	}

	for _, tt := range tests {
		mask, err := filter.Parse(tt.expr)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.expr, err)
		}
		if tt.strict {
			mask = mask.WithPolicy(filter.MismatchFail)
		}
		var got []string
		for _, rec := range records {
			if mask.Apply(rec) {
				got = append(got, rec.Satellite.String())
			}
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("%q (strict=%v) matched %v, want %v", tt.expr, tt.strict, got, tt.want)
		}
	}
}

func TestReadCSVConstellationColumn(t *testing.T) {
	t.Parallel()

	input := "time,satellite,constellation,band,elevation,snr\n" +
		"2024-10-01 08:00:01,G01,BDS,L2,15.2,33.7\n" +
		"2024-10-01 08:00:02,E05,,E5,7.5,28.1\n"
	records, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	// The column is kept as given, even when it disagrees with the satellite letter.
	if records[0].Constellation != filter.BeiDou || records[0].Satellite.Constellation != filter.GPS {
		t.Errorf("record 0: constellation %s, satellite %s", records[0].Constellation, records[0].Satellite.Constellation)
	}
	if v, ok := records[0].Field(filter.KindConstellation, 0); !ok || v != filter.BeiDou {
		t.Errorf("constellation field = %v, %v, want BDS", v, ok)
	}
	// An empty cell falls back to the satellite letter.
	if records[1].Constellation != filter.Galileo {
		t.Errorf("record 1: constellation %s, want GAL", records[1].Constellation)
	}
}

func TestReadCSVScenarioMask(t *testing.T) {
	t.Parallel()

	records, err := ReadCSV(strings.NewReader(
		"time,satellite,constellation,band,elevation,snr\n2024-10-01 08:00:01,G01,BDS,L2,15.2,33.7\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	rec := records[0]

	tests := []struct {
		expr string
		want bool
	}{
		{">=2024-10-01 08:00:00", true},
		{"!=G01", false},
		{">15e", true},
		{">35s", false},
		{"!=GPS", true},
		{"!=L1", true},
		{">=2024-10-01 08:00:00, !=G01, >15e, >35s, !=GPS, !=L1", false},
		{">=2024-10-01 08:00:00, !=G02, >15e, <35s, !=GPS, !=L1", true},
	}

	for _, tt := range tests {
		mask, err := filter.Parse(tt.expr)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.expr, err)
		}
		if got := mask.Apply(rec); got != tt.want {
			t.Errorf("%q.Apply = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestRecordConstellationFallback(t *testing.T) {
	t.Parallel()

	rec := Record{Satellite: filter.SatelliteID{Constellation: filter.GLONASS, System: 'R', PRN: 7}}
	if v, ok := rec.Field(filter.KindConstellation, 0); !ok || v != filter.GLONASS {
		t.Errorf("constellation field = %v, %v, want GLO", v, ok)
	}
	rec.Constellation = filter.GPS
	if rec.ConstellationOf() != filter.GPS {
		t.Errorf("ConstellationOf = %s, want GPS", rec.ConstellationOf())
	}
}
