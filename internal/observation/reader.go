package observation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ivoronin/gnssmask/internal/filter"
	"github.com/ivoronin/gnssmask/internal/gnsstime"
)

// ErrMalformedRecord means a CSV row could not be turned into a Record.
var ErrMalformedRecord = errors.New("malformed observation record")

// Column names of the CSV format. Constellation and azimuth are optional.
const (
	ColumnTime          = "time"
	ColumnSatellite     = "satellite"
	ColumnConstellation = "constellation"
	ColumnBand          = "band"
	ColumnElevation     = "elevation"
	ColumnSNR           = "snr"
	ColumnAzimuth       = "azimuth"
)

var requiredColumns = []string{ColumnTime, ColumnSatellite, ColumnBand, ColumnElevation, ColumnSNR}

// LineError reports a failure on one line of the input.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *LineError) Unwrap() error { return e.Err }

// Reader reads observation records from CSV input.
// The first row is a header naming the columns; column order is free.
// Time is UTC civil time; satellite, constellation and band cells are classified with
// the parser's tables. Without a constellation column it is taken from the satellite.
type Reader struct {
	csv     *csv.Reader
	parser  *filter.Parser
	columns map[string]int
	line    int
}

// NewReader returns a reader over r. A nil parser means filter.Default().
func NewReader(r io.Reader, p *filter.Parser) *Reader {
	if p == nil {
		p = filter.Default()
	}
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return &Reader{csv: cr, parser: p}
}

// Read returns the next record, or io.EOF after the last one.
func (r *Reader) Read() (Record, error) {
	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			return Record{}, err
		}
	}

	row, err := r.csv.Read()
	if err == io.EOF {
		return Record{}, io.EOF
	}
	if err != nil {
		line := r.line + 1
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			line = perr.Line
		}
		return Record{}, &LineError{Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedRecord, err)}
	}
	r.line, _ = r.csv.FieldPos(0)

	rec, err := r.parseRow(row)
	if err != nil {
		return Record{}, &LineError{Line: r.line, Err: err}
	}
	rec.Line = r.line
	return rec, nil
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if err == io.EOF {
		return &LineError{Line: 1, Err: fmt.Errorf("%w: missing header", ErrMalformedRecord)}
	}
	if err != nil {
		return &LineError{Line: 1, Err: fmt.Errorf("%w: %v", ErrMalformedRecord, err)}
	}
	line, _ := r.csv.FieldPos(0)
	r.line = line

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[name]; dup {
			return &LineError{Line: line, Err: fmt.Errorf("%w: duplicate column %q", ErrMalformedRecord, name)}
		}
		columns[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return &LineError{Line: line, Err: fmt.Errorf("%w: missing column %q", ErrMalformedRecord, name)}
		}
	}
	r.columns = columns
	return nil
}

func (r *Reader) cell(row []string, name string) (string, bool) {
	i, ok := r.columns[name]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

func (r *Reader) parseRow(row []string) (Record, error) {
	rec := Record{Elevation: math.NaN(), SNR: math.NaN(), Azimuth: math.NaN()}

	text, _ := r.cell(row, ColumnTime)
	utc, err := gnsstime.Parse[gnsstime.UTC](text)
	if err != nil {
		return Record{}, fmt.Errorf("%s %q: %w", ColumnTime, text, err)
	}
	rec.Time = gnsstime.Convert[gnsstime.GPST](utc)

	text, _ = r.cell(row, ColumnSatellite)
	sat, err := classifyAs[filter.SatelliteID](r.parser, ColumnSatellite, text)
	if err != nil {
		return Record{}, err
	}
	rec.Satellite = sat
	rec.Constellation = sat.Constellation

	if text, _ = r.cell(row, ColumnConstellation); text != "" {
		c, err := classifyAs[filter.Constellation](r.parser, ColumnConstellation, text)
		if err != nil {
			return Record{}, err
		}
		rec.Constellation = c
	}

	if text, _ = r.cell(row, ColumnBand); text != "" {
		band, err := classifyAs[filter.Band](r.parser, ColumnBand, text)
		if err != nil {
			return Record{}, err
		}
		rec.Band = band
	}

	for _, m := range []struct {
		name string
		dst  *float64
	}{
		{ColumnElevation, &rec.Elevation},
		{ColumnSNR, &rec.SNR},
		{ColumnAzimuth, &rec.Azimuth},
	} {
		text, _ := r.cell(row, m.name)
		if text == "" {
			continue
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Record{}, fmt.Errorf("%w: %s %q is not a number", ErrMalformedRecord, m.name, text)
		}
		*m.dst = f
	}

	return rec, nil
}

// classifyAs classifies a cell and requires the value to be a T.
func classifyAs[T filter.Value](p *filter.Parser, column, text string) (T, error) {
	var zero T
	v, err := p.Classify(text)
	if err != nil {
		return zero, fmt.Errorf("%s %q: %w", column, text, err)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s %q is a %s", ErrMalformedRecord, column, text, v.Kind())
	}
	return t, nil
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// ReadCSV reads all records from r with the default tables.
func ReadCSV(r io.Reader) ([]Record, error) {
	return NewReader(r, nil).ReadAll()
}
