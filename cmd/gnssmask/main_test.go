package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ivoronin/gnssmask/internal/filter"
	"github.com/ivoronin/gnssmask/internal/gnsstime"
	"github.com/ivoronin/gnssmask/internal/logger"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{errNoMatch, ExitNoMatch},
		{fmt.Errorf("wrapped: %w", errNoMatch), ExitNoMatch},
		{errors.New("invalid filter"), ExitInputError},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestConvertCivil(t *testing.T) {
	t.Parallel()

	fixed := func() time.Time { return time.Date(2024, 10, 1, 8, 0, 1, 0, time.UTC) }

	tests := []struct {
		name      string
		input     string
		from, to  gnsstime.ScaleID
		wantCivil string
		wantWeek  int
		wantTOW   string
	}{
		{"utc to gpst", "2024-10-01 08:00:01", gnsstime.ScaleUTC, gnsstime.ScaleGPST, "2024-10-01 08:00:19", 2334, "201619s"},
		{"utc to bdt", "2024-10-01 08:00:01", gnsstime.ScaleUTC, gnsstime.ScaleBDT, "2024-10-01 08:00:05", 978, "201605s"},
		{"gpst to utc", "2024-10-01 08:00:19", gnsstime.ScaleGPST, gnsstime.ScaleUTC, "2024-10-01 08:00:01", 2334, "201601s"},
		{"leap second", "2017-01-01 00:00:17.5", gnsstime.ScaleGPST, gnsstime.ScaleUTC, "2016-12-31 23:59:60.5", 1929, "604799.5s"},
		{"now", "now", gnsstime.ScaleBDT, gnsstime.ScaleGPST, "2024-10-01 08:00:19", 2334, "201619s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := convertCivil(tt.input, tt.from, tt.to, fixed)
			if err != nil {
				t.Fatalf("convertCivil: %v", err)
			}
			if got := c.Civil.String(); got != tt.wantCivil {
				t.Errorf("Civil = %s, want %s", got, tt.wantCivil)
			}
			if c.Week != tt.wantWeek || c.TimeOfWeek.String() != tt.wantTOW {
				t.Errorf("week/tow = %d/%s, want %d/%s", c.Week, c.TimeOfWeek, tt.wantWeek, tt.wantTOW)
			}
			if c.From != tt.from || c.To != tt.to || c.Input != tt.input {
				t.Errorf("unexpected labels: %+v", c)
			}
		})
	}

	if _, err := convertCivil("2023-02-29 00:00:00", gnsstime.ScaleUTC, gnsstime.ScaleGPST, fixed); !errors.Is(err, gnsstime.ErrInvalidDate) {
		t.Errorf("invalid date err = %v", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMatchFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	header := "time,satellite,band,elevation,snr\n"
	a := writeFile(t, dir, "a.csv", header+
		"2024-10-01 08:00:01,G01,L2,15.2,33.7\n"+
		"2024-10-01 08:00:01,C19,B1,42,40\n")
	b := writeFile(t, dir, "b.csv", header+
		"2024-10-01 07:59:59,C20,B1,60,45\n"+
		"2024-10-01 08:00:05,E05,E5,20,38\n")
	bad := writeFile(t, dir, "bad.csv", header+"2024-10-01 08:00:05,X05,E5,20,38\n")

	mask, err := filter.Parse(">=2024-10-01 08:00:00, !=G01, >15e, >35s")
	if err != nil {
		t.Fatal(err)
	}
	sel := selection{mask: mask}

	files, err := matchFiles(context.Background(), []string{b, a}, sel, 1, strings.NewReader(""), logger.Discard())
	if err != nil {
		t.Fatalf("matchFiles: %v", err)
	}
	if len(files) != 2 || files[0].File != b || files[1].File != a {
		t.Fatalf("results not in argument order: %+v", files)
	}
	if files[0].Read != 2 || len(files[0].Records) != 1 || files[0].Records[0].Satellite.String() != "E05" {
		t.Errorf("b.csv matches = %+v", files[0])
	}
	if len(files[1].Records) != 1 || files[1].Records[0].Satellite.String() != "C19" {
		t.Errorf("a.csv matches = %+v", files[1])
	}

	stdin := strings.NewReader(header + "2024-10-01 09:00:00,R07,G1,30,36\n")
	files, err = matchFiles(context.Background(), []string{"-"}, sel, 2, stdin, logger.Discard())
	if err != nil || len(files[0].Records) != 1 {
		t.Errorf("stdin: files=%+v err=%v", files, err)
	}

	_, err = matchFiles(context.Background(), []string{a, bad, b}, sel, 4, strings.NewReader(""), logger.Discard())
	if !errors.Is(err, filter.ErrUnknownConstellationCode) {
		t.Errorf("bad file err = %v, want ErrUnknownConstellationCode", err)
	}
	if err == nil || !strings.Contains(err.Error(), "bad.csv") || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name file and line: %v", err)
	}

	_, err = matchFiles(context.Background(), []string{filepath.Join(dir, "missing.csv")}, sel, 1, strings.NewReader(""), logger.Discard())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestMatchFilesRejectsRepeatedStdin(t *testing.T) {
	t.Parallel()

	stdin := strings.NewReader("time,satellite,band,elevation,snr\n2024-10-01 08:00:01,G01,L1,10,30\n")
	_, err := matchFiles(context.Background(), []string{"-", "-"}, selection{}, 2, stdin, logger.Discard())
	if !errors.Is(err, errStdinRepeated) {
		t.Fatalf("err = %v, want errStdinRepeated", err)
	}
	if exitCode(err) != ExitInputError {
		t.Errorf("exit code = %d, want %d", exitCode(err), ExitInputError)
	}
	if stdin.Len() == 0 {
		t.Error("stdin should not be read when rejected")
	}
}

func TestSelectionItems(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	obs := writeFile(t, dir, "obs.csv", "time,satellite,band,elevation,snr\n"+
		"2024-10-01 08:00:01,G01,L2,15.2,33.7\n"+
		"2024-10-01 08:00:01,C19,B1,42,40\n"+
		"2024-10-01 08:00:02,E05,E5,7.5,28.1\n")

	mask, err := filter.Parse(">10e")
	if err != nil {
		t.Fatal(err)
	}
	systems, err := filter.ParseItem("==GPS|GAL")
	if err != nil {
		t.Fatal(err)
	}
	noAzimuth, err := filter.ParseItem("<300a|350a")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		sel  selection
		want string
	}{
		{"mask only", selection{mask: mask}, "G01,C19"},
		{"mask and item", selection{mask: mask, items: []*filter.Item{systems}}, "G01"},
		{"item only", selection{mask: &filter.Set{}, items: []*filter.Item{systems}}, "G01,E05"},
		{"missing field vacuous", selection{mask: mask, items: []*filter.Item{noAzimuth}}, "G01,C19"},
		{"missing field strict", selection{mask: mask.WithPolicy(filter.MismatchFail), items: []*filter.Item{noAzimuth}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			files, err := matchFiles(context.Background(), []string{obs}, tt.sel, 1, strings.NewReader(""), logger.Discard())
			if err != nil {
				t.Fatalf("matchFiles: %v", err)
			}
			var got []string
			for _, rec := range files[0].Records {
				got = append(got, rec.Satellite.String())
			}
			if strings.Join(got, ",") != tt.want {
				t.Errorf("matched %v, want %s", got, tt.want)
			}
		})
	}

	if got := (selection{mask: mask, items: []*filter.Item{systems}}).itemStrings(); len(got) != 1 || got[0] != "==GPS|GAL" {
		t.Errorf("itemStrings = %v", got)
	}
}
