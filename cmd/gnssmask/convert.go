package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivoronin/gnssmask/internal/gnsstime"
	"github.com/ivoronin/gnssmask/internal/output"
)

var (
	convertJSON bool
	convertFrom string
	convertTo   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <datetime>...",
	Short: "Convert civil times between GPST, UTC and BDT",
	Long: `Read each "YYYY-MM-DD HH:MM:SS[.fraction]" time in one scale and print it in another,
with week number, time of week, seconds since the scale origin and Julian date.
The literal "now" means the current system time.`,
	Args: cobra.MinimumNArgs(1),
	Example: `  gnssmask convert '2024-10-01 08:00:01'
  gnssmask convert --from gpst --to bdt '2024-10-01 08:00:19'
  gnssmask convert --to utc '2017-01-01 00:00:17.5'`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().BoolVarP(&convertJSON, "json", "j", false, "Output in JSON format")
	convertCmd.Flags().StringVar(&convertFrom, "from", "utc", "Scale of the input: utc, gpst or bdt")
	convertCmd.Flags().StringVar(&convertTo, "to", "gpst", "Scale to convert to: utc, gpst or bdt")
}

func runConvert(cmd *cobra.Command, args []string) error {
	from, err := gnsstime.ParseScaleID(convertFrom)
	if err != nil {
		return err
	}
	to, err := gnsstime.ParseScaleID(convertTo)
	if err != nil {
		return err
	}

	report := &output.ConvertReport{Results: make([]output.Conversion, len(args))}
	for i, text := range args {
		c, err := convertCivil(text, from, to, time.Now)
		if err != nil {
			return err
		}
		report.Results[i] = c
	}
	return output.Write(cmd.OutOrStdout(), report, output.FormatFor(convertJSON))
}

// convertCivil reads text on scale from and reports it on scale to.
func convertCivil(text string, from, to gnsstime.ScaleID, now func() time.Time) (output.Conversion, error) {
	e, err := parseOn(strings.TrimSpace(text), from, now)
	if err != nil {
		return output.Conversion{}, fmt.Errorf("%q: %w", text, err)
	}

	var c output.Conversion
	switch to {
	case gnsstime.ScaleUTC:
		c = readOn(gnsstime.Convert[gnsstime.UTC](e))
	case gnsstime.ScaleBDT:
		c = readOn(gnsstime.Convert[gnsstime.BDT](e))
	default:
		c = readOn(e)
	}
	c.Input = text
	c.From = from
	return c, nil
}

// parseOn returns the instant text names when read on scale id.
func parseOn(text string, id gnsstime.ScaleID, now func() time.Time) (gnsstime.Epoch[gnsstime.GPST], error) {
	if strings.EqualFold(text, "now") {
		return gnsstime.FromTime[gnsstime.GPST](now()), nil
	}
	switch id {
	case gnsstime.ScaleUTC:
		e, err := gnsstime.Parse[gnsstime.UTC](text)
		return gnsstime.Convert[gnsstime.GPST](e), err
	case gnsstime.ScaleBDT:
		e, err := gnsstime.Parse[gnsstime.BDT](text)
		return gnsstime.Convert[gnsstime.GPST](e), err
	default:
		return gnsstime.Parse[gnsstime.GPST](text)
	}
}

func readOn[S gnsstime.Scale](e gnsstime.Epoch[S]) output.Conversion {
	week, tow := e.Week()
	return output.Conversion{
		To:          e.Scale(),
		Civil:       e.Civil(),
		Week:        week,
		TimeOfWeek:  tow,
		SinceOrigin: e.SinceOrigin(),
		JulianDate:  e.JulianDate(),
		GPSMinusUTC: gnsstime.GPSMinusUTCAt(e.Instant()),
	}
}
