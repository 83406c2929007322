package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivoronin/gnssmask/internal/gnsstime"
	"github.com/ivoronin/gnssmask/internal/version"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and leap-second table date",
	Long:  `Display gnssmask version, the last entry of the embedded leap-second table and the tables file format.`,
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVarP(&versionJSON, "json", "j", false, "Output in JSON format")
}

func runVersion(cmd *cobra.Command, args []string) error {
	leaps := gnsstime.LeapSeconds()
	last := leaps[len(leaps)-1]
	date := fmt.Sprintf("%04d-%02d-%02d", last.Date.Year, int(last.Date.Month), last.Date.Day)
	w := cmd.OutOrStdout()

	if versionJSON {
		info := struct {
			Version      string `json:"version"`
			LastLeap     string `json:"last_leap_second"`
			TAIMinusUTC  int    `json:"tai_minus_utc"`
			TablesFormat string `json:"tables_format"`
		}{
			Version:      Version,
			LastLeap:     date,
			TAIMinusUTC:  last.TAIMinusUTC,
			TablesFormat: version.TablesFormat,
		}
		out, err := json.Marshal(info)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	_, err := fmt.Fprintf(w, "gnssmask %s\nleap seconds: TAI-UTC %ds since %s (GPS-UTC %ds)\ntables format: %s\n",
		Version, last.TAIMinusUTC, date, last.GPSMinusUTC(), version.TablesFormat)
	return err
}
