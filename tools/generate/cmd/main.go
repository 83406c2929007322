// Command generate regenerates the embedded leap-second table from leap-seconds.list.
// Usage: go run ./tools/generate/cmd [url]
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ivoronin/gnssmask/internal/gnsstime"
	"github.com/ivoronin/gnssmask/tools/generate"
)

const dataDir = "internal/gnsstime/data"

func main() {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil { //nolint:gosec // G301: 0755 is standard for data directories
		fmt.Fprintf(os.Stderr, "Error creating data directory: %v\n", err)
		os.Exit(1)
	}

	g := generate.IETFGenerator{}
	if len(os.Args) > 1 {
		g.URL = os.Args[1]
	}

	generators := []generate.LeapGenerator{g}

	for _, g := range generators {
		name := g.Name()
		fmt.Printf("Generating leap seconds from %s...\n", name)

		table, err := g.Generate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating leap seconds from %s: %v\n", name, err)
			os.Exit(1)
		}

		for _, e := range table.NewSince(gnsstime.LeapSeconds()) {
			fmt.Printf("  new leap second: %s, TAI-UTC %d\n", e.Date.Format("2006-01-02"), e.TAIMinusUTC)
		}

		if err := writeLeapSecondsCSV(table); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing leapseconds.csv: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ leapseconds.csv (%d entries, valid until %s)\n", len(table.Entries), table.Expires.Format("2006-01-02"))
	}
}

// writeLeapSecondsCSV writes the table to leapseconds.csv
func writeLeapSecondsCSV(table *generate.LeapTable) error {
	path := filepath.Join(dataDir, "leapseconds.csv")
	f, err := os.Create(path) //nolint:gosec // G304: Path is constant dataDir + filename
	if err != nil {
		return err
	}
	if err := table.WriteCSV(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
