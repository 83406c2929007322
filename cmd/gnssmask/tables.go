package main

import (
	"github.com/spf13/cobra"

	"github.com/ivoronin/gnssmask/internal/output"
)

var tablesJSON bool

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the active lookup tables",
	Long: `Display the constellation mnemonics, satellite letters, band prefixes and units the
classifier recognizes, including entries from a --tables file.`,
	Args: cobra.NoArgs,
	Example: `  gnssmask tables
  gnssmask tables --tables site.json -j`,
	RunE: runTables,
}

func init() {
	tablesCmd.Flags().BoolVarP(&tablesJSON, "json", "j", false, "Output in JSON format")
}

func runTables(cmd *cobra.Command, args []string) error {
	report := &output.TablesReport{Source: tablesSource, Tables: parser.Tables()}
	return output.Write(cmd.OutOrStdout(), report, output.FormatFor(tablesJSON))
}
