package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivoronin/gnssmask/internal/output"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify <literal>...",
	Short: "Show how literals are classified",
	Long: `Classify each literal as a date-time, satellite, constellation, band or measurement,
in that order of priority. Exits with 2 when any literal is not recognized.`,
	Args: cobra.MinimumNArgs(1),
	Example: `  gnssmask classify G01 BDS L2 15.2e
  gnssmask classify -j '2024-10-01 08:00:01'`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().BoolVarP(&classifyJSON, "json", "j", false, "Output in JSON format")
}

func runClassify(cmd *cobra.Command, args []string) error {
	report := &output.ClassifyReport{Results: make([]output.Classification, len(args))}
	for i, lit := range args {
		v, err := parser.Classify(lit)
		report.Results[i] = output.Classification{Literal: lit, Value: v, Err: err}
	}

	if err := output.Write(cmd.OutOrStdout(), report, output.FormatFor(classifyJSON)); err != nil {
		return err
	}
	if report.Failed() {
		return fmt.Errorf("some literals were not recognized")
	}
	return nil
}
