package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ivoronin/gnssmask/internal/filter"
	"github.com/ivoronin/gnssmask/internal/observation"
	"github.com/ivoronin/gnssmask/internal/output"
)

var (
	matchJSON    bool
	matchFilter  string
	matchItems   []string
	matchStrict  bool
	matchWorkers int
)

var errStdinRepeated = errors.New("standard input (-) can be read only once")

var matchCmd = &cobra.Command{
	Use:   "match -f <expr> <file>...",
	Short: "Print observation records that pass a mask",
	Long: `Read observation CSV files (time,satellite[,constellation],band,elevation,snr[,azimuth])
and print the records that satisfy every filter of the mask and every --item.
An item joins candidates with "|" (any) or "&" (all), e.g. '==GPS|BDS|GLO'.
Use "-" to read standard input. Exits with 1 when no record matched.`,
	Args: cobra.MinimumNArgs(1),
	Example: `  gnssmask match -f '>=2024-10-01 08:00:00, !=G01, >15e' obs.csv
  gnssmask match -f '>35s, !=GPS' --strict -j day1.csv day2.csv
  gnssmask match --item '==GPS|BDS|GLO' --item '>10e&30e' obs.csv`,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().BoolVarP(&matchJSON, "json", "j", false, "Output in JSON format")
	matchCmd.Flags().StringVarP(&matchFilter, "filter", "f", "", "Mask expression (e.g., '>=2024-10-01 08:00:00, !=G01, >15e')")
	matchCmd.Flags().StringArrayVar(&matchItems, "item", nil, "Multi-value item (e.g., '==GPS|BDS|GLO'), repeatable")
	matchCmd.Flags().BoolVar(&matchStrict, "strict", false, "Fail filters on kind/unit mismatch or missing fields (env GNSSMASK_STRICT)")
	matchCmd.Flags().IntVar(&matchWorkers, "workers", 0, "Files read concurrently (env GNSSMASK_WORKERS)")
}

func runMatch(cmd *cobra.Command, args []string) error {
	mask, err := parser.Parse(matchFilter)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	strict := cfg.Strict
	if cmd.Flags().Changed("strict") {
		strict = matchStrict
	}
	if strict {
		mask = mask.WithPolicy(filter.MismatchFail)
	}

	workers := cfg.Workers
	if cmd.Flags().Changed("workers") {
		workers = matchWorkers
	}
	if workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", workers)
	}

	sel := selection{mask: mask}
	for _, text := range matchItems {
		item, err := parser.ParseItem(text)
		if err != nil {
			return fmt.Errorf("invalid item: %w", err)
		}
		sel.items = append(sel.items, item)
	}

	log.Debug("parsed mask", "filters", mask.Len(), "items", len(sel.items), "policy", mask.Policy().String(), "mask", mask.String())

	files, err := matchFiles(cmd.Context(), args, sel, workers, cmd.InOrStdin(), log)
	if err != nil {
		return err
	}

	report := &output.MatchReport{
		Expression: mask.String(),
		Items:      sel.itemStrings(),
		Policy:     mask.Policy().String(),
		Files:      files,
	}
	if err := output.Write(cmd.OutOrStdout(), report, output.FormatFor(matchJSON)); err != nil {
		return err
	}

	if report.Matched() == 0 {
		return errNoMatch
	}
	return nil
}

// selection is a mask plus multi-value items; a record must pass all of them.
// Items use the mask's mismatch policy.
type selection struct {
	mask  *filter.Set
	items []*filter.Item
}

func (s selection) Apply(r filter.Record) bool {
	if !s.mask.Apply(r) {
		return false
	}
	for _, item := range s.items {
		if !item.ApplyRecord(r, s.mask.Policy()) {
			return false
		}
	}
	return true
}

func (s selection) itemStrings() []string {
	var out []string
	for _, item := range s.items {
		out = append(out, item.String())
	}
	return out
}

// matchFiles reads every path with at most workers files open at once and returns
// the matches per file in argument order. The first read error cancels the rest.
func matchFiles(ctx context.Context, paths []string, sel selection, workers int, stdin io.Reader, log *slog.Logger) ([]output.FileMatches, error) {
	stdinSeen := false
	for _, path := range paths {
		if path != "-" {
			continue
		}
		if stdinSeen {
			return nil, errStdinRepeated
		}
		stdinSeen = true
	}

	results := make([]output.FileMatches, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fm, err := matchFile(path, sel, stdin)
			if err != nil {
				return err
			}
			log.Info("read observations", "file", path, "records", fm.Read, "matched", len(fm.Records))
			results[i] = fm
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func matchFile(path string, sel selection, stdin io.Reader) (output.FileMatches, error) {
	fm := output.FileMatches{File: path}

	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fm, err
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	r := observation.NewReader(in, parser)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return fm, nil
		}
		if err != nil {
			return fm, fmt.Errorf("%s: %w", path, err)
		}
		fm.Read++
		if sel.Apply(rec) {
			fm.Records = append(fm.Records, rec)
		}
	}
}
