package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ivoronin/gnssmask/internal/config"
	"github.com/ivoronin/gnssmask/internal/filter"
	"github.com/ivoronin/gnssmask/internal/logger"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	logLevel   string
	logFormat  string
	tablesPath string
)

// State shared by subcommands, set up before any of them runs.
var (
	cfg          *config.Config
	log          = logger.Discard()
	parser       = filter.Default()
	tablesSource = "built-in"
)

var rootCmd = &cobra.Command{
	Use:   "gnssmask",
	Short: "Filter GNSS observation records with mask expressions",
	Long: `Parse mask expressions such as ">=2024-10-01 08:00:00, !=G01, >15e" and
apply them to GNSS observation records, with exact GPST/UTC/BDT time handling.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env GNSSMASK_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (env GNSSMASK_LOG_FORMAT)")
	rootCmd.PersistentFlags().StringVar(&tablesPath, "tables", "", "Lookup tables JSON file (env GNSSMASK_TABLES)")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration, applies flag overrides, and builds the logger and parser.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if flags.Changed("tables") {
		cfg.TablesFile = tablesPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err = logger.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	if cfg.TablesFile == "" {
		return nil
	}
	tf, err := config.LoadTables(cfg.TablesFile)
	if err != nil {
		return err
	}
	if tf.Newer() {
		log.Warn("tables file targets a newer format, unknown keys ignored",
			"file", tf.Path, "format_version", tf.FormatVersion)
	}
	parser, err = filter.NewParser(tf.Tables)
	if err != nil {
		return fmt.Errorf("tables %s: %w", tf.Path, err)
	}
	tablesSource = tf.Path
	log.Debug("loaded lookup tables", "file", tf.Path, "constellations", len(tf.Tables.Constellations))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil && !errors.Is(err, errNoMatch) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}
