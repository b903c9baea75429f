package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tirasundara/reconcile-accounts/internal/config"
	"github.com/tirasundara/reconcile-accounts/internal/domain"
	"github.com/tirasundara/reconcile-accounts/internal/logger"
	"github.com/tirasundara/reconcile-accounts/internal/matcher"
	"github.com/tirasundara/reconcile-accounts/internal/report"
	"github.com/tirasundara/reconcile-accounts/internal/repository"
	"github.com/tirasundara/reconcile-accounts/internal/service"
	"go.uber.org/zap"
)

type runOptions struct {
	configPath   string
	leftFile     string
	rightFile    string
	outputFile   string
	outputFormat string
	dateLayout   string
	tolerance    int
	hasHeader    bool
	inputOrder   bool
	prettyPrint  bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reconciliation",
		Short: "Reconcile two batches of account transactions",
		Long: `Reconciliation pairs the records of two transaction files one-to-one.
Records pair when counterparty, amount and target are equal and their dates
are at most the tolerance window apart. Every record is reported as FOUND or MISSING.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile two CSV files",
		Example: `  reconciliation run --left transactions1.csv --right transactions2.csv
  reconciliation run --left a.csv --right b.csv --format csv --output result`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", ".", "Directory holding reconcile.yaml and .env")
	flags.StringVar(&opts.leftFile, "left", "", "Path to the first transactions CSV file")
	flags.StringVar(&opts.rightFile, "right", "", "Path to the second transactions CSV file")
	flags.StringVar(&opts.outputFile, "output", "", "Path to output file (if empty, writes to stdout)")
	flags.StringVar(&opts.outputFormat, "format", report.FormatJSON, "Output format: json or csv")
	flags.StringVar(&opts.dateLayout, "date-layout", domain.DefaultDateLayout, "Go time layout of the date column")
	flags.IntVar(&opts.tolerance, "tolerance", matcher.DefaultToleranceDays, "Maximum number of days between matching dates")
	flags.BoolVar(&opts.hasHeader, "header", false, "Input files start with a header row")
	flags.BoolVar(&opts.inputOrder, "input-order", false, "Report records in file order instead of date order")
	flags.BoolVar(&opts.prettyPrint, "pretty", true, "Pretty print JSON output")

	_ = cmd.MarkFlagRequired("left")
	_ = cmd.MarkFlagRequired("right")

	return cmd
}

func runReconcile(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	applyFlags(cmd, opts, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logg.Sync() }()

	leftRepo := repository.NewCSVRecordRepository(opts.leftFile, cfg.Input.HasHeader)
	rightRepo := repository.NewCSVRecordRepository(opts.rightFile, cfg.Input.HasHeader)

	reconciler := matcher.NewReconciler(
		matcher.WithToleranceDays(cfg.Reconcile.ToleranceDays),
		matcher.WithDateLayout(cfg.Reconcile.DateLayout),
		matcher.WithLogger(logg),
	)

	reconciliationService := service.NewReconciliationService(leftRepo, rightRepo, reconciler, logg).
		PreserveInputOrder(cfg.Reconcile.PreserveInputOrder)

	result, err := reconciliationService.Reconcile(cmd.Context())
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	formatter, err := report.NewFormatter(cfg.Output.Format, cfg.Output.Pretty)
	if err != nil {
		return err
	}

	output, err := formatter.Format(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if opts.outputFile == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return err
	}

	// If no extension is provided, add the formatter's default extension
	outputFile := opts.outputFile
	if filepath.Ext(outputFile) == "" {
		outputFile = fmt.Sprintf("%s.%s", outputFile, formatter.FileExtension())
	}

	if err := os.WriteFile(outputFile, output, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	logg.Info("Report written", zap.String("path", outputFile), zap.String("run_id", result.RunID))
	return nil
}

// applyFlags lets explicitly set flags take precedence over file and env configuration
func applyFlags(cmd *cobra.Command, opts *runOptions, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("tolerance") {
		cfg.Reconcile.ToleranceDays = opts.tolerance
	}
	if flags.Changed("date-layout") {
		cfg.Reconcile.DateLayout = opts.dateLayout
	}
	if flags.Changed("input-order") {
		cfg.Reconcile.PreserveInputOrder = opts.inputOrder
	}
	if flags.Changed("header") {
		cfg.Input.HasHeader = opts.hasHeader
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.outputFormat
	}
	if flags.Changed("pretty") {
		cfg.Output.Pretty = opts.prettyPrint
	}
}
