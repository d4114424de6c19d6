package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	app "github.com/okian/burstcov/internal/app"
	"github.com/okian/burstcov/internal/config"
	"github.com/okian/burstcov/pkg/logger"
)

type options struct {
	refdb          string
	refdbURL       string
	bursts         string
	target         int
	filterNonOcean bool
	actionableOnly bool
	verbose        bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate tile partition coverage for a set of burst products",
		Long: `evaluate reads burst product ids (one per line, '#' comments allowed)
and reports, per tile partition and coverage tier, the product set a
composite job should use.

Examples:
  evaluate --refdb mgrs_burst_db.yaml --bursts products.txt
  evaluate --refdb db.yaml --bursts - --target 80 < products.txt
  evaluate --refdb db.yaml --bursts products.txt --actionable-only`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.refdb, "refdb", "", "reference table file (cache location when --refdb-url is set)")
	flags.StringVar(&opts.refdbURL, "refdb-url", "", "remote reference table URL")
	flags.StringVarP(&opts.bursts, "bursts", "b", "", "file of product ids, or - for stdin")
	flags.IntVarP(&opts.target, "target", "t", 100, "target coverage percent (0-100)")
	flags.BoolVar(&opts.filterNonOcean, "filter-non-ocean", true, "skip pure-ocean tile partitions")
	flags.BoolVar(&opts.actionableOnly, "actionable-only", false, "print only Full and Target job requests")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	_ = cmd.MarkFlagRequired("bursts")

	return cmd
}

func runEvaluate(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.refdb == "" && opts.refdbURL == "" {
		return fmt.Errorf("one of --refdb or --refdb-url is required")
	}

	log := logger.Nop()
	if opts.verbose {
		if err := logger.Init(logger.WithOutput(stderr)); err != nil {
			return err
		}
		_ = logger.SetLevelString("debug")
		log = logger.Get()
	}

	raw, err := readBursts(stdin, opts.bursts)
	if err != nil {
		return err
	}
	ids := app.ProductIDsFromLines(string(raw))

	cfg := config.New()
	cfg.ReferenceDBPath = opts.refdb
	cfg.ReferenceDBURL = opts.refdbURL
	cfg.TargetCoveragePercent = opts.target
	cfg.FilterNonOcean = opts.filterNonOcean
	if len(ids) > cfg.MaxRequestProductIDs {
		cfg.MaxRequestProductIDs = len(ids)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc := app.FromConfig(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	res, err := svc.Evaluate(ctx, app.Request{ProductIDs: ids})
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		_, _ = fmt.Fprintln(stderr, "no product ids read")
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if opts.actionableOnly {
		return enc.Encode(res.Actionable)
	}
	return enc.Encode(res)
}

func readBursts(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bursts: %w", err)
	}
	return data, nil
}
