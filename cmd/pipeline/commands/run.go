package commands

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hoopstat-haus/pipeline/internal/cleaning"
	"github.com/hoopstat-haus/pipeline/internal/pipeline"
	"github.com/hoopstat-haus/pipeline/internal/quality"
	"github.com/hoopstat-haus/pipeline/internal/quarantine"
	"github.com/hoopstat-haus/pipeline/internal/schema"
	"github.com/hoopstat-haus/pipeline/internal/validator"
)

// RunOptions holds the flags for the run command.
type RunOptions struct {
	Input         string
	Entity        string
	Date          string
	Season        string
	Mode          string
	ChunkSize     int
	ExpectedCount int
	Rules         string
	Storage       storageFlags
}

// NewRunCmd creates the run command: one full pipeline pass over a payload.
func NewRunCmd() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline over a raw API payload",
		Long: `Run validates, cleans, scores, and stores one raw API payload.

Invalid records are quarantined; valid records are cleaned against the
rule set, quality-scored, and written under partitioned storage keys.
The run report is printed to stdout and persisted as a manifest.`,
		Example: `  hoopstat-pipeline run --input games.json --entity player_stats --date 2024-01-15
  hoopstat-pipeline run --input - --entity box_score --date 2024-01-15 --mode lenient --storage file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "path to the raw JSON payload (- for stdin)")
	cmd.Flags().StringVarP(&opts.Entity, "entity", "e", "", "entity type (player_stats, team_stats, schedule, box_score)")
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "target game date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Season, "season", "", "season label (YYYY-YY, derived from date when omitted)")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "strict", "validation mode (strict, lenient)")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", pipeline.DefaultChunkSize, "records per processing chunk")
	cmd.Flags().IntVar(&opts.ExpectedCount, "expected-count", 0, "expected record count for completeness checking")
	cmd.Flags().StringVar(&opts.Rules, "rules", "", "cleaning rule set file (built-in defaults when omitted)")
	cmd.Flags().StringVar(&opts.Storage.Backend, "storage", "", "storage backend (s3, file)")
	cmd.Flags().StringVar(&opts.Storage.Bucket, "bucket", "", "target S3 bucket")
	cmd.Flags().StringVar(&opts.Storage.Region, "region", "", "S3 region")
	cmd.Flags().StringVar(&opts.Storage.Root, "root", "", "root directory for the file backend")

	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("entity")
	cmd.MarkFlagRequired("date")

	return cmd
}

func runRun(ctx context.Context, opts *RunOptions) error {
	logger := logrus.StandardLogger()

	entity, err := parseEntity(opts.Entity)
	if err != nil {
		return err
	}
	mode, err := parseMode(opts.Mode)
	if err != nil {
		return err
	}
	rules, err := loadRules(opts.Rules)
	if err != nil {
		return err
	}
	payload, err := readPayload(opts.Input)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, opts.Storage, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := schema.NewRegistry(logger)
	v := validator.NewValidator(registry, logger)
	engine := cleaning.NewEngine(rules, logger)
	scorer := quality.NewScorer(registry, quality.DefaultConfig(), logger)

	qm, err := quarantine.NewManager(store, logger)
	if err != nil {
		return err
	}

	proc, err := pipeline.NewProcessor(registry, v, engine, scorer, qm, store, logger)
	if err != nil {
		return err
	}

	report, err := proc.ProcessResponse(ctx, payload, pipeline.RunConfig{
		Entity:        entity,
		TargetDate:    opts.Date,
		Season:        opts.Season,
		Mode:          mode,
		Bucket:        opts.Storage.Bucket,
		ChunkSize:     opts.ChunkSize,
		ExpectedCount: opts.ExpectedCount,
	})
	if report != nil {
		printJSON(report)
	}
	return err
}
