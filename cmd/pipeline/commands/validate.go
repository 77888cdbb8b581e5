package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hoopstat-haus/pipeline/internal/schema"
	"github.com/hoopstat-haus/pipeline/internal/validator"
)

// ValidateOptions holds the flags for the validate command.
type ValidateOptions struct {
	Input         string
	Entity        string
	Date          string
	Mode          string
	ExpectedCount int
}

// NewValidateCmd creates the validate command: dry-run validation of a
// payload with no cleaning, quarantine, or storage side effects.
func NewValidateCmd() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a raw API payload without storing anything",
		Example: `  hoopstat-pipeline validate --input games.json --entity player_stats --date 2024-01-15
  hoopstat-pipeline validate --input - --entity schedule --mode lenient`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "path to the raw JSON payload (- for stdin)")
	cmd.Flags().StringVarP(&opts.Entity, "entity", "e", "", "entity type (player_stats, team_stats, schedule, box_score)")
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "target game date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "strict", "validation mode (strict, lenient)")
	cmd.Flags().IntVar(&opts.ExpectedCount, "expected-count", 0, "expected record count for completeness checking")

	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("entity")

	return cmd
}

func runValidate(opts *ValidateOptions) error {
	logger := logrus.StandardLogger()

	entity, err := parseEntity(opts.Entity)
	if err != nil {
		return err
	}
	mode, err := parseMode(opts.Mode)
	if err != nil {
		return err
	}
	payload, err := readPayload(opts.Input)
	if err != nil {
		return err
	}

	registry := schema.NewRegistry(logger)
	v := validator.NewValidator(registry, logger)

	result := v.ValidateAPIResponse(payload, entity, validator.Context{
		Mode:          mode,
		TargetDate:    opts.Date,
		ExpectedCount: opts.ExpectedCount,
	})
	return printJSON(result)
}
