package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hoopstat-haus/pipeline/internal/quarantine"
)

// QuarantineOptions holds the flags for the quarantine command.
type QuarantineOptions struct {
	Entity  string
	Date    string
	Storage storageFlags
}

// NewQuarantineCmd creates the quarantine command: list quarantined records
// for an entity and date so operators can inspect failures.
func NewQuarantineCmd() *cobra.Command {
	opts := &QuarantineOptions{}

	cmd := &cobra.Command{
		Use:     "quarantine",
		Short:   "List quarantined records for an entity and date",
		Example: `  hoopstat-pipeline quarantine --entity box_score --date 2024-01-15 --storage file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.StandardLogger()

			entity, err := parseEntity(opts.Entity)
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context(), opts.Storage, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			qm, err := quarantine.NewManager(store, logger)
			if err != nil {
				return err
			}

			records, err := qm.ListQuarantinedData(cmd.Context(), opts.Date, entity)
			if err != nil {
				return err
			}
			return printJSON(records)
		},
	}

	cmd.Flags().StringVarP(&opts.Entity, "entity", "e", "", "entity type (player_stats, team_stats, schedule, box_score)")
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "quarantine date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Storage.Backend, "storage", "", "storage backend (s3, file)")
	cmd.Flags().StringVar(&opts.Storage.Bucket, "bucket", "", "S3 bucket")
	cmd.Flags().StringVar(&opts.Storage.Region, "region", "", "S3 region")
	cmd.Flags().StringVar(&opts.Storage.Root, "root", "", "root directory for the file backend")

	cmd.MarkFlagRequired("entity")
	cmd.MarkFlagRequired("date")

	return cmd
}
