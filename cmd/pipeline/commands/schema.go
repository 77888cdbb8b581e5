package commands

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hoopstat-haus/pipeline/internal/schema"
)

// NewSchemaCmd creates the schema command: print the generated schema
// document for an entity type.
func NewSchemaCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema <entity>",
		Short: "Print the schema document for an entity type",
		Args:  cobra.ExactArgs(1),
		Example: `  hoopstat-pipeline schema player_stats
  hoopstat-pipeline schema box_score --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := parseEntity(args[0])
			if err != nil {
				return err
			}

			registry := schema.NewRegistry(logrus.StandardLogger())
			doc, err := registry.GenerateSchema(entity)
			if err != nil {
				return err
			}

			if format == "yaml" {
				enc := yaml.NewEncoder(os.Stdout)
				defer enc.Close()
				return enc.Encode(doc)
			}
			return printJSON(doc)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, yaml)")
	return cmd
}
