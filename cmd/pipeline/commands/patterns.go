package commands

import (
	"github.com/spf13/cobra"

	"github.com/hoopstat-haus/pipeline/internal/partition"
)

// NewPatternsCmd creates the patterns command: enumerate the registered
// query patterns and their canonical key shapes.
func NewPatternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "patterns",
		Short:   "List the registered query patterns",
		Example: `  hoopstat-pipeline patterns`,
		RunE: func(cmd *cobra.Command, args []string) error {
			optimizer := partition.NewQueryPatternOptimizer("")
			return printJSON(optimizer.ListQueryPatterns())
		},
	}
}
