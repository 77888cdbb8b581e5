package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoopstat-haus/pipeline/pkg/models"
)

// Build-time variables, set via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hoopstat-pipeline %s\n", Version)
			fmt.Printf("  commit:         %s\n", GitCommit)
			fmt.Printf("  built:          %s\n", BuildDate)
			fmt.Printf("  schema version: %s\n", models.CurrentSchemaVersion)
		},
	}
}
