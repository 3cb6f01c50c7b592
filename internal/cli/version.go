package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/genkit/pkg/genkit"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display genkit version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), genkit.FullVersionInfo())
	},
}
