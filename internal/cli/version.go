package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the build version string, overridden via -ldflags at release
// build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		emit(map[string]string{"version": Version}, func() {
			fmt.Println(Version)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
