package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var Version = "v1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dailycheck",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "dailycheck "+Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
