package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iiasa/ixmp/internal/paths"
)

var locateCmd = &cobra.Command{
	Use:   "locate [NAME]",
	Short: "Find a file or directory in the ixmp data directories",
	Long: `Print the path of NAME in the first ixmp data directory that contains it.
Without NAME, print the first data directory that exists.

Examples:
  ixmp locate config.json
  ixmp locate localdb`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		path, err := paths.Locate(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}
