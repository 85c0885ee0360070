package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manuel1618/mpcforces-extractor/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mpcforces",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
		fmt.Println("MPC/SPC Force Extractor")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
