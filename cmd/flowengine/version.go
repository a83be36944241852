package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/velora-app/flowengine"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flowengine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("flowengine version %s\n", flowengine.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
