package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowengine",
	Short: "flowengine runs conversational flows defined as node graphs",
	Long: `flowengine executes conversation flows: directed graphs of message,
input, condition, speech and business action nodes. It can run a flow
interactively on the terminal, validate a flow definition, or serve
flows over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("flow", "f", "flow.yaml", "Path to the flow definition")
}
