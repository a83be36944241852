package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/velora-app/flowengine"
	"github.com/velora-app/flowengine/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flow file]",
	Short: "Check a flow definition for consistency",
	Long:  `Crawls the flow graph from its start node and reports unreachable nodes, unknown node types and missing payload fields.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("flow")
		if len(args) > 0 {
			path = args[0]
		}

		eng, err := flowengine.NewFromFile(path)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		if err := validator.ValidateGraph(eng.Graph()); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Flow is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
