package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/velora-app/flowengine"
	"github.com/velora-app/flowengine/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph [flow file]",
	Short: "Render the flow as a Mermaid diagram",
	Long:  `Prints Mermaid flowchart syntax for the flow, suitable for embedding in Markdown docs.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("flow")
		if len(args) > 0 {
			path = args[0]
		}

		eng, err := flowengine.NewFromFile(path)
		if err != nil {
			fmt.Printf("Error loading flow: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(eng.Graph(), nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
