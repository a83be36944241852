package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/velora-app/flowengine"
	"github.com/velora-app/flowengine/internal/adapters/expreval"
	"github.com/velora-app/flowengine/internal/cli"
	"github.com/velora-app/flowengine/internal/logging"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flow file]",
	Short: "Run a flow interactively on the terminal",
	Long:  `Executes the flow, printing agent messages to stdout and reading user input from stdin whenever the flow asks for it.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("flow")
		if len(args) > 0 {
			path = args[0]
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		noPacing, _ := cmd.Flags().GetBool("no-pacing")

		opts := []flowengine.Option{}
		if verbose {
			opts = append(opts, flowengine.WithLogger(logging.New(slog.LevelDebug)))
		}

		eng, err := flowengine.NewFromFile(path, opts...)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		pacing := flowengine.DefaultPacing
		if noPacing {
			pacing = 0
		}

		if err := cli.RunSession(context.Background(), eng, os.Stdin, os.Stdout, cli.RunOptions{
			Pacing: pacing,
			SessionOptions: []flowengine.SessionOption{
				flowengine.WithConditionEvaluator(expreval.New().Evaluate),
			},
		}); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Log engine activity to stderr")
	runCmd.Flags().Bool("no-pacing", false, "Disable the inter-message delay")

	// Make 'run' the default when no subcommand is given.
	rootCmd.Run = runCmd.Run
}
