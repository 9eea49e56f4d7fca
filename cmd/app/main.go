// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/rfp-pipeline/cmd/app/commands"
)

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "RFP work item pipeline",
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP API server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "with-pipeline",
						Value: false,
						Usage: "Run the pipeline coordinator in the same process",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, cmd.Bool("with-pipeline"))
				},
			},
			{
				Name:  "worker",
				Usage: "Start the pipeline coordinator",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunWorker(ctx)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrate()
				},
			},
			{
				Name:      "ingest",
				Usage:     "Submit a source document file into the pipeline (use - for stdin)",
				ArgsUsage: "<file>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunIngest(ctx, cmd.Args().First(), commands.DefaultIO())
				},
			},
			{
				Name:  "requeue-dead-letters",
				Usage: "Move all dead-lettered events back to pending",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Value: 100,
						Usage: "Number of events fetched per batch",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRequeueDeadLetters(ctx, int(cmd.Int("batch-size")), commands.DefaultIO())
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
