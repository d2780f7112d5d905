package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sawtell/planpack"
	"github.com/sawtell/planpack/pack"
)

func buildCmd() *cobra.Command {
	var output string
	var timestamp string
	var workers int
	var retainDir string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "build <run-file.yaml>",
		Short: "Build the documentation pack described by a run file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []planpack.Option{
				planpack.WithWorkers(workers),
			}

			if output != "" {
				opts = append(opts, planpack.WithOutput(output))
			}
			if retainDir != "" {
				opts = append(opts, planpack.WithRetainedIntermediates(retainDir))
			}
			if timestamp != "" {
				ts, err := time.Parse(time.RFC3339, timestamp)
				if err != nil {
					return fmt.Errorf("invalid --set-timestamp value %q (want RFC 3339, e.g. 2026-08-23T12:00:00Z): %w", timestamp, err)
				}
				opts = append(opts, planpack.WithTimestamp(ts))
			}
			if !quiet {
				opts = append(opts, planpack.WithProgress(func(room string, stage pack.Stage) {
					if room == "" {
						fmt.Fprintf(cmd.OutOrStdout(), "pack %s\n", stage)
						return
					}
					fmt.Fprintf(cmd.OutOrStdout(), "room %q %s\n", room, stage)
				}))
			}

			return planpack.Build(cmd.Context(), args[0], opts...)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <run-file>.pdf)")
	cmd.Flags().StringVar(&timestamp, "set-timestamp", "", "fix the build timestamp (RFC 3339) for reproducible output")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent room workers (default: one per CPU)")
	cmd.Flags().StringVar(&retainDir, "retain-intermediates", "", "keep per-room intermediate PDFs in this directory")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	return cmd
}
