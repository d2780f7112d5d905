package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sawtell/planpack"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <run-file.yaml>",
		Short: "Validate a run file, its tables, and document coverage without building",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := planpack.Check(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
