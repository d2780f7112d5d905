package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "planpack",
		Short:         "Build print-ready wiring documentation packs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(buildCmd())
	root.AddCommand(checkCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
