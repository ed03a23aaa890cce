package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opennumeric/xdeps/internal/core/manager"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file.yaml>",
	Short: "Load a dump file produced by Manager.DumpYAML and print it canonically",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("xdeps: reading %s: %w", args[0], err)
	}
	entries, err := manager.ParseYAML(data)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(out, "%s = %s\n", e.Target, e.Expr)
	}
	return nil
}
