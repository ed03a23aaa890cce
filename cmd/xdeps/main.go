// Command xdeps is ambient demo/debug tooling around the xdeps reactive
// dependency engine: it never implements a formula parser — it only wires
// the library's public surface together for manual exploration and for
// script-based integration tests.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xdeps",
	Short: "Explore the xdeps reactive value-dependency engine",
}

func main() {
	os.Exit(Main())
}

// Main runs the command tree and returns a process exit code instead of
// calling os.Exit directly, so it can be re-entered from a test binary
// (see script_test.go) without killing the test process.
func Main() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
