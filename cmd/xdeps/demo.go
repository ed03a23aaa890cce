package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/opennumeric/xdeps/config"
	"github.com/opennumeric/xdeps/internal/container"
	"github.com/opennumeric/xdeps/internal/core/manager"
	"github.com/opennumeric/xdeps/internal/core/ref"
)

var demoConfigPath string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a few propagation scenarios and print the trace",
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().StringVar(&demoConfigPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(demoConfigPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	mgr := manager.New(manager.WithLogger(cfg.NewLogger()))

	v, err := mgr.Ref(container.NewMap(), "v")
	if err != nil {
		return err
	}
	e, err := mgr.Ref(container.NewMap(), "e")
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "-- chained arithmetic --")
	if err := chain(
		func() error { return mgr.SetValue(v.Item("a"), 3) },
		func() error { return mgr.SetValue(v.Item("b"), 4) },
		func() error { return mgr.SetValue(e.Item("c"), v.Item("a").Add(v.Item("b"))) },
		func() error { return mgr.SetValue(e.Item("d"), e.Item("c").Mul(2)) },
	); err != nil {
		return err
	}
	printValue(out, e.Item("c"))
	printValue(out, e.Item("d"))

	if err := mgr.SetValue(v.Item("a"), 10); err != nil {
		return err
	}
	fmt.Fprintln(out, "after v[a] = 10:")
	printValue(out, e.Item("c"))
	printValue(out, e.Item("d"))

	fmt.Fprintln(out, "-- expression removal --")
	if err := chain(
		func() error { return mgr.SetValue(e.Item("d"), 99) },
		func() error { return mgr.SetValue(v.Item("a"), 1) },
	); err != nil {
		return err
	}
	fmt.Fprintln(out, "after e[d] = 99, v[a] = 1:")
	printValue(out, e.Item("c"))
	printValue(out, e.Item("d"))

	fmt.Fprintln(out, "-- clone isolation --")
	clone, err := mgr.Clone(map[string]container.Container{
		"v": container.NewMap(),
		"e": container.NewMap(),
	})
	if err != nil {
		return err
	}
	v2, _ := clone.Root("v")
	e2, _ := clone.Root("e")
	// Clone does not copy container data: the fresh v needs its own b.
	if err := v2.Item("b").SetValue(4); err != nil {
		return err
	}
	if err := clone.SetValue(v2.Item("a"), 100); err != nil {
		return err
	}
	fmt.Fprintln(out, "clone: v'[a] = 100 ->")
	printValue(out, e2.Item("c"))
	fmt.Fprintln(out, "original manager untouched:")
	printValue(out, e.Item("c"))

	return nil
}

func chain(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func printValue(out io.Writer, r ref.Ref) {
	v, err := r.GetValue()
	if err != nil {
		fmt.Fprintf(out, "%s = <error: %s>\n", r.String(), err)
		return
	}
	fmt.Fprintf(out, "%s = %v\n", r.String(), v)
}
