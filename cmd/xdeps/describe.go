package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opennumeric/xdeps/config"
	"github.com/opennumeric/xdeps/internal/container"
	"github.com/opennumeric/xdeps/internal/core/manager"
	"github.com/opennumeric/xdeps/internal/core/ref"
)

var describeCmd = &cobra.Command{
	Use:   "describe <path>",
	Short: "Describe a reference's value, bound expression, and influences on the demo graph",
	Long: `Builds the same graph as "xdeps demo" and prints a Describe report
for a dotted item path into it, e.g. "e.c" or "v.a". This is a convenience
walker over container keys, not a textual formula parser.`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(demoConfigPath)
	if err != nil {
		return err
	}
	mgr := manager.New(manager.WithLogger(cfg.NewLogger()))
	v, err := mgr.Ref(container.NewMap(), "v")
	if err != nil {
		return err
	}
	e, err := mgr.Ref(container.NewMap(), "e")
	if err != nil {
		return err
	}
	if err := chain(
		func() error { return mgr.SetValue(v.Item("a"), 3) },
		func() error { return mgr.SetValue(v.Item("b"), 4) },
		func() error { return mgr.SetValue(e.Item("c"), v.Item("a").Add(v.Item("b"))) },
		func() error { return mgr.SetValue(e.Item("d"), e.Item("c").Mul(2)) },
	); err != nil {
		return err
	}

	target, err := resolvePath(map[string]*ref.Root{"v": v, "e": e}, args[0])
	if err != nil {
		return err
	}
	report, err := mgr.Describe(target)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), report.String())
	return nil
}

func resolvePath(roots map[string]*ref.Root, path string) (ref.Ref, error) {
	parts := strings.Split(path, ".")
	root, ok := roots[parts[0]]
	if !ok {
		return nil, fmt.Errorf("xdeps: no container labeled %q", parts[0])
	}
	var cur ref.Ref = root
	for _, key := range parts[1:] {
		combinable, ok := cur.(ref.Combinable)
		if !ok {
			return nil, fmt.Errorf("xdeps: %s cannot be indexed further at %q", cur.String(), key)
		}
		cur = combinable.Item(key)
	}
	return cur, nil
}
