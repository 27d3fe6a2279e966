package cmd

import (
	"encoding/json"
	"fmt"
)

func init() {
	RegisterCommand(&Command{
		Name:  "tree",
		Short: "Print the laid out element tree as JSON",
		Long: `Build the project's layout, run one frame at the configured viewport
and print the element tree snapshot as JSON.

Each node lists its type, name, classes, absolute bounds and every
property value that is not a default, with the layer it came from.`,
		Usage: "upf tree [dir]",
		Run:   runTree,
	})
}

func runTree(args []string) error {
	dir, flags, err := splitArgs(args)
	if err != nil {
		return err
	}
	if len(flags) > 0 {
		return fmt.Errorf("unknown flag %q", flags[0])
	}
	p, err := loadProject(dir)
	if err != nil {
		return err
	}
	pr, err := p.presenter()
	if err != nil {
		return err
	}
	frame := pr.Update(0)
	if frame.Stats.Errors > 0 {
		fmt.Fprintf(stdout, "// %d pipeline errors, see log\n", frame.Stats.Errors)
	}

	data, err := json.MarshalIndent(pr.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("json encode error: %w", err)
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}
