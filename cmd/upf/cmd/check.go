package cmd

import (
	"fmt"
	"path/filepath"
)

func init() {
	RegisterCommand(&Command{
		Name:  "check",
		Short: "Validate project configuration and stylesheets",
		Long: `Resolve upf.yaml and parse every stylesheet it lists.

Prints the resolved settings and the rule count of each stylesheet.
Exits with an error when the config is invalid or a stylesheet fails
to parse.`,
		Usage: "upf check [dir]",
		Run:   runCheck,
	})
}

func runCheck(args []string) error {
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
	cfg := p.cfg

	fmt.Fprintf(stdout, "Project:  %s (v%s)\n", cfg.AppName, cfg.Version)
	if cfg.ModulePath != "" {
		fmt.Fprintf(stdout, "Module:   %s\n", cfg.ModulePath)
	}
	fmt.Fprintf(stdout, "Viewport: %gx%g\n", cfg.Viewport.Width, cfg.Viewport.Height)
	fmt.Fprintf(stdout, "Content:  %s\n", cfg.ContentDir)
	if cfg.Layout != "" {
		fmt.Fprintf(stdout, "Layout:   %s\n", cfg.Layout)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Stylesheets:")
	if len(p.sheets) == 0 && p.theme == nil {
		fmt.Fprintln(stdout, "  (none)")
	}
	total := 0
	if p.theme != nil {
		fmt.Fprintf(stdout, "  %-30s %d rules\n", p.theme.Name, p.theme.Len())
		total += p.theme.Len()
	}
	for i, sheet := range p.sheets {
		rel, err := filepath.Rel(cfg.Root, cfg.Stylesheets[i])
		if err != nil {
			rel = cfg.Stylesheets[i]
		}
		fmt.Fprintf(stdout, "  %-30s %d rules\n", rel, sheet.Len())
		total += sheet.Len()
	}
	fmt.Fprintf(stdout, "\n%d rules total\n", total)
	return nil
}
