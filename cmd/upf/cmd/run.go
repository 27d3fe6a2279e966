package cmd

import (
	"fmt"

	"github.com/ultraviolet-go/upf/pkg/diagnostics"
	"github.com/ultraviolet-go/upf/pkg/host"
	"github.com/ultraviolet-go/upf/pkg/logging"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Open the project's layout in a window",
		Long: `Build the project's layout and show it in a resizable window.

When diagnostics.debugServerPort is set in upf.yaml, an HTTP server
exposes /tree, /frames and /health on that port while the window is
open.

Flags:
  --debug    Outline every element's bounds
  --fps      Show frame rate and pipeline work`,
		Usage: "upf run [dir] [--debug] [--fps]",
		Run:   runRun,
	})
}

type runOptions struct {
	debug bool
	fps   bool
}

func parseRunFlags(flags []string) (runOptions, error) {
	var opts runOptions
	for _, f := range flags {
		switch f {
		case "--debug":
			opts.debug = true
		case "--fps":
			opts.fps = true
		default:
			return opts, fmt.Errorf("unknown flag %q", f)
		}
	}
	return opts, nil
}

func runRun(args []string) error {
	dir, flags, err := splitArgs(args)
	if err != nil {
		return err
	}
	opts, err := parseRunFlags(flags)
	if err != nil {
		return err
	}
	p, err := loadProject(dir)
	if err != nil {
		return err
	}
	pr, err := p.presenter()
	if err != nil {
		return err
	}

	cfg := p.cfg
	if cfg.DebugServerPort > 0 {
		mon := diagnostics.NewMonitor(pr, cfg.FrameSamples, 0)
		defer mon.Close()
		srv := diagnostics.NewServer(mon)
		port, err := srv.Start(cfg.DebugServerPort)
		if err != nil {
			return err
		}
		defer srv.Stop()
		fmt.Fprintf(stdout, "Diagnostics at http://localhost:%d/tree\n", port)
	}

	g := host.New(pr, host.Options{
		Title:         cfg.AppName,
		Width:         int(cfg.Viewport.Width),
		Height:        int(cfg.Viewport.Height),
		DebugOutlines: opts.debug,
		ShowFPS:       opts.fps,
	})
	defer g.Close()
	logging.Logger().Debug("window opening", "layout", cfg.Layout)
	return g.Run()
}
