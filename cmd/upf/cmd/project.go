package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ultraviolet-go/upf/pkg/config"
	"github.com/ultraviolet-go/upf/pkg/content"
	"github.com/ultraviolet-go/upf/pkg/logging"
	"github.com/ultraviolet-go/upf/pkg/style"
	"github.com/ultraviolet-go/upf/pkg/text"
	"github.com/ultraviolet-go/upf/pkg/theme"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// dataID names the optional data context document in the content dir.
const dataID = "data"

// project is a resolved upf project with its stylesheets loaded. The
// theme sheet, when configured, comes first.
type project struct {
	cfg    *config.Resolved
	theme  *style.Sheet
	sheets []*style.Sheet
	loader content.Loader
}

// splitArgs separates the optional directory argument from flags.
func splitArgs(args []string) (dir string, flags []string, err error) {
	dir = "."
	seen := false
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
			continue
		}
		if seen {
			return "", nil, fmt.Errorf("unexpected argument %q", a)
		}
		dir, seen = a, true
	}
	return dir, flags, nil
}

// loadProject resolves the project at dir, installs a stderr logger at
// the configured level and parses every stylesheet.
func loadProject(dir string) (*project, error) {
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("not in a upf project: %w", err)
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	p := &project{
		cfg:    cfg,
		loader: content.NewCache(content.DirLoader{FS: os.DirFS(cfg.ContentDir)}),
	}
	if cfg.Theme != "" {
		b, err := theme.ParseBrightness(cfg.Theme)
		if err != nil {
			return nil, err
		}
		p.theme = theme.ForBrightness(b).Sheet()
	}
	for _, path := range cfg.Stylesheets {
		sheet, err := style.LoadFile(path)
		if err != nil {
			return nil, err
		}
		p.sheets = append(p.sheets, sheet)
	}
	return p, nil
}

// presenter builds the configured layout into a presenter sized to the
// configured viewport. Property and binding failures are logged and the
// partial tree is kept.
func (p *project) presenter() (*ui.Presenter, error) {
	if p.cfg.Layout == "" {
		return nil, errors.New("app.layout is not set in " + config.FileName)
	}

	var data any
	if d, err := content.TryLoad[map[string]any](p.loader, dataID); err == nil {
		data = d
	} else if !errors.Is(err, content.ErrNotFound) {
		return nil, err
	}

	root, err := content.LoadTree(p.loader, p.cfg.Layout, data)
	if root == nil {
		return nil, err
	}
	if err != nil {
		logging.Logger().Warn("layout built with errors", "layout", p.cfg.Layout, "err", err)
	}

	pr := ui.NewPresenter(p.cfg.Viewport)
	engine := style.NewEngine()
	if p.theme != nil {
		engine.Add(p.theme)
	}
	for _, s := range p.sheets {
		engine.Add(s)
	}
	pr.SetStyler(engine)
	pr.SetTextMeasurer(text.NewMeasurer(text.DefaultFontManager()))
	if err := pr.SetRoot(root); err != nil {
		return nil, err
	}
	return pr, nil
}
