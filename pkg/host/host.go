// Package host runs a presenter inside an ebiten window. It polls
// ebiten input into an input.Router, advances the presenter at a fixed
// tick and draws the tree with a Canvas.
//
//	g := host.New(presenter, host.Options{Title: "demo"})
//	defer g.Close()
//	err := g.Run()
package host

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/ultraviolet-go/upf/pkg/input"
	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/logging"
	"github.com/ultraviolet-go/upf/pkg/text"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// Options configures a Game.
type Options struct {
	Title  string
	Width  int
	Height int
	// TPS is the update rate. Zero uses ebiten's default of 60.
	TPS int
	// Background clears the screen each frame. The zero value is black.
	Background ui.Color
	// DebugOutlines strokes every element's bounds.
	DebugOutlines bool
	// ShowFPS prints frame rates and the last frame's pipeline work in
	// the top left corner.
	ShowFPS bool
	// Fonts supplies faces for text. Nil uses the default manager.
	Fonts *text.FontManager
	// Input overrides the ebiten input source.
	Input InputSource
}

var debugOutline = ui.Color{R: 0xff, G: 0x40, B: 0xff, A: 0xc0}

// Game adapts a presenter to ebiten.Game.
type Game struct {
	presenter *ui.Presenter
	router    *input.Router
	canvas    *Canvas
	opts      Options
	tick      time.Duration
	quit      bool
}

// New creates a game for p. The game owns a router attached to p and
// installs a font-backed text measurer.
func New(p *ui.Presenter, opts Options) *Game {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.TPS <= 0 {
		opts.TPS = ebiten.DefaultTPS
	}
	if opts.Fonts == nil {
		opts.Fonts = text.DefaultFontManager()
	}
	if opts.Input == nil {
		opts.Input = &ebitenInput{}
	}
	if opts.Background.IsTransparent() {
		opts.Background = ui.Black
	}
	p.SetTextMeasurer(text.NewMeasurer(opts.Fonts))
	return &Game{
		presenter: p,
		router:    input.NewRouter(p),
		canvas:    NewCanvas(nil, opts.Fonts),
		opts:      opts,
		tick:      time.Second / time.Duration(opts.TPS),
	}
}

// Router returns the router receiving this game's input.
func (g *Game) Router() *input.Router { return g.router }

// Presenter returns the hosted presenter.
func (g *Game) Presenter() *ui.Presenter { return g.presenter }

// Quit ends Run after the current tick.
func (g *Game) Quit() { g.quit = true }

// Close detaches the router from the presenter.
func (g *Game) Close() { g.router.Close() }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	Deliver(g.router, g.opts.Input.Poll())
	g.presenter.Update(g.tick)
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.opts.Background)
	g.canvas.Retarget(screen)
	g.presenter.Render(g.canvas)
	if g.opts.DebugOutlines {
		g.drawOutlines(screen)
	}
	if g.opts.ShowFPS {
		f := g.presenter.LastFrame()
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS %.0f  FPS %.0f\nframe %d  work %d  %.2fms",
			ebiten.ActualTPS(), ebiten.ActualFPS(),
			f.Frame, f.Stats.Total(), float64(f.Duration)/float64(time.Millisecond)), 4, 4)
	}
}

func (g *Game) drawOutlines(screen *ebiten.Image) {
	root := g.presenter.Root()
	if root == nil {
		return
	}
	root.Walk(func(e *ui.Element) bool {
		if ui.Get(e, ui.VisibilityProperty) != ui.Visible {
			return false
		}
		r := e.AbsoluteBounds()
		vector.StrokeRect(screen, float32(r.X)+0.5, float32(r.Y)+0.5,
			float32(r.Width)-1, float32(r.Height)-1, 1, debugOutline, false)
		return true
	})
}

// Layout implements ebiten.Game. The presenter's viewport follows the
// window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.presenter.Resize(layout.Size{Width: float64(outsideWidth), Height: float64(outsideHeight)})
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it closes or Quit is called.
func (g *Game) Run() error {
	ebiten.SetWindowTitle(g.opts.Title)
	ebiten.SetWindowSize(g.opts.Width, g.opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(g.opts.TPS)
	logging.Logger().Info("host starting",
		"title", g.opts.Title,
		"width", g.opts.Width,
		"height", g.opts.Height,
		"tps", g.opts.TPS,
	)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
