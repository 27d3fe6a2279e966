package host

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	etext "github.com/hajimehoshi/ebiten/v2/text/v2"

	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/text"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

var whitePixelImage *ebiten.Image

// whitePixel returns a lazily created 1x1 white image. Rectangles are
// drawn by scaling it.
func whitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.White)
	}
	return whitePixelImage
}

// Canvas implements ui.DrawingContext on an ebiten image.
type Canvas struct {
	dst   *ebiten.Image
	fonts *text.FontManager
	faces map[ui.Font]*etext.GoXFace
}

// NewCanvas creates a canvas drawing into dst with fonts from fonts.
func NewCanvas(dst *ebiten.Image, fonts *text.FontManager) *Canvas {
	return &Canvas{dst: dst, fonts: fonts, faces: make(map[ui.Font]*etext.GoXFace)}
}

// Retarget points the canvas at a new image, keeping its face cache.
func (c *Canvas) Retarget(dst *ebiten.Image) { c.dst = dst }

// FillRect implements ui.DrawingContext.
func (c *Canvas) FillRect(r layout.Rect, col ui.Color) {
	if r.IsEmpty() || col.IsTransparent() {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(r.Width, r.Height)
	op.GeoM.Translate(r.X, r.Y)
	op.ColorScale.ScaleWithColor(col)
	c.dst.DrawImage(whitePixel(), op)
}

// StrokeRect implements ui.DrawingContext. Each edge is drawn inside r.
func (c *Canvas) StrokeRect(r layout.Rect, t layout.Thickness, col ui.Color) {
	c.FillRect(layout.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: t.Top}, col)
	c.FillRect(layout.Rect{X: r.X, Y: r.Y + r.Height - t.Bottom, Width: r.Width, Height: t.Bottom}, col)
	inner := r.Height - t.Top - t.Bottom
	c.FillRect(layout.Rect{X: r.X, Y: r.Y + t.Top, Width: t.Left, Height: inner}, col)
	c.FillRect(layout.Rect{X: r.X + r.Width - t.Right, Y: r.Y + t.Top, Width: t.Right, Height: inner}, col)
}

// DrawText implements ui.DrawingContext. origin is the top left of the
// line box.
func (c *Canvas) DrawText(s string, origin layout.Point, f ui.Font, col ui.Color) {
	if s == "" || col.IsTransparent() {
		return
	}
	face := c.face(f)
	if face == nil {
		return
	}
	op := &etext.DrawOptions{}
	op.GeoM.Translate(origin.X, origin.Y)
	op.ColorScale.ScaleWithColor(col)
	etext.Draw(c.dst, s, face, op)
}

func (c *Canvas) face(f ui.Font) *etext.GoXFace {
	if face, ok := c.faces[f]; ok {
		return face
	}
	xf, err := c.fonts.Face(f)
	if err != nil {
		uverrors.Report(uverrors.New("host.Canvas.DrawText", uverrors.KindContent, err))
		c.faces[f] = nil
		return nil
	}
	face := etext.NewGoXFace(xf)
	c.faces[f] = face
	return face
}
