// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package render draws the primitives of a time-scaled tree
// as image files.
package render

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/js-arias/phytime/geometry"
	"github.com/js-arias/phytime/timestage"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// A Figure is a tree ready to be drawn.
type Figure struct {
	Primitives []geometry.Primitive
	Bounds     geometry.Bounds

	// Time intervals shaded in the background.
	Bands []timestage.Band

	// Colors of the terminal names.
	// If a terminal is not in the map,
	// the label color of the style is used.
	LabelColors map[string]color.Color
}

// A Renderer draws figures
// using a given style.
type Renderer struct {
	Style Style
}

// Plot returns a plot with the figure.
func (r Renderer) Plot(fig Figure) (*plot.Plot, error) {
	pal, err := r.Style.Palette()
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = r.Style.Title
	p.X.Label.Text = r.Style.XLabel
	p.HideY()

	p.Add(&treePlotter{
		fig:   fig,
		pal:   pal,
		style: r.Style,
	})
	p.X.Min = fig.Bounds.XMin
	p.X.Max = fig.Bounds.XMax
	p.Y.Min = fig.Bounds.YMin
	p.Y.Max = fig.Bounds.YMax

	if r.Style.Legend {
		p.Legend.Top = true
		p.Legend.Left = true
		p.Legend.Add(fmt.Sprintf("Posterior ≥ %.2f", geometry.HighSupport), markerThumb{
			Color:  pal.High,
			Radius: vg.Points(r.Style.HighRadius),
			Shape:  draw.CircleGlyph{},
		})
		p.Legend.Add(fmt.Sprintf("Posterior ≥ %.2f", geometry.MediumSupport), markerThumb{
			Color:  pal.Medium,
			Radius: vg.Points(r.Style.MediumRadius),
			Shape:  draw.CircleGlyph{},
		})
	}
	return p, nil
}

// Render writes the figure
// in each one of the indicated formats
// (for example "png" or "svg").
// The name of each file is the base name
// with the format as the extension.
// It returns the names of the written files.
func (r Renderer) Render(fig Figure, base string, formats []string) ([]string, error) {
	formats, err := cleanFormats(formats)
	if err != nil {
		return nil, err
	}

	p, err := r.Plot(fig)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(formats))
	for _, f := range formats {
		name := fmt.Sprintf("%s.%s", base, f)
		if err := r.writeFile(p, fig, name, f); err != nil {
			return files, err
		}
		files = append(files, name)
	}
	return files, nil
}

func (r Renderer) writeFile(p *plot.Plot, fig Figure, name, format string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := r.write(f, p, fig, format); err != nil {
		return fmt.Errorf("while writing file %q: %w", name, err)
	}
	return nil
}

// WriteTo writes the figure into a writer
// using the indicated format.
func (r Renderer) WriteTo(w io.Writer, fig Figure, format string) error {
	fs, err := cleanFormats([]string{format})
	if err != nil {
		return err
	}
	p, err := r.Plot(fig)
	if err != nil {
		return err
	}
	return r.write(w, p, fig, fs[0])
}

func (r Renderer) write(w io.Writer, p *plot.Plot, fig Figure, format string) error {
	wd := vg.Length(r.Style.Width) * vg.Inch
	ht := vg.Length(r.Style.Height(fig.Bounds.Leaves)) * vg.Inch

	c, err := r.canvas(format, wd, ht)
	if err != nil {
		return err
	}
	p.Draw(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return err
	}
	return nil
}

func (r Renderer) canvas(format string, w, h vg.Length) (vg.CanvasWriterTo, error) {
	switch format {
	case "png":
		return vgimg.PngCanvas{Canvas: r.image(w, h)}, nil
	case "jpg", "jpeg":
		return vgimg.JpegCanvas{Canvas: r.image(w, h)}, nil
	case "tif", "tiff":
		return vgimg.TiffCanvas{Canvas: r.image(w, h)}, nil
	}
	return draw.NewFormattedCanvas(w, h, format)
}

func (r Renderer) image(w, h vg.Length) *vgimg.Canvas {
	return vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(r.Style.DPI))
}

// Formats is the list of valid output formats.
var Formats = []string{"eps", "jpeg", "jpg", "pdf", "png", "svg", "tex", "tif", "tiff"}

// cleanFormats normalizes a list of formats
// and returns an error if a format is not valid.
// It is checked before any file is written.
func cleanFormats(formats []string) ([]string, error) {
	var fs []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
		if f == "" {
			continue
		}
		if !slices.Contains(Formats, f) {
			return nil, fmt.Errorf("unsupported format %q", f)
		}
		if slices.Contains(fs, f) {
			continue
		}
		fs = append(fs, f)
	}
	if len(fs) == 0 {
		return nil, fmt.Errorf("no output format")
	}
	return fs, nil
}

// A treePlotter implements the plot.Plotter interface
// for a tree figure.
type treePlotter struct {
	fig   Figure
	pal   Palette
	style Style
}

// DataRange implements the plot.DataRanger interface.
func (tp *treePlotter) DataRange() (xMin, xMax, yMin, yMax float64) {
	b := tp.fig.Bounds
	return b.XMin, b.XMax, b.YMin, b.YMax
}

// Plot implements the plot.Plotter interface.
func (tp *treePlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	sty := plt.X.Tick.Label
	sty.Font.Size = vg.Points(tp.style.FontSize)
	sty.XAlign = draw.XLeft
	sty.YAlign = draw.YCenter

	line := plotter.DefaultLineStyle
	line.Width = vg.Points(tp.style.LineWidth)

	s := &canvasSurface{
		c:      &c,
		trX:    trX,
		trY:    trY,
		flip:   tp.fig.Bounds.YMin + tp.fig.Bounds.YMax,
		line:   line,
		text:   sty,
		offset: vg.Points(tp.style.FontSize / 2),
	}
	for _, b := range tp.fig.Bands {
		x0, x1 := trX(b.Start), trX(b.End)
		c.FillPolygon(tp.pal.Band, []vg.Point{
			{X: x0, Y: c.Min.Y},
			{X: x1, Y: c.Min.Y},
			{X: x1, Y: c.Max.Y},
			{X: x0, Y: c.Max.Y},
		})
	}

	pal := tp.pal
	pal.Labels = tp.fig.LabelColors
	Paint(s, tp.fig.Primitives, pal, tp.style)
}

// A canvasSurface draws on a plot canvas.
// Terminals are drawn from the top to the bottom,
// so the vertical axis is reversed.
type canvasSurface struct {
	c        *draw.Canvas
	trX, trY func(float64) vg.Length
	flip     float64

	line   draw.LineStyle
	text   draw.TextStyle
	offset vg.Length
}

func (s *canvasSurface) point(x, y float64) vg.Point {
	return vg.Point{X: s.trX(x), Y: s.trY(s.flip - y)}
}

func (s *canvasSurface) Line(x0, y0, x1, y1 float64, c color.Color) {
	sty := s.line
	sty.Color = c
	p0 := s.point(x0, y0)
	p1 := s.point(x1, y1)
	s.c.StrokeLine2(sty, p0.X, p0.Y, p1.X, p1.Y)
}

func (s *canvasSurface) Text(x, y float64, txt string, c color.Color) {
	sty := s.text
	sty.Color = c
	pt := s.point(x, y)
	pt.X += s.offset
	s.c.FillText(sty, pt, txt)
}

func (s *canvasSurface) Marker(x, y float64, c color.Color, radius float64) {
	s.c.DrawGlyph(draw.GlyphStyle{
		Color:  c,
		Radius: vg.Points(radius),
		Shape:  draw.CircleGlyph{},
	}, s.point(x, y))
}

// A markerThumb is a legend thumbnail
// for a support marker.
type markerThumb draw.GlyphStyle

// Thumbnail implements the plot.Thumbnailer interface.
func (m markerThumb) Thumbnail(c *draw.Canvas) {
	c.DrawGlyph(draw.GlyphStyle(m), c.Center())
}
