// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package render

import (
	"image/color"
	"math"

	"github.com/js-arias/blind"
	"github.com/js-arias/phytime/geometry"
)

// A Surface is a drawing area
// that uses data coordinates
// (time in the horizontal axis
// and vertical positions in the vertical axis).
type Surface interface {
	// Line draws a line segment.
	Line(x0, y0, x1, y1 float64, c color.Color)

	// Text draws a label to the right of a point.
	Text(x, y float64, txt string, c color.Color)

	// Marker draws a filled circle,
	// the radius is in points.
	Marker(x, y float64, c color.Color, radius float64)
}

// Paint draws the primitives on a surface.
func Paint(s Surface, prims []geometry.Primitive, pal Palette, st Style) {
	for _, p := range prims {
		switch p := p.(type) {
		case geometry.BranchSegment:
			c := pal.Branch
			if pal.SupportColors && p.Posterior.Valid {
				c = SupportColor(p.Posterior.Value)
			}
			s.Line(p.X0, p.Y, p.X1, p.Y, c)
		case geometry.ConnectorSegment:
			s.Line(p.X, p.Y0, p.X, p.Y1, pal.Branch)
		case geometry.TipLabel:
			c, ok := pal.Labels[p.Text]
			if !ok {
				c = pal.Label
			}
			s.Text(p.X, p.Y, p.Text, c)
		case geometry.SupportMarker:
			switch p.Tier {
			case geometry.High:
				s.Marker(p.X, p.Y, pal.High, st.HighRadius)
			case geometry.Medium:
				s.Marker(p.X, p.Y, pal.Medium, st.MediumRadius)
			}
		}
	}
}

// SupportColor returns the color of a branch
// with the given posterior,
// using the iridescent scheme of Paul Tol.
// A NaN posterior is taken as zero.
func SupportColor(posterior float64) color.Color {
	if posterior < 0 || math.IsNaN(posterior) {
		posterior = 0
	}
	if posterior > 1 {
		posterior = 1
	}
	return blind.Sequential(blind.Iridescent, posterior)
}
