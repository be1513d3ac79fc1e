// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
)

// Style defines the appearance of a tree drawing.
type Style struct {
	// Title of the figure.
	Title string `toml:"title"`

	// Label of the time axis.
	XLabel string `toml:"xlabel"`

	// Width of the figure, in inches.
	Width float64 `toml:"width"`

	// The height of the figure, in inches,
	// is the number of terminals times LeafHeight,
	// but never smaller than MinHeight.
	MinHeight  float64 `toml:"min_height"`
	LeafHeight float64 `toml:"leaf_height"`

	// Resolution of raster images.
	DPI int `toml:"dpi"`

	// Width of the branches, in points.
	LineWidth float64 `toml:"line_width"`

	// Size of the terminal names, in points.
	FontSize float64 `toml:"font_size"`

	// Colors, as hexadecimal RGB values.
	BranchColor string `toml:"branch_color"`
	LabelColor  string `toml:"label_color"`
	BandColor   string `toml:"band_color"`
	HighColor   string `toml:"high_color"`
	MediumColor string `toml:"medium_color"`

	// Radius of the support markers, in points.
	HighRadius   float64 `toml:"high_radius"`
	MediumRadius float64 `toml:"medium_radius"`

	// If set, branches are colored
	// using the posterior of its node.
	SupportColors bool `toml:"support_colors"`

	// If set, a legend with the support markers
	// is drawn.
	Legend bool `toml:"legend"`
}

// DefaultStyle returns the default style.
func DefaultStyle() Style {
	return Style{
		Title:        "Time-scaled Phylogenetic Tree",
		XLabel:       "Time",
		Width:        12,
		MinHeight:    8,
		LeafHeight:   0.2,
		DPI:          300,
		LineWidth:    1.5,
		FontSize:     8,
		BranchColor:  "#000000",
		LabelColor:   "#000000",
		BandColor:    "#ebebeb",
		HighColor:    "#ff0000",
		MediumColor:  "#ffa500",
		HighRadius:   2,
		MediumRadius: 1.5,
		Legend:       true,
	}
}

// LoadStyle reads a style from a TOML file.
// Undefined fields use the default values.
func LoadStyle(name string) (Style, error) {
	f, err := os.Open(name)
	if err != nil {
		return Style{}, err
	}
	defer f.Close()

	st, err := ReadStyle(f)
	if err != nil {
		return Style{}, fmt.Errorf("on file %q: %v", name, err)
	}
	return st, nil
}

// ReadStyle reads a style in TOML format.
// Undefined fields use the default values.
//
// Here is an example file:
//
//	title = "Influenza H3N2"
//	width = 10
//	dpi = 150
//	high_color = "#882255"
//	support_colors = true
func ReadStyle(r io.Reader) (Style, error) {
	st := DefaultStyle()
	md, err := toml.NewDecoder(r).Decode(&st)
	if err != nil {
		return Style{}, err
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, 0, len(und))
		for _, k := range und {
			keys = append(keys, k.String())
		}
		return Style{}, fmt.Errorf("unknown style fields: %s", strings.Join(keys, ", "))
	}
	if err := st.Validate(); err != nil {
		return Style{}, err
	}
	return st, nil
}

// Validate returns an error if a style value is invalid.
func (s Style) Validate() error {
	if s.Width <= 0 {
		return errors.New("width must be positive")
	}
	if s.MinHeight <= 0 || s.LeafHeight < 0 {
		return errors.New("invalid figure height")
	}
	if s.DPI <= 0 {
		return errors.New("dpi must be positive")
	}
	if s.LineWidth <= 0 || s.FontSize <= 0 {
		return errors.New("line width and font size must be positive")
	}
	if _, err := s.Palette(); err != nil {
		return err
	}
	return nil
}

// Height returns the height of the figure, in inches,
// for a given number of terminals.
func (s Style) Height(leaves int) float64 {
	h := s.LeafHeight * float64(leaves)
	if h < s.MinHeight {
		return s.MinHeight
	}
	return h
}

// A Palette is the set of colors used to draw a tree.
type Palette struct {
	Branch color.Color
	Label  color.Color
	Band   color.Color
	High   color.Color
	Medium color.Color

	// Labels are the colors of individual terminals,
	// by terminal name.
	Labels map[string]color.Color

	// If set, branches are colored by its posterior
	SupportColors bool
}

// Palette returns the colors of a style.
func (s Style) Palette() (Palette, error) {
	br, err := parseColor("branch_color", s.BranchColor)
	if err != nil {
		return Palette{}, err
	}
	lb, err := parseColor("label_color", s.LabelColor)
	if err != nil {
		return Palette{}, err
	}
	bd, err := parseColor("band_color", s.BandColor)
	if err != nil {
		return Palette{}, err
	}
	hi, err := parseColor("high_color", s.HighColor)
	if err != nil {
		return Palette{}, err
	}
	md, err := parseColor("medium_color", s.MediumColor)
	if err != nil {
		return Palette{}, err
	}
	return Palette{
		Branch:        br,
		Label:         lb,
		Band:          bd,
		High:          hi,
		Medium:        md,
		SupportColors: s.SupportColors,
	}, nil
}

func parseColor(field, hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid color %q", field, hex)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}
