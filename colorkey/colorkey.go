// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package colorkey implements a simple color key
// for the values of a terminal trait.
package colorkey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/js-arias/phytime/tree"
	"github.com/lucasb-eyer/go-colorful"
)

// Key stores the color values
// for the values of a trait.
type Key struct {
	color map[string]color.Color
}

// Color returns the color associated with a given value.
// If no color is defined for the value,
// it will return transparent black.
func (k *Key) Color(v string) (color.Color, bool) {
	c, ok := k.color[v]
	if !ok {
		return color.RGBA{0, 0, 0, 0}, false
	}
	return c, true
}

// Values returns the values defined in the key.
func (k *Key) Values() []string {
	vs := make([]string, 0, len(k.color))
	for v := range k.color {
		vs = append(vs, v)
	}
	slices.Sort(vs)
	return vs
}

// Labels returns the colors of the terminals of a tree
// using the value of the indicated trait.
// Terminals without the trait,
// or with a value not defined in the key,
// are not included.
func (k *Key) Labels(t *tree.Tree, trait string) map[string]color.Color {
	labels := make(map[string]color.Color)
	for _, n := range t.Leaves() {
		v, ok := n.Trait(trait)
		if !ok {
			continue
		}
		c, ok := k.Color(v)
		if !ok {
			continue
		}
		labels[n.ID()] = c
	}
	return labels
}

// ReadFile reads a key file.
func ReadFile(name string) (*Key, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	k, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return k, nil
}

// Read reads a key used to define the colors
// for the values of a trait.
//
// A key file is a tab-delimited file
// with the following required columns:
//
//	-key	the trait value
//	-color	an RGB value separated by commas,
//		for example "125,132,148",
//		or an hexadecimal value,
//		for example "#7d8494".
//
// Any other columns, will be ignored.
// Here is an example of a key file:
//
//	key	color	comment
//	human	#332288	human samples
//	swine	68, 170, 153	pig farms
//	avian	204, 102, 119
func Read(r io.Reader) (*Key, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(h))
		fields[h] = i
	}
	for _, h := range []string{"key", "color"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	k := &Key{
		color: make(map[string]color.Color),
	}
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "key"
		v := strings.TrimSpace(row[fields[f]])
		if v == "" {
			return nil, fmt.Errorf("on row %d: field %q: empty value", ln, f)
		}

		f = "color"
		c, err := parseColor(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		k.color[v] = c
	}
	if len(k.color) == 0 {
		return nil, errors.New("empty key")
	}
	return k, nil
}

func parseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q", s)
		}
		r, g, b := c.RGB255()
		return color.RGBA{r, g, b, 255}, nil
	}

	val := strings.Split(s, ",")
	if len(val) != 3 {
		return nil, fmt.Errorf("found %d values, want 3", len(val))
	}
	var rgb [3]uint8
	for i, name := range []string{"red", "green", "blue"} {
		v, err := strconv.Atoi(strings.TrimSpace(val[i]))
		if err != nil {
			return nil, fmt.Errorf("[%s value]: %v", name, err)
		}
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("[%s value]: invalid value %d", name, v)
		}
		rgb[i] = uint8(v)
	}
	return color.RGBA{rgb[0], rgb[1], rgb[2], 255}, nil
}
