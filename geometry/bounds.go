// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package geometry

import (
	"fmt"

	"github.com/js-arias/phytime/tree"
	"gonum.org/v1/gonum/floats"
)

// Padding of the time axis,
// as a fraction of the time span of the tree.
// The right side is larger
// to leave room for the terminal names.
const (
	LeftPad  = 0.05
	RightPad = 0.30
)

// Bounds is the data range of a drawing.
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64

	// Leaves is the number of terminals.
	Leaves int
}

// NewBounds returns the drawing bounds of a tree.
//
// The time axis goes from the oldest node
// minus 5% of the time span,
// to the most recent node
// plus 30% of the time span.
// If all nodes have the same time
// a time span of 1 is used.
// The vertical axis goes from -0.5
// to the number of terminals minus 0.5.
func NewBounds(t *tree.Tree) (Bounds, error) {
	if !t.Timed() || !t.Placed() {
		return Bounds{}, fmt.Errorf("tree %q: %w", t.Name(), ErrNotLaidOut)
	}

	nodes := t.Nodes()
	times := make([]float64, 0, len(nodes))
	for _, n := range nodes {
		times = append(times, n.Time())
	}
	min := floats.Min(times)
	max := floats.Max(times)
	span := max - min
	if span == 0 {
		span = 1
	}

	leaves := len(t.Leaves())
	return Bounds{
		XMin:   min - span*LeftPad,
		XMax:   max + span*RightPad,
		YMin:   -0.5,
		YMax:   float64(leaves) - 0.5,
		Leaves: leaves,
	}, nil
}
