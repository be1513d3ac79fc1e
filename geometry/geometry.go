// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package geometry converts a time-scaled tree
// into a list of drawing primitives.
//
// The horizontal coordinate of every primitive
// is the absolute time of a node,
// and the vertical coordinate
// is the vertical position of a node.
package geometry

import (
	"errors"
	"fmt"

	"github.com/js-arias/phytime/tree"
	"gonum.org/v1/gonum/floats"
)

// Posterior thresholds for support markers.
const (
	HighSupport   = 0.95
	MediumSupport = 0.75
)

// A Tier is a support category of a node.
type Tier int

// Valid support tiers.
const (
	Medium Tier = iota + 1
	High
)

func (t Tier) String() string {
	switch t {
	case High:
		return "high"
	case Medium:
		return "medium"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// TierOf returns the support tier of a posterior value.
// It returns false if the value is below the medium threshold.
func TierOf(posterior float64) (Tier, bool) {
	switch {
	case posterior >= HighSupport:
		return High, true
	case posterior >= MediumSupport:
		return Medium, true
	}
	return 0, false
}

// A Primitive is a drawing element.
type Primitive interface {
	primitive()
}

// A BranchSegment is an horizontal line
// from a node to its parent.
type BranchSegment struct {
	X0, X1 float64
	Y      float64

	// Posterior of the node at the tip of the branch
	Posterior tree.Optional
}

// A ConnectorSegment is a vertical line
// that joins the branches of the children of a node.
type ConnectorSegment struct {
	X      float64
	Y0, Y1 float64
}

// A TipLabel is the name of a terminal.
type TipLabel struct {
	X, Y float64
	Text string
}

// A SupportMarker is a point
// that indicates a well supported node.
type SupportMarker struct {
	X, Y      float64
	Tier      Tier
	Posterior float64
}

func (BranchSegment) primitive()    {}
func (ConnectorSegment) primitive() {}
func (TipLabel) primitive()         {}
func (SupportMarker) primitive()    {}

// ErrNotLaidOut is returned when a tree
// without times or vertical positions
// is used to build the primitives.
var ErrNotLaidOut = errors.New("tree without layout")

// Build returns the drawing primitives of a tree.
// Times and vertical positions must be already set.
//
// Primitives are produced in pre-order:
// for each node its branch,
// then its connector
// (or its label if it is a terminal),
// and then its support marker.
func Build(t *tree.Tree) ([]Primitive, error) {
	if !t.Timed() || !t.Placed() {
		return nil, fmt.Errorf("tree %q: %w", t.Name(), ErrNotLaidOut)
	}

	var prims []Primitive
	for _, n := range t.Nodes() {
		if p := n.Parent(); p != nil {
			post, ok := n.Posterior()
			prims = append(prims, BranchSegment{
				X0:        p.Time(),
				X1:        n.Time(),
				Y:         n.Y(),
				Posterior: tree.Optional{Value: post, Valid: ok},
			})
		}

		if n.IsLeaf() {
			prims = append(prims, TipLabel{
				X:    n.Time(),
				Y:    n.Y(),
				Text: n.ID(),
			})
			continue
		}

		children := n.Children()
		if len(children) > 1 {
			ys := make([]float64, 0, len(children))
			for _, c := range children {
				ys = append(ys, c.Y())
			}
			prims = append(prims, ConnectorSegment{
				X:  n.Time(),
				Y0: floats.Min(ys),
				Y1: floats.Max(ys),
			})
		}

		post, ok := n.Posterior()
		if !ok {
			continue
		}
		tier, ok := TierOf(post)
		if !ok {
			continue
		}
		prims = append(prims, SupportMarker{
			X:         n.Time(),
			Y:         n.Y(),
			Tier:      tier,
			Posterior: post,
		})
	}
	return prims, nil
}

// Counts is the number of primitives of each kind.
type Counts struct {
	Branches   int
	Connectors int
	Labels     int
	Markers    int
}

// Count returns the number of primitives of each kind.
func Count(prims []Primitive) Counts {
	var c Counts
	for _, p := range prims {
		switch p.(type) {
		case BranchSegment:
			c.Branches++
		case ConnectorSegment:
			c.Connectors++
		case TipLabel:
			c.Labels++
		case SupportMarker:
			c.Markers++
		}
	}
	return c
}
