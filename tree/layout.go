// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import "gonum.org/v1/gonum/stat"

// Layout sets the vertical position of each node.
//
// Terminals take consecutive slots
// (0, 1, 2, ...)
// in the order they are found in the input tree,
// and each internal node is placed at the mean
// of the positions of its immediate children.
func (t *Tree) Layout() error {
	if len(t.leaves) == 0 {
		return &EmptyTreeError{Tree: t.name}
	}

	ys := make([]float64, len(t.nodes))
	slot := 0
	t.place(t.root, ys, &slot)

	if t.placed {
		for _, n := range t.nodes {
			if n.y != ys[n.index] {
				return ErrCoordinatesSet
			}
		}
		return nil
	}

	for _, n := range t.nodes {
		n.y = ys[n.index]
	}
	t.placed = true
	return nil
}

func (t *Tree) place(n *Node, ys []float64, slot *int) {
	if len(n.children) == 0 {
		ys[n.index] = float64(*slot)
		*slot++
		return
	}

	cy := make([]float64, 0, len(n.children))
	for _, c := range n.children {
		t.place(c, ys, slot)
		cy = append(cy, ys[c.index])
	}
	ys[n.index] = stat.Mean(cy, nil)
}

// Placed returns true if the vertical positions
// of the tree are already set.
func (t *Tree) Placed() bool {
	return t.placed
}
