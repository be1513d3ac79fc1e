// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"errors"
	"fmt"
)

// ErrNoDates is returned when the times of a tree
// are anchored to the sampling dates
// but no terminal has a sampling date.
var ErrNoDates = errors.New("terminals without sampling dates")

// Propagate sets the absolute time of each node
// using the tree height as the present,
// so the root is at time 0
// and the most recent terminal is at the height of the tree.
//
// Time increases from the root toward the present.
// Each node is placed at its distance from the root.
func (t *Tree) Propagate() error {
	return t.propagate(nil)
}

// PropagateAt sets the absolute time of each node
// so the most recent terminal is at the indicated time
// (for example, the latest sampling date).
func (t *Tree) PropagateAt(present float64) error {
	return t.propagate(&present)
}

// PropagateDates sets the absolute time of each node
// using the latest sampling date of the terminals
// as the present.
func (t *Tree) PropagateDates() error {
	d, ok := t.LatestDate()
	if !ok {
		return fmt.Errorf("tree %q: %w", t.name, ErrNoDates)
	}
	return t.propagate(&d)
}

func (t *Tree) propagate(present *float64) error {
	if len(t.leaves) == 0 {
		return &EmptyTreeError{Tree: t.name}
	}

	// nodes are stored in pre-order,
	// so the parent is always visited before its children
	cum := make([]float64, len(t.nodes))
	for _, n := range t.nodes {
		if n.parent == nil {
			continue
		}
		l := n.length.Value
		if !n.length.Valid {
			l = 0
		}
		if !validLength(l) {
			return &InvalidBranchLengthError{
				Tree:   t.name,
				Node:   n.id,
				Length: l,
			}
		}
		cum[n.index] = cum[n.parent.index] + l
	}

	var height float64
	for _, n := range t.leaves {
		if cum[n.index] > height {
			height = cum[n.index]
		}
	}

	p := height
	if present != nil {
		p = *present
	}

	times := make([]float64, len(t.nodes))
	for i, c := range cum {
		times[i] = p - height + c
	}

	if t.timed {
		if t.height != height {
			return ErrCoordinatesSet
		}
		for _, n := range t.nodes {
			if n.time != times[n.index] {
				return ErrCoordinatesSet
			}
		}
		return nil
	}

	for _, n := range t.nodes {
		n.time = times[n.index]
		n.age = height - cum[n.index]
	}
	t.height = height
	t.timed = true
	return nil
}

// Height returns the largest distance
// from the root to a terminal.
// It is only valid after the times are set.
func (t *Tree) Height() float64 {
	return t.height
}

// Timed returns true if the absolute times
// of the tree are already set.
func (t *Tree) Timed() bool {
	return t.timed
}

// LatestDate returns the most recent sampling date
// of the terminals of the tree.
func (t *Tree) LatestDate() (float64, bool) {
	var latest float64
	found := false
	for _, n := range t.leaves {
		if !n.date.Valid {
			continue
		}
		if !found || n.date.Value > latest {
			latest = n.date.Value
			found = true
		}
	}
	return latest, found
}
