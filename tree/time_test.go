// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree_test

import (
	"errors"
	"math"
	"testing"

	"github.com/js-arias/phytime/tree"
)

func TestPropagate(t *testing.T) {
	tr, err := tree.Build("test", threeLeaves())
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	if tr.Timed() {
		t.Fatalf("tree should not be timed before propagation")
	}

	if err := tr.Propagate(); err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if !tr.Timed() {
		t.Errorf("tree should be timed after propagation")
	}
	if h := tr.Height(); h != 4 {
		t.Errorf("height: got %.3f, want %.3f", h, 4.0)
	}

	times := map[string]float64{
		"n0": 0,
		"n1": 1,
		"A":  2,
		"B":  3,
		"C":  4,
	}
	ages := map[string]float64{
		"n0": 4,
		"n1": 3,
		"A":  2,
		"B":  1,
		"C":  0,
	}
	for _, n := range tr.Nodes() {
		if n.Time() != times[n.ID()] {
			t.Errorf("time of %q: got %.3f, want %.3f", n.ID(), n.Time(), times[n.ID()])
		}
		if n.Age() != ages[n.ID()] {
			t.Errorf("age of %q: got %.3f, want %.3f", n.ID(), n.Age(), ages[n.ID()])
		}
	}

	if tr.Root().Time() != 0 {
		t.Errorf("root time: got %.3f, want 0", tr.Root().Time())
	}
	var max float64
	for _, n := range tr.Leaves() {
		max = math.Max(max, n.Time())
	}
	if max != tr.Height() {
		t.Errorf("most recent terminal: got %.3f, want %.3f", max, tr.Height())
	}

	// a second run is a no-op
	if err := tr.Propagate(); err != nil {
		t.Errorf("second propagation: %v", err)
	}
	for _, n := range tr.Nodes() {
		if n.Time() != times[n.ID()] {
			t.Errorf("second run: time of %q: got %.3f, want %.3f", n.ID(), n.Time(), times[n.ID()])
		}
	}

	// but coordinates can not be moved
	if err := tr.PropagateAt(2020); !errors.Is(err, tree.ErrCoordinatesSet) {
		t.Errorf("propagate at a different time: got %v, want %v", err, tree.ErrCoordinatesSet)
	}
}

func TestPropagateAt(t *testing.T) {
	recs := []tree.Record{
		{Parent: -1},
		{ID: "A", Parent: 0, Length: tree.Some(1.5), Date: tree.Some(2019)},
		{ID: "B", Parent: 0, Length: tree.Some(2.5), Date: tree.Some(2020)},
	}
	tr, err := tree.Build("dated", recs)
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}

	latest, ok := tr.LatestDate()
	if !ok || latest != 2020 {
		t.Fatalf("latest date: got %.2f %v, want %.2f", latest, ok, 2020.0)
	}
	if err := tr.PropagateAt(latest); err != nil {
		t.Fatalf("propagate: %v", err)
	}

	times := map[string]float64{
		"n0": 2017.5,
		"A":  2019,
		"B":  2020,
	}
	for _, n := range tr.Nodes() {
		if n.Time() != times[n.ID()] {
			t.Errorf("time of %q: got %.3f, want %.3f", n.ID(), n.Time(), times[n.ID()])
		}
	}
}

func TestPropagateSingleNode(t *testing.T) {
	tr, err := tree.Build("single", []tree.Record{{ID: "A", Parent: -1}})
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	if err := tr.Propagate(); err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if tr.Height() != 0 {
		t.Errorf("height: got %.3f, want 0", tr.Height())
	}
	if tr.Root().Time() != 0 {
		t.Errorf("time: got %.3f, want 0", tr.Root().Time())
	}
	if _, ok := tr.LatestDate(); ok {
		t.Errorf("latest date: should be undefined")
	}
}

func TestPropagateMissingLength(t *testing.T) {
	recs := []tree.Record{
		{Parent: -1},
		{ID: "A", Parent: 0},
		{ID: "B", Parent: 0, Length: tree.Some(1)},
	}
	tr, err := tree.Build("missing", recs)
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	if err := tr.Propagate(); err != nil {
		t.Fatalf("propagate: %v", err)
	}
	a := tr.Leaves()[0]
	if a.Time() != 0 {
		t.Errorf("time of %q: got %.3f, want 0", a.ID(), a.Time())
	}
}

func TestPropagateInvalidLength(t *testing.T) {
	tests := map[string]float64{
		"NaN":      math.NaN(),
		"infinity": math.Inf(1),
	}

	for name, l := range tests {
		t.Run(name, func(t *testing.T) {
			recs := []tree.Record{
				{Parent: -1},
				{ID: "A", Parent: 0, Length: tree.Some(1)},
				{ID: "B", Parent: 0, Length: tree.Some(l)},
			}
			tr, err := tree.Build(name, recs)
			if err != nil {
				t.Fatalf("unable to build tree: %v", err)
			}

			err = tr.Propagate()
			var lErr *tree.InvalidBranchLengthError
			if !errors.As(err, &lErr) {
				t.Fatalf("got error %v, want %T", err, lErr)
			}
			if lErr.Node != "B" {
				t.Errorf("node: got %q, want %q", lErr.Node, "B")
			}
			if tr.Timed() {
				t.Errorf("tree should not be timed after a failure")
			}
			for _, n := range tr.Nodes() {
				if n.Time() != 0 {
					t.Errorf("time of %q: got %.3f, want 0", n.ID(), n.Time())
				}
			}
		})
	}
}

func TestPropagateDates(t *testing.T) {
	recs := []tree.Record{
		{Parent: -1},
		{ID: "A", Parent: 0, Length: tree.Some(1.5), Date: tree.Some(2019)},
		{ID: "B", Parent: 0, Length: tree.Some(2.5), Date: tree.Some(2020)},
	}
	tr, err := tree.Build("dated", recs)
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	if err := tr.PropagateDates(); err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if tm := tr.Root().Time(); tm != 2017.5 {
		t.Errorf("root time: got %.3f, want %.3f", tm, 2017.5)
	}

	undated, err := tree.Build("undated", threeLeaves())
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	if err := undated.PropagateDates(); !errors.Is(err, tree.ErrNoDates) {
		t.Errorf("propagate without dates: got %v, want %v", err, tree.ErrNoDates)
	}
	if undated.Timed() {
		t.Errorf("timed: got %v, want %v", undated.Timed(), false)
	}
}
