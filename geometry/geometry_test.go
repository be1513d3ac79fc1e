// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package geometry_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/js-arias/phytime/geometry"
	"github.com/js-arias/phytime/tree"
)

func buildTree(t testing.TB, recs []tree.Record) *tree.Tree {
	t.Helper()

	tr, err := tree.Build("test", recs)
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	if err := tr.Propagate(); err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if err := tr.Layout(); err != nil {
		t.Fatalf("layout: %v", err)
	}
	return tr
}

func TestBuild(t *testing.T) {
	// ((A:1,B:2)[&posterior=0.97]:1,C:4)[&posterior=1]:0;
	tr := buildTree(t, []tree.Record{
		{Parent: -1, Length: tree.Some(0), Posterior: tree.Some(1)},
		{Parent: 0, Length: tree.Some(1), Posterior: tree.Some(0.97)},
		{ID: "A", Parent: 1, Length: tree.Some(1)},
		{ID: "B", Parent: 1, Length: tree.Some(2)},
		{ID: "C", Parent: 0, Length: tree.Some(4)},
	})

	prims, err := geometry.Build(tr)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []geometry.Primitive{
		geometry.ConnectorSegment{X: 0, Y0: 0.5, Y1: 2},
		geometry.SupportMarker{X: 0, Y: 1.25, Tier: geometry.High, Posterior: 1},
		geometry.BranchSegment{X0: 0, X1: 1, Y: 0.5, Posterior: tree.Some(0.97)},
		geometry.ConnectorSegment{X: 1, Y0: 0, Y1: 1},
		geometry.SupportMarker{X: 1, Y: 0.5, Tier: geometry.High, Posterior: 0.97},
		geometry.BranchSegment{X0: 1, X1: 2, Y: 0},
		geometry.TipLabel{X: 2, Y: 0, Text: "A"},
		geometry.BranchSegment{X0: 1, X1: 3, Y: 1},
		geometry.TipLabel{X: 3, Y: 1, Text: "B"},
		geometry.BranchSegment{X0: 0, X1: 4, Y: 2},
		geometry.TipLabel{X: 4, Y: 2, Text: "C"},
	}
	if !reflect.DeepEqual(prims, want) {
		t.Errorf("primitives:\ngot  %v\nwant %v", prims, want)
	}

	c := geometry.Count(prims)
	if c.Labels != len(tr.Leaves()) {
		t.Errorf("labels: got %d, want %d", c.Labels, len(tr.Leaves()))
	}
	if c.Branches != tr.Len()-1 {
		t.Errorf("branches: got %d, want %d", c.Branches, tr.Len()-1)
	}
}

func TestBuildConnectors(t *testing.T) {
	// ((A)x,(B,C,D)y,E)
	tr := buildTree(t, []tree.Record{
		{Parent: -1},
		{ID: "x", Parent: 0, Length: tree.Some(1)},
		{ID: "A", Parent: 1, Length: tree.Some(1)},
		{ID: "y", Parent: 0, Length: tree.Some(1)},
		{ID: "B", Parent: 3, Length: tree.Some(1)},
		{ID: "C", Parent: 3, Length: tree.Some(1)},
		{ID: "D", Parent: 3, Length: tree.Some(1)},
		{ID: "E", Parent: 0, Length: tree.Some(2)},
	})

	prims, err := geometry.Build(tr)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var conn []geometry.ConnectorSegment
	for _, p := range prims {
		if c, ok := p.(geometry.ConnectorSegment); ok {
			conn = append(conn, c)
		}
	}

	// node x has a single child
	want := []geometry.ConnectorSegment{
		{X: 0, Y0: 0, Y1: 4},
		{X: 1, Y0: 1, Y1: 3},
	}
	if !reflect.DeepEqual(conn, want) {
		t.Errorf("connectors: got %v, want %v", conn, want)
	}
}

func TestBuildSingleLeaf(t *testing.T) {
	tr := buildTree(t, []tree.Record{{ID: "A", Parent: -1}})

	prims, err := geometry.Build(tr)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := geometry.Counts{Labels: 1}
	if c := geometry.Count(prims); c != want {
		t.Errorf("counts: got %+v, want %+v", c, want)
	}
}

func TestBuildNotLaidOut(t *testing.T) {
	tr, err := tree.Build("raw", []tree.Record{{ID: "A", Parent: -1}})
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	if _, err := geometry.Build(tr); !errors.Is(err, geometry.ErrNotLaidOut) {
		t.Errorf("build: got error %v, want %v", err, geometry.ErrNotLaidOut)
	}
	if _, err := geometry.NewBounds(tr); !errors.Is(err, geometry.ErrNotLaidOut) {
		t.Errorf("bounds: got error %v, want %v", err, geometry.ErrNotLaidOut)
	}
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		post float64
		tier geometry.Tier
		ok   bool
	}{
		{1, geometry.High, true},
		{0.95, geometry.High, true},
		{math.Nextafter(0.95, 0), geometry.Medium, true},
		{0.9499, geometry.Medium, true},
		{0.75, geometry.Medium, true},
		{0.74, 0, false},
		{0, 0, false},
	}

	for _, test := range tests {
		tier, ok := geometry.TierOf(test.post)
		if tier != test.tier || ok != test.ok {
			t.Errorf("posterior %v: got %v %v, want %v %v", test.post, tier, ok, test.tier, test.ok)
		}
	}
}

func TestSupportMarkers(t *testing.T) {
	tr := buildTree(t, []tree.Record{
		{Parent: -1, Posterior: tree.Some(0.74)},
		{Parent: 0, Length: tree.Some(1), Posterior: tree.Some(0.9499)},
		{ID: "A", Parent: 1, Length: tree.Some(1), Posterior: tree.Some(1)},
		{ID: "B", Parent: 1, Length: tree.Some(1)},
		{Parent: 0, Length: tree.Some(1)},
		{ID: "C", Parent: 4, Length: tree.Some(1)},
		{ID: "D", Parent: 4, Length: tree.Some(1)},
	})

	prims, err := geometry.Build(tr)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var markers []geometry.SupportMarker
	for _, p := range prims {
		if m, ok := p.(geometry.SupportMarker); ok {
			markers = append(markers, m)
		}
	}

	// terminals never have markers
	want := []geometry.SupportMarker{
		{X: 1, Y: 0.5, Tier: geometry.Medium, Posterior: 0.9499},
	}
	if !reflect.DeepEqual(markers, want) {
		t.Errorf("markers: got %v, want %v", markers, want)
	}
}

func TestBounds(t *testing.T) {
	tr := buildTree(t, []tree.Record{
		{Parent: -1},
		{Parent: 0, Length: tree.Some(1)},
		{ID: "A", Parent: 1, Length: tree.Some(1)},
		{ID: "B", Parent: 1, Length: tree.Some(2)},
		{ID: "C", Parent: 0, Length: tree.Some(4)},
	})

	b, err := geometry.NewBounds(tr)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	span := 4.0
	want := geometry.Bounds{
		XMin:   0 - span*geometry.LeftPad,
		XMax:   4 + span*geometry.RightPad,
		YMin:   -0.5,
		YMax:   2.5,
		Leaves: 3,
	}
	if !reflect.DeepEqual(b, want) {
		t.Errorf("bounds: got %+v, want %+v", b, want)
	}

	single := buildTree(t, []tree.Record{{ID: "A", Parent: -1}})
	b, err = geometry.NewBounds(single)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if b.XMin >= b.XMax {
		t.Errorf("single node bounds: got empty range [%.3f, %.3f]", b.XMin, b.XMax)
	}
	if b.YMin != -0.5 || b.YMax != 0.5 {
		t.Errorf("single node bounds: got [%.3f, %.3f], want [-0.5, 0.5]", b.YMin, b.YMax)
	}
}
