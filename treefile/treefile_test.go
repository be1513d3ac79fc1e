// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treefile_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/js-arias/phytime/tree"
	"github.com/js-arias/phytime/treefile"
)

const nexusFile = `#NEXUS
begin trees;
	translate
		1 A,
		2 B,
		3 C
	;
	tree mcc = [&R] ((1:1,2:2)[&posterior=0.98]:1,3:4);
end;
`

const newickFile = `((A:1,B:2)[&posterior=0.98]:1,C:4);
(A:1,(B:1,C:1):1);
`

const tsvFile = `# time calibrated phylogenetic tree
tree	node	parent	age	taxon
dinosaurs	0	-1	235000000
dinosaurs	1	0	230000000	Eoraptor lunensis
dinosaurs	2	0	170000000
dinosaurs	3	2	145000000	Ceratosaurus nasicornis
dinosaurs	4	2	71000000	Carnotaurus sastrei
`

func TestParse(t *testing.T) {
	tests := map[string]struct {
		data  string
		names []string
		tips  []string
	}{
		"nexus": {
			data:  nexusFile,
			names: []string{"mcc"},
			tips:  []string{"A", "B", "C"},
		},
		"newick": {
			data:  newickFile,
			names: []string{"beast", "beast.1"},
			tips:  []string{"A", "B", "C"},
		},
		"tsv": {
			data:  tsvFile,
			names: []string{"dinosaurs"},
			tips:  []string{"Carnotaurus sastrei", "Ceratosaurus nasicornis", "Eoraptor lunensis"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ts, err := treefile.Parse("beast", []byte(test.data), treefile.Default)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			var names []string
			for _, tr := range ts {
				names = append(names, tr.Name())
			}
			if !reflect.DeepEqual(names, test.names) {
				t.Errorf("names: got %v, want %v", names, test.names)
			}

			var tips []string
			for _, n := range ts[0].Leaves() {
				tips = append(tips, n.ID())
			}
			slices.Sort(tips)
			if !reflect.DeepEqual(tips, test.tips) {
				t.Errorf("tips: got %v, want %v", tips, test.tips)
			}
		})
	}
}

func TestParseTSVLengths(t *testing.T) {
	ts, err := treefile.Parse("dinos", []byte(tsvFile), []treefile.Parser{treefile.TSV{}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tr := ts[0]
	if err := tr.Propagate(); err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if h := tr.Height(); h != 164 {
		t.Errorf("height: got %.3f, want %.3f", h, 164.0)
	}
	for _, n := range tr.Leaves() {
		if n.ID() != "Eoraptor lunensis" {
			continue
		}
		if l, ok := n.Length(); !ok || l != 5 {
			t.Errorf("length of %q: got %.3f %v, want %.3f", n.ID(), l, ok, 5.0)
		}
	}
}

func TestParseFailure(t *testing.T) {
	_, err := treefile.Parse("bad", []byte("this is not a tree"), treefile.Default)
	var mErr *tree.MalformedTreeError
	if !errors.As(err, &mErr) {
		t.Fatalf("got error %v, want %T", err, mErr)
	}
	if mErr.Tree != "bad" {
		t.Errorf("tree: got %q, want %q", mErr.Tree, "bad")
	}
	for _, f := range []string{"nexus", "newick", "tsv"} {
		if !strings.Contains(err.Error(), "as "+f) {
			t.Errorf("error %q: missing %q parser error", err, f)
		}
	}
}

type fakeParser struct {
	format string
	err    error
	calls  *[]string
}

func (f fakeParser) Format() string { return f.format }

func (f fakeParser) Parse(name string, data []byte) ([]*tree.Tree, error) {
	*f.calls = append(*f.calls, f.format)
	if f.err != nil {
		return nil, f.err
	}
	t, err := tree.Build(f.format, []tree.Record{{ID: "A", Parent: -1}})
	if err != nil {
		return nil, err
	}
	return []*tree.Tree{t}, nil
}

func TestParseOrder(t *testing.T) {
	var calls []string
	ps := []treefile.Parser{
		fakeParser{format: "first", err: errors.New("failed"), calls: &calls},
		fakeParser{format: "second", calls: &calls},
		fakeParser{format: "third", calls: &calls},
	}

	ts, err := treefile.Parse("order", nil, ps)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ts[0].Name() != "second" {
		t.Errorf("tree: got %q, want %q", ts[0].Name(), "second")
	}
	if want := []string{"first", "second"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("calls: got %v, want %v", calls, want)
	}
}

func TestRead(t *testing.T) {
	name := filepath.Join(t.TempDir(), "flu.trees")
	if err := os.WriteFile(name, []byte(nexusFile), 0o644); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}

	ts, err := treefile.Read(name)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(ts) != 1 || ts[0].Name() != "mcc" {
		t.Errorf("trees: got %d trees", len(ts))
	}

	if _, err := treefile.Read(filepath.Join(t.TempDir(), "missing.tre")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got error %v, want %v", err, os.ErrNotExist)
	}
}

func TestBaseName(t *testing.T) {
	if b := treefile.BaseName("/data/flu/mcc.tree"); b != "mcc" {
		t.Errorf("base name: got %q, want %q", b, "mcc")
	}
}
