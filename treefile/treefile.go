// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package treefile reads phylogenetic trees from a file
// trying different file formats.
//
// The formats are tried in order,
// and the trees of the first format
// that reads the file without errors are returned.
package treefile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/phytime/newick"
	"github.com/js-arias/phytime/nexus"
	"github.com/js-arias/phytime/tree"
	"github.com/js-arias/timetree"
)

// A Parser reads the trees of a file
// in a particular format.
type Parser interface {
	// Format returns the name of the format.
	Format() string

	// Parse reads the trees from the content of a file.
	// The name is used as the base name of the trees,
	// if the format does not name its trees.
	Parse(name string, data []byte) ([]*tree.Tree, error)
}

// Default is the list of parsers
// in the order they are tried.
var Default = []Parser{
	Nexus{},
	Newick{},
	TSV{},
}

// Read reads the trees from a file
// using the default parsers.
func Read(name string) ([]*tree.Tree, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Parse(BaseName(name), data, Default)
}

// Parse reads the trees from the content of a file.
// Parsers are tried in order,
// and the first parser that succeeds is used.
// If all parsers fail
// the errors of every parser are returned
// as a single *tree.MalformedTreeError.
func Parse(name string, data []byte, parsers []Parser) ([]*tree.Tree, error) {
	var errs []error
	for _, p := range parsers {
		ts, err := p.Parse(name, data)
		if err == nil {
			return ts, nil
		}
		errs = append(errs, fmt.Errorf("as %s: %w", p.Format(), err))
	}

	return nil, &tree.MalformedTreeError{
		Tree:   name,
		Reason: "unable to read trees",
		Err:    errors.Join(errs...),
	}
}

// BaseName returns the name of a file
// without directory and extension.
func BaseName(name string) string {
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Nexus reads NEXUS files.
type Nexus struct{}

func (Nexus) Format() string { return "nexus" }

func (Nexus) Parse(name string, data []byte) ([]*tree.Tree, error) {
	nts, err := nexus.Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	ts := make([]*tree.Tree, 0, len(nts))
	for _, nt := range nts {
		t, err := tree.Build(nt.Name, nt.Records)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, nil
}

// Newick reads files with one or more newick trees.
// The trees are named after the file,
// with a numeric suffix
// if there are more than one tree.
type Newick struct{}

func (Newick) Format() string { return "newick" }

func (Newick) Parse(name string, data []byte) ([]*tree.Tree, error) {
	nts, err := newick.Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	ts := make([]*tree.Tree, 0, len(nts))
	for i, recs := range nts {
		tn := name
		if i > 0 {
			tn = fmt.Sprintf("%s.%d", name, i)
		}
		t, err := tree.Build(tn, recs)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, nil
}

// MillionYears is the unit of branch lengths
// of trees read from TSV files.
const MillionYears = 1_000_000

// TSV reads time calibrated trees
// stored as tab-delimited files.
// Branch lengths are measured in million years.
type TSV struct{}

func (TSV) Format() string { return "tsv" }

func (TSV) Parse(name string, data []byte) ([]*tree.Tree, error) {
	c, err := timetree.ReadTSV(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	names := c.Names()
	if len(names) == 0 {
		return nil, errors.New("no trees found")
	}
	ts := make([]*tree.Tree, 0, len(names))
	for _, tn := range names {
		t, err := tree.Build(tn, timeTreeRecords(c.Tree(tn)))
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, nil
}

func timeTreeRecords(t *timetree.Tree) []tree.Record {
	nodes := t.Nodes()
	idx := make(map[int]int, len(nodes))
	for i, id := range nodes {
		idx[id] = i
	}

	recs := make([]tree.Record, 0, len(nodes))
	for _, id := range nodes {
		r := tree.Record{
			ID:     t.Taxon(id),
			Parent: -1,
		}
		if p := t.Parent(id); p >= 0 {
			r.Parent = idx[p]
			r.Length = tree.Some(float64(t.Age(p)-t.Age(id)) / MillionYears)
		}
		recs = append(recs, r)
	}
	return recs
}
