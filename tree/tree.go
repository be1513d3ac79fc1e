// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree implements rooted phylogenetic trees
// with branch lengths and node annotations,
// and the layout passes used to draw them
// as time-scaled trees.
//
// A tree is built once from a flat list of records,
// and its topology is never changed afterwards.
// The only values set after a tree is built
// are the absolute time
// (see Propagate)
// and the vertical position
// (see Layout)
// of each node.
package tree

import (
	"errors"
	"fmt"
	"math"
)

// An Optional is a value that might be absent.
type Optional struct {
	Value float64
	Valid bool
}

// Some returns a present optional value.
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// A Record is a node definition
// as produced by a tree file reader.
type Record struct {
	// ID is the name of the node.
	// For terminals it is the taxon name.
	ID string

	// Parent is the index of the parent record,
	// -1 is used for the root.
	Parent int

	// Length is the length of the branch
	// that connects the node to its parent.
	Length Optional

	// Posterior is the posterior probability
	// of the clade.
	Posterior Optional

	// Date is the sampling date of the node,
	// as a decimal year.
	Date Optional

	// Traits are any other annotation of the node.
	Traits map[string]string
}

// A Node is a node of a phylogenetic tree.
type Node struct {
	id       string
	index    int
	length   Optional
	parent   *Node
	children []*Node

	posterior Optional
	date      Optional
	traits    map[string]string

	time float64
	age  float64
	y    float64
}

// ID returns the identifier of the node.
func (n *Node) ID() string {
	return n.id
}

// Index returns the pre-order index of the node.
func (n *Node) Index() int {
	return n.index
}

// Length returns the branch length of the node.
// If the length was not defined,
// it returns false.
func (n *Node) Length() (float64, bool) {
	return n.length.Value, n.length.Valid
}

// Parent returns the parent of the node,
// or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the descendants of the node
// in the order defined in the input tree.
func (n *Node) Children() []*Node {
	c := make([]*Node, len(n.children))
	copy(c, n.children)
	return c
}

// IsLeaf returns true if the node is a terminal.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// IsRoot returns true if the node is the root of the tree.
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// Posterior returns the posterior probability of the node.
func (n *Node) Posterior() (float64, bool) {
	return n.posterior.Value, n.posterior.Valid
}

// Date returns the sampling date of the node.
func (n *Node) Date() (float64, bool) {
	return n.date.Value, n.date.Valid
}

// Trait returns the raw value of an annotation.
func (n *Node) Trait(name string) (string, bool) {
	v, ok := n.traits[name]
	return v, ok
}

// Time returns the absolute time of the node.
// Time increases from the root to the terminals:
// by default the root is at time zero
// and the most recent terminal is at the height of the tree.
// When the tree is propagated with a present,
// the most recent terminal is at the present.
// Use Age for the time before the most recent terminal.
func (n *Node) Time() float64 {
	return n.time
}

// Age returns the distance from the node
// to the most recent terminal of the tree
// (i.e., the time before the present).
// The age decreases from the root to the terminals,
// and the most recent terminal has age zero.
func (n *Node) Age() float64 {
	return n.age
}

// Y returns the vertical position of the node.
func (n *Node) Y() float64 {
	return n.y
}

// A Tree is a rooted phylogenetic tree.
type Tree struct {
	name   string
	root   *Node
	nodes  []*Node
	leaves []*Node

	height float64
	timed  bool
	placed bool
}

// Build creates a new tree from a list of records.
// Children are kept in the order of the records.
func Build(name string, recs []Record) (*Tree, error) {
	if len(recs) == 0 {
		return nil, &EmptyTreeError{Tree: name}
	}

	root := -1
	for i, r := range recs {
		if r.Parent < -1 || r.Parent >= len(recs) {
			return nil, &MalformedTreeError{
				Tree:   name,
				Node:   r.ID,
				Reason: fmt.Sprintf("parent index %d out of range", r.Parent),
			}
		}
		if r.Parent == i {
			return nil, &MalformedTreeError{
				Tree:   name,
				Node:   r.ID,
				Reason: "node is its own parent",
			}
		}
		if r.Length.Valid && r.Length.Value < 0 {
			return nil, &MalformedTreeError{
				Tree:   name,
				Node:   r.ID,
				Reason: fmt.Sprintf("negative branch length %g", r.Length.Value),
			}
		}
		if r.Parent != -1 {
			continue
		}
		if root != -1 {
			return nil, &MalformedTreeError{
				Tree:   name,
				Node:   r.ID,
				Reason: fmt.Sprintf("multiple roots (%q is also a root)", recs[root].ID),
			}
		}
		root = i
	}
	if root == -1 {
		return nil, &MalformedTreeError{
			Tree:   name,
			Reason: "no root",
		}
	}

	// every node should reach the root
	state := make([]int8, len(recs))
	for i := range recs {
		if err := checkPath(name, recs, state, i); err != nil {
			return nil, err
		}
	}

	desc := make([][]int, len(recs))
	for i, r := range recs {
		if r.Parent < 0 {
			continue
		}
		desc[r.Parent] = append(desc[r.Parent], i)
	}

	t := &Tree{
		name:  name,
		nodes: make([]*Node, 0, len(recs)),
	}
	t.root = t.copyRecord(recs, desc, root, nil)
	t.nameNodes()
	return t, nil
}

const (
	unvisited int8 = iota
	visiting
	done
)

func checkPath(name string, recs []Record, state []int8, i int) error {
	var path []int
	for j := i; j >= 0; j = recs[j].Parent {
		if state[j] == done {
			break
		}
		if state[j] == visiting {
			return &MalformedTreeError{
				Tree:   name,
				Node:   recs[j].ID,
				Reason: "node is its own ancestor",
			}
		}
		state[j] = visiting
		path = append(path, j)
	}
	for _, j := range path {
		state[j] = done
	}
	return nil
}

func (t *Tree) copyRecord(recs []Record, desc [][]int, i int, parent *Node) *Node {
	r := recs[i]
	n := &Node{
		id:        r.ID,
		index:     len(t.nodes),
		length:    r.Length,
		parent:    parent,
		posterior: r.Posterior,
		date:      r.Date,
	}
	if len(r.Traits) > 0 {
		n.traits = make(map[string]string, len(r.Traits))
		for k, v := range r.Traits {
			n.traits[k] = v
		}
	}
	t.nodes = append(t.nodes, n)
	if len(desc[i]) == 0 {
		t.leaves = append(t.leaves, n)
		return n
	}

	n.children = make([]*Node, 0, len(desc[i]))
	for _, d := range desc[i] {
		n.children = append(n.children, t.copyRecord(recs, desc, d, n))
	}
	return n
}

// NameNodes sets the identifier of unnamed internal nodes
// as "n<index>".
// If the identifier is already in use,
// a numeric suffix is added.
func (t *Tree) nameNodes() {
	used := make(map[string]bool, len(t.nodes))
	for _, n := range t.nodes {
		if n.id != "" {
			used[n.id] = true
		}
	}
	for _, n := range t.nodes {
		if n.id != "" || n.IsLeaf() {
			continue
		}
		id := fmt.Sprintf("n%d", n.index)
		for i := 1; used[id]; i++ {
			id = fmt.Sprintf("n%d.%d", n.index, i)
		}
		n.id = id
		used[id] = true
	}
}

// Name returns the name of the tree.
func (t *Tree) Name() string {
	return t.name
}

// Root returns the root of the tree.
func (t *Tree) Root() *Node {
	return t.root
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Nodes returns the nodes of the tree in pre-order.
func (t *Tree) Nodes() []*Node {
	ns := make([]*Node, len(t.nodes))
	copy(ns, t.nodes)
	return ns
}

// Leaves returns the terminals of the tree
// in the order they are found in a pre-order traversal.
func (t *Tree) Leaves() []*Node {
	ls := make([]*Node, len(t.leaves))
	copy(ls, t.leaves)
	return ls
}

// ErrCoordinatesSet is returned when a layout pass
// would change the coordinates already set on a tree.
var ErrCoordinatesSet = errors.New("coordinates already set")

// MalformedTreeError is returned when the topology
// of a tree is invalid.
type MalformedTreeError struct {
	Tree   string
	Node   string
	Reason string

	// Err is the underlying error,
	// if any.
	Err error
}

func (e *MalformedTreeError) Error() string {
	msg := "malformed tree"
	if e.Tree != "" {
		msg += fmt.Sprintf(" %q", e.Tree)
	}
	if e.Node != "" {
		msg += fmt.Sprintf(": node %q", e.Node)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedTreeError) Unwrap() error {
	return e.Err
}

// InvalidBranchLengthError is returned when a branch length
// is negative, NaN, or infinite.
type InvalidBranchLengthError struct {
	Tree   string
	Node   string
	Length float64
}

func (e *InvalidBranchLengthError) Error() string {
	return fmt.Sprintf("tree %q: node %q: invalid branch length %g", e.Tree, e.Node, e.Length)
}

// EmptyTreeError is returned when a tree has no terminals.
type EmptyTreeError struct {
	Tree string
}

func (e *EmptyTreeError) Error() string {
	return fmt.Sprintf("tree %q: empty tree", e.Tree)
}

func validLength(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
