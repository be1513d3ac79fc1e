// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package layout implements a command to print
// the coordinates of the nodes of a tree.
package layout

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/phytime/tree"
	"github.com/js-arias/phytime/treefile"
)

var Command = &command.Command{
	Usage: `layout [--tree <tree>] [--present <time>] [--dates]
	<tree-file>`,
	Short: "print node coordinates",
	Long: `
Command layout reads a tree file and prints the coordinates of each node, as
used in a tree drawing, as a tab-delimited table in the standard output.

The argument of the command is the name of the tree file.

The output table contains the following columns:

	tree       the name of the tree
	node       the name of the node
	parent     the name of the parent node
	time       the time of the node
	y          the vertical position of the node
	posterior  the posterior of the node, if defined

Terminals are placed at consecutive vertical positions, starting at 0, in the
order in which they are found in the tree. Internal nodes are placed at the
mean position of their children.

By default, all the trees in the file will be printed. If the flag --tree is
set, only the indicated tree will be printed.

By default, the root is placed at time zero. Use the flag --present to set the
time of the youngest terminal, or the flag --dates to use the latest sampling
date of the terminals as the present.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var useDates bool
var treeName string
var presentFlag string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&useDates, "dates", false, "")
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().StringVar(&presentFlag, "present", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting tree file")
	}
	if presentFlag != "" && useDates {
		return c.UsageError("flags --present and --dates are incompatible")
	}

	ts, err := treefile.Read(args[0])
	if err != nil {
		return fmt.Errorf("while reading file %q: %v", args[0], err)
	}

	var sel []*tree.Tree
	for _, t := range ts {
		if treeName != "" && t.Name() != treeName {
			continue
		}
		if err := propagate(t); err != nil {
			return err
		}
		if err := t.Layout(); err != nil {
			return err
		}
		sel = append(sel, t)
	}
	if treeName != "" && len(sel) == 0 {
		return fmt.Errorf("tree %q not found in file %q", treeName, args[0])
	}

	if err := writeLayout(c.Stdout(), sel); err != nil {
		return fmt.Errorf("while writing output: %v", err)
	}
	return nil
}

func propagate(t *tree.Tree) error {
	if useDates {
		return t.PropagateDates()
	}
	if presentFlag == "" {
		return t.Propagate()
	}
	v, err := strconv.ParseFloat(presentFlag, 64)
	if err != nil {
		return fmt.Errorf("invalid --present value %q: %v", presentFlag, err)
	}
	return t.PropagateAt(v)
}

func writeLayout(w io.Writer, ts []*tree.Tree) error {
	fmt.Fprintf(w, "# node coordinates of time-scaled trees\n")

	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write([]string{"tree", "node", "parent", "time", "y", "posterior"}); err != nil {
		return err
	}
	for _, t := range ts {
		for _, n := range t.Nodes() {
			parent := ""
			if p := n.Parent(); p != nil {
				parent = p.ID()
			}
			post := ""
			if v, ok := n.Posterior(); ok {
				post = strconv.FormatFloat(v, 'f', 6, 64)
			}
			row := []string{
				t.Name(),
				n.ID(),
				parent,
				strconv.FormatFloat(n.Time(), 'f', 6, 64),
				strconv.FormatFloat(n.Y(), 'f', 6, 64),
				post,
			}
			if err := tab.Write(row); err != nil {
				return err
			}
		}
	}

	tab.Flush()
	return tab.Error()
}
