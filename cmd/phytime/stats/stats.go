// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package stats implements a command to print
// basic statistics of the trees in a file.
package stats

import (
	"fmt"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/phytime/tree"
	"github.com/js-arias/phytime/treefile"
)

var Command = &command.Command{
	Usage: `stats [--tree <tree>] [--present <time>] [--dates]
	<tree-file>`,
	Short: "print tree statistics",
	Long: `
Command stats reads a tree file and prints, for each tree, the number of
terminals, the height of the tree, and the time of the most recent common
ancestor (the time of the root).

The argument of the command is the name of the tree file.

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

	found := false
	for _, t := range ts {
		if treeName != "" && t.Name() != treeName {
			continue
		}
		found = true
		if err := propagate(t); err != nil {
			return err
		}

		fmt.Fprintf(c.Stdout(), "%s:\n", t.Name())
		fmt.Fprintf(c.Stdout(), "  Tips: %d\n", len(t.Leaves()))
		fmt.Fprintf(c.Stdout(), "  Height: %.4f\n", t.Height())
		fmt.Fprintf(c.Stdout(), "  TMRCA: %.4f\n", t.Root().Time())
	}
	if treeName != "" && !found {
		return fmt.Errorf("tree %q not found in file %q", treeName, args[0])
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
