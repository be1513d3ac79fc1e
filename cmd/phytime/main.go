// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// PhyTime is a tool to draw time-scaled phylogenetic trees.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phytime/cmd/phytime/draw"
	"github.com/js-arias/phytime/cmd/phytime/layout"
	"github.com/js-arias/phytime/cmd/phytime/stats"
)

var app = &command.Command{
	Usage: "phytime <command> [<argument>...]",
	Short: "a tool to draw time-scaled phylogenetic trees",
}

func init() {
	app.Add(draw.Command)
	app.Add(layout.Command)
	app.Add(stats.Command)
}

func main() {
	app.Main()
}
