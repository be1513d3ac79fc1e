// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(styleFilesGuide)
	app.Add(treeFilesGuide)
}

var treeFilesGuide = &command.Command{
	Usage: "tree-files",
	Short: "about tree files",
	Long: `
PhyTime reads rooted phylogenetic trees with branch lengths. Three file
formats are accepted, and they are tried in the following order:

- NEXUS files, as produced by BEAST, MrBayes, or TreeAnnotator. Only the TREES
  block is read. If the block has a TRANSLATE table, the numbers in the trees
  are replaced by the taxon names. All the trees of the block are read, and
  they are named after the TREE statement.
- Newick files, with one or more trees, each one ended with a semicolon. The
  trees are named after the file, adding a numeric suffix if there is more
  than one tree.
- Time-calibrated trees in the tab-delimited format used by PhyGeo and other
  tools, with the fields "tree", "node", "parent", "age", and "taxon". Ages
  are in years, and branch lengths are read in million years.

In NEXUS and Newick trees, node annotations in the form

	[&posterior=0.98,date=2019.5,host="human"]

are read. The posterior is the support value of the node, and the date is the
sampling date of a terminal, as a decimal year or as a calendar date
(for example 2019-06-30). Other annotations are kept as node traits.

Terminals without a branch length, or a branch length of zero, are placed at
the same time as their parent node. Negative branch lengths are an error.

By default, time is measured from the root (at time zero) to the youngest
terminal (at the height of the tree). If the flag --present is used in a
command, the youngest terminal will be placed at the indicated time, so the
drawing is anchored to calendar time. If the flag --dates is used, the latest
sampling date of the terminals will be used as the present.
	`,
}

var styleFilesGuide = &command.Command{
	Usage: "style-files",
	Short: "about style files",
	Long: `
The appearance of a tree drawing can be defined with a style file, using the
flag --config of the command 'phytime draw'. A style file is a TOML file. Any
field not defined in the file will use its default value.

These are the fields, with their default values:

	title = "Time-scaled Phylogenetic Tree"
	xlabel = "Time"        # label of the time axis
	width = 12             # figure width, in inches
	min_height = 8         # minimum figure height, in inches
	leaf_height = 0.2      # height per terminal, in inches
	dpi = 300              # resolution of raster images
	line_width = 1.5       # branch width, in points
	font_size = 8          # size of terminal names, in points
	branch_color = "#000000"
	label_color = "#000000"  # terminal names
	band_color = "#ebebeb"   # time bands
	high_color = "#ff0000"   # nodes with posterior >= 0.95
	medium_color = "#ffa500" # nodes with posterior >= 0.75
	high_radius = 2        # marker radius, in points
	medium_radius = 1.5
	support_colors = false # color branches by posterior
	legend = true          # draw a legend of the support markers

Colors are hexadecimal RGB values. If support_colors is set, each branch is
colored by the posterior of its node, using the iridescent color scheme of
Paul Tol, which is safe for color-blind readers.

Unknown fields are an error.
	`,
}
