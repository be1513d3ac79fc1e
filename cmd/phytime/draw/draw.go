// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package draw implements a command to draw
// time-scaled trees as image files.
package draw

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/js-arias/command"
	"github.com/js-arias/phytime/colorkey"
	"github.com/js-arias/phytime/geometry"
	"github.com/js-arias/phytime/render"
	"github.com/js-arias/phytime/timestage"
	"github.com/js-arias/phytime/tree"
	"github.com/js-arias/phytime/treefile"
	"golang.org/x/sync/errgroup"
)

var Command = &command.Command{
	Usage: `draw [--tree <tree>] [--all]
	[--present <time>] [--dates]
	[--config <style-file>] [--format <format-list>]
	[--key <key-file> --trait <trait>]
	[--stages <stage-file>] [--step <value>]
	[-o|--output <out-prefix>]
	[--cpu <number>] [--verbose]
	<tree-file>`,
	Short: "draw time-scaled trees",
	Long: `
Command draw reads a tree file and draws a time-scaled tree, with the
terminal names, and the support of the nodes, into one or more image files.

The argument of the command is the name of the tree file. NEXUS, Newick, and
tab-delimited tree files are accepted; see 'phytime help tree-files'.

By default, only the first tree in the file will be drawn. If the flag --tree
is set, only the indicated tree will be drawn. If the flag --all is set, all
the trees in the file will be drawn.

By default, the root is placed at time zero. Use the flag --present to set the
time of the youngest terminal (for example, a calendar year). If the flag
--dates is set, the latest sampling date of the terminals is used as the
present.

Internal nodes with a posterior of at least 0.95 will be marked with a red
circle, and nodes with a posterior of at least 0.75 with an orange circle.

If the flag --key is set with a key file, the terminal names will be colored
using the value of the trait indicated with the flag --trait, as read from the
node annotations of the tree. A key file is a tab-delimited file with the
columns "key", for the trait value, and "color", for an RGB value (for example
"125,132,148") or an hexadecimal value (for example "#7d8494").

If the flag --stages is set with a file of time stages, the intervals between
the stages will be shaded in alternated bands. A stage file is a tab-delimited
file without header, in which the first column is the time of each stage. Use
the flag --step to shade bands of the indicated size starting from the root.

By default, the default style is used. Use the flag --config to define a
style file; see 'phytime help style-files'.

By default, the figure will be saved as PNG and SVG files. Use the flag
--format to define the output formats as a comma-separated list. Valid
formats are: eps, jpeg, jpg, pdf, png, svg, tex, tif, and tiff.

By default, the name of the tree file will be used as the output prefix. Use
the flag -o, or --output, to define a different prefix. If the flag --all is
set, the name of each tree will be added to the prefix.

When several trees are drawn, coordinates are calculated in parallel. By
default, all available CPUs will be used. Set the --cpu flag to use a
different number of CPUs.

Progress messages are written in the standard error. Use the flag --verbose
for a detailed output.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var allTrees bool
var useDates bool
var verbose bool
var numCPU int
var treeName string
var presentFlag string
var configFile string
var formatFlag string
var outPrefix string
var keyFile string
var traitName string
var stagesFile string
var stepFlag float64

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&allTrees, "all", false, "")
	c.Flags().BoolVar(&useDates, "dates", false, "")
	c.Flags().BoolVar(&verbose, "verbose", false, "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.NumCPU(), "")
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().StringVar(&presentFlag, "present", "", "")
	c.Flags().StringVar(&configFile, "config", "", "")
	c.Flags().StringVar(&formatFlag, "format", "png,svg", "")
	c.Flags().StringVar(&outPrefix, "output", "", "")
	c.Flags().StringVar(&outPrefix, "o", "", "")
	c.Flags().StringVar(&keyFile, "key", "", "")
	c.Flags().StringVar(&traitName, "trait", "", "")
	c.Flags().StringVar(&stagesFile, "stages", "", "")
	c.Flags().Float64Var(&stepFlag, "step", 0, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting tree file")
	}
	if allTrees && treeName != "" {
		return c.UsageError("flags --all and --tree are incompatible")
	}
	if keyFile != "" && traitName == "" {
		return c.UsageError("flag --key requires flag --trait")
	}
	if stagesFile != "" && stepFlag > 0 {
		return c.UsageError("flags --stages and --step are incompatible")
	}
	present, err := parsePresent()
	if err != nil {
		return err
	}

	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(c.Stderr(), log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})

	st := render.DefaultStyle()
	if configFile != "" {
		st, err = render.LoadStyle(configFile)
		if err != nil {
			return err
		}
		logger.Debug("style loaded", "file", configFile)
	}

	var key *colorkey.Key
	if keyFile != "" {
		key, err = colorkey.ReadFile(keyFile)
		if err != nil {
			return err
		}
		logger.Debug("color key loaded", "file", keyFile, "values", len(key.Values()))
	}
	var stages timestage.Stages
	if stagesFile != "" {
		stages, err = timestage.ReadFile(stagesFile)
		if err != nil {
			return err
		}
		logger.Debug("time stages loaded", "file", stagesFile, "stages", len(stages))
	}

	logger.Info("loading tree", "file", args[0])
	ts, err := treefile.Read(args[0])
	if err != nil {
		return fmt.Errorf("while reading file %q: %v", args[0], err)
	}
	ts, err = selectTrees(ts)
	if err != nil {
		return fmt.Errorf("on file %q: %v", args[0], err)
	}

	figs := make([]render.Figure, len(ts))
	var g errgroup.Group
	if numCPU > 0 {
		g.SetLimit(numCPU)
	}
	for i, t := range ts {
		g.Go(func() error {
			fig, err := prepare(t, present)
			if err != nil {
				return err
			}
			if key != nil {
				fig.LabelColors = key.Labels(t, traitName)
			}
			fig.Bands, err = bands(t, stages, fig.Bounds)
			if err != nil {
				return err
			}
			figs[i] = fig
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	prefix := outPrefix
	if prefix == "" {
		prefix = treefile.BaseName(args[0])
	}
	formats := strings.Split(formatFlag, ",")
	r := render.Renderer{Style: st}
	for i, t := range ts {
		logger.Info("tree statistics",
			"tree", t.Name(),
			"tips", len(t.Leaves()),
			"height", fmt.Sprintf("%.4f", t.Height()),
			"tmrca", fmt.Sprintf("%.4f", t.Root().Time()),
		)
		cnt := geometry.Count(figs[i].Primitives)
		logger.Debug("primitives",
			"tree", t.Name(),
			"branches", cnt.Branches,
			"connectors", cnt.Connectors,
			"labels", cnt.Labels,
			"markers", cnt.Markers,
		)

		base := prefix
		if allTrees {
			base = fmt.Sprintf("%s-%s", prefix, t.Name())
		}
		files, err := r.Render(figs[i], base, formats)
		for _, f := range files {
			logger.Info("saved figure", "file", f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func bands(t *tree.Tree, stages timestage.Stages, b geometry.Bounds) ([]timestage.Band, error) {
	if stepFlag > 0 {
		st, err := timestage.Every(t.Root().Time(), stepFlag, b.XMax)
		if err != nil {
			return nil, err
		}
		return st.Bands(b.XMin, b.XMax), nil
	}
	if stages == nil {
		return nil, nil
	}
	return stages.Bands(b.XMin, b.XMax), nil
}

func parsePresent() (*float64, error) {
	if presentFlag == "" {
		return nil, nil
	}
	if useDates {
		return nil, fmt.Errorf("flags --present and --dates are incompatible")
	}
	v, err := strconv.ParseFloat(presentFlag, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid --present value %q: %v", presentFlag, err)
	}
	return &v, nil
}

func selectTrees(ts []*tree.Tree) ([]*tree.Tree, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("no trees found")
	}
	if treeName != "" {
		for _, t := range ts {
			if t.Name() == treeName {
				return []*tree.Tree{t}, nil
			}
		}
		return nil, fmt.Errorf("tree %q not found", treeName)
	}
	if allTrees {
		return ts, nil
	}
	return ts[:1], nil
}

// prepare calculates the coordinates of a tree
// and returns the figure to be drawn.
func prepare(t *tree.Tree, present *float64) (render.Figure, error) {
	switch {
	case present != nil:
		if err := t.PropagateAt(*present); err != nil {
			return render.Figure{}, err
		}
	case useDates:
		if err := t.PropagateDates(); err != nil {
			return render.Figure{}, err
		}
	default:
		if err := t.Propagate(); err != nil {
			return render.Figure{}, err
		}
	}
	if err := t.Layout(); err != nil {
		return render.Figure{}, err
	}

	prims, err := geometry.Build(t)
	if err != nil {
		return render.Figure{}, err
	}
	b, err := geometry.NewBounds(t)
	if err != nil {
		return render.Figure{}, err
	}
	return render.Figure{
		Primitives: prims,
		Bounds:     b,
	}, nil
}
