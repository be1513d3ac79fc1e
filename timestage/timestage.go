// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package timestage implements a set of time stages
// used to shade time intervals of a tree drawing.
package timestage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Stages is a set of time stages.
// Each stage is the time of the boundary
// between two time intervals.
type Stages map[float64]bool

// New returns an empty set of time stages.
func New() Stages {
	return Stages(make(map[float64]bool))
}

// Every returns the stages
// at regular steps
// starting from a given time
// up to a maximum time.
// The step must be a positive finite value,
// and the start and the maximum must be finite.
func Every(start, step, max float64) (Stages, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("invalid step %.6g", step)
	}
	if !isFinite(start) || !isFinite(max) {
		return nil, fmt.Errorf("invalid time range [%.6g, %.6g]", start, max)
	}
	st := New()
	for i := 0; ; i++ {
		a := start + float64(i)*step
		if a > max {
			break
		}
		st.AddStage(a)
	}
	return st, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ReadFile reads the time stages from a file.
func ReadFile(name string) (Stages, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return st, nil
}

// Read reads one or more time stages from a TSV file.
//
// The TSV must be without header
// and the first column should indicate the time
// of each stage,
// in the same units of the tree.
// Any other columns will be ignored.
//
// Here is an example file
//
//	# epidemic seasons
//	2017.75
//	2018.25
//	2018.75
//	2019.25
func Read(r io.Reader) (Stages, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'
	tsv.FieldsPerRecord = -1

	st := New()
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on line %d: %v", ln, err)
		}

		as := strings.TrimSpace(row[0])
		if as == "" {
			continue
		}
		a, err := strconv.ParseFloat(as, 64)
		if err != nil {
			return nil, fmt.Errorf("on line %d: read %q: %v", ln, as, err)
		}
		st.AddStage(a)
	}

	return st, nil
}

// AddStage adds a time stage.
func (s Stages) AddStage(a float64) {
	s[a] = true
}

// Stages returns a sorted slice
// of the defined time stages.
func (s Stages) Stages() []float64 {
	st := make([]float64, 0, len(s))
	for a := range s {
		st = append(st, a)
	}
	slices.Sort(st)

	return st
}

// A Band is a time interval.
type Band struct {
	Start float64
	End   float64
}

// Bands returns the intervals to be shaded
// between a minimum and a maximum time.
// The intervals between consecutive stages
// are alternated,
// starting with the interval after the first stage.
// Intervals are clipped to the indicated range.
func (s Stages) Bands(min, max float64) []Band {
	st := s.Stages()

	var bands []Band
	for i := 0; i+1 < len(st); i += 2 {
		b := Band{Start: st[i], End: st[i+1]}
		if b.End <= min || b.Start >= max {
			continue
		}
		b.Start = clip(b.Start, min, max)
		b.End = clip(b.End, min, max)
		bands = append(bands, b)
	}
	return bands
}

func clip(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
