// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package newick reads phylogenetic trees
// in newick
// (parenthetical)
// format,
// including the node annotations
// written by BEAST, TreeAnnotator, and FigTree
// as comments of the form
//
//	[&posterior=0.98,date=2019.5,height_95%_HPD={1.2,3.4}]
//
// The "posterior" and "date" annotations
// are stored as typed values;
// any other annotation is kept as a raw string.
package newick

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/js-arias/phytime/tree"
)

// Annotation keys with typed values.
const (
	PosteriorKey = "posterior"
	DateKey      = "date"
)

// Read reads one or more trees from a newick file.
// Each tree must end with a semicolon.
func Read(r io.Reader) ([][]tree.Record, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	p := &parser{s: string(b)}
	var trees [][]tree.Record
	for {
		p.skipComments()
		if p.eof() {
			break
		}
		recs, err := p.tree()
		if err != nil {
			return nil, err
		}
		trees = append(trees, recs)
	}
	if len(trees) == 0 {
		return nil, errors.New("no trees found")
	}
	return trees, nil
}

// Parse parses a single newick tree.
// The ending semicolon is optional.
func Parse(s string) ([]tree.Record, error) {
	p := &parser{s: s}
	p.skipComments()
	if err := p.node(-1); err != nil {
		return nil, err
	}
	p.skipComments()
	if p.peek() == ';' {
		p.pos++
		p.skipComments()
	}
	if !p.eof() {
		return nil, p.errorf("unexpected text after the end of the tree")
	}
	return p.recs, nil
}

type parser struct {
	s    string
	pos  int
	recs []tree.Record
}

func (p *parser) tree() ([]tree.Record, error) {
	if err := p.node(-1); err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.eof() || p.s[p.pos] != ';' {
		return nil, p.errorf("expecting ';'")
	}
	p.pos++
	return p.recs, nil
}

func (p *parser) node(parent int) error {
	if parent < 0 {
		p.recs = nil
	}
	idx := len(p.recs)
	p.recs = append(p.recs, tree.Record{Parent: parent})

	p.skipSpace()
	if p.peek() == '(' {
		p.pos++
		for {
			if err := p.node(idx); err != nil {
				return err
			}
			p.skipSpace()
			if p.eof() {
				return p.errorf("unexpected end of input: expecting ')'")
			}
			c := p.s[p.pos]
			p.pos++
			if c == ')' {
				break
			}
			if c != ',' {
				return p.errorf("unexpected character %q: expecting ',' or ')'", c)
			}
		}
	}

	p.skipSpace()
	lbl, err := p.label()
	if err != nil {
		return err
	}
	p.recs[idx].ID = lbl

	for {
		p.skipSpace()
		switch p.peek() {
		case '[':
			c, err := p.comment()
			if err != nil {
				return err
			}
			if err := annotate(&p.recs[idx], c); err != nil {
				return p.errorf("node %q: %w", p.recs[idx].ID, err)
			}
		case ':':
			p.pos++
			p.skipSpace()
			v := p.token()
			l, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return p.errorf("node %q: invalid branch length %q", p.recs[idx].ID, v)
			}
			p.recs[idx].Length = tree.Some(l)
		default:
			return nil
		}
	}
}

func (p *parser) label() (string, error) {
	c := p.peek()
	if c == '\'' || c == '"' {
		return p.quoted()
	}
	return p.token(), nil
}

// Quoted reads a quoted label,
// a doubled quote is a literal quote.
func (p *parser) quoted() (string, error) {
	q := p.s[p.pos]
	p.pos++

	var sb strings.Builder
	for !p.eof() {
		c := p.s[p.pos]
		p.pos++
		if c != q {
			sb.WriteByte(c)
			continue
		}
		if p.peek() == q {
			sb.WriteByte(q)
			p.pos++
			continue
		}
		return sb.String(), nil
	}
	return "", p.errorf("unterminated quoted label")
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '[', ']', ':', ';', ',':
		return true
	}
	return unicode.IsSpace(rune(c))
}

// Token reads an unquoted label or number.
func (p *parser) token() string {
	start := p.pos
	for !p.eof() && !isDelim(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

// Comment reads a bracket comment
// and returns its content.
func (p *parser) comment() (string, error) {
	start := p.pos + 1
	end := strings.IndexByte(p.s[start:], ']')
	if end < 0 {
		return "", p.errorf("unterminated comment")
	}
	p.pos = start + end + 1
	return p.s[start : start+end], nil
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.s[p.pos])) {
		p.pos++
	}
}

// SkipComments skips spaces and comments,
// such as the [&R] used to indicate a rooted tree.
func (p *parser) skipComments() {
	for {
		p.skipSpace()
		if p.peek() != '[' {
			return
		}
		if _, err := p.comment(); err != nil {
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) eof() bool {
	return p.pos >= len(p.s)
}

func (p *parser) errorf(format string, a ...any) error {
	ln := 1 + strings.Count(p.s[:min(p.pos, len(p.s))], "\n")
	return fmt.Errorf("on line %d: "+format, append([]any{ln}, a...)...)
}

// InvalidPosteriorError is returned when a posterior annotation
// is not a probability.
type InvalidPosteriorError struct {
	Value float64
}

func (e *InvalidPosteriorError) Error() string {
	return fmt.Sprintf("invalid posterior %g: expecting a value in [0, 1]", e.Value)
}

// Annotate adds the annotations of a comment
// to a record.
// Comments that do not start with '&'
// are ignored.
func annotate(r *tree.Record, comment string) error {
	if !strings.HasPrefix(comment, "&") {
		return nil
	}
	for _, kv := range splitAnnotations(comment[1:]) {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		v = unquote(strings.TrimSpace(v))

		switch strings.ToLower(k) {
		case PosteriorKey:
			if !ok {
				return errors.New("posterior without value")
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid posterior value %q", v)
			}
			if math.IsNaN(f) || f < 0 || f > 1 {
				return &InvalidPosteriorError{Value: f}
			}
			r.Posterior = tree.Some(f)
		case DateKey:
			if !ok {
				return errors.New("date without value")
			}
			d, err := DecimalYear(v)
			if err != nil {
				return err
			}
			r.Date = tree.Some(d)
		default:
			if r.Traits == nil {
				r.Traits = make(map[string]string)
			}
			r.Traits[k] = v
		}
	}
	return nil
}

// SplitAnnotations split the annotations of a comment
// at the commas that are outside braces and quotes.
func splitAnnotations(s string) []string {
	var fields []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == ',' && depth == 0:
			fields = append(fields, s[start:i])
			start = i + 1
		}
	}
	return append(fields, s[start:])
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// DecimalYear returns a date as a decimal year.
// The date can be a number
// (e.g., 2019.5),
// or a calendar date in the forms
// "2006-01-02", "2006-01", or "2006".
func DecimalYear(s string) (float64, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}

	for _, layout := range []string{"2006-01-02", "2006-01"} {
		d, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		start := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)
		return float64(d.Year()) + d.Sub(start).Hours()/end.Sub(start).Hours(), nil
	}
	return 0, fmt.Errorf("invalid date %q", s)
}
