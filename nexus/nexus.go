// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package nexus reads phylogenetic trees
// from the TREES block of a NEXUS file,
// as the ones produced by BEAST and TreeAnnotator.
//
// Here is an example file:
//
//	#NEXUS
//	begin trees;
//		translate
//			1 'Homo sapiens',
//			2 Pan_troglodytes,
//			3 Gorilla_gorilla
//		;
//		tree TREE1 = [&R] ((1[&date=2020]:6,2:6)[&posterior=1.0]:3,3:9);
//	end;
//
// Blocks other than TREES are ignored.
package nexus

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/js-arias/phytime/newick"
	"github.com/js-arias/phytime/tree"
)

// A Tree is a named tree read from a NEXUS file.
type Tree struct {
	Name    string
	Records []tree.Record
}

// Read reads the trees of a NEXUS file.
func Read(r io.Reader) ([]Tree, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s := string(b)

	cmds, err := commands(s)
	if err != nil {
		return nil, err
	}
	if len(cmds) == 0 || !strings.EqualFold(firstWord(stripComments(cmds[0].text)), "#nexus") {
		return nil, errors.New("expecting #NEXUS header")
	}
	// the header is not terminated by a semicolon
	// so it is read as part of the first command
	cmds[0].text = strings.TrimSpace(stripComments(cmds[0].text))[len("#nexus"):]

	var trees []Tree
	inTrees := false
	translate := make(map[string]string)
	for _, c := range cmds {
		plain := strings.TrimSpace(stripComments(c.text))
		plain = strings.TrimSpace(strings.TrimSuffix(plain, ";"))
		kw := strings.ToLower(firstWord(plain))
		switch {
		case kw == "begin":
			blk := strings.ToLower(strings.TrimSpace(plain[len(kw):]))
			inTrees = blk == "trees"
		case kw == "end" || kw == "endblock":
			inTrees = false
		case !inTrees:
			continue
		case kw == "translate":
			if err := readTranslate(translate, plain[len(kw):]); err != nil {
				return nil, fmt.Errorf("on line %d: %v", c.line, err)
			}
		case kw == "tree" || kw == "utree":
			t, err := readTree(trimLeadingComments(c.text)[len(kw):], translate)
			if err != nil {
				return nil, fmt.Errorf("on line %d: %v", c.line, err)
			}
			if t.Name == "" {
				t.Name = fmt.Sprintf("tree.%d", len(trees))
			}
			trees = append(trees, t)
		}
	}
	if len(trees) == 0 {
		return nil, errors.New("no trees found")
	}
	return trees, nil
}

type command struct {
	text string
	line int
}

// Commands splits a NEXUS file into commands
// terminated by semicolons
// outside quotes and comments.
func commands(s string) ([]command, error) {
	var cmds []command
	var quote byte
	depth := 0
	line := 1
	startLine := 1
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' {
			line++
		}
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case depth > 0:
			if c == '[' {
				depth++
			}
			if c == ']' {
				depth--
			}
		case c == '[':
			depth++
		case c == '\'' || c == '"':
			quote = c
		case c == ';':
			if text := s[start : i+1]; strings.TrimSpace(text) != ";" {
				cmds = append(cmds, command{text: text, line: startLine})
			}
			start = i + 1
			startLine = line
		}
		if i == start && unicode.IsSpace(rune(c)) {
			start++
			startLine = line
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if depth > 0 {
		return nil, errors.New("unterminated comment")
	}
	if rest := strings.TrimSpace(stripComments(s[start:])); rest != "" {
		if len(cmds) == 0 {
			// a header without commands
			cmds = append(cmds, command{text: s[start:], line: startLine})
		} else {
			return nil, fmt.Errorf("on line %d: command without semicolon", startLine)
		}
	}
	return cmds, nil
}

func trimLeadingComments(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, "[") {
		i := strings.IndexByte(s, ']')
		if i < 0 {
			return s
		}
		s = strings.TrimSpace(s[i+1:])
	}
	return s
}

// StripComments removes bracket comments
// that are outside quotes.
func stripComments(s string) string {
	var sb strings.Builder
	var quote byte
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case depth > 0:
			if c == '[' {
				depth++
			}
			if c == ']' {
				depth--
			}
			continue
		case c == '[':
			depth++
			continue
		case c == '\'' || c == '"':
			quote = c
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ';'
	})
	if i < 0 {
		return s
	}
	return s[:i]
}

// ReadTranslate reads the entries of a TRANSLATE command
// in the form "<key> <label>,".
func readTranslate(m map[string]string, s string) error {
	for _, e := range splitOutsideQuotes(s, ',') {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		k := firstWord(e)
		v := strings.TrimSpace(e[len(k):])
		if v == "" {
			return fmt.Errorf("translate: key %q without label", k)
		}
		m[k] = unquote(v)
	}
	return nil
}

// ReadTree reads a TREE command
// in the form "[*] <name> = <newick>;".
func readTree(s string, translate map[string]string) (Tree, error) {
	eq := indexOutsideQuotes(s, '=')
	if eq < 0 {
		return Tree{}, errors.New("tree: expecting '='")
	}
	name := strings.TrimSpace(stripComments(s[:eq]))
	name = strings.TrimSpace(strings.TrimPrefix(name, "*"))
	name = unquote(name)

	recs, err := newick.Parse(s[eq+1:])
	if err != nil {
		return Tree{}, fmt.Errorf("tree %q: %v", name, err)
	}
	for i, r := range recs {
		if v, ok := translate[r.ID]; ok {
			recs[i].ID = v
		}
	}
	return Tree{Name: name, Records: recs}, nil
}

func splitOutsideQuotes(s string, sep byte) []string {
	var fields []string
	for {
		i := indexOutsideQuotes(s, sep)
		if i < 0 {
			return append(fields, s)
		}
		fields = append(fields, s[:i])
		s = s[i+1:]
	}
}

func indexOutsideQuotes(s string, sep byte) int {
	var quote byte
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case depth > 0:
			if c == ']' {
				depth--
			}
		case c == '[':
			depth++
		case c == '\'' || c == '"':
			quote = c
		case c == sep:
			return i
		}
	}
	return -1
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return s
	}
	return strings.ReplaceAll(s[1:len(s)-1], string([]byte{q, q}), string(q))
}
