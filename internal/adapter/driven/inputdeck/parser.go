// Package inputdeck converts block-structured input decks into nested maps.
//
// A deck is a plain-text file of &SECTION ... &END blocks holding KEY VALUE
// lines, the format used by simulation engines on the clusters this tool
// accounts for:
//
//	&GLOBAL
//	    PRINT_LEVEL  LOW
//	    PROJECT  example
//	&END
//
// Scalar values containing a '.' are coerced to float64, anything else to
// int where possible; unconvertible values stay strings. A repeated section
// name promotes the entry to a list of sections. The body of a &COORD block
// is kept verbatim under "coord" -> "_1".
package inputdeck

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bvanbeek/sbu-dashboard-go/internal/shared/types"
)

// Section is a parsed deck section: values are string, int, float64,
// Section or []any of Sections.
type Section = map[string]any

// ParseFile reads and parses an input deck from disk.
func ParseFile(path string) (Section, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading input deck: %w", err)
	}
	return Parse(string(fileData), path)
}

// Parse parses deck text. name is used in error messages.
func Parse(text, name string) (Section, error) {
	p := &parser{file: name}
	for i, line := range strings.Split(text, "\n") {
		line = sanitizeLine(line)
		if line == "" {
			continue
		}
		p.lines = append(p.lines, line)
		p.lineNos = append(p.lineNos, i+1)
	}

	root := Section{}
	if err := p.parseInto("", 0, root); err != nil {
		return nil, err
	}
	return root, nil
}

type parser struct {
	file    string
	lines   []string
	lineNos []int
	pos     int
}

func (p *parser) next() (string, bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	line := p.lines[p.pos]
	p.pos++
	return line, true
}

// parseInto fills the container until the enclosing &END. header is the raw
// section header, empty at the top level; running out of input inside an
// open section is a ParseError.
func (p *parser) parseInto(header string, headerLine int, container Section) error {
	for {
		line, ok := p.next()
		if !ok {
			if header == "" {
				return nil
			}
			return &types.ParseError{File: p.file, Line: headerLine, Msg: fmt.Sprintf("unterminated %s block", header)}
		}

		switch {
		case strings.EqualFold(line, "&coord"):
			if err := p.parseCoordBlock(container); err != nil {
				return err
			}
		case line[0] == '&' && !isEnd(line):
			if err := p.parseHeader(line, container); err != nil {
				return err
			}
		case !isEnd(line):
			parseBlock(line, container)
		default:
			return nil // end of the enclosing section
		}
	}
}

// parseHeader opens a nested section. A repeated name converts the entry
// into a list of sections.
func (p *parser) parseHeader(line string, container Section) error {
	headerLine := p.lineNos[p.pos-1]

	var key string
	if strings.Contains(line, " ") {
		key = parseMultiKeys(line)
	} else {
		key = strings.ToLower(strings.TrimLeft(line, "&"))
	}

	child := Section{}
	switch existing := container[key].(type) {
	case nil:
		container[key] = child
	case []any:
		container[key] = append(existing, child)
	default:
		container[key] = []any{existing, child}
	}
	return p.parseInto(line, headerLine, child)
}

// parseCoordBlock captures the raw body of a &COORD block.
func (p *parser) parseCoordBlock(container Section) error {
	headerLine := p.lineNos[p.pos-1]

	coord := []string{}
	for {
		line, ok := p.next()
		if !ok {
			return &types.ParseError{File: p.file, Line: headerLine, Msg: "unterminated &COORD block"}
		}
		if strings.EqualFold(line, "&end") {
			break
		}
		coord = append(coord, line)
	}
	container["coord"] = Section{"_1": coord}
	return nil
}

// parseBlock stores a KEY VALUE line with its value coerced.
func parseBlock(line string, container Section) {
	key, value := splitItem(line)
	if strings.Contains(value, ".") {
		container[key] = valueToFloat(value)
	} else {
		container[key] = valueToInt(value)
	}
}

// isEnd reports whether the line closes a section.
func isEnd(line string) bool {
	return len(line) >= 4 && strings.EqualFold(line[:4], "&end")
}

// splitItem splits a line into a key and a value on the first space. The
// key is lowercased; the value keeps its original form.
func splitItem(item string) (string, string) {
	key, value, found := strings.Cut(item, " ")
	if !found {
		return strings.ToLower(item), ""
	}
	return strings.ToLower(key), strings.TrimSpace(value)
}

// parseMultiKeys normalizes a header containing spaces ("&KIND  C"): the
// first word is stripped of '&' and lowercased, the tail kept verbatim.
func parseMultiKeys(item string) string {
	head, tail, _ := strings.Cut(item, " ")
	head = strings.ToLower(strings.TrimLeft(head, "&"))
	return head + " " + strings.TrimSpace(tail)
}

// valueToFloat tries to convert the value to float64, returning the input
// unchanged when the conversion fails.
func valueToFloat(value string) any {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// valueToInt tries to convert the value to int, returning the input
// unchanged when the conversion fails.
func valueToInt(value string) any {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return value
}

// sanitizeLine strips tabs, trailing whitespace and indentation.
func sanitizeLine(line string) string {
	line = strings.ReplaceAll(line, "\t", "")
	return strings.TrimSpace(line)
}
