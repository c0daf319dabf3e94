// internal/vgrid/breakpoint/query.go
package breakpoint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidQuery is returned by ParseQuery for input outside the supported media-query subset.
var ErrInvalidQuery = errors.New("invalid width query")

// BaseFontSize converts em/rem lengths, matching the browser default root font size.
const BaseFontSize = 16.0

// ParseQuery parses the width subset of a CSS media query:
//
//	all
//	screen and (min-width: 960px)
//	(min-width: 500px) and (max-width: 959.98px)
//
// Unitless numbers are taken as-is so that terminal hosts can express widths in cells.
func ParseQuery(input string) (Query, error) {
	p := &queryParser{input: strings.ToLower(strings.TrimSpace(input))}
	q, err := p.parse()
	if err != nil {
		return Query{}, fmt.Errorf("%w: %q: %v", ErrInvalidQuery, input, err)
	}
	return q, nil
}

// MustParseQuery is ParseQuery for literals known to be valid. It panics on error.
func MustParseQuery(input string) Query {
	q, err := ParseQuery(input)
	if err != nil {
		panic(err)
	}
	return q
}

type queryParser struct {
	input string
	pos   int
}

func (p *queryParser) parse() (Query, error) {
	var q Query
	p.consumeWhitespace()
	if p.eof() {
		return q, nil
	}

	// Leading media type.
	if p.currentChar() != '(' {
		mediaType := p.parseIdentifier()
		switch mediaType {
		case "all", "screen":
		default:
			return q, fmt.Errorf("unsupported media type %q", mediaType)
		}
		p.consumeWhitespace()
		if p.eof() {
			return q, nil
		}
		if !p.consumeKeyword("and") {
			return q, fmt.Errorf("expected 'and' at offset %d", p.pos)
		}
	}

	for {
		p.consumeWhitespace()
		if err := p.parseCondition(&q); err != nil {
			return q, err
		}
		p.consumeWhitespace()
		if p.eof() {
			break
		}
		if !p.consumeKeyword("and") {
			return q, fmt.Errorf("unexpected input at offset %d", p.pos)
		}
	}

	if q.HasMinWidth && q.HasMaxWidth && q.MinWidth > q.MaxWidth {
		return q, fmt.Errorf("min-width %g exceeds max-width %g", q.MinWidth, q.MaxWidth)
	}
	return q, nil
}

func (p *queryParser) parseCondition(q *Query) error {
	if p.eof() || p.consumeChar() != '(' {
		return fmt.Errorf("expected '(' at offset %d", p.pos)
	}
	p.consumeWhitespace()
	feature := p.parseIdentifier()
	p.consumeWhitespace()
	if p.eof() || p.consumeChar() != ':' {
		return fmt.Errorf("expected ':' after %q", feature)
	}
	p.consumeWhitespace()
	value, err := p.parseLength()
	if err != nil {
		return err
	}
	p.consumeWhitespace()
	if p.eof() || p.consumeChar() != ')' {
		return fmt.Errorf("expected ')' at offset %d", p.pos)
	}

	switch feature {
	case "min-width":
		q.MinWidth, q.HasMinWidth = value, true
	case "max-width":
		q.MaxWidth, q.HasMaxWidth = value, true
	default:
		return fmt.Errorf("unsupported media feature %q", feature)
	}
	return nil
}

func (p *queryParser) parseLength() (float64, error) {
	start := p.pos
	for !p.eof() && isNumberChar(p.currentChar()) {
		p.pos++
	}
	number := p.input[start:p.pos]
	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("bad length %q", number)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative length %q", number)
	}

	switch unit := p.parseIdentifier(); unit {
	case "", "px":
		return value, nil
	case "em", "rem":
		return value * BaseFontSize, nil
	default:
		return 0, fmt.Errorf("unsupported unit %q", unit)
	}
}

func (p *queryParser) consumeKeyword(kw string) bool {
	if !strings.HasPrefix(p.input[p.pos:], kw) {
		return false
	}
	end := p.pos + len(kw)
	if end < len(p.input) && isIdentifierChar(p.input[end]) {
		return false
	}
	p.pos = end
	return true
}

func (p *queryParser) parseIdentifier() string {
	start := p.pos
	for !p.eof() && isIdentifierChar(p.currentChar()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *queryParser) consumeWhitespace() {
	for !p.eof() && isWhitespace(p.currentChar()) {
		p.pos++
	}
}

func (p *queryParser) eof() bool { return p.pos >= len(p.input) }
func (p *queryParser) currentChar() byte { return p.input[p.pos] }
func (p *queryParser) consumeChar() byte {
	ch := p.input[p.pos]
	p.pos++
	return ch
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isIdentifierChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || ch == '-' || ch == '_'
}

func isNumberChar(ch byte) bool {
	return (ch >= '0' && ch <= '9') || ch == '.' || ch == '-' || ch == '+'
}
