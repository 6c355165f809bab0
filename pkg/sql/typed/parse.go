package typed

import (
	"fmt"
	"strings"
)

// part is either literal text or a reference to a slot
type part struct {
	text string
	slot int
}

const textPart = -1

type parser struct {
	query string
	pos   int
	text  strings.Builder
	parts []part
	slots []Slot
	names map[string]int

	named, positional bool
}

// parse splits the query into literal text and parameter references.
// Quoted literals, quoted identifiers, comments and `::` casts are copied as they are.
// `??` is an escaped question mark.
func parse(query string) (parts []part, slots []Slot, err error) {
	p := &parser{query: query, names: map[string]int{}}
	for p.pos < len(p.query) {
		c := p.query[p.pos]
		switch {
		case c == '\'' || c == '"':
			p.copyQuoted(c)
		case c == '-' && p.peek(1) == '-':
			p.copyUntil("\n")
		case c == '/' && p.peek(1) == '*':
			p.copyUntil("*/")
		case c == '$':
			p.copyDollarQuoted()
		case c == ':' && p.peek(1) == ':':
			p.text.WriteString("::")
			p.pos += 2
		case c == ':' && isIdentStart(p.peek(1)):
			p.pos++
			start := p.pos
			for p.pos < len(p.query) && isIdentChar(p.query[p.pos]) {
				p.pos++
			}
			p.named = true
			p.addNamed(p.query[start:p.pos])
		case c == '?' && p.peek(1) == '?':
			p.text.WriteByte('?')
			p.pos += 2
		case c == '?':
			p.pos++
			p.positional = true
			p.addPositional()
		default:
			p.text.WriteByte(c)
			p.pos++
		}
	}

	if p.named && p.positional {
		return nil, nil, fmt.Errorf("%w: %q", ErrMixedPlaceholders, query)
	}
	p.flush()
	return p.parts, p.slots, nil
}

func (p *parser) peek(offset int) byte {
	if p.pos+offset >= len(p.query) {
		return 0
	}
	return p.query[p.pos+offset]
}

func (p *parser) flush() {
	if p.text.Len() == 0 {
		return
	}
	p.parts = append(p.parts, part{text: p.text.String(), slot: textPart})
	p.text.Reset()
}

func (p *parser) addNamed(name string) {
	idx, ok := p.names[name]
	if !ok {
		idx = len(p.slots)
		p.names[name] = idx
		p.slots = append(p.slots, Named(name))
	}
	p.flush()
	p.parts = append(p.parts, part{slot: idx})
}

func (p *parser) addPositional() {
	idx := len(p.slots)
	p.slots = append(p.slots, Index(idx+1))
	p.flush()
	p.parts = append(p.parts, part{slot: idx})
}

// copyQuoted copies a quoted literal, a doubled quote is an escaped quote.
// In `E'...'` escape strings a backslash escapes the next byte.
func (p *parser) copyQuoted(quote byte) {
	escapes := quote == '\'' && p.isEscapeStringPrefix()
	end := p.pos + 1
	for end < len(p.query) {
		if escapes && p.query[end] == '\\' {
			end += 2
			continue
		}
		if p.query[end] == quote {
			if end+1 < len(p.query) && p.query[end+1] == quote {
				end += 2
				continue
			}
			end++
			break
		}
		end++
	}
	p.text.WriteString(p.query[p.pos:end])
	p.pos = end
}

// isEscapeStringPrefix is true when the quote is preceded by a standalone `E` or `e`
func (p *parser) isEscapeStringPrefix() bool {
	if p.pos == 0 {
		return false
	}
	prev := p.query[p.pos-1]
	if prev != 'E' && prev != 'e' {
		return false
	}
	return p.pos < 2 || !isIdentChar(p.query[p.pos-2])
}

// copyUntil copies a comment, the opening token is always two characters long
func (p *parser) copyUntil(terminator string) {
	from := p.pos + 2
	end := strings.Index(p.query[from:], terminator)
	if end < 0 {
		p.text.WriteString(p.query[p.pos:])
		p.pos = len(p.query)
		return
	}
	end += from + len(terminator)
	p.text.WriteString(p.query[p.pos:end])
	p.pos = end
}

// copyDollarQuoted copies `$tag$ ... $tag$` strings, any other `$` is copied as it is
func (p *parser) copyDollarQuoted() {
	end := p.pos + 1
	for end < len(p.query) && isIdentChar(p.query[end]) {
		end++
	}
	if end >= len(p.query) || p.query[end] != '$' || (end > p.pos+1 && !isIdentStart(p.query[p.pos+1])) {
		p.text.WriteByte('$')
		p.pos++
		return
	}

	tag := p.query[p.pos : end+1]
	closing := strings.Index(p.query[end+1:], tag)
	if closing < 0 {
		p.text.WriteString(p.query[p.pos:])
		p.pos = len(p.query)
		return
	}
	stop := end + 1 + closing + len(tag)
	p.text.WriteString(p.query[p.pos:stop])
	p.pos = stop
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
