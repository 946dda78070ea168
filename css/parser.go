// Package css parses stylesheets and computes element styles.
// Reference: https://www.w3.org/TR/css-syntax-3/
package css

import (
	"strings"

	"github.com/chrisuehlinger/domdebug/dom"
)

// Stylesheet is a parsed list of style rules.
type Stylesheet struct {
	Rules []Rule
}

// Rule is a style rule: a selector list and its declarations.
type Rule struct {
	SelectorText string
	Selector     *SelectorList
	Declarations []Declaration
}

// Declaration is a single property: value pair with longhands already
// expanded from shorthands.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// ParseStylesheet parses CSS text. Parsing is forgiving: rules with invalid
// selectors are dropped and at-rules are skipped along with their blocks.
func ParseStylesheet(text string) *Stylesheet {
	p := &parser{src: stripComments(text)}
	ss := &Stylesheet{}
	for {
		p.skipSpace()
		if p.eof() {
			return ss
		}
		if p.peek() == '@' {
			p.skipAtRule()
			continue
		}
		prelude, ok := p.readUntil('{')
		if !ok {
			return ss
		}
		body, _ := p.readBlock()
		selectorText := strings.TrimSpace(prelude)
		sel, err := ParseSelector(selectorText)
		if err != nil {
			continue
		}
		ss.Rules = append(ss.Rules, Rule{
			SelectorText: selectorText,
			Selector:     sel,
			Declarations: ParseDeclarations(body),
		})
	}
}

// ParseDeclarations parses a declaration block body such as the contents of
// a style attribute. Shorthands are expanded into longhands.
func ParseDeclarations(text string) []Declaration {
	var decls []Declaration
	for _, part := range splitTopLevel(stripComments(text), ';') {
		colon := strings.IndexByte(part, ':')
		if colon < 0 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(part[:colon]))
		value, important := dom.SplitImportant(part[colon+1:])
		if prop == "" || value == "" {
			continue
		}
		for _, d := range ExpandShorthand(prop, value) {
			d.Important = important
			decls = append(decls, d)
		}
	}
	return decls
}

// InlineDeclarations parses the element's style attribute.
func InlineDeclarations(el *dom.Element) []Declaration {
	if !el.HasAttribute("style") {
		return nil
	}
	return ParseDeclarations(el.GetAttribute("style"))
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool  { return p.pos >= len(p.src) }
func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

// readUntil returns text up to (not including) delim, honouring quotes, and
// consumes delim.
func (p *parser) readUntil(delim byte) (string, bool) {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '"' || c == '\'':
			p.skipString(c)
			continue
		case c == delim:
			s := p.src[start:p.pos]
			p.pos++
			return s, true
		}
		p.pos++
	}
	return p.src[start:], false
}

// readBlock reads a brace-balanced block body; the opening brace has been
// consumed already.
func (p *parser) readBlock() (string, bool) {
	start := p.pos
	depth := 1
	for !p.eof() {
		c := p.peek()
		switch c {
		case '"', '\'':
			p.skipString(c)
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, true
			}
		}
		p.pos++
	}
	return p.src[start:], false
}

func (p *parser) skipString(quote byte) {
	p.pos++
	for !p.eof() {
		c := p.peek()
		p.pos++
		if c == '\\' {
			p.pos++
			continue
		}
		if c == quote {
			return
		}
	}
}

// skipAtRule skips a statement at-rule (ending in ';') or a block at-rule.
func (p *parser) skipAtRule() {
	for !p.eof() {
		c := p.peek()
		switch c {
		case '"', '\'':
			p.skipString(c)
			continue
		case ';':
			p.pos++
			return
		case '{':
			p.pos++
			p.readBlock()
			return
		}
		p.pos++
	}
}

func stripComments(s string) string {
	if !strings.Contains(s, "/*") {
		return s
	}
	var b strings.Builder
	for {
		i := strings.Index(s, "/*")
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		end := strings.Index(s[i+2:], "*/")
		if end < 0 {
			return b.String()
		}
		b.WriteByte(' ')
		s = s[i+2+end+2:]
	}
}

// splitTopLevel splits s on sep outside parentheses and quotes.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
