package css

import (
	"fmt"
	"strings"

	"github.com/chrisuehlinger/domdebug/dom"
)

// SelectorList is a comma-separated list of complex selectors.
type SelectorList struct {
	Complex []*ComplexSelector
}

// ComplexSelector is a chain of compound selectors joined by combinators,
// stored left to right.
type ComplexSelector struct {
	Compounds []*CompoundSelector
}

// CompoundSelector is a sequence of simple selectors with no combinator
// between them.
type CompoundSelector struct {
	Tag           string // "" or "*" matches any element
	IDs           []string
	Classes       []string
	Attributes    []AttributeMatcher
	PseudoClasses []PseudoClass
	PseudoElement string

	// Combinator joins this compound to the one before it.
	Combinator Combinator
}

// Combinator joins two compound selectors.
type Combinator int

const (
	CombinatorNone Combinator = iota
	CombinatorDescendant
	CombinatorChild
	CombinatorNextSibling
	CombinatorSubsequentSibling
)

// AttributeMatcher is an attribute selector such as [type="text"].
type AttributeMatcher struct {
	Name     string
	Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value    string
}

// PseudoClass is a pseudo-class with an optional compound argument for :not().
type PseudoClass struct {
	Name string
	Not  *CompoundSelector
}

// Specificity represents CSS selector specificity.
// Per https://www.w3.org/TR/selectors-4/#specificity
type Specificity struct {
	A int // ID selectors
	B int // Class selectors, attribute selectors, pseudo-classes
	C int // Type selectors, pseudo-elements
}

// Compare compares two specificities. Returns -1, 0, or 1.
func (s Specificity) Compare(other Specificity) int {
	switch {
	case s.A != other.A:
		return sign(s.A - other.A)
	case s.B != other.B:
		return sign(s.B - other.B)
	default:
		return sign(s.C - other.C)
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// Specificity calculates the specificity of a complex selector.
func (cs *ComplexSelector) Specificity() Specificity {
	var spec Specificity
	for _, c := range cs.Compounds {
		spec = spec.add(c.specificity())
	}
	return spec
}

func (c *CompoundSelector) specificity() Specificity {
	spec := Specificity{
		A: len(c.IDs),
		B: len(c.Classes) + len(c.Attributes),
	}
	for _, pc := range c.PseudoClasses {
		if pc.Not != nil {
			spec = spec.add(pc.Not.specificity())
		} else {
			spec.B++
		}
	}
	if c.Tag != "" && c.Tag != "*" {
		spec.C++
	}
	if c.PseudoElement != "" {
		spec.C++
	}
	return spec
}

func (s Specificity) add(o Specificity) Specificity {
	return Specificity{s.A + o.A, s.B + o.B, s.C + o.C}
}

// ParseSelector parses a selector list.
func ParseSelector(input string) (*SelectorList, error) {
	list := &SelectorList{}
	for _, part := range splitTopLevel(input, ',') {
		cs, err := parseComplex(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		list.Complex = append(list.Complex, cs)
	}
	return list, nil
}

func parseComplex(s string) (*ComplexSelector, error) {
	if s == "" {
		return nil, fmt.Errorf("empty selector")
	}
	cs := &ComplexSelector{}
	pending := CombinatorNone
	i := 0
	for i < len(s) {
		sawSpace := false
		for i < len(s) && isSpace(s[i]) {
			i++
			sawSpace = true
		}
		if i >= len(s) {
			break
		}
		switch s[i] {
		case '>', '+', '~':
			if len(cs.Compounds) == 0 || pending > CombinatorDescendant {
				return nil, fmt.Errorf("unexpected combinator %q in %q", s[i], s)
			}
			pending = map[byte]Combinator{'>': CombinatorChild, '+': CombinatorNextSibling, '~': CombinatorSubsequentSibling}[s[i]]
			i++
			continue
		}
		if sawSpace && len(cs.Compounds) > 0 && pending == CombinatorNone {
			pending = CombinatorDescendant
		}
		compound, n, err := parseCompound(s[i:])
		if err != nil {
			return nil, err
		}
		if len(cs.Compounds) > 0 && pending == CombinatorNone {
			return nil, fmt.Errorf("missing combinator in %q", s)
		}
		compound.Combinator = pending
		pending = CombinatorNone
		cs.Compounds = append(cs.Compounds, compound)
		i += n
	}
	if len(cs.Compounds) == 0 || pending != CombinatorNone {
		return nil, fmt.Errorf("incomplete selector %q", s)
	}
	return cs, nil
}

// parseCompound parses one compound selector from the start of s and returns
// the number of bytes consumed.
func parseCompound(s string) (*CompoundSelector, int, error) {
	c := &CompoundSelector{}
	i := 0
	if i < len(s) && (s[i] == '*' || isIdentStart(s[i])) {
		n := identLen(s[i:])
		if s[i] == '*' {
			n = 1
		}
		c.Tag = strings.ToLower(s[i : i+n])
		i += n
	}
	for i < len(s) {
		switch s[i] {
		case '#', '.':
			n := identLen(s[i+1:])
			if n == 0 {
				return nil, 0, fmt.Errorf("expected name after %q", s[i])
			}
			if s[i] == '#' {
				c.IDs = append(c.IDs, s[i+1:i+1+n])
			} else {
				c.Classes = append(c.Classes, s[i+1:i+1+n])
			}
			i += 1 + n
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, 0, fmt.Errorf("unterminated attribute selector")
			}
			am, err := parseAttribute(s[i+1 : i+end])
			if err != nil {
				return nil, 0, err
			}
			c.Attributes = append(c.Attributes, am)
			i += end + 1
		case ':':
			if strings.HasPrefix(s[i:], "::") {
				n := identLen(s[i+2:])
				c.PseudoElement = strings.ToLower(s[i+2 : i+2+n])
				i += 2 + n
				continue
			}
			n := identLen(s[i+1:])
			if n == 0 {
				return nil, 0, fmt.Errorf("expected pseudo-class name")
			}
			pc := PseudoClass{Name: strings.ToLower(s[i+1 : i+1+n])}
			i += 1 + n
			if i < len(s) && s[i] == '(' {
				end := strings.IndexByte(s[i:], ')')
				if end < 0 {
					return nil, 0, fmt.Errorf("unterminated pseudo-class argument")
				}
				arg := strings.TrimSpace(s[i+1 : i+end])
				if pc.Name != "not" {
					return nil, 0, fmt.Errorf("unsupported pseudo-class :%s()", pc.Name)
				}
				inner, m, err := parseCompound(arg)
				if err != nil || m != len(arg) {
					return nil, 0, fmt.Errorf("invalid :not() argument %q", arg)
				}
				pc.Not = inner
				i += end + 1
			}
			if pc.Name == "before" || pc.Name == "after" {
				c.PseudoElement = pc.Name
				continue
			}
			c.PseudoClasses = append(c.PseudoClasses, pc)
		default:
			if i == 0 {
				return nil, 0, fmt.Errorf("unexpected %q", s[i])
			}
			return c, i, nil
		}
	}
	if i == 0 {
		return nil, 0, fmt.Errorf("empty compound selector")
	}
	return c, i, nil
}

func parseAttribute(s string) (AttributeMatcher, error) {
	s = strings.TrimSpace(s)
	op := strings.IndexAny(s, "=~|^$*")
	if op < 0 {
		if identLen(s) != len(s) || s == "" {
			return AttributeMatcher{}, fmt.Errorf("invalid attribute selector [%s]", s)
		}
		return AttributeMatcher{Name: strings.ToLower(s)}, nil
	}
	name := strings.ToLower(strings.TrimSpace(s[:op]))
	rest := s[op:]
	operator := "="
	if rest[0] != '=' {
		if len(rest) < 2 || rest[1] != '=' {
			return AttributeMatcher{}, fmt.Errorf("invalid attribute operator in [%s]", s)
		}
		operator = rest[:2]
	}
	value := strings.TrimSpace(rest[len(operator):])
	value = strings.Trim(value, `"'`)
	return AttributeMatcher{Name: name, Operator: operator, Value: value}, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '-' || c >= 0x80 || (c|0x20) >= 'a' && (c|0x20) <= 'z'
}

func identLen(s string) int {
	n := 0
	for n < len(s) {
		c := s[n]
		if isIdentStart(c) || (c >= '0' && c <= '9') {
			n++
			continue
		}
		if c == '\\' && n+1 < len(s) {
			n += 2
			continue
		}
		break
	}
	return n
}

// Match reports whether el matches any selector in the list, and returns
// the specificity of the most specific matching selector.
func (sl *SelectorList) Match(el *dom.Element) (bool, Specificity) {
	matched := false
	var best Specificity
	for _, cs := range sl.Complex {
		if cs.Matches(el) {
			spec := cs.Specificity()
			if !matched || best.Compare(spec) < 0 {
				best = spec
			}
			matched = true
		}
	}
	return matched, best
}

// Matches reports whether el matches the complex selector.
func (cs *ComplexSelector) Matches(el *dom.Element) bool {
	return matchFrom(cs.Compounds, len(cs.Compounds)-1, el)
}

func matchFrom(compounds []*CompoundSelector, i int, el *dom.Element) bool {
	c := compounds[i]
	if !c.Matches(el) {
		return false
	}
	if i == 0 {
		return true
	}
	switch c.Combinator {
	case CombinatorChild:
		p := el.ParentElement()
		return p != nil && matchFrom(compounds, i-1, p)
	case CombinatorDescendant:
		for p := el.ParentElement(); p != nil; p = p.ParentElement() {
			if matchFrom(compounds, i-1, p) {
				return true
			}
		}
	case CombinatorNextSibling:
		prev := previousElement(el)
		return prev != nil && matchFrom(compounds, i-1, prev)
	case CombinatorSubsequentSibling:
		for prev := previousElement(el); prev != nil; prev = previousElement(prev) {
			if matchFrom(compounds, i-1, prev) {
				return true
			}
		}
	}
	return false
}

// Matches reports whether el matches every simple selector in c.
// Pseudo-elements and dynamic pseudo-classes never match.
func (c *CompoundSelector) Matches(el *dom.Element) bool {
	if c.PseudoElement != "" {
		return false
	}
	if c.Tag != "" && c.Tag != "*" && c.Tag != el.LocalName() {
		return false
	}
	for _, id := range c.IDs {
		if el.Id() != id {
			return false
		}
	}
	for _, class := range c.Classes {
		if !el.ClassList().Contains(class) {
			return false
		}
	}
	for _, am := range c.Attributes {
		if !am.matches(el) {
			return false
		}
	}
	for _, pc := range c.PseudoClasses {
		if !pc.matches(el) {
			return false
		}
	}
	return true
}

func (am AttributeMatcher) matches(el *dom.Element) bool {
	if !el.HasAttribute(am.Name) {
		return false
	}
	v := el.GetAttribute(am.Name)
	switch am.Operator {
	case "":
		return true
	case "=":
		return v == am.Value
	case "~=":
		for _, f := range strings.Fields(v) {
			if f == am.Value {
				return true
			}
		}
		return false
	case "|=":
		return v == am.Value || strings.HasPrefix(v, am.Value+"-")
	case "^=":
		return am.Value != "" && strings.HasPrefix(v, am.Value)
	case "$=":
		return am.Value != "" && strings.HasSuffix(v, am.Value)
	case "*=":
		return am.Value != "" && strings.Contains(v, am.Value)
	}
	return false
}

func (pc PseudoClass) matches(el *dom.Element) bool {
	switch pc.Name {
	case "not":
		return pc.Not != nil && !pc.Not.Matches(el)
	case "root":
		return el.ParentElement() == nil && el.IsConnected()
	case "first-child":
		return previousElement(el) == nil
	case "last-child":
		return nextElement(el) == nil
	case "only-child":
		return previousElement(el) == nil && nextElement(el) == nil
	case "empty":
		return !el.AsNode().HasChildNodes()
	}
	// :hover, :focus and friends depend on interaction state we do not track.
	return false
}

func previousElement(el *dom.Element) *dom.Element {
	for n := el.AsNode().PreviousSibling(); n != nil; n = n.PreviousSibling() {
		if n.NodeType() == dom.ElementNode {
			return (*dom.Element)(n)
		}
	}
	return nil
}

func nextElement(el *dom.Element) *dom.Element {
	for n := el.AsNode().NextSibling(); n != nil; n = n.NextSibling() {
		if n.NodeType() == dom.ElementNode {
			return (*dom.Element)(n)
		}
	}
	return nil
}

// QuerySelector returns the first element under root matching selector.
func QuerySelector(root *dom.Node, selector string) (*dom.Element, error) {
	sl, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	var found *dom.Element
	dom.WalkElements(root, func(el *dom.Element) bool {
		if el.AsNode() != root {
			if ok, _ := sl.Match(el); ok {
				found = el
				return false
			}
		}
		return true
	})
	return found, nil
}

// QuerySelectorAll returns every element under root matching selector.
func QuerySelectorAll(root *dom.Node, selector string) ([]*dom.Element, error) {
	sl, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	var out []*dom.Element
	dom.WalkElements(root, func(el *dom.Element) bool {
		if el.AsNode() != root {
			if ok, _ := sl.Match(el); ok {
				out = append(out, el)
			}
		}
		return true
	})
	return out, nil
}
