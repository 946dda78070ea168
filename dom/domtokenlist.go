package dom

import (
	"strings"
)

// DOMTokenList is a live view over a space-separated attribute such as class.
type DOMTokenList struct {
	element  *Element
	attrName string
}

func newDOMTokenList(element *Element, attrName string) *DOMTokenList {
	return &DOMTokenList{element: element, attrName: attrName}
}

// Values returns the tokens in order, without duplicates.
func (dtl *DOMTokenList) Values() []string {
	fields := strings.Fields(dtl.element.GetAttribute(dtl.attrName))
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, tok := range fields {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

func (dtl *DOMTokenList) write(tokens []string) {
	if len(tokens) == 0 && !dtl.element.HasAttribute(dtl.attrName) {
		return
	}
	dtl.element.SetAttribute(dtl.attrName, strings.Join(tokens, " "))
}

// Length returns the number of distinct tokens.
func (dtl *DOMTokenList) Length() int {
	return len(dtl.Values())
}

// Contains reports whether token is present. Empty tokens or tokens with
// whitespace are never present.
func (dtl *DOMTokenList) Contains(token string) bool {
	if !validToken(token) {
		return false
	}
	for _, t := range dtl.Values() {
		if t == token {
			return true
		}
	}
	return false
}

// Add appends tokens that are not already present. Invalid tokens are skipped.
func (dtl *DOMTokenList) Add(tokens ...string) {
	current := dtl.Values()
	for _, tok := range tokens {
		if validToken(tok) && !contains(current, tok) {
			current = append(current, tok)
		}
	}
	dtl.write(current)
}

// Remove deletes tokens from the list.
func (dtl *DOMTokenList) Remove(tokens ...string) {
	current := dtl.Values()
	kept := current[:0]
	for _, tok := range current {
		if !contains(tokens, tok) {
			kept = append(kept, tok)
		}
	}
	dtl.write(kept)
}

// Toggle adds token when absent and removes it when present, returning
// whether the token is present afterwards.
func (dtl *DOMTokenList) Toggle(token string) bool {
	if dtl.Contains(token) {
		dtl.Remove(token)
		return false
	}
	dtl.Add(token)
	return dtl.Contains(token)
}

// Set adds or removes token so that its presence equals on.
func (dtl *DOMTokenList) Set(token string, on bool) {
	if on {
		dtl.Add(token)
	} else {
		dtl.Remove(token)
	}
}

func validToken(token string) bool {
	return token != "" && !strings.ContainsAny(token, " \t\n\r\f")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
