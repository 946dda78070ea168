package dom

import (
	"strings"
)

// CSSStyleDeclaration is an element's inline style. Every mutation is written
// back to the element's style attribute so the two never diverge.
type CSSStyleDeclaration struct {
	element *Element

	declarations map[string]*styleProperty
	// Order in which properties were first set, for cssText serialization.
	propertyOrder []string
}

type styleProperty struct {
	value     string
	important bool
}

// NewCSSStyleDeclaration creates a declaration bound to element, seeded from
// its current style attribute.
func NewCSSStyleDeclaration(element *Element) *CSSStyleDeclaration {
	sd := &CSSStyleDeclaration{
		element:      element,
		declarations: make(map[string]*styleProperty),
	}
	if element != nil && element.HasAttribute("style") {
		sd.parse(element.GetAttribute("style"))
	}
	return sd
}

// CSSText serializes the declaration block, e.g. "color: red; padding: 4px".
func (sd *CSSStyleDeclaration) CSSText() string {
	parts := make([]string, 0, len(sd.propertyOrder))
	for _, name := range sd.propertyOrder {
		sp := sd.declarations[name]
		part := name + ": " + sp.value
		if sp.important {
			part += " !important"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

// SetCSSText replaces every declaration with those parsed from cssText.
func (sd *CSSStyleDeclaration) SetCSSText(cssText string) {
	sd.reset()
	sd.parse(cssText)
	sd.syncToAttribute()
}

// Length returns the number of properties set.
func (sd *CSSStyleDeclaration) Length() int {
	return len(sd.propertyOrder)
}

// Item returns the property name at index, or "" when out of range.
func (sd *CSSStyleDeclaration) Item(index int) string {
	if index < 0 || index >= len(sd.propertyOrder) {
		return ""
	}
	return sd.propertyOrder[index]
}

// GetPropertyValue returns the inline value of property, or "".
// Both kebab-case and camelCase names are accepted.
func (sd *CSSStyleDeclaration) GetPropertyValue(property string) string {
	if sp, ok := sd.declarations[NormalizePropertyName(property)]; ok {
		return sp.value
	}
	return ""
}

// GetPropertyPriority returns "important" or "".
func (sd *CSSStyleDeclaration) GetPropertyPriority(property string) string {
	if sp, ok := sd.declarations[NormalizePropertyName(property)]; ok && sp.important {
		return "important"
	}
	return ""
}

// SetProperty sets property to value. An empty value removes the property.
func (sd *CSSStyleDeclaration) SetProperty(property, value string, priority ...string) {
	property = NormalizePropertyName(property)
	if property == "" {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		sd.RemoveProperty(property)
		return
	}
	important := len(priority) > 0 && strings.EqualFold(priority[0], "important")
	sd.put(property, value, important)
	sd.syncToAttribute()
}

// RemoveProperty removes property and returns its previous value.
func (sd *CSSStyleDeclaration) RemoveProperty(property string) string {
	property = NormalizePropertyName(property)
	sp, ok := sd.declarations[property]
	if !ok {
		return ""
	}
	delete(sd.declarations, property)
	for i, p := range sd.propertyOrder {
		if p == property {
			sd.propertyOrder = append(sd.propertyOrder[:i], sd.propertyOrder[i+1:]...)
			break
		}
	}
	sd.syncToAttribute()
	return sp.value
}

// PropertyNames returns all property names in declaration order.
func (sd *CSSStyleDeclaration) PropertyNames() []string {
	out := make([]string, len(sd.propertyOrder))
	copy(out, sd.propertyOrder)
	return out
}

// RefreshFromAttribute reloads declarations after the style attribute was
// changed directly.
func (sd *CSSStyleDeclaration) RefreshFromAttribute() {
	sd.reset()
	if sd.element != nil {
		sd.parse(sd.element.GetAttribute("style"))
	}
}

func (sd *CSSStyleDeclaration) reset() {
	sd.declarations = make(map[string]*styleProperty)
	sd.propertyOrder = nil
}

func (sd *CSSStyleDeclaration) put(property, value string, important bool) {
	if _, exists := sd.declarations[property]; !exists {
		sd.propertyOrder = append(sd.propertyOrder, property)
	}
	sd.declarations[property] = &styleProperty{value: value, important: important}
}

func (sd *CSSStyleDeclaration) parse(text string) {
	for _, part := range strings.Split(text, ";") {
		colon := strings.IndexByte(part, ':')
		if colon < 0 {
			continue
		}
		// Declaration text is kebab-case and case-insensitive.
		property := strings.ToLower(strings.TrimSpace(part[:colon]))
		value, important := SplitImportant(part[colon+1:])
		if property == "" || value == "" {
			continue
		}
		sd.put(property, value, important)
	}
}

func (sd *CSSStyleDeclaration) syncToAttribute() {
	if sd.element == nil {
		return
	}
	if text := sd.CSSText(); text != "" {
		sd.element.setAttributeRaw("style", text)
	} else {
		sd.element.removeAttributeRaw("style")
	}
}

// SplitImportant trims value and strips a trailing "!important" marker,
// tolerating whitespace between "!" and the keyword.
func SplitImportant(value string) (string, bool) {
	value = strings.TrimSpace(value)
	bang := strings.LastIndexByte(value, '!')
	if bang < 0 {
		return value, false
	}
	if !strings.EqualFold(strings.TrimSpace(value[bang+1:]), "important") {
		return value, false
	}
	return strings.TrimSpace(value[:bang]), true
}

// NormalizePropertyName converts a camelCase property name to lowercase
// kebab-case. "backgroundColor" becomes "background-color"; names that already
// contain a hyphen are only lowercased.
func NormalizePropertyName(name string) string {
	if name == "" || strings.Contains(name, "-") {
		return strings.ToLower(name)
	}
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelCasePropertyName converts a kebab-case property name to camelCase.
func CamelCasePropertyName(name string) string {
	parts := strings.Split(strings.TrimPrefix(name, "-"), "-")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}
