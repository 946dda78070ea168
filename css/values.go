package css

import (
	"strconv"
	"strings"
)

var sides = [4]string{"top", "right", "bottom", "left"}

var corners = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

var borderWidthKeywords = map[string]float64{"thin": 1, "medium": 3, "thick": 5}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

func isWideKeyword(v string) bool {
	switch strings.ToLower(v) {
	case "inherit", "initial", "unset", "revert":
		return true
	}
	return false
}

// ExpandShorthand expands a shorthand property into its longhands. Other
// properties are returned unchanged as a single declaration.
func ExpandShorthand(prop, value string) []Declaration {
	if isWideKeyword(value) {
		if longhands := shorthandLonghands(prop); longhands != nil {
			out := make([]Declaration, len(longhands))
			for i, lh := range longhands {
				out[i] = Declaration{Property: lh, Value: strings.ToLower(value)}
			}
			return out
		}
		return []Declaration{{Property: prop, Value: value}}
	}

	switch prop {
	case "margin", "padding":
		return boxLonghands(prop+"-%s", "", value, sides)
	case "border-width":
		return boxLonghands("border-%s", "-width", value, sides)
	case "border-style":
		return boxLonghands("border-%s", "-style", value, sides)
	case "border-color":
		return boxLonghands("border-%s", "-color", value, sides)
	case "border-radius":
		if slash := strings.IndexByte(value, '/'); slash >= 0 {
			value = value[:slash]
		}
		return boxLonghands("border-%s", "-radius", value, corners)
	case "border":
		var out []Declaration
		for _, side := range sides {
			out = append(out, borderSide(side, value)...)
		}
		return out
	case "border-top", "border-right", "border-bottom", "border-left":
		return borderSide(strings.TrimPrefix(prop, "border-"), value)
	case "background":
		color := "transparent"
		for _, tok := range splitValue(value) {
			if _, ok := ParseColor(tok); ok || strings.EqualFold(tok, "currentcolor") {
				color = tok
			}
		}
		return []Declaration{{Property: "background-color", Value: color}}
	case "flex":
		grow := "0"
		switch v := strings.ToLower(value); v {
		case "auto":
			grow = "1"
		case "none":
		default:
			if parts := splitValue(v); len(parts) > 0 {
				if _, err := strconv.ParseFloat(parts[0], 64); err == nil {
					grow = parts[0]
				}
			}
		}
		return []Declaration{{Property: "flex-grow", Value: grow}}
	}
	return []Declaration{{Property: prop, Value: value}}
}

func shorthandLonghands(prop string) []string {
	var out []string
	switch prop {
	case "margin", "padding":
		for _, s := range sides {
			out = append(out, prop+"-"+s)
		}
	case "border-width", "border-style", "border-color":
		suffix := strings.TrimPrefix(prop, "border")
		for _, s := range sides {
			out = append(out, "border-"+s+suffix)
		}
	case "border":
		for _, s := range sides {
			out = append(out, "border-"+s+"-width", "border-"+s+"-style", "border-"+s+"-color")
		}
	case "border-radius":
		for _, c := range corners {
			out = append(out, "border-"+c+"-radius")
		}
	case "background":
		out = []string{"background-color"}
	case "flex":
		out = []string{"flex-grow"}
	}
	return out
}

// boxLonghands expands the 1-4 value box syntax onto names, in
// top/right/bottom/left (or corner) order.
func boxLonghands(prefix, suffix, value string, names [4]string) []Declaration {
	vals := splitValue(value)
	if len(vals) == 0 || len(vals) > 4 {
		return nil
	}
	var four [4]string
	switch len(vals) {
	case 1:
		four = [4]string{vals[0], vals[0], vals[0], vals[0]}
	case 2:
		four = [4]string{vals[0], vals[1], vals[0], vals[1]}
	case 3:
		four = [4]string{vals[0], vals[1], vals[2], vals[1]}
	case 4:
		four = [4]string{vals[0], vals[1], vals[2], vals[3]}
	}
	out := make([]Declaration, 4)
	for i, n := range names {
		out[i] = Declaration{Property: strings.Replace(prefix, "%s", n, 1) + suffix, Value: four[i]}
	}
	return out
}

// borderSide expands "<width> <style> <color>" in any order for one side.
// Omitted components reset to their initial values.
func borderSide(side, value string) []Declaration {
	width, style, color := "medium", "none", "currentcolor"
	for _, tok := range splitValue(value) {
		lower := strings.ToLower(tok)
		switch {
		case borderStyles[lower]:
			style = lower
		case borderWidthKeywords[lower] > 0:
			width = lower
		case isLength(tok):
			width = tok
		default:
			color = tok
		}
	}
	prefix := "border-" + side
	return []Declaration{
		{Property: prefix + "-width", Value: width},
		{Property: prefix + "-style", Value: style},
		{Property: prefix + "-color", Value: color},
	}
}

// splitValue splits a property value on whitespace outside parentheses.
func splitValue(value string) []string {
	var out []string
	depth := 0
	start := -1
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case isSpace(c) && depth == 0:
			if start >= 0 {
				out = append(out, value[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, value[start:])
	}
	return out
}

// Length is a parsed CSS dimension.
type Length struct {
	Value float64
	Unit  string // lowercase; "" for unitless numbers, "%" for percentages
}

// ParseLength parses "12px", "1.5em", "50%", "0".
func ParseLength(s string) (Length, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Length{}, false
	}
	i := 0
	for i < len(s) && (s[i] == '-' || s[i] == '+' || s[i] == '.' || (s[i] >= '0' && s[i] <= '9') || (i > 0 && s[i] == 'e' && i+1 < len(s) && (s[i+1] >= '0' && s[i+1] <= '9' || s[i+1] == '-'))) {
		i++
	}
	num, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return Length{}, false
	}
	unit := s[i:]
	switch unit {
	case "", "px", "em", "rem", "%", "pt", "pc", "in", "cm", "mm", "vw", "vh", "vmin", "vmax", "ex", "ch":
	default:
		return Length{}, false
	}
	return Length{Value: num, Unit: unit}, true
}

func isLength(s string) bool {
	_, ok := ParseLength(s)
	return ok
}

// lengthContext carries what relative units resolve against.
type lengthContext struct {
	fontSize     float64
	rootFontSize float64
	viewportW    float64
	viewportH    float64
}

// toPx converts a length to pixels. Percentages are not resolved here.
func (l Length) toPx(ctx lengthContext) (float64, bool) {
	switch l.Unit {
	case "", "px":
		return l.Value, true
	case "em":
		return l.Value * ctx.fontSize, true
	case "rem":
		return l.Value * ctx.rootFontSize, true
	case "ex", "ch":
		return l.Value * ctx.fontSize * 0.5, true
	case "pt":
		return l.Value * 96 / 72, true
	case "pc":
		return l.Value * 16, true
	case "in":
		return l.Value * 96, true
	case "cm":
		return l.Value * 96 / 2.54, true
	case "mm":
		return l.Value * 96 / 25.4, true
	case "vw":
		return l.Value * ctx.viewportW / 100, true
	case "vh":
		return l.Value * ctx.viewportH / 100, true
	case "vmin":
		return l.Value * min(ctx.viewportW, ctx.viewportH) / 100, true
	case "vmax":
		return l.Value * max(ctx.viewportW, ctx.viewportH) / 100, true
	}
	return 0, false
}

// formatNumber prints a float without trailing zeros: 16, 1.5, 0.333.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func px(f float64) string {
	return formatNumber(roundTo(f, 4)) + "px"
}

func roundTo(f float64, places int) float64 {
	p := 1.0
	for i := 0; i < places; i++ {
		p *= 10
	}
	r := f * p
	if r < 0 {
		return -float64(int64(-r+0.5)) / p
	}
	return float64(int64(r+0.5)) / p
}

// minimizeBox joins four side values using the shortest box syntax.
func minimizeBox(v [4]string) string {
	switch {
	case v[0] == v[1] && v[1] == v[2] && v[2] == v[3]:
		return v[0]
	case v[0] == v[2] && v[1] == v[3]:
		return v[0] + " " + v[1]
	case v[1] == v[3]:
		return v[0] + " " + v[1] + " " + v[2]
	}
	return strings.Join(v[:], " ")
}
