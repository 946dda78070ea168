package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an RGBA color with 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

// Transparent is fully transparent black.
var Transparent = Color{}

// String serializes the color the way getComputedStyle does:
// "rgb(r, g, b)" when opaque, "rgba(r, g, b, a)" otherwise.
func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatNumber(math.Round(float64(c.A)/255*1000)/1000))
}

// NamedColors maps CSS color names to their RGBA values.
var NamedColors = map[string]Color{
	"black":   {0, 0, 0, 255},
	"silver":  {192, 192, 192, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"white":   {255, 255, 255, 255},
	"maroon":  {128, 0, 0, 255},
	"red":     {255, 0, 0, 255},
	"purple":  {128, 0, 128, 255},
	"fuchsia": {255, 0, 255, 255},
	"magenta": {255, 0, 255, 255},
	"green":   {0, 128, 0, 255},
	"lime":    {0, 255, 0, 255},
	"olive":   {128, 128, 0, 255},
	"yellow":  {255, 255, 0, 255},
	"navy":    {0, 0, 128, 255},
	"blue":    {0, 0, 255, 255},
	"teal":    {0, 128, 128, 255},
	"aqua":    {0, 255, 255, 255},
	"cyan":    {0, 255, 255, 255},

	"aliceblue":      {240, 248, 255, 255},
	"beige":          {245, 245, 220, 255},
	"brown":          {165, 42, 42, 255},
	"coral":          {255, 127, 80, 255},
	"cornflowerblue": {100, 149, 237, 255},
	"crimson":        {220, 20, 60, 255},
	"darkblue":       {0, 0, 139, 255},
	"darkgray":       {169, 169, 169, 255},
	"darkgrey":       {169, 169, 169, 255},
	"darkgreen":      {0, 100, 0, 255},
	"darkorange":     {255, 140, 0, 255},
	"darkred":        {139, 0, 0, 255},
	"dimgray":        {105, 105, 105, 255},
	"gold":           {255, 215, 0, 255},
	"goldenrod":      {218, 165, 32, 255},
	"hotpink":        {255, 105, 180, 255},
	"indigo":         {75, 0, 130, 255},
	"ivory":          {255, 255, 240, 255},
	"khaki":          {240, 230, 140, 255},
	"lavender":       {230, 230, 250, 255},
	"lightblue":      {173, 216, 230, 255},
	"lightgray":      {211, 211, 211, 255},
	"lightgrey":      {211, 211, 211, 255},
	"lightgreen":     {144, 238, 144, 255},
	"lightyellow":    {255, 255, 224, 255},
	"orange":         {255, 165, 0, 255},
	"orchid":         {218, 112, 214, 255},
	"pink":           {255, 192, 203, 255},
	"plum":           {221, 160, 221, 255},
	"rebeccapurple":  {102, 51, 153, 255},
	"salmon":         {250, 128, 114, 255},
	"seagreen":       {46, 139, 87, 255},
	"skyblue":        {135, 206, 235, 255},
	"slategray":      {112, 128, 144, 255},
	"steelblue":      {70, 130, 180, 255},
	"tan":            {210, 180, 140, 255},
	"tomato":         {255, 99, 71, 255},
	"turquoise":      {64, 224, 208, 255},
	"violet":         {238, 130, 238, 255},
	"wheat":          {245, 222, 179, 255},
	"whitesmoke":     {245, 245, 245, 255},

	"transparent": {0, 0, 0, 0},
}

// ParseColor parses a CSS color: a named color, #rgb, #rgba, #rrggbb,
// #rrggbbaa, rgb()/rgba() or hsl()/hsla(). currentcolor is not handled
// here; the cascade resolves it against the element's color.
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := NamedColors[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		return parseHashColor(s[1:])
	}
	name, args, ok := splitFunction(s)
	if !ok {
		return Color{}, false
	}
	switch name {
	case "rgb", "rgba":
		return parseRGB(args)
	case "hsl", "hsla":
		return parseHSL(args)
	}
	return Color{}, false
}

func parseHashColor(hex string) (Color, bool) {
	for i := 0; i < len(hex); i++ {
		if _, ok := hexDigit(hex[i]); !ok {
			return Color{}, false
		}
	}
	d := func(i int) uint8 { v, _ := hexDigit(hex[i]); return v }
	switch len(hex) {
	case 3:
		return Color{d(0) * 17, d(1) * 17, d(2) * 17, 255}, true
	case 4:
		return Color{d(0) * 17, d(1) * 17, d(2) * 17, d(3) * 17}, true
	case 6:
		return Color{d(0)<<4 | d(1), d(2)<<4 | d(3), d(4)<<4 | d(5), 255}, true
	case 8:
		return Color{d(0)<<4 | d(1), d(2)<<4 | d(3), d(4)<<4 | d(5), d(6)<<4 | d(7)}, true
	}
	return Color{}, false
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// splitFunction splits "name(a, b c / d)" into the name and its arguments.
// Commas, whitespace and the slash are all accepted as separators.
func splitFunction(s string) (string, []string, bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, false
	}
	inner := s[open+1 : len(s)-1]
	args := strings.FieldsFunc(inner, func(r rune) bool {
		return r == ',' || r == ' ' || r == '/' || r == '\t'
	})
	return strings.TrimSpace(s[:open]), args, true
}

func parseRGB(args []string) (Color, bool) {
	if len(args) != 3 && len(args) != 4 {
		return Color{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(args[i], 255)
		if !ok {
			return Color{}, false
		}
		ch[i] = v
	}
	alpha := uint8(255)
	if len(args) == 4 {
		a, ok := parseAlpha(args[3])
		if !ok {
			return Color{}, false
		}
		alpha = a
	}
	return Color{ch[0], ch[1], ch[2], alpha}, true
}

func parseChannel(s string, max float64) (uint8, bool) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clampByte(f / 100 * 255), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clampByte(f / max * 255), true
}

func parseAlpha(s string) (uint8, bool) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clampByte(f / 100 * 255), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clampByte(f * 255), true
}

func parseHSL(args []string) (Color, bool) {
	if len(args) != 3 && len(args) != 4 {
		return Color{}, false
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return Color{}, false
	}
	s, err1 := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
	l, err2 := strconv.ParseFloat(strings.TrimSuffix(args[2], "%"), 64)
	if err1 != nil || err2 != nil {
		return Color{}, false
	}
	alpha := uint8(255)
	if len(args) == 4 {
		a, ok := parseAlpha(args[3])
		if !ok {
			return Color{}, false
		}
		alpha = a
	}
	r, g, b := hslToRGB(math.Mod(math.Mod(h, 360)+360, 360)/360, clamp01(s/100), clamp01(l/100))
	return Color{clampByte(r * 255), clampByte(g * 255), clampByte(b * 255), alpha}, true
}

func hslToRGB(h, s, l float64) (float64, float64, float64) {
	if s == 0 {
		return l, l, l
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return hueToRGB(p, q, h+1.0/3), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func clampByte(f float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(f))))
}
