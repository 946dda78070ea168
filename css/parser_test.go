package css

import (
	"testing"
)

func TestParseStylesheet(t *testing.T) {
	ss := ParseStylesheet(`
		/* comment */
		@import url("x.css");
		body { margin: 0; }
		@media (max-width: 600px) { .card { color: red; } }
		.card, #main > p { color: blue; content: "a;b{c}"; }
		!!! { color: red; }
	`)
	if len(ss.Rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(ss.Rules))
	}
	if ss.Rules[0].SelectorText != "body" {
		t.Errorf("Expected body, got %q", ss.Rules[0].SelectorText)
	}
	if len(ss.Rules[0].Declarations) != 4 {
		t.Errorf("Expected margin to expand to 4 longhands, got %d", len(ss.Rules[0].Declarations))
	}
	decls := ss.Rules[1].Declarations
	if len(decls) != 2 || decls[1].Value != `"a;b{c}"` {
		t.Errorf("Expected quoted value to survive, got %+v", decls)
	}
}

func TestParseDeclarations(t *testing.T) {
	decls := ParseDeclarations("color: red !important; padding: 4px 8px; bogus; : x; background: url(a;b.png) #fff")
	want := map[string]string{
		"color":            "red",
		"padding-top":      "4px",
		"padding-right":    "8px",
		"padding-bottom":   "4px",
		"padding-left":     "8px",
		"background-color": "#fff",
	}
	if len(decls) != len(want) {
		t.Fatalf("Expected %d declarations, got %d: %+v", len(want), len(decls), decls)
	}
	for _, d := range decls {
		if want[d.Property] != d.Value {
			t.Errorf("%s: expected %q, got %q", d.Property, want[d.Property], d.Value)
		}
	}
	if !decls[0].Important {
		t.Error("Expected color to be important")
	}
}

func TestExpandShorthand_Border(t *testing.T) {
	decls := ExpandShorthand("border", "2px dashed #10b981")
	if len(decls) != 12 {
		t.Fatalf("Expected 12 longhands, got %d", len(decls))
	}
	got := map[string]string{}
	for _, d := range decls {
		got[d.Property] = d.Value
	}
	if got["border-left-width"] != "2px" || got["border-top-style"] != "dashed" || got["border-bottom-color"] != "#10b981" {
		t.Errorf("Unexpected expansion %v", got)
	}

	decls = ExpandShorthand("border-top", "solid")
	if decls[0].Value != "medium" || decls[2].Value != "currentcolor" {
		t.Errorf("Expected omitted parts to reset, got %+v", decls)
	}
}

func TestExpandShorthand_BoxValues(t *testing.T) {
	tests := []struct {
		value string
		want  [4]string
	}{
		{"1px", [4]string{"1px", "1px", "1px", "1px"}},
		{"1px 2px", [4]string{"1px", "2px", "1px", "2px"}},
		{"1px 2px 3px", [4]string{"1px", "2px", "3px", "2px"}},
		{"1px 2px 3px 4px", [4]string{"1px", "2px", "3px", "4px"}},
	}
	for _, tt := range tests {
		decls := ExpandShorthand("margin", tt.value)
		for i, d := range decls {
			if d.Value != tt.want[i] {
				t.Errorf("margin: %s -> %s = %q, want %q", tt.value, d.Property, d.Value, tt.want[i])
			}
		}
	}
	if decls := ExpandShorthand("padding", "1px 2px 3px 4px 5px"); decls != nil {
		t.Errorf("Expected too many values to be rejected, got %+v", decls)
	}
}

func TestExpandShorthand_WideKeyword(t *testing.T) {
	decls := ExpandShorthand("border-radius", "inherit")
	if len(decls) != 4 {
		t.Fatalf("Expected 4 corners, got %d", len(decls))
	}
	for _, d := range decls {
		if d.Value != "inherit" {
			t.Errorf("%s: expected inherit, got %q", d.Property, d.Value)
		}
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want Length
		ok   bool
	}{
		{"12px", Length{12, "px"}, true},
		{"1.5em", Length{1.5, "em"}, true},
		{"50%", Length{50, "%"}, true},
		{"0", Length{0, ""}, true},
		{"-4PX", Length{-4, "px"}, true},
		{".5rem", Length{0.5, "rem"}, true},
		{"auto", Length{}, false},
		{"12furlongs", Length{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseLength(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseLength(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"red", "rgb(255, 0, 0)"},
		{"#fff", "rgb(255, 255, 255)"},
		{"#10b981", "rgb(16, 185, 129)"},
		{"#3b82f61a", "rgba(59, 130, 246, 0.102)"},
		{"rgb(1, 2, 3)", "rgb(1, 2, 3)"},
		{"rgba(59, 130, 246, 0.1)", "rgba(59, 130, 246, 0.102)"},
		{"rgb(100% 0% 0% / 50%)", "rgba(255, 0, 0, 0.502)"},
		{"hsl(120, 100%, 50%)", "rgb(0, 255, 0)"},
		{"transparent", "rgba(0, 0, 0, 0)"},
	}
	for _, tt := range tests {
		c, ok := ParseColor(tt.in)
		if !ok {
			t.Errorf("ParseColor(%q) failed", tt.in)
			continue
		}
		if c.String() != tt.want {
			t.Errorf("ParseColor(%q) = %s, want %s", tt.in, c, tt.want)
		}
	}
	for _, bad := range []string{"notacolor", "#12", "#ggg", "rgb(1, 2)", ""} {
		if _, ok := ParseColor(bad); ok {
			t.Errorf("Expected ParseColor(%q) to fail", bad)
		}
	}
}
