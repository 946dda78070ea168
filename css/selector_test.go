package css

import (
	"testing"

	"github.com/chrisuehlinger/domdebug/dom"
)

func mustParseHTML(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseHTML(src)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	return doc
}

func TestParseSelector_Errors(t *testing.T) {
	for _, bad := range []string{"", "> p", "div >", "div > > p", "#", ".a..b", "[x", ":nth-child(2)"} {
		if _, err := ParseSelector(bad); err == nil {
			t.Errorf("Expected ParseSelector(%q) to fail", bad)
		}
	}
}

func TestSpecificity(t *testing.T) {
	tests := []struct {
		selector string
		want     Specificity
	}{
		{"*", Specificity{0, 0, 0}},
		{"div", Specificity{0, 0, 1}},
		{".card", Specificity{0, 1, 0}},
		{"div#main.card.featured", Specificity{1, 2, 1}},
		{"ul li > a[href]", Specificity{0, 1, 3}},
		{"p:not(.x)", Specificity{0, 1, 1}},
		{"p::before", Specificity{0, 0, 2}},
	}
	for _, tt := range tests {
		sl, err := ParseSelector(tt.selector)
		if err != nil {
			t.Fatalf("ParseSelector(%q): %v", tt.selector, err)
		}
		if got := sl.Complex[0].Specificity(); got != tt.want {
			t.Errorf("Specificity(%q) = %v, want %v", tt.selector, got, tt.want)
		}
	}
}

func TestSpecificity_Compare(t *testing.T) {
	if (Specificity{1, 0, 0}).Compare(Specificity{0, 9, 9}) != 1 {
		t.Error("Expected an id to beat any number of classes")
	}
	if (Specificity{0, 1, 2}).Compare(Specificity{0, 1, 2}) != 0 {
		t.Error("Expected equal specificities to compare equal")
	}
	if (Specificity{0, 0, 1}).Compare(Specificity{0, 1, 0}) != -1 {
		t.Error("Expected a class to beat a type")
	}
}

func TestSelectorMatching(t *testing.T) {
	doc := mustParseHTML(t, `<body>
		<div id="main" class="card featured">
			<h2>Title</h2>
			<p class="lead">First</p>
			<p>Second <a href="/x" data-kind="nav-link">link</a></p>
		</div>
		<p id="outside">Outside</p>
	</body>`)

	tests := []struct {
		selector string
		want     []string
	}{
		{"#main > p", []string{"First", "Second link"}},
		{"#main p", []string{"First", "Second link"}},
		{"h2 + p", []string{"First"}},
		{"h2 ~ p", []string{"First", "Second link"}},
		{"body > p", []string{"Outside"}},
		{"p:first-child", nil},
		{"p:last-child", []string{"Second link", "Outside"}},
		{"p:not(.lead)", []string{"Second link", "Outside"}},
		{"[data-kind|=nav]", []string{"link"}},
		{"a[href^='/']", []string{"link"}},
		{"a[href$=y]", nil},
		{".card.featured h2, #outside", []string{"Title", "Outside"}},
		{"p:hover", nil},
	}
	for _, tt := range tests {
		got, err := QuerySelectorAll(doc.AsNode(), tt.selector)
		if err != nil {
			t.Fatalf("QuerySelectorAll(%q): %v", tt.selector, err)
		}
		var texts []string
		for _, el := range got {
			texts = append(texts, collapse(el.TextContent()))
		}
		if len(texts) != len(tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.selector, tt.want, texts)
			continue
		}
		for i := range texts {
			if texts[i] != tt.want[i] {
				t.Errorf("%q: expected %v, got %v", tt.selector, tt.want, texts)
				break
			}
		}
	}
}

func TestQuerySelector(t *testing.T) {
	doc := mustParseHTML(t, `<body><div class="a"><span class="b"></span></div></body>`)
	el, err := QuerySelector(doc.AsNode(), ".a .b")
	if err != nil || el == nil || el.LocalName() != "span" {
		t.Errorf("Expected span, got %v (%v)", el, err)
	}
	if _, err := QuerySelector(doc.AsNode(), "..bad"); err == nil {
		t.Error("Expected invalid selector error")
	}
}

func collapse(s string) string {
	out := []rune{}
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' {
			space = len(out) > 0
			continue
		}
		if space {
			out = append(out, ' ')
			space = false
		}
		out = append(out, r)
	}
	return string(out)
}
