package css

import "sync"

// userAgentCSS holds the default element styles the engine applies before
// any author sheet. It covers the elements pages commonly use; form
// controls get a simple bordered box.
const userAgentCSS = `
html, body, div, article, aside, footer, header, nav, section, main,
figure, figcaption, blockquote, pre, address, form, fieldset, hgroup,
h1, h2, h3, h4, h5, h6, p, ul, ol, li, dl, dt, dd, hr, table {
	display: block;
}

head, script, style, link, meta, title, template, noscript {
	display: none;
}

[hidden] {
	display: none;
}

body {
	margin: 8px;
}

h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
h2 { font-size: 1.5em; margin: 0.83em 0; font-weight: bold; }
h3 { font-size: 1.17em; margin: 1em 0; font-weight: bold; }
h4 { margin: 1.33em 0; font-weight: bold; }
h5 { font-size: 0.83em; margin: 1.67em 0; font-weight: bold; }
h6 { font-size: 0.67em; margin: 2.33em 0; font-weight: bold; }

p, dl, blockquote, figure { margin: 1em 0; }
ul, ol { margin: 1em 0; padding-left: 40px; }
li { display: block; }
pre { font-family: monospace; white-space: pre; margin: 1em 0; }
hr { border: 1px inset gray; margin: 0.5em auto; }

b, strong { font-weight: bold; }
small { font-size: smaller; }
a { color: #0000ee; cursor: pointer; }

button, input, select, textarea {
	display: inline-block;
	border: 2px outset gray;
	padding: 1px 6px;
	font-size: 13.333px;
}

input, textarea {
	border: 2px inset gray;
	padding: 1px 2px;
	background-color: white;
	cursor: text;
}

button {
	background-color: #efefef;
	cursor: default;
}

img {
	display: inline-block;
}
`

var (
	uaOnce  sync.Once
	uaSheet *Stylesheet
)

// UserAgentStylesheet returns the parsed default stylesheet.
func UserAgentStylesheet() *Stylesheet {
	uaOnce.Do(func() {
		uaSheet = ParseStylesheet(userAgentCSS)
	})
	return uaSheet
}
