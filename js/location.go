package js

import (
	"net/url"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// bindLocation installs window.location and document.location. The
// location reflects the document URL; navigation is not supported, so
// assign, replace and reload only log the request.
func (b *DOMBinder) bindLocation(jsDoc *goja.Object) {
	vm := b.runtime.vm
	location := vm.NewObject()

	current := func() *url.URL {
		u, err := url.Parse(b.document.URL())
		if err != nil || b.document.URL() == "" {
			u, _ = url.Parse("about:blank")
		}
		return u
	}

	part := func(name string, get func(u *url.URL) string) {
		b.accessor(location, name, func() goja.Value { return vm.ToValue(get(current())) })
	}
	part("href", func(u *url.URL) string { return u.String() })
	part("protocol", func(u *url.URL) string { return u.Scheme + ":" })
	part("host", func(u *url.URL) string { return u.Host })
	part("hostname", func(u *url.URL) string { return u.Hostname() })
	part("port", func(u *url.URL) string { return u.Port() })
	part("pathname", func(u *url.URL) string {
		if u.Opaque != "" {
			return u.Opaque
		}
		if u.Path == "" && u.Host != "" {
			return "/"
		}
		return u.Path
	})
	part("search", func(u *url.URL) string {
		if u.RawQuery == "" {
			return ""
		}
		return "?" + u.RawQuery
	})
	part("hash", func(u *url.URL) string {
		if u.Fragment == "" {
			return ""
		}
		return "#" + u.EscapedFragment()
	})
	part("origin", func(u *url.URL) string {
		switch u.Scheme {
		case "http", "https":
			return u.Scheme + "://" + u.Host
		}
		return "null"
	})

	location.Set("toString", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(current().String())
	})
	navigate := func(kind string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			b.runtime.logger.Info("Navigation ignored",
				zap.String("method", kind),
				zap.String("url", formatArgs(call.Arguments)))
			return goja.Undefined()
		}
	}
	location.Set("assign", navigate("assign"))
	location.Set("replace", navigate("replace"))
	location.Set("reload", navigate("reload"))

	b.runtime.window.Set("location", location)
	jsDoc.Set("location", location)
}
