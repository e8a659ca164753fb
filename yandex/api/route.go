package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const BaseURL = "https://api.music.yandex.net"

// Params maps placeholder or parameter names to values. Supported value
// types depend on where the params are used: see NewRoute and NormalizeQuery.
type Params map[string]any

// Route is a request target resolved for a single call.
type Route struct {
	Method string
	URL    string
}

// NewRoute resolves template against BaseURL.
func NewRoute(method, template string, params Params) (Route, error) {
	return NewRouteAt(BaseURL, method, template, params)
}

// NewRouteAt resolves the {name} placeholders of template with params and
// prefixes the result with base. String values are path-escaped, integers and
// booleans use their canonical text form.
func NewRouteAt(base, method, template string, params Params) (Route, error) {
	var (
		b    strings.Builder
		rest = template
	)
	b.Grow(len(base) + len(template))
	b.WriteString(strings.TrimSuffix(base, "/"))

	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return Route{}, &TemplateError{Template: template, Name: rest[start+1:], Reason: "is not terminated"}
		}
		end += start

		name := rest[start+1 : end]
		v, ok := params[name]
		if !ok {
			return Route{}, &TemplateError{Template: template, Name: name, Reason: "has no value"}
		}
		s, ok := pathValue(v)
		if !ok {
			return Route{}, &TemplateError{Template: template, Name: name, Reason: fmt.Sprintf("has unsupported value type %T", v)}
		}

		b.WriteString(rest[:start])
		b.WriteString(s)
		rest = rest[end+1:]
	}

	return Route{Method: method, URL: b.String()}, nil
}

func pathValue(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return url.PathEscape(v), true
	case ID:
		return url.PathEscape(string(v)), true
	case bool:
		return strconv.FormatBool(v), true
	case fmt.Stringer:
		return url.PathEscape(v.String()), true
	default:
		if s, ok := intText(v); ok {
			return s, true
		}
		return "", false
	}
}

func intText(v any) (string, bool) {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	default:
		return "", false
	}
}
