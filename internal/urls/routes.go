package urls

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNoMatch       = errors.New("urls: no route matches path")
	ErrUnknownRoute  = errors.New("urls: unknown route name")
	ErrNotReversible = errors.New("urls: regex routes cannot be reversed")
	ErrDuplicateName = errors.New("urls: route name already used")
)

// Params holds the converted values captured from a path.
type Params map[string]any

// Int returns the named parameter as an int, or 0 when absent or of another type.
func (p Params) Int(name string) int {
	v, _ := p[name].(int)
	return v
}

func (p Params) String(name string) string {
	switch v := p[name].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// Match is the result of a successful Resolve.
type Match[H any] struct {
	Name    string
	Route   string
	Handler H
	Params  Params
}

type segment struct {
	literal string
	param   string
	conv    Converter
}

type route[H any] struct {
	name     string
	source   string
	re       *regexp.Regexp
	handler  H
	convs    map[string]Converter
	segments []segment // nil for regex routes
}

// Table is an ordered route list. Build it once at startup; Resolve and Reverse are then safe to call concurrently.
type Table[H any] struct {
	reg    *Registry
	routes []*route[H]
	byName map[string]*route[H]
}

func NewTable[H any](reg *Registry) *Table[H] {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Table[H]{reg: reg, byName: make(map[string]*route[H])}
}

var placeholder = regexp.MustCompile(`<(?:([^<>:]+):)?([^<>:]+)>`)

// Path registers a route such as "users/<int:id>/". A placeholder without a converter uses str.
func (t *Table[H]) Path(pattern string, h H, name string) error {
	r := &route[H]{name: name, source: pattern, handler: h, convs: make(map[string]Converter)}

	var expr strings.Builder
	expr.WriteString("^")
	last := 0
	for _, loc := range placeholder.FindAllStringSubmatchIndex(pattern, -1) {
		literal := pattern[last:loc[0]]
		convName := "str"
		if loc[2] >= 0 {
			convName = pattern[loc[2]:loc[3]]
		}
		param := pattern[loc[4]:loc[5]]
		if _, dup := r.convs[param]; dup {
			return fmt.Errorf("urls: %q repeats parameter %s", pattern, param)
		}
		conv, err := t.reg.Get(convName)
		if err != nil {
			return fmt.Errorf("route %q: %w", pattern, err)
		}

		expr.WriteString(regexp.QuoteMeta(literal))
		fmt.Fprintf(&expr, "(?P<%s>%s)", param, conv.Pattern())
		r.convs[param] = conv
		r.segments = append(r.segments, segment{literal: literal}, segment{param: param, conv: conv})
		last = loc[1]
	}
	tail := pattern[last:]
	expr.WriteString(regexp.QuoteMeta(tail))
	expr.WriteString("$")
	if tail != "" {
		r.segments = append(r.segments, segment{literal: tail})
	}
	if r.segments == nil {
		r.segments = []segment{}
	}

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return fmt.Errorf("route %q: %w", pattern, err)
	}
	r.re = re
	return t.add(r)
}

// RegexPath registers a raw regular expression. Named groups become string parameters.
func (t *Table[H]) RegexPath(expr string, h H, name string) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("route %q: %w", expr, err)
	}
	return t.add(&route[H]{name: name, source: expr, re: re, handler: h})
}

func (t *Table[H]) add(r *route[H]) error {
	if r.name != "" {
		if _, dup := t.byName[r.name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateName, r.name)
		}
		t.byName[r.name] = r
	}
	t.routes = append(t.routes, r)
	return nil
}

// Resolve finds the first route, in registration order, that matches path and whose converters accept the captured values.
func (t *Table[H]) Resolve(path string) (*Match[H], error) {
	path = strings.TrimPrefix(path, "/")
	for _, r := range t.routes {
		if params, ok := r.match(path); ok {
			return &Match[H]{Name: r.name, Route: r.source, Handler: r.handler, Params: params}, nil
		}
	}
	return nil, fmt.Errorf("%w: /%s", ErrNoMatch, path)
}

func (r *route[H]) match(path string) (Params, bool) {
	sub := r.re.FindStringSubmatch(path)
	if sub == nil {
		return nil, false
	}
	params := Params{}
	for i, group := range r.re.SubexpNames() {
		if group == "" || i == 0 {
			continue
		}
		conv, typed := r.convs[group]
		if !typed {
			params[group] = sub[i]
			continue
		}
		v, err := conv.ToValue(sub[i])
		if err != nil {
			return nil, false
		}
		params[group] = v
	}
	return params, true
}

// Reverse builds the path of the named route from positional arguments, one per placeholder.
func (t *Table[H]) Reverse(name string, args ...any) (string, error) {
	r, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	if r.segments == nil {
		return "", fmt.Errorf("%w: %s", ErrNotReversible, name)
	}

	var b strings.Builder
	next := 0
	for _, seg := range r.segments {
		if seg.conv == nil {
			b.WriteString(seg.literal)
			continue
		}
		if next >= len(args) {
			return "", fmt.Errorf("urls: %s needs more arguments", name)
		}
		s, err := seg.conv.ToURL(args[next])
		if err != nil {
			return "", fmt.Errorf("reverse %s: %w", name, err)
		}
		b.WriteString(s)
		next++
	}
	if next != len(args) {
		return "", fmt.Errorf("urls: %s takes %d arguments, got %d", name, next, len(args))
	}
	if _, ok := r.match(b.String()); !ok {
		return "", fmt.Errorf("%w: %s does not match %s", ErrBadValue, b.String(), r.source)
	}
	return "/" + b.String(), nil
}
