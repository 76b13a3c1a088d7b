// Package urls maps request paths onto named handlers through typed path converters.
package urls

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

var (
	ErrUnknownConverter = errors.New("urls: unknown converter")
	ErrBadValue         = errors.New("urls: value does not fit converter")
)

// Converter turns one path segment into a typed value and back.
type Converter interface {
	// Pattern is the regular expression a segment must match, without anchors or groups.
	Pattern() string
	ToValue(segment string) (any, error)
	ToURL(value any) (string, error)
}

// IntConverter matches unsigned decimal integers.
type IntConverter struct{}

func (IntConverter) Pattern() string { return `[0-9]+` }

func (IntConverter) ToValue(segment string) (any, error) {
	return strconv.Atoi(segment)
}

func (IntConverter) ToURL(value any) (string, error) {
	switch v := value.(type) {
	case int:
		if v < 0 {
			return "", fmt.Errorf("%w: negative %d", ErrBadValue, v)
		}
		return strconv.Itoa(v), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case int64:
		if v < 0 {
			return "", fmt.Errorf("%w: negative %d", ErrBadValue, v)
		}
		return strconv.FormatInt(v, 10), nil
	}
	return "", fmt.Errorf("%w: %T is not an integer", ErrBadValue, value)
}

// StringConverter matches any non-empty segment without a slash.
type StringConverter struct{}

func (StringConverter) Pattern() string { return `[^/]+` }

func (StringConverter) ToValue(segment string) (any, error) { return segment, nil }

func (StringConverter) ToURL(value any) (string, error) { return stringValue(value) }

// SlugConverter matches ASCII letters, digits, hyphens and underscores.
type SlugConverter struct{}

func (SlugConverter) Pattern() string { return `[-a-zA-Z0-9_]+` }

func (SlugConverter) ToValue(segment string) (any, error) { return segment, nil }

func (SlugConverter) ToURL(value any) (string, error) { return stringValue(value) }

// YearConverter converts four-digit years starting with 1 or 2. ToValue and ToURL handle 1000-2999, but
// Pattern only matches 1900-2999, so a path for an earlier year never resolves and Reverse rejects it.
type YearConverter struct{}

func (YearConverter) Pattern() string { return `19[0-9]{2}|2[0-9]{3}` }

func (YearConverter) ToValue(segment string) (any, error) {
	year, err := strconv.Atoi(segment)
	if err != nil {
		return nil, err
	}
	if year < 1000 || year > 2999 {
		return nil, fmt.Errorf("%w: year %d", ErrBadValue, year)
	}
	return year, nil
}

func (YearConverter) ToURL(value any) (string, error) {
	year, ok := value.(int)
	if !ok {
		return "", fmt.Errorf("%w: %T is not a year", ErrBadValue, value)
	}
	return strconv.Itoa(year), nil
}

// UsernameConverter accepts the characters allowed in usernames. Both directions are the identity.
type UsernameConverter struct{}

func (UsernameConverter) Pattern() string { return `[-a-zA-Z0-9_]+` }

func (UsernameConverter) ToValue(segment string) (any, error) { return segment, nil }

func (UsernameConverter) ToURL(value any) (string, error) { return stringValue(value) }

func stringValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("%w: %T is not a string", ErrBadValue, value)
}

// Registry holds named converters. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
}

// NewRegistry returns a registry with int, str, slug, year and username installed.
func NewRegistry() *Registry {
	return &Registry{converters: map[string]Converter{
		"int":      IntConverter{},
		"str":      StringConverter{},
		"slug":     SlugConverter{},
		"year":     YearConverter{},
		"username": UsernameConverter{},
	}}
}

var converterName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Register installs c under name, replacing any converter already there.
func (r *Registry) Register(name string, c Converter) error {
	if !converterName.MatchString(name) {
		return fmt.Errorf("urls: invalid converter name %q", name)
	}
	if _, err := regexp.Compile(c.Pattern()); err != nil {
		return fmt.Errorf("urls: converter %s: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters[name] = c
	return nil
}

func (r *Registry) Get(name string) (Converter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConverter, name)
	}
	return c, nil
}
