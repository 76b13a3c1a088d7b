package web

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultDateLayout is day/month/year.
const DefaultDateLayout = "02/01/2006"

var now = time.Now

// Funcs returns the helper functions every page can call.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"currentDate":  currentDate,
		"combine":      combine,
		"numberedList": numberedList,
		"upper":        strings.ToUpper,
		"repeat":       repeat,
		"greet":        greet,
		"multiply":     multiply,
		"firstWord":    firstWord,
		"rangeTo":      rangeTo,
		"parity":       parity,
		"timesince":    timesince,
		"fullDate":     fullDate,
		"yesno":        yesno,
	}
}

func currentDate(layout ...string) string {
	if len(layout) > 0 && layout[0] != "" {
		return now().Format(layout[0])
	}
	return now().Format(DefaultDateLayout)
}

// combine joins two values with sep, a single space by default.
func combine(a, b any, sep ...string) string {
	s := " "
	if len(sep) > 0 {
		s = sep[0]
	}
	return fmt.Sprint(a) + s + fmt.Sprint(b)
}

// NumberedList is the data handed to the numbered_list partial.
type NumberedList struct {
	Title string
	Items any
}

func numberedList(items any, title ...string) NumberedList {
	l := NumberedList{Items: items}
	if len(title) > 0 {
		l.Title = title[0]
	}
	return l
}

func repeat(n int, s string) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}

func greet(v any) string {
	return fmt.Sprintf("Hello, %v!", v)
}

// multiply returns a*b, or 0 when either side is not a number.
func multiply(a, b any) float64 {
	x, err := toFloat(a)
	if err != nil {
		return 0
	}
	y, err := toFloat(b)
	if err != nil {
		return 0
	}
	return x * y
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// rangeTo is 1..n, empty when n is not an integer.
func rangeTo(v any) []int {
	n, err := toInt(v)
	if err != nil || n < 1 {
		return []int{}
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func parity(v any) string {
	n, err := toInt(v)
	if err != nil {
		return ""
	}
	if n%2 == 0 {
		return "even"
	}
	return "odd"
}

func timesince(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

func fullDate(t any) string {
	switch v := t.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format("2006-01-02 15:04")
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format("2006-01-02 15:04")
	}
	return ""
}

func yesno(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	return 0, fmt.Errorf("not a number: %T", v)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	}
	return 0, fmt.Errorf("not an integer: %T", v)
}

// blockFuncs render a named template and post-process its output.
func blockFuncs(t *template.Template) template.FuncMap {
	exec := func(name string, data any) (string, error) {
		var buf bytes.Buffer
		if err := t.ExecuteTemplate(&buf, name, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	return template.FuncMap{
		"upperBlock": func(name string, data any) (template.HTML, error) {
			out, err := exec(name, data)
			return template.HTML(strings.ToUpper(out)), err
		},
		"repeatBlock": func(n int, name string, data any) (template.HTML, error) {
			out, err := exec(name, data)
			return template.HTML(repeat(n, out)), err
		},
	}
}
