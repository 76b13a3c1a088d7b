package web

import (
	"bytes"
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiply(t *testing.T) {
	assert.Equal(t, 15.0, multiply(5, 3))
	assert.Equal(t, 7.5, multiply("2.5", 3))
	assert.Equal(t, 0.0, multiply("abc", 3))
	assert.Equal(t, 0.0, multiply(nil, 3))
}

func TestRangeToAndParity(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rangeTo(5))
	assert.Equal(t, []int{1, 2}, rangeTo("2"))
	assert.Empty(t, rangeTo("x"))
	assert.Empty(t, rangeTo(0))

	assert.Equal(t, "even", parity(4))
	assert.Equal(t, "odd", parity("7"))
	assert.Equal(t, "", parity("seven"))
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, "Hello", firstWord("Hello cruel world"))
	assert.Equal(t, "", firstWord("   "))
	assert.Equal(t, "Hello, ana!", greet("ana"))
	assert.Equal(t, "Hello World", combine("Hello", "World"))
	assert.Equal(t, "Go-Templates", combine("Go", "Templates", "-"))
	assert.Equal(t, "ababab", repeat(3, "ab"))
	assert.Equal(t, "", repeat(-1, "ab"))
}

func TestCurrentDate(t *testing.T) {
	defer func(orig func() time.Time) { now = orig }(now)
	now = func() time.Time { return time.Date(2024, 3, 21, 9, 0, 0, 0, time.UTC) }

	assert.Equal(t, "21/03/2024", currentDate())
	assert.Equal(t, "2024-03-21", currentDate("2006-01-02"))
}

func TestTimesince(t *testing.T) {
	assert.Equal(t, "", timesince(time.Time{}))
	assert.Contains(t, timesince(time.Now().Add(-3*time.Hour)), "ago")
}

func TestBlockFuncs(t *testing.T) {
	tmpl := template.New("t")
	tmpl.Funcs(blockFuncs(tmpl))
	_, err := tmpl.Parse(`{{define "shout"}}hi {{.}}{{end}}{{upperBlock "shout" "<ana>"}}|{{repeatBlock 2 "shout" "x"}}`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, nil))
	assert.Equal(t, "HI &LT;ANA&GT;|hi xhi x", buf.String())
}
