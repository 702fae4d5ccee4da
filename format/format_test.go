package format

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stackArg is a minimal Arg backed by a Go slice, standing in for
// api.State in these package-local tests.
type stackArg struct {
	vals []any
}

func (s *stackArg) CheckInteger(idx int) int64 {
	switch v := s.vals[idx-1].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		panic(fmt.Sprintf("not an integer: %v", v))
	}
}

func (s *stackArg) CheckNumber(idx int) float64 {
	switch v := s.vals[idx-1].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		panic(fmt.Sprintf("not a number: %v", v))
	}
}

func (s *stackArg) ToString2(idx int) string {
	return fmt.Sprint(s.vals[idx-1])
}

func (s *stackArg) CheckString(idx int) string {
	v, ok := s.vals[idx-1].(string)
	if !ok {
		panic(fmt.Sprintf("not a string: %v", s.vals[idx-1]))
	}
	return v
}

func (s *stackArg) ToPointer(idx int) any {
	return s.vals[idx-1]
}

func (s *stackArg) Error2(format string, a ...any) int {
	panic(fmt.Sprintf(format, a...))
}

func TestSprintfBasicVerbs(t *testing.T) {
	arg := &stackArg{vals: []any{int64(42), "hi", 3.5}}
	got := Sprintf(arg, "%d %s %.1f", 1)
	assert.Equal(t, "42 hi 3.5", got)
}

func TestSprintfWidthAndPadding(t *testing.T) {
	arg := &stackArg{vals: []any{int64(7)}}
	got := Sprintf(arg, "[%5d]", 1)
	assert.Equal(t, "[    7]", got)
}

func TestSprintfPercentLiteral(t *testing.T) {
	arg := &stackArg{vals: []any{}}
	got := Sprintf(arg, "100%%", 1)
	assert.Equal(t, "100%", got)
}

func TestSprintfQuoted(t *testing.T) {
	arg := &stackArg{vals: []any{"line\nbreak"}}
	got := Sprintf(arg, "%q", 1)
	assert.Contains(t, got, `\`)
}

func TestSprintfWidthOverLimitIsInvalidConversion(t *testing.T) {
	arg := &stackArg{vals: []any{int64(10)}}
	assert.Panics(t, func() { Sprintf(arg, "%100.3d", 1) })
}

func TestSprintfPointerOnNonReference(t *testing.T) {
	arg := &stackArg{vals: []any{int64(1)}}
	got := Sprintf(arg, "%p", 1)
	assert.Equal(t, "(null)", got)
}

func TestSprintfPointerOnReference(t *testing.T) {
	n := 1
	arg := &stackArg{vals: []any{&n}}
	got := Sprintf(arg, "%p", 1)
	assert.NotEqual(t, "(null)", got)
}
