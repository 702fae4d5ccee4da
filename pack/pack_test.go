package pack

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testArg is a minimal Arg backed by Go slices: Check* reads
// 1-based argument values, Push* appends decoded results.
type testArg struct {
	vals    []any
	results []any
}

func (a *testArg) CheckInteger(idx int) int64  { return a.vals[idx-1].(int64) }
func (a *testArg) CheckNumber(idx int) float64 { return a.vals[idx-1].(float64) }
func (a *testArg) CheckString(idx int) string  { return a.vals[idx-1].(string) }
func (a *testArg) PushInteger(i int64)         { a.results = append(a.results, i) }
func (a *testArg) PushNumber(n float64)        { a.results = append(a.results, n) }
func (a *testArg) PushString(s string)         { a.results = append(a.results, s) }
func (a *testArg) Error2(format string, v ...any) int {
	panic(fmt.Sprintf(format, v...))
}

func TestPackLittleEndianInt32(t *testing.T) {
	a := &testArg{vals: []any{int64(300)}}
	got := Pack(a, "<i4", 1)
	require.Len(t, got, 4)
	assert.Equal(t, []byte{0x2C, 0x01, 0x00, 0x00}, []byte(got))
}

func TestPackBigEndianUnsigned16(t *testing.T) {
	a := &testArg{vals: []any{int64(500)}}
	got := Pack(a, ">H", 1)
	assert.Equal(t, []byte{0x01, 0xF4}, []byte(got))
}

func TestPackUnpackRoundTrip(t *testing.T) {
	packer := &testArg{vals: []any{int64(-1), int64(65535)}}
	data := Pack(packer, "<i2I4", 1)

	reader := &testArg{}
	n := Unpack(reader, "<i2I4", data, 1)
	// 2 decoded values + the trailing position.
	require.Equal(t, 3, n)
	require.Len(t, reader.results, 3)
	assert.Equal(t, int64(-1), reader.results[0])
	assert.Equal(t, int64(65535), reader.results[1])
	assert.Equal(t, int64(len(data)+1), reader.results[2])
}

func TestPackSizeFixedFormat(t *testing.T) {
	a := &testArg{}
	assert.Equal(t, int64(6), PackSize(a, "<i4h"))
}

func TestPackSizeRejectsVariableLength(t *testing.T) {
	a := &testArg{}
	assert.Panics(t, func() { PackSize(a, "s") })
}

func TestPackRejectsOutOfLimitsIntegerSize(t *testing.T) {
	a := &testArg{vals: []any{int64(0)}}
	assert.Panics(t, func() { Pack(a, "i17", 1) })
}

func TestPackRejectsSignedOverflow(t *testing.T) {
	a := &testArg{vals: []any{int64(1000)}}
	assert.Panics(t, func() { Pack(a, "b", 1) })
}

func TestPackRejectsUnsignedOverflow(t *testing.T) {
	a := &testArg{vals: []any{int64(-1)}}
	assert.Panics(t, func() { Pack(a, "B", 1) })
}

func TestUnpackRejectsBadSignExtension(t *testing.T) {
	a := &testArg{}
	data := string([]byte{1, 0, 0, 0, 0, 0, 0, 0, 0x7F})
	assert.Panics(t, func() { Unpack(a, "<i9", data, 1) })
}

func TestUnpackAcceptsValidSignExtension(t *testing.T) {
	a := &testArg{}
	data := string([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	n := Unpack(a, "<i9", data, 1)
	require.Equal(t, 2, n)
	assert.Equal(t, int64(-1), a.results[0])
}
