package state

import (
	"math"
	"testing"

	"github.com/lua54vm/core/vmconfig"
)

// TestIntFloatComparisonPrecision exercises the exact boundary the naive
// float64(x) cast gets wrong: math.maxinteger doesn't fit a float64
// exactly, so casting both sides to float64 rounds them to the same
// value and a naive "<" reports false even though maxinteger is
// strictly less than 2^63 as a real number.
func TestIntFloatComparisonPrecision(t *testing.T) {
	maxInt := int64(math.MaxInt64)
	twoPow63 := 9223372036854775808.0 // 2^63, exactly representable

	if !ltIntFloat(maxInt, twoPow63) {
		t.Fatalf("maxinteger < 2^63 should be true")
	}
	if ltFloatInt(twoPow63, maxInt) {
		t.Fatalf("2^63 < maxinteger should be false")
	}
	if !leIntFloat(maxInt, twoPow63) {
		t.Fatalf("maxinteger <= 2^63 should be true")
	}

	// Within the exact range, behaves like plain float comparison.
	if !ltIntFloat(1, 1.5) {
		t.Fatalf("1 < 1.5 should be true")
	}
	if ltIntFloat(2, 1.5) {
		t.Fatalf("2 < 1.5 should be false")
	}
}

func TestCheckStackEnforcesMaxStack(t *testing.T) {
	cfg := vmconfig.DefaultConfig()
	cfg.MaxStack = 4
	ls := New(cfg)
	ls.stack.top = 3
	if ls.CheckStack(10) {
		t.Fatalf("CheckStack should refuse to grow past MaxStack")
	}
	if !ls.CheckStack(1) {
		t.Fatalf("CheckStack should allow growth within MaxStack")
	}
}
