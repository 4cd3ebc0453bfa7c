package util

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	if got := Round(1.234567, 4); got != 1.2346 {
		t.Fatalf("unexpected round %v", got)
	}
	if got := Round(-0.00005, 4); got != -0.0001 && got != 0 {
		t.Fatalf("unexpected negative round %v", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(120, 0, 100) != 100 || Clamp(-3, 0, 100) != 0 || Clamp(42, 0, 100) != 42 {
		t.Fatalf("clamp out of range")
	}
	if ClampInt(101, 0, 100) != 100 {
		t.Fatalf("clamp int out of range")
	}
}

func TestParseDefaults(t *testing.T) {
	if ParseIntDefault("", 7) != 7 || ParseIntDefault("x", 7) != 7 || ParseIntDefault(" 3 ", 7) != 3 {
		t.Fatalf("unexpected int parse")
	}
	if ParseFloatDefault("1.5", 0) != 1.5 || ParseFloatDefault("nope", 2) != 2 {
		t.Fatalf("unexpected float parse")
	}
}

func TestSplitCSV(t *testing.T) {
	got := SplitCSV(" EUR/USD, ,BTC/USD,")
	if len(got) != 2 || got[0] != "EUR/USD" || got[1] != "BTC/USD" {
		t.Fatalf("unexpected split %v", got)
	}
}

func TestFinite(t *testing.T) {
	if Finite(math.NaN()) || Finite(math.Inf(1)) || !Finite(1) {
		t.Fatalf("finite check")
	}
}
