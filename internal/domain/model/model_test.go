package model

import "testing"

func TestDeltaValid(t *testing.T) {
	cases := []struct {
		delta Delta
		valid bool
	}{
		{DeltaPlus, true},
		{DeltaMinus, true},
		{0, false},
		{2, false},
		{-2, false},
		{100, false},
	}
	for _, c := range cases {
		if got := c.delta.Valid(); got != c.valid {
			t.Errorf("Delta(%d).Valid() = %v, want %v", c.delta, got, c.valid)
		}
	}
}

func TestDeltaSign(t *testing.T) {
	if got := DeltaPlus.Sign(); got != "plus" {
		t.Errorf("DeltaPlus.Sign() = %q", got)
	}
	if got := DeltaMinus.Sign(); got != "minus" {
		t.Errorf("DeltaMinus.Sign() = %q", got)
	}
	if got := Delta(0).Sign(); got != "" {
		t.Errorf("Delta(0).Sign() = %q, want empty", got)
	}
}
