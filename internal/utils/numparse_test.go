package utils

import (
	"math"
	"testing"
)

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"12", 12, true},
		{" 7 pcs", 7, true},
		{"3.0", 3, true},
		{"-1", -1, true},
		{"0", 0, true},
		{`"15"`, 15, true},
		{"\u00A07\u00A0", 7, true},
		{"1 2", 1, true},
		{"1\u00A0000", 1, true},
		{"99999999999999999999", math.MaxInt, true},
		{"-99999999999999999999", math.MinInt, true},
		{"", 0, false},
		{"abc", 0, false},
		{"x12", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLeadingInt(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLeadingInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"t", "True", "1", " yes "} {
		if !ParseBool(s) {
			t.Errorf("ParseBool(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"f", "false", "0", ""} {
		if ParseBool(s) {
			t.Errorf("ParseBool(%q) = true, want false", s)
		}
	}
}
