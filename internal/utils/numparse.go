package utils

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var rxLeadingInt = regexp.MustCompile(`^[+-]?\d+`)

// ParseLeadingInt reads the integer prefix of s the way parseInt does: "12",
// " 7 pcs", "3.0" and "-1" all parse, "1 2" is 1; "", "abc" and "x12" do not.
// Surrounding spaces, NBSP and quotes are ignored. Out-of-range values saturate.
func ParseLeadingInt(s string) (int, bool) {
	s = strings.Trim(s, " \t\r\n\u00A0\u202F\"")
	m := rxLeadingInt.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if errors.Is(err, strconv.ErrRange) {
		if m[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseBool accepts the spellings seen in catalog dumps: t/true/1/yes.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
