package parser

import "strings"

// Columns holds resolved header positions; -1 means absent.
type Columns struct {
	PartNum  int
	Color    int
	Quantity int
}

func normHeader(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(s, `"' `)
}

func isPartHeader(h string) bool {
	return strings.Contains(h, "part") && !strings.Contains(h, "name") && !strings.Contains(h, "cat")
}

func isColorHeader(h string) bool { return strings.Contains(h, "color") }

func isQtyHeader(h string) bool {
	return strings.Contains(h, "qty") || strings.Contains(h, "quantity")
}

// ResolveColumns finds the part, color and quantity columns by header substring.
// When several headers qualify the one carrying a preferred token wins
// ("num"/"id" for parts, "id" then anything without "name" for colors),
// otherwise the leftmost.
func ResolveColumns(header []string) Columns {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normHeader(h)
	}
	return Columns{
		PartNum: pick(norm, isPartHeader, func(h string) int {
			if strings.Contains(h, "num") || strings.Contains(h, "id") {
				return 1
			}
			return 0
		}),
		Color: pick(norm, isColorHeader, func(h string) int {
			switch {
			case strings.Contains(h, "id"):
				return 2
			case !strings.Contains(h, "name"):
				return 1
			}
			return 0
		}),
		Quantity: pick(norm, isQtyHeader, func(string) int { return 0 }),
	}
}

func pick(headers []string, match func(string) bool, prefer func(string) int) int {
	best, bestScore := -1, -1
	for i, h := range headers {
		if !match(h) {
			continue
		}
		if s := prefer(h); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}
