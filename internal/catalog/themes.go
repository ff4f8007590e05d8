package catalog

import (
	"sort"

	"setmatch-service/internal/setmatch/model"
)

// ThemeTree answers descendant queries over the theme parent links.
type ThemeTree struct {
	byID     map[int]model.Theme
	children map[int][]int
}

func NewThemeTree(themes []model.Theme) *ThemeTree {
	t := &ThemeTree{
		byID:     make(map[int]model.Theme, len(themes)),
		children: make(map[int][]int),
	}
	for _, th := range themes {
		t.byID[th.ID] = th
		if th.ParentID != nil {
			t.children[*th.ParentID] = append(t.children[*th.ParentID], th.ID)
		}
	}
	return t
}

func (t *ThemeTree) Theme(id int) (model.Theme, bool) {
	th, ok := t.byID[id]
	return th, ok
}

func (t *ThemeTree) All() []model.Theme {
	out := make([]model.Theme, 0, len(t.byID))
	for _, th := range t.byID {
		out = append(out, th)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Expand returns ids plus all their descendants, sorted and unique.
func (t *ThemeTree) Expand(ids []int) []int {
	seen := make(map[int]struct{})
	stack := append([]int(nil), ids...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		stack = append(stack, t.children[id]...)
	}
	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// IDSet turns a theme filter into a lookup set; nil stays nil (no filter).
func IDSet(themeIDs []int) map[int]struct{} {
	if themeIDs == nil {
		return nil
	}
	m := make(map[int]struct{}, len(themeIDs))
	for _, id := range themeIDs {
		m[id] = struct{}{}
	}
	return m
}
