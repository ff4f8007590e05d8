package service

import (
	"context"
	"sort"
	"strings"

	"setmatch-service/internal/catalog"
	"setmatch-service/internal/setmatch/model"
)

// allThemes are filter values that mean "no restriction".
var allThemes = map[string]struct{}{"todos": {}, "all": {}, "*": {}}

// SplitThemes turns a comma-separated filter into names, dropping blanks and
// the all-themes markers.
func SplitThemes(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, ok := allThemes[strings.ToLower(name)]; ok {
			continue
		}
		out = append(out, name)
	}
	return out
}

// themeIndex resolves user-facing theme names to catalog IDs: exact match on
// the normalized name first, then the closest name sharing a trigram.
type themeIndex struct {
	tree   *catalog.ThemeTree
	byName map[string][]int
	inv    map[string]map[string]struct{}
}

func newThemeIndex(themes []model.Theme) *themeIndex {
	idx := &themeIndex{
		tree:   catalog.NewThemeTree(themes),
		byName: make(map[string][]int),
		inv:    make(map[string]map[string]struct{}),
	}
	for _, t := range themes {
		nn := normalizeName(t.Name)
		if nn == "" {
			continue
		}
		idx.byName[nn] = append(idx.byName[nn], t.ID)
		for g := range trigramSet(nn) {
			bucket, ok := idx.inv[g]
			if !ok {
				bucket = make(map[string]struct{})
				idx.inv[g] = bucket
			}
			bucket[nn] = struct{}{}
		}
	}
	return idx
}

func (idx *themeIndex) candidateNames(norm string) []string {
	seen := make(map[string]struct{})
	for g := range trigramSet(norm) {
		for nn := range idx.inv[g] {
			seen[nn] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for nn := range seen {
		out = append(out, nn)
	}
	sort.Strings(out)
	return out
}

// lookup returns the IDs for one name, or nil when nothing is close enough.
func (idx *themeIndex) lookup(name string, threshold float64) []int {
	norm := normalizeName(name)
	if norm == "" {
		return nil
	}
	if ids, ok := idx.byName[norm]; ok {
		return ids
	}
	best, bestName := -1.0, ""
	for _, cand := range idx.candidateNames(norm) {
		if s := bestSimilarity(norm, cand); s > best {
			best, bestName = s, cand
		}
	}
	if bestName == "" || best < threshold {
		return nil
	}
	return idx.byName[bestName]
}

// resolve maps names to theme IDs including every descendant theme. No names
// means no restriction (nil). Names that match nothing yield an empty,
// non-nil filter so that nothing matches. unmatched lists names with no match.
func (idx *themeIndex) resolve(names []string, threshold float64) (ids []int, unmatched []string) {
	if len(names) == 0 {
		return nil, nil
	}
	var roots []int
	for _, n := range names {
		found := idx.lookup(n, threshold)
		if len(found) == 0 {
			unmatched = append(unmatched, n)
			continue
		}
		roots = append(roots, found...)
	}
	ids = idx.tree.Expand(roots)
	if ids == nil {
		ids = []int{}
	}
	return ids, unmatched
}

// loadThemes loads the catalog themes once. A failed load is retried on the
// next call.
func (s *Service) loadThemes(ctx context.Context) (*themeIndex, error) {
	s.themesMu.Lock()
	defer s.themesMu.Unlock()
	if s.themes != nil {
		return s.themes, nil
	}
	themes, err := s.store.Themes(ctx)
	if err != nil {
		return nil, err
	}
	s.themes = newThemeIndex(themes)
	return s.themes, nil
}

// ResolveThemes maps filter names to catalog theme IDs; see themeIndex.resolve.
func (s *Service) ResolveThemes(ctx context.Context, names []string) ([]int, error) {
	if len(names) == 0 {
		return nil, nil
	}
	idx, err := s.loadThemes(ctx)
	if err != nil {
		return nil, err
	}
	ids, unmatched := idx.resolve(names, s.themeThreshold)
	if len(unmatched) > 0 {
		s.logger.Debug().Strs("themes", unmatched).Msg("theme names matched nothing")
	}
	return ids, nil
}

func (s *Service) Themes(ctx context.Context) ([]model.Theme, error) {
	return s.store.Themes(ctx)
}

// CountSets counts catalog sets within the theme filter.
func (s *Service) CountSets(ctx context.Context, themes []string) (int, error) {
	ids, err := s.ResolveThemes(ctx, themes)
	if err != nil {
		return 0, err
	}
	return s.store.CountSets(ctx, ids)
}
