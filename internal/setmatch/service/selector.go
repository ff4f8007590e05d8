package service

import (
	"context"

	"setmatch-service/internal/setmatch/model"
)

// SelectCandidates returns every set sharing at least one (part, color) key
// with inv, restricted to themes when any are named. It never scores.
func (s *Service) SelectCandidates(ctx context.Context, inv model.UserInventory, themes []string) ([]model.CandidateSet, error) {
	cands, _, err := s.selectCandidates(ctx, inv, themes)
	return cands, err
}

func (s *Service) selectCandidates(ctx context.Context, inv model.UserInventory, themes []string) ([]model.CandidateSet, []int, error) {
	keys := inv.Keys()
	if len(keys) == 0 {
		return []model.CandidateSet{}, nil, nil
	}
	themeIDs, err := s.ResolveThemes(ctx, themes)
	if err != nil {
		return nil, nil, &CandidateSelectionError{Err: err}
	}
	if themeIDs != nil && len(themeIDs) == 0 {
		return []model.CandidateSet{}, themeIDs, nil
	}
	cands, err := s.store.Candidates(ctx, keys, themeIDs)
	if err != nil {
		return nil, themeIDs, &CandidateSelectionError{Err: err}
	}
	return cands, themeIDs, nil
}
