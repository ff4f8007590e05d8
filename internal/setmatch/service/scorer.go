package service

import (
	"context"
	"math"

	"setmatch-service/internal/setmatch/model"
)

// Score compares one candidate's required parts with the owned quantities.
// ok is false when the candidate has nothing required or nothing in common.
func Score(c model.CandidateSet, required []model.PartRecord, owned map[model.PartKey]int) (model.ScoredSet, bool) {
	need := make(map[model.PartKey]int, len(required))
	for _, p := range required {
		if p.PartNum == "" || p.Quantity < 1 {
			continue
		}
		need[p.Key()] += p.Quantity
	}

	var total, matched, missing int
	for k, req := range need {
		total += req
		have := owned[k]
		matched += min(req, have)
		if have < req {
			missing++
		}
	}
	if total <= 0 || matched <= 0 {
		return model.ScoredSet{}, false
	}

	pct := int(math.Round(100 * float64(matched) / float64(total)))
	pct = max(0, min(100, pct))
	// rounding must not report a full match while a key is still short
	if pct == 100 && missing > 0 {
		pct = 99
	}
	c.TotalParts = total
	return model.ScoredSet{CandidateSet: c, MatchPercent: pct, MissingPieces: missing}, true
}

// ScoreBatch scores one slice of candidate inventories against inv. Unknown or
// unscorable inventories are dropped from the result; only a store failure is
// an error, returned as *BatchScoringError.
func (s *Service) ScoreBatch(ctx context.Context, inventoryIDs []int64, inv model.UserInventory) ([]model.ScoredSet, error) {
	return s.scoreBatch(ctx, 0, inventoryIDs, inv.Quantities())
}

func (s *Service) scoreBatch(ctx context.Context, batch int, ids []int64, owned map[model.PartKey]int) ([]model.ScoredSet, error) {
	if len(ids) == 0 {
		return []model.ScoredSet{}, nil
	}
	invs, err := s.store.Inventories(ctx, ids)
	if err != nil {
		return nil, &BatchScoringError{Batch: batch, Err: err}
	}
	out := make([]model.ScoredSet, 0, len(invs))
	for _, inv := range invs {
		scored, ok := Score(inv.CandidateSet, inv.Parts, owned)
		if !ok {
			s.logger.Debug().Int64("inventory_id", inv.InventoryID).Msg("skipping inventory without required parts")
			continue
		}
		out = append(out, scored)
	}
	return out, nil
}
