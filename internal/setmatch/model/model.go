package model

import (
	"fmt"
	"math"
)

// UnknownColor marks a part whose color was not given. Color 0 is black.
const UnknownColor = -1

// MaxQuantity bounds one line and the sum of a key, so totals never wrap.
const MaxQuantity = math.MaxInt32

// PartKey is the identity of a part line: quantity never takes part in it.
type PartKey struct {
	PartNum string
	ColorID int
}

func (k PartKey) String() string { return fmt.Sprintf("%s/%d", k.PartNum, k.ColorID) }

type PartRecord struct {
	PartNum  string `json:"part_num" validate:"required,max=64"`
	ColorID  int    `json:"color_id" validate:"min=-1"`
	Quantity int    `json:"quantity" validate:"min=1,max=2147483647"`
}

func (p PartRecord) Key() PartKey { return PartKey{PartNum: p.PartNum, ColorID: p.ColorID} }

// UserInventory keeps upload order; the same key may appear on several lines.
type UserInventory []PartRecord

// Quantities sums duplicate keys into one owned quantity per key, capped at
// MaxQuantity.
func (inv UserInventory) Quantities() map[PartKey]int {
	out := make(map[PartKey]int, len(inv))
	for _, p := range inv {
		q := min(max(p.Quantity, 1), MaxQuantity)
		k := p.Key()
		if q > MaxQuantity-out[k] {
			out[k] = MaxQuantity
		} else {
			out[k] += q
		}
	}
	return out
}

// Keys returns the distinct keys in first-seen order.
func (inv UserInventory) Keys() []PartKey {
	seen := make(map[PartKey]struct{}, len(inv))
	keys := make([]PartKey, 0, len(inv))
	for _, p := range inv {
		k := p.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

type Theme struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID *int   `json:"parent_id"`
}

type Set struct {
	SetNum   string `json:"set_num"`
	Name     string `json:"name"`
	Year     int    `json:"year"`
	ThemeID  int    `json:"theme_id"`
	NumParts int    `json:"num_parts"`
}

// CandidateSet is one set inventory that shares at least one key with the upload.
type CandidateSet struct {
	InventoryID int64  `json:"inventory_id"`
	SetNum      string `json:"set_num"`
	Name        string `json:"name"`
	Year        int    `json:"year"`
	TotalParts  int    `json:"total_parts"`
	Theme       string `json:"theme"`
}

type ScoredSet struct {
	CandidateSet
	MatchPercent  int `json:"match_percent"`
	MissingPieces int `json:"missing_pieces"` // distinct keys still short
}

// Inventory is a candidate together with its required (non-spare) parts.
type Inventory struct {
	CandidateSet
	Parts []PartRecord
}

// InventoryLine is one bill-of-materials row with display names.
type InventoryLine struct {
	PartNum   string `json:"part_num"`
	ColorID   int    `json:"color_id"`
	Quantity  int    `json:"quantity"`
	IsSpare   bool   `json:"is_spare"`
	PartName  string `json:"part_name"`
	ColorName string `json:"color_name"`
	ColorRGB  string `json:"color_rgb"`
}

// SetInventory is the latest inventory version of one set.
type SetInventory struct {
	Set         Set
	InventoryID int64
	Version     int
	Lines       []InventoryLine
}

type MissingPart struct {
	PartNum    string `json:"part_num"`
	ColorID    int    `json:"color_id"`
	MissingQty int    `json:"missing_qty"`
	PartName   string `json:"part_name"`
	ColorName  string `json:"color_name"`
}

type MissingPartsReport []MissingPart
