// Package dedup computes duplicate-removal plans over directory entries.
package dedup

import (
	"go.uber.org/zap"

	"github.com/dronedex/directory-cli/internal/model"
	"github.com/dronedex/directory-cli/internal/search"
)

// BuildPlan groups entries by their cleaned website and plans the removal of
// duplicates. Within a group the entry with the most populated fields
// survives; on a tie the first encountered wins. Surviving entries whose
// stored website still carries a search-redirect wrapper get a rename to the
// cleaned form. The plan only describes the changes; the store applies them.
func BuildPlan(entries []model.Entry) model.CleanupPlan {
	plan := model.CleanupPlan{Renames: map[string]string{}}

	groups := map[string][]model.Entry{}
	var order []string
	for _, e := range entries {
		if e.Website == "" {
			continue
		}
		key := search.CleanRedirectURL(e.Website)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e)
	}

	deleted := map[string]bool{}
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		best := group[0]
		for _, e := range group[1:] {
			if e.PopulatedFields() > best.PopulatedFields() {
				best = e
			}
		}

		for _, e := range group {
			if e.ID != best.ID {
				plan.DeleteIDs = append(plan.DeleteIDs, e.ID)
				deleted[e.ID] = true
			}
		}

		zap.L().Debug("dedup: duplicate group resolved",
			zap.String("website", key),
			zap.Int("size", len(group)),
			zap.String("kept", best.ID),
		)
	}

	for _, e := range entries {
		if e.Website == "" || deleted[e.ID] {
			continue
		}
		if cleaned := search.CleanRedirectURL(e.Website); cleaned != e.Website {
			plan.Renames[e.ID] = cleaned
		}
	}

	return plan
}
