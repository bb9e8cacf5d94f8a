package attribution

import "sort"

// matches every sale independently against the snapshot and derives rollups
// a sale id seen twice only counts once
func BuildPlan(userID string, snapshot Snapshot) Plan {
	matcher := NewMatcher(snapshot.Posts)

	plan := Plan{
		UserID:       userID,
		SkippedPosts: len(snapshot.Posts) - len(matcher.candidates),
	}

	seen := make(map[string]struct{}, len(snapshot.Sales))
	amounts := make(map[string]float64, len(snapshot.Sales))

	for _, sale := range snapshot.Sales {
		if !sale.Valid() {
			plan.SkippedSales++
			continue
		}
		if _, dup := seen[sale.ID]; dup {
			plan.SkippedSales++
			continue
		}
		seen[sale.ID] = struct{}{}
		amounts[sale.ID] = sale.Amount

		if a, ok := matcher.Match(sale); ok {
			plan.Attributions = append(plan.Attributions, a)
		}
	}

	sort.Slice(plan.Attributions, func(i, j int) bool {
		return plan.Attributions[i].SaleID < plan.Attributions[j].SaleID
	})

	plan.Rollups = ComputeRollups(plan.Attributions, amounts)
	return plan
}

// groups attributions by post; amounts maps sale id to sale amount
func ComputeRollups(attributions []Attribution, amounts map[string]float64) []Rollup {
	byPost := make(map[string]*Rollup)

	for _, a := range attributions {
		r, ok := byPost[a.PostID]
		if !ok {
			r = &Rollup{PostID: a.PostID}
			byPost[a.PostID] = r
		}
		r.Revenue += amounts[a.SaleID]
		r.Sales++
	}

	out := make([]Rollup, 0, len(byPost))
	for _, r := range byPost {
		out = append(out, *r)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].PostID < out[j].PostID
	})

	return out
}
