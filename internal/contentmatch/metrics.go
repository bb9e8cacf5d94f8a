package contentmatch

import (
	"codeberg.org/creatorlens/server/creatorlens/commerceposts"
	"codeberg.org/creatorlens/server/creatorlens/posts"
)

func combine(p posts.Post, cp *commerceposts.CommercePost) CombinedMetrics {
	metrics := CombinedMetrics{
		Impressions: p.Views,
		Reach:       p.Reach,
		Engagement:  p.Engagement(),
	}

	if cp != nil {
		metrics.Clicks = cp.Clicks
		metrics.Revenue = cp.Revenue
		metrics.ItemsSold = cp.ItemsSold
		metrics.ConversionRate = cp.ConversionRate
	}

	metrics.ROAS = ROAS(metrics.Revenue, metrics.Engagement)
	return metrics
}

// revenue per unit of engagement, 0 when there is no engagement
func ROAS(revenue float64, engagement int) float64 {
	if engagement <= 0 {
		return 0
	}
	return revenue / float64(engagement)
}

// aggregates a match set; TopPerformer is the first match with the highest
// positive revenue, nil when nothing earned
func Summarize(matches []MatchedContent) Summary {
	summary := Summary{TotalPosts: len(matches)}

	var highest float64
	for i := range matches {
		m := &matches[i]

		if m.Commerce != nil {
			summary.MatchedPosts++
		}

		summary.TotalRevenue += m.Metrics.Revenue
		summary.TotalEngagement += m.Metrics.Engagement
		summary.TotalItemsSold += m.Metrics.ItemsSold

		if m.Metrics.Revenue > highest {
			highest = m.Metrics.Revenue
			summary.TopPerformer = m
		}
	}

	if summary.TotalPosts > 0 {
		summary.AvgRevenuePerPost = summary.TotalRevenue / float64(summary.TotalPosts)
		summary.AvgEngagementPerPost = float64(summary.TotalEngagement) / float64(summary.TotalPosts)
	}

	return summary
}
