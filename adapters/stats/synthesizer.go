package stats

import (
	"adinsight/domain/ads"
	"adinsight/domain/analysis"
)

const (
	maxTitleLength       = 80
	maxAffectedCampaigns = 3
	// Revenue impact heuristic: 10% of one average day's revenue, scaled
	// by the validation confidence.
	baseImpactShare = 0.1
	highUrgencyBar  = 0.8
)

// SynthesizeInsight converts a validated hypothesis and its validation result
// into a business-facing insight. Pure mapping, no side effects.
func SynthesizeInsight(h analysis.Hypothesis, v analysis.ValidationResult, dataset *ads.Dataset) analysis.Insight {
	var estimatedImpact float64
	if days := dataset.DistinctDays(); days > 0 {
		avgDailyRevenue := dataset.TotalRevenue() / float64(days)
		estimatedImpact = round(avgDailyRevenue*baseImpactShare*v.ConfidenceScore, 2)
	}

	title := h.Statement
	if runes := []rune(title); len(runes) > maxTitleLength {
		title = string(runes[:maxTitleLength])
	}

	urgency := "medium"
	if v.ConfidenceScore > highUrgencyBar {
		urgency = "high"
	}

	campaigns := dataset.Campaigns()
	if len(campaigns) > maxAffectedCampaigns {
		campaigns = campaigns[:maxAffectedCampaigns]
	}

	start, end := dataset.DateRange()

	return analysis.Insight{
		ID:                     "insight_" + h.ID,
		Title:                  title,
		Description:            h.Rationale,
		Hypothesis:             h,
		Validation:             v,
		ImpactScore:            round(v.ConfidenceScore*10, 1),
		EstimatedRevenueImpact: estimatedImpact,
		Category:               "performance",
		Urgency:                urgency,
		PeriodStart:            start.Format("2006-01-02"),
		PeriodEnd:              end.Format("2006-01-02"),
		AffectedCampaigns:      campaigns,
	}
}
