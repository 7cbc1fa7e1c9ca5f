package app

import (
	"fmt"
	"math"
	"time"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
	"adinsight/domain/report"
)

// AssembleReport builds the immutable final artifact of a run from the last
// pass's evaluation and the recommendation set.
func AssembleReport(query string, summary *ads.DataSummary, hypotheses []analysis.Hypothesis, batch *analysis.EvaluationBatch, recs *report.RecommendationSet, iterations int, at time.Time) *report.FinalReport {
	rep := &report.FinalReport{
		ReportID:              "report_" + at.Format("20060102_150405"),
		GeneratedAt:           at,
		OriginalQuery:         query,
		KeyInsights:           batch.ValidatedInsights,
		DataSummary:           *summary,
		ValidationTrail:       batch.ValidationResults,
		TotalHypothesesTested: len(hypotheses),
		TotalIterations:       iterations,
	}
	rep.AnalysisPeriod = summary.DateRange
	if recs != nil {
		rep.Recommendations = recs.Recommendations
	}
	if len(hypotheses) > 0 {
		rate := float64(batch.ValidatedCount()) / float64(len(hypotheses))
		rep.ValidationSuccessRate = math.Round(rate*100) / 100
	}
	rep.ExecutiveSummary = executiveSummary(rep.KeyInsights, rep.Recommendations)
	return rep
}

// executiveSummary leads with the highest-impact insight and the top-priority
// recommendation.
func executiveSummary(insights []analysis.Insight, recs []report.Recommendation) string {
	if len(insights) == 0 {
		return "No significant insights found in the analysis."
	}

	top := insights[0]
	for _, in := range insights[1:] {
		if in.ImpactScore > top.ImpactScore {
			top = in
		}
	}
	summary := fmt.Sprintf("Analysis identified %d key insights. Top finding: %s. ", len(insights), top.Title)

	if len(recs) > 0 {
		best := recs[0]
		for _, r := range recs[1:] {
			if r.PriorityScore > best.PriorityScore {
				best = r
			}
		}
		summary += fmt.Sprintf("Primary recommendation: %s.", best.Action)
	}
	return summary
}
