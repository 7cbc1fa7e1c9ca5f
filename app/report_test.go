package app

import (
	"strings"
	"testing"
	"time"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
	"adinsight/domain/report"
)

func reportFixture(validated, total int, recs []report.Recommendation) *report.FinalReport {
	hyps := make([]analysis.Hypothesis, total)
	batch := &analysis.EvaluationBatch{}
	for i := 0; i < total; i++ {
		hyps[i] = analysis.Hypothesis{ID: "h"}
		status := analysis.StatusRejected
		if i < validated {
			status = analysis.StatusValidated
			batch.ValidatedInsights = append(batch.ValidatedInsights, analysis.Insight{
				ID:          "insight_h",
				Title:       "Video outperforms on ROAS",
				ImpactScore: float64(i + 1),
			})
		}
		batch.ValidationResults = append(batch.ValidationResults, analysis.ValidationResult{Status: status})
	}
	at := time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC)
	return AssembleReport("q", &ads.DataSummary{}, hyps, batch, &report.RecommendationSet{Recommendations: recs}, 2, at)
}

func TestAssembleReportSuccessRate(t *testing.T) {
	rep := reportFixture(4, 10, nil)
	if rep.ValidationSuccessRate != 0.4 {
		t.Errorf("expected success rate 0.4, got %f", rep.ValidationSuccessRate)
	}
	if rep.TotalHypothesesTested != 10 {
		t.Errorf("expected 10 hypotheses, got %d", rep.TotalHypothesesTested)
	}
	if rep.TotalIterations != 2 {
		t.Errorf("expected 2 iterations, got %d", rep.TotalIterations)
	}
	if rep.ReportID != "report_20250401_103000" {
		t.Errorf("unexpected report ID %q", rep.ReportID)
	}
}

func TestAssembleReportZeroHypotheses(t *testing.T) {
	rep := reportFixture(0, 0, nil)
	if rep.ValidationSuccessRate != 0 {
		t.Errorf("expected success rate 0 with no hypotheses, got %f", rep.ValidationSuccessRate)
	}
	if rep.ExecutiveSummary != "No significant insights found in the analysis." {
		t.Errorf("unexpected summary %q", rep.ExecutiveSummary)
	}
}

func TestExecutiveSummaryLeadsWithTopInsightAndRecommendation(t *testing.T) {
	recs := []report.Recommendation{
		{ID: "r1", Action: "pause image ads", PriorityScore: 5},
		{ID: "r2", Action: "scale video on instagram", PriorityScore: 9},
	}
	rep := reportFixture(3, 5, recs)

	if !strings.Contains(rep.ExecutiveSummary, "Analysis identified 3 key insights") {
		t.Errorf("summary missing insight count: %q", rep.ExecutiveSummary)
	}
	if !strings.Contains(rep.ExecutiveSummary, "Primary recommendation: scale video on instagram.") {
		t.Errorf("summary should name the highest-priority action: %q", rep.ExecutiveSummary)
	}
}
