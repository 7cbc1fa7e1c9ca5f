package stats

import (
	"math"
	"strings"
	"testing"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
)

func TestSynthesizeInsightDerivesImpactFromConfidence(t *testing.T) {
	ds := twoSegmentDataset(10) // 10 distinct days, 600 revenue per day
	h := videoHypothesis("h1")
	v := analysis.ValidationResult{
		HypothesisID:    "h1",
		Status:          analysis.StatusValidated,
		ConfidenceScore: 0.9,
	}

	in := SynthesizeInsight(h, v, ds)

	if in.ID != "insight_h1" {
		t.Errorf("unexpected insight ID %q", in.ID)
	}
	if in.ImpactScore != 9.0 {
		t.Errorf("expected impact 9.0, got %f", in.ImpactScore)
	}
	// 10% of average daily revenue (600), scaled by confidence.
	if want := 54.0; math.Abs(in.EstimatedRevenueImpact-want) > 1e-9 {
		t.Errorf("expected revenue impact %f, got %f", want, in.EstimatedRevenueImpact)
	}
	if in.Urgency != "high" {
		t.Errorf("expected high urgency above 0.8 confidence, got %q", in.Urgency)
	}
	if in.Category != "performance" {
		t.Errorf("unexpected category %q", in.Category)
	}
	if in.PeriodStart != "2025-01-01" || in.PeriodEnd != "2025-01-10" {
		t.Errorf("unexpected period %s..%s", in.PeriodStart, in.PeriodEnd)
	}
}

func TestSynthesizeInsightTruncatesTitleAndCampaigns(t *testing.T) {
	ds := twoSegmentDataset(5)
	h := videoHypothesis("h2")
	h.Statement = strings.Repeat("Video wins. ", 20)
	v := analysis.ValidationResult{HypothesisID: "h2", ConfidenceScore: 0.5}

	in := SynthesizeInsight(h, v, ds)

	if got := len([]rune(in.Title)); got != 80 {
		t.Errorf("expected 80-rune title, got %d", got)
	}
	if in.Urgency != "medium" {
		t.Errorf("expected medium urgency at 0.5 confidence, got %q", in.Urgency)
	}
	if len(in.AffectedCampaigns) > 3 {
		t.Errorf("expected at most 3 campaigns, got %d", len(in.AffectedCampaigns))
	}
}

func TestSynthesizeInsightEmptyDataset(t *testing.T) {
	ds := ads.NewDataset(nil)
	v := analysis.ValidationResult{HypothesisID: "h3", ConfidenceScore: 0.9}

	in := SynthesizeInsight(videoHypothesis("h3"), v, ds)
	if in.EstimatedRevenueImpact != 0 {
		t.Errorf("expected zero revenue impact for empty dataset, got %f", in.EstimatedRevenueImpact)
	}
}
