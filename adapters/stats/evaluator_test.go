package stats

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
)

// twoSegmentDataset builds rows where Video ROAS sits far above Image ROAS
// with tight variance, so a segment test on ROAS must validate.
func twoSegmentDataset(perSegment int) *ads.Dataset {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]ads.Row, 0, perSegment*2)
	for i := 0; i < perSegment; i++ {
		jitter := float64(i%2) * 0.2
		rows = append(rows, ads.Row{
			Date:         start.AddDate(0, 0, i),
			CampaignName: "Spring_Sale",
			CreativeType: "Video",
			Platform:     "Facebook",
			Spend:        100,
			Revenue:      400,
			ROAS:         4.0 + jitter,
			CTR:          0.02,
		})
		rows = append(rows, ads.Row{
			Date:         start.AddDate(0, 0, i),
			CampaignName: "Brand_Awareness",
			CreativeType: "Image",
			Platform:     "Facebook",
			Spend:        100,
			Revenue:      200,
			ROAS:         2.0 + jitter,
			CTR:          0.015,
		})
	}
	return ads.NewDataset(rows)
}

func videoHypothesis(id string) analysis.Hypothesis {
	return analysis.Hypothesis{
		ID:                id,
		Statement:         "Video creatives outperform other formats on ROAS",
		Rationale:         "Video ROAS is well above the account mean",
		Metric:            ads.MetricROAS,
		ExpectedDirection: analysis.DirectionIncrease,
		SegmentDimension:  ads.DimensionCreativeType,
		SegmentValue:      "Video",
		Confidence:        analysis.ConfidenceHigh,
	}
}

func TestEvaluateValidatesStrongSegmentDifference(t *testing.T) {
	ds := twoSegmentDataset(60)
	e := NewEvaluator(nil)

	batch := e.Evaluate(context.Background(), []analysis.Hypothesis{videoHypothesis("h1")}, ds)

	if len(batch.ValidationResults) != 1 {
		t.Fatalf("expected 1 result, got %d", len(batch.ValidationResults))
	}
	res := batch.ValidationResults[0]
	if res.Status != analysis.StatusValidated {
		t.Fatalf("expected validated, got %s (verdict: %s)", res.Status, res.Verdict)
	}
	if res.PValue >= 0.05 {
		t.Errorf("expected p < 0.05, got %f", res.PValue)
	}
	if res.EffectSize <= 0.3 {
		t.Errorf("expected effect size > 0.3, got %f", res.EffectSize)
	}
	if res.StatisticalTest != "independent t-test" {
		t.Errorf("unexpected test name %q", res.StatisticalTest)
	}
	if got := res.SupportingMetrics["sample_size_a"]; got != 60 {
		t.Errorf("expected sample_size_a=60, got %v", got)
	}
	if len(batch.ValidatedInsights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(batch.ValidatedInsights))
	}
	if !strings.HasPrefix(res.Actionability, "Statistically significant result. Scale Video") {
		t.Errorf("unexpected actionability %q", res.Actionability)
	}
}

func TestEvaluateInsightCountMatchesValidatedResults(t *testing.T) {
	ds := twoSegmentDataset(60)
	e := NewEvaluator(nil)

	hyps := []analysis.Hypothesis{
		videoHypothesis("h1"),
		{
			ID:                "h2",
			Statement:         "Image creatives lag on ROAS",
			Rationale:         "Image ROAS is below the account mean",
			Metric:            ads.MetricROAS,
			ExpectedDirection: analysis.DirectionDecrease,
			SegmentDimension:  ads.DimensionCreativeType,
			SegmentValue:      "Image",
			Confidence:        analysis.ConfidenceMedium,
		},
	}
	batch := e.Evaluate(context.Background(), hyps, ds)

	validated := 0
	for _, r := range batch.ValidationResults {
		if r.Status == analysis.StatusValidated {
			validated++
		}
	}
	if validated != len(batch.ValidatedInsights) {
		t.Fatalf("insight count %d does not match validated results %d", len(batch.ValidatedInsights), validated)
	}
	if validated != batch.ValidatedCount() {
		t.Fatalf("ValidatedCount() = %d, want %d", batch.ValidatedCount(), validated)
	}
	// Two validated hypotheses clears the replan bar.
	if batch.NeedsReplan {
		t.Errorf("expected no replan with %d validated, reason %q", validated, batch.ReplanReason)
	}
}

func TestEvaluateSmallSampleGate(t *testing.T) {
	ds := twoSegmentDataset(10)
	e := NewEvaluator(nil)

	batch := e.Evaluate(context.Background(), []analysis.Hypothesis{videoHypothesis("h1")}, ds)

	res := batch.ValidationResults[0]
	if res.Status != analysis.StatusNeedsMoreData {
		t.Fatalf("expected needs_more_data, got %s", res.Status)
	}
	if res.ConfidenceScore != 0.3 {
		t.Errorf("expected gate confidence 0.3, got %f", res.ConfidenceScore)
	}
	if !strings.HasPrefix(res.Verdict, "Insufficient sample size") {
		t.Errorf("unexpected verdict %q", res.Verdict)
	}
}

func TestEvaluateUnknownMetricDegradesToNeedsMoreData(t *testing.T) {
	ds := twoSegmentDataset(60)
	e := NewEvaluator(nil)

	h := videoHypothesis("h1")
	h.Metric = "conversion_velocity"
	batch := e.Evaluate(context.Background(), []analysis.Hypothesis{h}, ds)

	res := batch.ValidationResults[0]
	if res.Status != analysis.StatusNeedsMoreData {
		t.Fatalf("expected needs_more_data, got %s", res.Status)
	}
	if res.ConfidenceScore != 0.0 {
		t.Errorf("expected confidence 0.0 for failed validation, got %f", res.ConfidenceScore)
	}
	if !strings.HasPrefix(res.Verdict, "Validation failed:") {
		t.Errorf("unexpected verdict %q", res.Verdict)
	}
}

func TestEvaluateNeedsReplanBelowTwoValidated(t *testing.T) {
	ds := twoSegmentDataset(60)
	e := NewEvaluator(nil)

	batch := e.Evaluate(context.Background(), []analysis.Hypothesis{videoHypothesis("h1")}, ds)

	if !batch.NeedsReplan {
		t.Fatal("expected replan with a single validated hypothesis")
	}
	if !strings.Contains(batch.ReplanReason, "Only 1 hypotheses validated") {
		t.Errorf("unexpected replan reason %q", batch.ReplanReason)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	ds := twoSegmentDataset(60)
	e := NewEvaluator(nil)
	hyps := []analysis.Hypothesis{videoHypothesis("h1")}

	first := e.Evaluate(context.Background(), hyps, ds)
	second := e.Evaluate(context.Background(), hyps, ds)

	if first.ValidationResults[0].PValue != second.ValidationResults[0].PValue {
		t.Errorf("p-values differ across runs: %f vs %f",
			first.ValidationResults[0].PValue, second.ValidationResults[0].PValue)
	}
	if first.ValidationResults[0].ConfidenceScore != second.ValidationResults[0].ConfidenceScore {
		t.Error("confidence scores differ across runs")
	}
}

func TestTwoSampleTTestDegenerateInputs(t *testing.T) {
	// Identical constant groups: no evidence of a difference.
	tStat, p := TwoSampleTTest([]float64{2, 2, 2}, []float64{2, 2, 2})
	if tStat != 0 || p != 1 {
		t.Errorf("constant equal groups: got t=%f p=%f, want t=0 p=1", tStat, p)
	}

	// Constant groups with different means: the difference is certain.
	_, p = TwoSampleTTest([]float64{3, 3, 3}, []float64{2, 2, 2})
	if p != 0 {
		t.Errorf("constant distinct groups: got p=%f, want 0", p)
	}

	// Zero pooled standard deviation pins the effect size at 0.
	if d := CohenD([]float64{3, 3, 3}, []float64{2, 2, 2}); d != 0 {
		t.Errorf("expected effect size 0 for zero variance, got %f", d)
	}
}

func TestTwoSampleTTestKnownSeparation(t *testing.T) {
	a := []float64{4.0, 4.2, 4.0, 4.2, 4.0, 4.2, 4.0, 4.2, 4.0, 4.2}
	b := []float64{2.0, 2.2, 2.0, 2.2, 2.0, 2.2, 2.0, 2.2, 2.0, 2.2}

	tStat, p := TwoSampleTTest(a, b)
	if tStat <= 0 {
		t.Errorf("expected positive t statistic, got %f", tStat)
	}
	if p >= 0.001 {
		t.Errorf("expected tiny p-value for wide separation, got %f", p)
	}
	if d := CohenD(a, b); d < 1 {
		t.Errorf("expected large effect size, got %f", d)
	}
}

func TestConfidenceScoreComposition(t *testing.T) {
	cases := []struct {
		name   string
		p      float64
		effect float64
		nA, nB int
		want   float64
	}{
		{"significant moderate effect small sample", 0.018, 0.45, 80, 90, 0.78},
		{"fully confident", 0.001, 0.8, 450, 420, 1.0},
		{"weakly significant weak effect", 0.08, 0.2, 40, 40, 0.46},
		{"nothing holds", 0.5, 0.1, 10, 10, 0.26},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := confidenceScore(tc.p, tc.effect, tc.nA, tc.nB)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("confidenceScore(%f, %f, %d, %d) = %f, want %f",
					tc.p, tc.effect, tc.nA, tc.nB, got, tc.want)
			}
		})
	}
}
