package stats

import (
	"context"
	"fmt"

	mstats "github.com/montanaflynn/stats"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
	"adinsight/internal/telemetry"
)

const agentName = "EvaluatorAgent"

// Significance and effect thresholds for hypothesis classification.
const (
	minSampleSize     = 30
	largeSampleSize   = 100
	significanceLevel = 0.05
	weakSignificance  = 0.10
	strongEffect      = 0.5
	moderateEffect    = 0.3
	minValidatedCount = 2
	gateConfidence    = 0.3
)

// Evaluator validates hypotheses with a two-sample mean comparison and
// synthesizes insights from the ones that hold up.
type Evaluator struct {
	sink telemetry.EventSink
}

// NewEvaluator creates an evaluator reporting to the given event sink.
func NewEvaluator(sink telemetry.EventSink) *Evaluator {
	if sink == nil {
		sink = telemetry.Nop()
	}
	return &Evaluator{sink: sink}
}

// Evaluate produces exactly one ValidationResult per hypothesis plus the
// derived insights and replanning decision. It never fails as a whole: a
// hypothesis that cannot be tested degrades to a needs_more_data result.
func (e *Evaluator) Evaluate(ctx context.Context, hypotheses []analysis.Hypothesis, dataset *ads.Dataset) *analysis.EvaluationBatch {
	e.sink.Emit(agentName, "validation_start", "success", telemetry.Fields{
		"num_hypotheses": len(hypotheses),
	})

	batch := &analysis.EvaluationBatch{
		ValidationResults:  make([]analysis.ValidationResult, 0, len(hypotheses)),
		RejectedHypotheses: []string{},
	}

	for _, h := range hypotheses {
		result := e.validateHypothesis(h, dataset)
		batch.ValidationResults = append(batch.ValidationResults, result)

		if result.Status == analysis.StatusValidated {
			batch.ValidatedInsights = append(batch.ValidatedInsights, SynthesizeInsight(h, result, dataset))
		} else {
			batch.RejectedHypotheses = append(batch.RejectedHypotheses, h.ID)
		}
	}

	validated := len(batch.ValidatedInsights)
	if validated < minValidatedCount {
		batch.NeedsReplan = true
		batch.ReplanReason = fmt.Sprintf("Only %d hypotheses validated. Need a different analytical approach.", validated)
	}
	batch.SuggestedFocusAreas = suggestFocusAreas(batch.ValidationResults)

	e.sink.Emit(agentName, "validation_complete", "success", telemetry.Fields{
		"validated":    validated,
		"rejected":     len(batch.RejectedHypotheses),
		"needs_replan": batch.NeedsReplan,
	})
	return batch
}

// validateHypothesis runs the full test pipeline for one hypothesis,
// converting any failure into a needs_more_data result.
func (e *Evaluator) validateHypothesis(h analysis.Hypothesis, dataset *ads.Dataset) analysis.ValidationResult {
	result, err := e.runTest(h, dataset)
	if err != nil {
		e.sink.Emit(agentName, "validation_error", "error", telemetry.Fields{
			"hypothesis_id": h.ID,
			"error":         err.Error(),
		})
		return analysis.ValidationResult{
			HypothesisID:    h.ID,
			Status:          analysis.StatusNeedsMoreData,
			ConfidenceScore: 0.0,
			Verdict:         fmt.Sprintf("Validation failed: %v", err),
			Actionability:   "Unable to validate with current data",
		}
	}
	return result
}

func (e *Evaluator) runTest(h analysis.Hypothesis, dataset *ads.Dataset) (analysis.ValidationResult, error) {
	var groupA, groupB []ads.Row
	if h.SegmentDimension != "" && h.SegmentValue != "" {
		var err error
		groupA, groupB, err = dataset.SplitByDimension(h.SegmentDimension, h.SegmentValue)
		if err != nil {
			return analysis.ValidationResult{}, err
		}
	} else {
		// Time-based comparison when no segment is specified.
		groupA, groupB = dataset.SplitByMidpoint()
	}

	nA, nB := len(groupA), len(groupB)
	if nA < minSampleSize || nB < minSampleSize {
		return analysis.ValidationResult{
			HypothesisID:    h.ID,
			Status:          analysis.StatusNeedsMoreData,
			ConfidenceScore: gateConfidence,
			Verdict:         fmt.Sprintf("Insufficient sample size (n_a=%d, n_b=%d)", nA, nB),
			Actionability:   "Collect more data before drawing conclusions",
		}, nil
	}

	a, err := ads.MetricValues(groupA, h.Metric)
	if err != nil {
		return analysis.ValidationResult{}, err
	}
	b, err := ads.MetricValues(groupB, h.Metric)
	if err != nil {
		return analysis.ValidationResult{}, err
	}

	_, pValue := TwoSampleTTest(a, b)
	effectSize := CohenD(a, b)

	meanA, _ := mstats.Mean(a)
	meanB, _ := mstats.Mean(b)
	diff := meanA - meanB
	if diff < 0 {
		diff = -diff
	}

	confidence := confidenceScore(pValue, effectSize, nA, nB)

	segment := h.SegmentValue
	if segment == "" {
		segment = "Group A"
	}

	var status analysis.Status
	var verdict, actionability string
	if pValue < significanceLevel && effectSize > moderateEffect {
		status = analysis.StatusValidated
		verdict = fmt.Sprintf("Hypothesis validated: %s shows %.2f %s difference (p=%.3f, d=%.2f)",
			segment, diff, h.Metric, pValue, effectSize)
		action := "Optimize"
		if meanA > meanB {
			action = "Scale"
		}
		target := h.SegmentValue
		if target == "" {
			target = "this segment"
		}
		actionability = fmt.Sprintf("Statistically significant result. %s %s", action, target)
	} else {
		status = analysis.StatusRejected
		verdict = fmt.Sprintf("Hypothesis rejected: No significant difference found (p=%.3f, effect_size=%.2f)",
			pValue, effectSize)
		actionability = "Focus on other hypotheses with stronger evidence"
	}

	return analysis.ValidationResult{
		HypothesisID:    h.ID,
		Status:          status,
		ConfidenceScore: confidence,
		StatisticalTest: "independent t-test",
		PValue:          round(pValue, 4),
		EffectSize:      round(effectSize, 3),
		SupportingMetrics: map[string]float64{
			"group_a_mean":  round(meanA, 3),
			"group_b_mean":  round(meanB, 3),
			"difference":    round(diff, 3),
			"sample_size_a": float64(nA),
			"sample_size_b": float64(nB),
		},
		Verdict:       verdict,
		Actionability: actionability,
	}, nil
}

// confidenceScore combines significance, effect size and sample size into a
// [0,1] composite: 0.4*sig + 0.4*effect + 0.2*sample, rounded to 3 decimals.
func confidenceScore(pValue, effectSize float64, nA, nB int) float64 {
	var sig float64
	switch {
	case pValue < significanceLevel:
		sig = 1.0
	case pValue < weakSignificance:
		sig = 0.5
	}

	effect := 0.3
	switch {
	case effectSize > strongEffect:
		effect = 1.0
	case effectSize > moderateEffect:
		effect = 0.6
	}

	sample := 0.7
	minN := nA
	if nB < minN {
		minN = nB
	}
	if minN > largeSampleSize {
		sample = 1.0
	}

	return round(0.4*sig+0.4*effect+0.2*sample, 3)
}

// suggestFocusAreas proposes alternate angles when most hypotheses fall flat.
func suggestFocusAreas(results []analysis.ValidationResult) []string {
	rejected := 0
	for _, r := range results {
		if r.Status == analysis.StatusRejected {
			rejected++
		}
	}

	var suggestions []string
	if float64(rejected) > float64(len(results))/2 {
		suggestions = append(suggestions,
			"Consider different analytical dimensions (e.g., time-based, audience-based)",
			"Look for interaction effects between variables",
		)
	}
	return suggestions
}
