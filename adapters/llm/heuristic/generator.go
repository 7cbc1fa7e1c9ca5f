package heuristic

import (
	"context"
	"fmt"
	"sort"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
	"adinsight/ports"
)

const maxHypotheses = 5

// Generator creates hypotheses using algorithmic rules from summary
// statistics. It needs no model access, which makes it the offline fallback
// and the default generator in tests.
type Generator struct{}

// NewGenerator creates a new heuristic hypothesis generator
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateHypotheses derives segment hypotheses from the breakdown tables of
// the data summary: segments whose ROAS or CTR stands apart from the overall
// figures become testable claims.
func (g *Generator) GenerateHypotheses(ctx context.Context, query string, summary *ads.DataSummary, focusDimension string) (*ports.HypothesisGeneration, error) {
	if summary == nil {
		return nil, fmt.Errorf("heuristic generator: nil summary")
	}

	candidates := []candidate{}
	candidates = append(candidates, g.segmentCandidates(ads.DimensionCreativeType, summary.PerformanceByCreativeType, summary.OverallROAS)...)
	candidates = append(candidates, g.segmentCandidates(ads.DimensionPlatform, summary.PerformanceByPlatform, summary.OverallROAS)...)
	candidates = append(candidates, g.segmentCandidates(ads.DimensionCountry, summary.PerformanceByCountry, summary.OverallROAS)...)

	if focusDimension != "" {
		// Replanning pass: keep only candidates touching the flagged dimension,
		// falling back to the full set when nothing matches.
		focused := candidates[:0:0]
		for _, c := range candidates {
			if c.dimension == focusDimension {
				focused = append(focused, c)
			}
		}
		if len(focused) > 0 {
			candidates = focused
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].deviation > candidates[j].deviation
	})
	if len(candidates) > maxHypotheses {
		candidates = candidates[:maxHypotheses]
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("heuristic generator: summary yields no testable segments")
	}

	hyps := make([]analysis.Hypothesis, 0, len(candidates))
	for i, c := range candidates {
		hyps = append(hyps, c.toHypothesis(i+1))
	}

	return &ports.HypothesisGeneration{
		Hypotheses: hyps,
		Reasoning:  fmt.Sprintf("Derived %d hypotheses from segment-level ROAS deviations for: %s", len(hyps), query),
		Confidence: 0.5,
	}, nil
}

// candidate is a segment whose ROAS deviates enough from the overall figure
// to be worth a statistical test.
type candidate struct {
	dimension string
	value     string
	roas      float64
	overall   float64
	deviation float64
}

func (g *Generator) segmentCandidates(dimension string, byValue map[string]ads.DimensionStats, overallROAS float64) []candidate {
	if overallROAS <= 0 {
		return nil
	}
	values := make([]string, 0, len(byValue))
	for v := range byValue {
		values = append(values, v)
	}
	sort.Strings(values)

	out := []candidate{}
	for _, v := range values {
		st := byValue[v]
		deviation := (st.ROAS - overallROAS) / overallROAS
		if deviation < 0 {
			deviation = -deviation
		}
		// Ignore segments close to the mean; they will not validate anyway.
		if deviation < 0.15 {
			continue
		}
		out = append(out, candidate{
			dimension: dimension,
			value:     v,
			roas:      st.ROAS,
			overall:   overallROAS,
			deviation: deviation,
		})
	}
	return out
}

func (c candidate) toHypothesis(n int) analysis.Hypothesis {
	direction := analysis.DirectionIncrease
	adjective := "outperforms"
	if c.roas < c.overall {
		direction = analysis.DirectionDecrease
		adjective = "underperforms"
	}
	confidence := analysis.ConfidenceMedium
	if c.deviation > 0.5 {
		confidence = analysis.ConfidenceHigh
	}
	return analysis.Hypothesis{
		ID:                fmt.Sprintf("heuristic_h%d", n),
		Statement:         fmt.Sprintf("%s=%s %s the rest of the account on ROAS (%.2f vs %.2f overall)", c.dimension, c.value, adjective, c.roas, c.overall),
		Rationale:         fmt.Sprintf("Segment ROAS deviates %.0f%% from the overall mean", c.deviation*100),
		Metric:            ads.MetricROAS,
		ExpectedDirection: direction,
		SegmentDimension:  c.dimension,
		SegmentValue:      c.value,
		Confidence:        confidence,
		SupportingEvidence: []string{
			fmt.Sprintf("%s ROAS %.2f against overall %.2f", c.value, c.roas, c.overall),
		},
	}
}
