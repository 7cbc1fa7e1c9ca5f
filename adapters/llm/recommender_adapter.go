package llm

import (
	"context"
	"fmt"
	"time"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
	"adinsight/domain/core"
	"adinsight/domain/report"
	"adinsight/internal/telemetry"
	"adinsight/ports"
)

const recommenderAgent = "CreativeGeneratorAgent"

// RecommenderAdapter implements ports.RecommenderPort over a text generator.
type RecommenderAdapter struct {
	gen  ports.TextGenerator
	sink telemetry.EventSink
	now  func() time.Time
}

// NewRecommenderAdapter creates a creative recommendation agent.
func NewRecommenderAdapter(gen ports.TextGenerator, sink telemetry.EventSink) *RecommenderAdapter {
	if sink == nil {
		sink = telemetry.Nop()
	}
	return &RecommenderAdapter{gen: gen, sink: sink, now: time.Now}
}

type recommendationPayload struct {
	Recommendations []report.Recommendation `json:"recommendations"`
}

// Recommend turns validated insights and creative-level statistics into a
// ranked recommendation set. A run with insights must yield at least one
// recommendation; an empty set there is treated as a failure.
func (r *RecommenderAdapter) Recommend(ctx context.Context, insights []analysis.Insight, dataset *ads.Dataset) (*report.RecommendationSet, error) {
	r.sink.Emit(recommenderAgent, "recommendation_start", "success", telemetry.Fields{
		"num_insights": len(insights),
	})

	ca := analyzeCreatives(dataset)

	response, err := r.gen.Generate(ctx, recommenderSystemPrompt, formatRecommenderPrompt(insights, ca))
	if err != nil {
		r.sink.Emit(recommenderAgent, "llm_call_error", "error", telemetry.Fields{"error": err.Error()})
		return nil, fmt.Errorf("recommendation generation: %w", err)
	}

	var payload recommendationPayload
	if err := decodeChecked(recommenderAgent, response, []string{"recommendations"}, &payload); err != nil {
		r.sink.Emit(recommenderAgent, "validation_error", "error", telemetry.Fields{"error": err.Error()})
		return nil, err
	}

	if len(payload.Recommendations) == 0 && len(insights) > 0 {
		r.sink.Emit(recommenderAgent, "recommendation_empty", "error", nil)
		return nil, fmt.Errorf("%w: model returned none for %d insights", core.ErrNoRecommendations, len(insights))
	}
	for i, rec := range payload.Recommendations {
		if err := validateRecommendationFields(i, rec); err != nil {
			r.sink.Emit(recommenderAgent, "validation_error", "error", telemetry.Fields{"error": err.Error()})
			return nil, core.NewParseError(recommenderAgent, err)
		}
	}

	set := &report.RecommendationSet{
		AnalysisDate:    r.now(),
		TopPerformers:   ca.Top,
		Underperformers: ca.Bottom,
		WinningPatterns: ca.Winning,
		LosingPatterns:  ca.Losing,
		Recommendations: payload.Recommendations,
		OverallPerformance: report.CreativePerformance{
			AvgROASByType:   ca.AvgROASByType,
			BestSegment:     ca.BestSegment,
			CreativeFatigue: ca.Fatigue,
		},
	}

	r.sink.Emit(recommenderAgent, "recommendation_success", "success", telemetry.Fields{
		"num_recommendations": len(set.Recommendations),
	})
	return set, nil
}

func validateRecommendationFields(i int, rec report.Recommendation) error {
	if rec.ID == "" || rec.Action == "" {
		return fmt.Errorf("recommendation %d missing recommendation_id or action", i)
	}
	if !report.ValidRecommendationType(string(rec.Type)) {
		return fmt.Errorf("recommendation %q has unknown recommendation_type %q", rec.ID, rec.Type)
	}
	if rec.Rationale == "" {
		return fmt.Errorf("recommendation %q missing data_driven_rationale", rec.ID)
	}
	return nil
}
