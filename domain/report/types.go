package report

import (
	"time"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
)

// RecommendationType categorizes the suggested action.
type RecommendationType string

const (
	RecommendationNewCreative      RecommendationType = "new_creative"
	RecommendationOptimizeExisting RecommendationType = "optimize_existing"
	RecommendationPauseCreative    RecommendationType = "pause_creative"
	RecommendationScaleCreative    RecommendationType = "scale_creative"
)

// ValidRecommendationType reports whether s is a known recommendation type.
func ValidRecommendationType(s string) bool {
	switch RecommendationType(s) {
	case RecommendationNewCreative, RecommendationOptimizeExisting,
		RecommendationPauseCreative, RecommendationScaleCreative:
		return true
	}
	return false
}

// Recommendation is one data-driven creative action.
type Recommendation struct {
	ID   string             `json:"recommendation_id"`
	Type RecommendationType `json:"recommendation_type"`

	Action         string `json:"action"`
	CreativeType   string `json:"creative_type"`
	TargetPlatform string `json:"target_platform"`

	Rationale           string             `json:"data_driven_rationale"`
	ExpectedImprovement map[string]float64 `json:"expected_improvement,omitempty"`

	ImplementationDetails map[string]string `json:"implementation_details,omitempty"`

	PriorityScore             float64 `json:"priority_score"`
	EstimatedBudgetAllocation float64 `json:"estimated_budget_allocation,omitempty"`

	ReferenceExamples []string `json:"reference_examples,omitempty"`
}

// PerformerSummary is one creative slice ranked by performance.
type PerformerSummary struct {
	CreativeType   string  `json:"creative_type"`
	Platform       string  `json:"platform"`
	MessagePreview string  `json:"message_preview"`
	ROAS           float64 `json:"roas"`
	Spend          float64 `json:"spend"`
	CTR            float64 `json:"ctr"`
}

// CreativePerformance summarizes the overall creative landscape.
type CreativePerformance struct {
	AvgROASByType   map[string]float64 `json:"avg_roas_by_type,omitempty"`
	BestSegment     string             `json:"best_performing_segment,omitempty"`
	CreativeFatigue bool               `json:"creative_fatigue_detected"`
}

// RecommendationSet is the recommendation generator's full output for one pass.
type RecommendationSet struct {
	AnalysisDate time.Time `json:"analysis_date"`

	TopPerformers   []PerformerSummary `json:"top_performing_creatives,omitempty"`
	Underperformers []PerformerSummary `json:"underperforming_creatives,omitempty"`

	WinningPatterns []string `json:"winning_patterns,omitempty"`
	LosingPatterns  []string `json:"losing_patterns,omitempty"`

	Recommendations []Recommendation `json:"recommendations"`

	OverallPerformance CreativePerformance `json:"overall_creative_performance"`
}

// FinalReport is the terminal artifact of one orchestrator run.
// Constructed exactly once at loop termination; immutable thereafter.
type FinalReport struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`

	OriginalQuery  string        `json:"original_query"`
	AnalysisPeriod ads.DateRange `json:"analysis_period"`

	ExecutiveSummary string                      `json:"executive_summary"`
	KeyInsights      []analysis.Insight          `json:"key_insights"`
	Recommendations  []Recommendation            `json:"creative_recommendations"`
	DataSummary      ads.DataSummary             `json:"data_summary"`
	ValidationTrail  []analysis.ValidationResult `json:"validation_results,omitempty"`

	TotalHypothesesTested int     `json:"total_hypotheses_tested"`
	ValidationSuccessRate float64 `json:"validation_success_rate"`
	TotalIterations       int     `json:"total_iterations"`
}
