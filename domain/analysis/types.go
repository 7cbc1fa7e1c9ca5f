package analysis

// Status is the outcome of validating a single hypothesis.
type Status string

const (
	StatusValidated     Status = "validated"
	StatusRejected      Status = "rejected"
	StatusNeedsMoreData Status = "needs_more_data"
)

// Direction is the expected movement of the target metric.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionChange   Direction = "change"
)

// ValidDirection reports whether s is a known direction label.
func ValidDirection(s string) bool {
	switch Direction(s) {
	case DirectionIncrease, DirectionDecrease, DirectionChange:
		return true
	}
	return false
}

// ConfidenceLevel is the generator's a-priori confidence label.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ValidConfidenceLevel reports whether s is a known confidence label.
func ValidConfidenceLevel(s string) bool {
	switch ConfidenceLevel(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Hypothesis is a testable claim about ad performance. Immutable once generated.
type Hypothesis struct {
	ID        string `json:"hypothesis_id"`
	Statement string `json:"statement"`
	Rationale string `json:"rationale"`

	// What to test
	Metric            string    `json:"metric_to_test"`
	ExpectedDirection Direction `json:"expected_direction"`

	// Optional segmentation; both empty means a positional time split.
	SegmentDimension string `json:"segment_dimension,omitempty"`
	SegmentValue     string `json:"segment_value,omitempty"`

	Confidence         ConfidenceLevel `json:"confidence"`
	SupportingEvidence []string        `json:"supporting_evidence,omitempty"`
}

// ValidationResult is the evaluator's verdict on one hypothesis.
// Created exactly once per hypothesis per evaluation pass; never mutated.
type ValidationResult struct {
	HypothesisID    string  `json:"hypothesis_id"`
	Status          Status  `json:"status"`
	ConfidenceScore float64 `json:"confidence_score"`

	StatisticalTest string  `json:"statistical_test,omitempty"`
	PValue          float64 `json:"p_value"`
	EffectSize      float64 `json:"effect_size"`

	SupportingMetrics map[string]float64 `json:"supporting_metrics,omitempty"`
	Counterevidence   []string           `json:"counterevidence,omitempty"`

	Verdict       string `json:"verdict"`
	Actionability string `json:"actionability"`
}

// Insight is a validated hypothesis enriched with business impact estimates.
// Owned by the iteration that produced it.
type Insight struct {
	ID          string `json:"insight_id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	Hypothesis Hypothesis       `json:"hypothesis"`
	Validation ValidationResult `json:"validation"`

	ImpactScore            float64 `json:"impact_score"`
	EstimatedRevenueImpact float64 `json:"estimated_revenue_impact"`

	Category string `json:"category"`
	Urgency  string `json:"urgency"`

	PeriodStart       string   `json:"period_start"`
	PeriodEnd         string   `json:"period_end"`
	AffectedCampaigns []string `json:"affected_campaigns,omitempty"`
}

// EvaluationBatch is one evaluation pass over a hypothesis set.
// Invariant: len(ValidatedInsights) == number of results with StatusValidated.
type EvaluationBatch struct {
	ValidationResults   []ValidationResult `json:"validation_results"`
	ValidatedInsights   []Insight          `json:"validated_insights"`
	RejectedHypotheses  []string           `json:"rejected_hypotheses"`
	NeedsReplan         bool               `json:"needs_replan"`
	ReplanReason        string             `json:"replan_reason,omitempty"`
	SuggestedFocusAreas []string           `json:"suggested_focus_areas,omitempty"`
}

// ValidatedCount counts results with StatusValidated.
func (b *EvaluationBatch) ValidatedCount() int {
	n := 0
	for _, r := range b.ValidationResults {
		if r.Status == StatusValidated {
			n++
		}
	}
	return n
}
