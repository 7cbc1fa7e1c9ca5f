package ports

import (
	"context"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
	"adinsight/domain/plan"
	"adinsight/domain/report"
)

// DatasetLoader reads an ad performance table from disk.
// Fails with core.ErrDataLoad on unreadable or malformed input.
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*ads.Dataset, error)
}

// DataSummaryPort loads and summarizes a dataset.
// Fails with core.ErrDataLoad on unreadable or malformed input.
type DataSummaryPort interface {
	Summarize(ctx context.Context, path string) (*ads.DataSummary, error)
}

// PlannerPort decomposes a query into a task plan.
// Fails with core.ErrGenerationParse on malformed planner output.
type PlannerPort interface {
	Plan(ctx context.Context, query string, dc plan.DataContext) (*plan.TaskPlan, error)
}

// HypothesisGeneration is the hypothesis generator's full output.
type HypothesisGeneration struct {
	Hypotheses []analysis.Hypothesis `json:"hypotheses_generated"`
	Reasoning  string                `json:"reasoning"`
	Confidence float64               `json:"confidence_in_hypotheses"`
}

// GeneratorPort produces candidate hypotheses from a data summary.
// Fails with core.ErrGenerationParse when the underlying response cannot be
// parsed into valid hypotheses or is missing required fields.
type GeneratorPort interface {
	GenerateHypotheses(ctx context.Context, query string, summary *ads.DataSummary, focusDimension string) (*HypothesisGeneration, error)
}

// EvaluatorPort validates hypotheses against the dataset. It never fails as
// a whole: per-hypothesis failures degrade to needs_more_data results.
type EvaluatorPort interface {
	Evaluate(ctx context.Context, hypotheses []analysis.Hypothesis, dataset *ads.Dataset) *analysis.EvaluationBatch
}

// RecommenderPort produces ranked recommendations from validated insights.
// Fails with core.ErrGenerationParse on malformed structured output, or with
// core.ErrNoRecommendations when zero recommendations come back for a
// nonempty insight list.
type RecommenderPort interface {
	Recommend(ctx context.Context, insights []analysis.Insight, dataset *ads.Dataset) (*report.RecommendationSet, error)
}
