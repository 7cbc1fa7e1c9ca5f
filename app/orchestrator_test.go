package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
	"adinsight/domain/core"
	"adinsight/domain/plan"
	"adinsight/domain/report"
	"adinsight/internal/telemetry"
	"adinsight/ports"
)

type stubLoader struct {
	dataset *ads.Dataset
	err     error
	calls   int
}

func (s *stubLoader) Load(ctx context.Context, path string) (*ads.Dataset, error) {
	s.calls++
	return s.dataset, s.err
}

type stubSummarizer struct {
	summary *ads.DataSummary
	err     error
}

func (s *stubSummarizer) Summarize(ctx context.Context, path string) (*ads.DataSummary, error) {
	return s.summary, s.err
}

type stubPlanner struct {
	plan  *plan.TaskPlan
	err   error
	calls int
}

func (s *stubPlanner) Plan(ctx context.Context, query string, dc plan.DataContext) (*plan.TaskPlan, error) {
	s.calls++
	return s.plan, s.err
}

type stubGenerator struct {
	err     error
	calls   int
	focuses []string
}

func (s *stubGenerator) GenerateHypotheses(ctx context.Context, query string, summary *ads.DataSummary, focus string) (*ports.HypothesisGeneration, error) {
	s.calls++
	s.focuses = append(s.focuses, focus)
	if s.err != nil {
		return nil, s.err
	}
	return &ports.HypothesisGeneration{
		Hypotheses: []analysis.Hypothesis{{ID: "h1", Statement: "stub", Metric: ads.MetricROAS}},
		Reasoning:  "stub",
		Confidence: 0.7,
	}, nil
}

// stubEvaluator returns NeedsReplan for the first replanUntil calls.
type stubEvaluator struct {
	replanUntil int
	calls       int
}

func (s *stubEvaluator) Evaluate(ctx context.Context, hyps []analysis.Hypothesis, ds *ads.Dataset) *analysis.EvaluationBatch {
	s.calls++
	batch := &analysis.EvaluationBatch{
		ValidationResults: []analysis.ValidationResult{{
			HypothesisID: "h1",
			Status:       analysis.StatusValidated,
		}},
		ValidatedInsights: []analysis.Insight{{ID: "insight_h1", Title: "stub insight"}},
	}
	if s.calls <= s.replanUntil {
		batch.NeedsReplan = true
		batch.ReplanReason = "not enough validated"
		batch.SuggestedFocusAreas = []string{"audience angles"}
	}
	return batch
}

type stubRecommender struct {
	set *report.RecommendationSet
	err error
}

func (s *stubRecommender) Recommend(ctx context.Context, insights []analysis.Insight, ds *ads.Dataset) (*report.RecommendationSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.set, nil
}

func testSummary() *ads.DataSummary {
	return &ads.DataSummary{
		TotalRows:   100,
		DateRange:   ads.DateRange{Start: "2025-01-01", End: "2025-03-31", Days: 90},
		TotalSpend:  10000,
		OverallROAS: 2.5,
	}
}

func testOrchestrator(gen *stubGenerator, eval *stubEvaluator, maxReplans int) (*Orchestrator, *stubLoader, *stubPlanner) {
	loader := &stubLoader{dataset: ads.NewDataset(nil)}
	planner := &stubPlanner{plan: &plan.TaskPlan{Query: "q", Tasks: []plan.Task{{ID: "t1"}}}}
	o := NewOrchestrator(OrchestratorConfig{
		Loader:      loader,
		Summarizer:  &stubSummarizer{summary: testSummary()},
		Planner:     planner,
		Generator:   gen,
		Evaluator:   eval,
		Recommender: &stubRecommender{set: &report.RecommendationSet{Recommendations: []report.Recommendation{{ID: "r1", Action: "scale video"}}}},
		Sink:        telemetry.Nop(),
		MaxReplans:  maxReplans,
	})
	return o, loader, planner
}

func TestRunSinglePassWhenEvaluationHolds(t *testing.T) {
	gen := &stubGenerator{}
	eval := &stubEvaluator{replanUntil: 0}
	o, loader, planner := testOrchestrator(gen, eval, 2)

	result, err := o.Run(context.Background(), "why did roas drop", "data.csv")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Report.TotalIterations != 1 {
		t.Errorf("expected 1 iteration, got %d", result.Report.TotalIterations)
	}
	if gen.calls != 1 || eval.calls != 1 || loader.calls != 1 {
		t.Errorf("unexpected call counts: gen=%d eval=%d load=%d", gen.calls, eval.calls, loader.calls)
	}
	if planner.calls != 1 {
		t.Errorf("expected planner to run once, got %d", planner.calls)
	}
	if result.Plan == nil {
		t.Error("expected task plan in result")
	}
}

func TestRunReplansUpToBudgetThenProceeds(t *testing.T) {
	gen := &stubGenerator{}
	eval := &stubEvaluator{replanUntil: 10} // always asks to replan
	o, loader, planner := testOrchestrator(gen, eval, 2)

	result, err := o.Run(context.Background(), "q", "data.csv")
	if err != nil {
		t.Fatalf("expected the final pass to proceed to recommendations, got %v", err)
	}
	// maxReplans=2 allows three passes; the third carries on regardless.
	if eval.calls != 3 {
		t.Errorf("expected 3 evaluation passes, got %d", eval.calls)
	}
	if result.Report.TotalIterations != 3 {
		t.Errorf("expected TotalIterations=3, got %d", result.Report.TotalIterations)
	}
	// Data reloads and the planner reruns on every pass.
	if loader.calls != 3 {
		t.Errorf("expected 3 dataset loads, got %d", loader.calls)
	}
	if planner.calls != 3 {
		t.Errorf("expected 3 planner calls, got %d", planner.calls)
	}
	// Replanned passes carry the evaluator's focus suggestions.
	if gen.focuses[0] != "" || gen.focuses[1] == "" || gen.focuses[2] == "" {
		t.Errorf("unexpected focus propagation: %q", gen.focuses)
	}
}

func TestRunAbortsOnGenerationParseError(t *testing.T) {
	gen := &stubGenerator{err: core.NewParseError("InsightGeneratorAgent", errors.New("bad json"))}
	eval := &stubEvaluator{}
	o, _, _ := testOrchestrator(gen, eval, 2)

	_, err := o.Run(context.Background(), "q", "data.csv")
	if !core.IsParseError(err) {
		t.Fatalf("expected generation parse error, got %v", err)
	}
	if eval.calls != 0 {
		t.Errorf("evaluation must not run after a parse failure, got %d calls", eval.calls)
	}
}

func TestRunAbortsOnDataLoadError(t *testing.T) {
	gen := &stubGenerator{}
	o, loader, _ := testOrchestrator(gen, &stubEvaluator{}, 2)
	loader.dataset = nil
	loader.err = core.NewDataLoadError("data.csv", errors.New("no such file"))

	_, err := o.Run(context.Background(), "q", "data.csv")
	if !core.IsDataLoadError(err) {
		t.Fatalf("expected data load error, got %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("generation must not run after a load failure, got %d calls", gen.calls)
	}
}

func TestRunSurfacesRecommenderFailure(t *testing.T) {
	gen := &stubGenerator{}
	eval := &stubEvaluator{}
	loader := &stubLoader{dataset: ads.NewDataset(nil)}
	o := NewOrchestrator(OrchestratorConfig{
		Loader:      loader,
		Summarizer:  &stubSummarizer{summary: testSummary()},
		Planner:     &stubPlanner{plan: &plan.TaskPlan{}},
		Generator:   gen,
		Evaluator:   eval,
		Recommender: &stubRecommender{err: core.ErrNoRecommendations},
		MaxReplans:  0,
	})

	_, err := o.Run(context.Background(), "q", "data.csv")
	if !errors.Is(err, core.ErrNoRecommendations) {
		t.Fatalf("expected ErrNoRecommendations, got %v", err)
	}
}

func TestRunEmitsStateTransitions(t *testing.T) {
	sink := &telemetry.CaptureSink{}
	gen := &stubGenerator{}
	o := NewOrchestrator(OrchestratorConfig{
		Loader:      &stubLoader{dataset: ads.NewDataset(nil)},
		Summarizer:  &stubSummarizer{summary: testSummary()},
		Planner:     &stubPlanner{plan: &plan.TaskPlan{}},
		Generator:   gen,
		Evaluator:   &stubEvaluator{},
		Recommender: &stubRecommender{set: &report.RecommendationSet{}},
		Sink:        sink,
		MaxReplans:  2,
	})

	if _, err := o.Run(context.Background(), "q", "data.csv"); err != nil {
		t.Fatalf("run: %v", err)
	}

	var states []string
	for _, e := range sink.Named("state_transition") {
		states = append(states, e.Fields["state"].(string))
	}
	want := []string{"loading_data", "planning", "generating_hypotheses", "evaluating", "recommending", "done"}
	if len(states) != len(want) {
		t.Fatalf("expected states %v, got %v", want, states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("state %d: expected %s, got %s", i, want[i], states[i])
		}
	}
}

func TestRunAssemblesReportFields(t *testing.T) {
	gen := &stubGenerator{}
	o, _, _ := testOrchestrator(gen, &stubEvaluator{}, 2)

	result, err := o.Run(context.Background(), "which creatives work", "data.csv")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	rep := result.Report
	if rep.OriginalQuery != "which creatives work" {
		t.Errorf("unexpected query %q", rep.OriginalQuery)
	}
	if rep.TotalHypothesesTested != 1 {
		t.Errorf("expected 1 hypothesis tested, got %d", rep.TotalHypothesesTested)
	}
	if rep.ValidationSuccessRate != 1.0 {
		t.Errorf("expected success rate 1.0, got %f", rep.ValidationSuccessRate)
	}
	if len(rep.Recommendations) != 1 {
		t.Errorf("expected 1 recommendation, got %d", len(rep.Recommendations))
	}
	if time.Since(rep.GeneratedAt) > time.Minute {
		t.Errorf("unexpected GeneratedAt %v", rep.GeneratedAt)
	}
}
