package app

import (
	"context"
	"strings"
	"time"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
	"adinsight/domain/core"
	"adinsight/domain/plan"
	"adinsight/domain/report"
	"adinsight/internal/telemetry"
	"adinsight/ports"
)

// State names the orchestrator's position in the analysis loop.
type State string

const (
	StateLoadingData          State = "loading_data"
	StatePlanning             State = "planning"
	StateGeneratingHypotheses State = "generating_hypotheses"
	StateEvaluating           State = "evaluating"
	StateReplan               State = "replan"
	StateRecommending         State = "recommending"
	StateDone                 State = "done"
	StateExhausted            State = "exhausted"
)

const orchestratorName = "Orchestrator"

// DefaultMaxReplans bounds how many times the loop may circle back to
// hypothesis generation after a weak evaluation pass.
const DefaultMaxReplans = 2

// Orchestrator drives the multi-agent analysis loop: load, plan, generate,
// evaluate, optionally replan, recommend, report.
type Orchestrator struct {
	loader      ports.DatasetLoader
	summarizer  ports.DataSummaryPort
	planner     ports.PlannerPort
	generator   ports.GeneratorPort
	evaluator   ports.EvaluatorPort
	recommender ports.RecommenderPort

	sink       telemetry.EventSink
	maxReplans int
	now        func() time.Time
}

// OrchestratorConfig bundles the collaborators of a run loop.
type OrchestratorConfig struct {
	Loader      ports.DatasetLoader
	Summarizer  ports.DataSummaryPort
	Planner     ports.PlannerPort
	Generator   ports.GeneratorPort
	Evaluator   ports.EvaluatorPort
	Recommender ports.RecommenderPort
	Sink        telemetry.EventSink
	MaxReplans  int
}

// NewOrchestrator wires an analysis loop. MaxReplans < 0 selects the default.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	sink := cfg.Sink
	if sink == nil {
		sink = telemetry.Nop()
	}
	maxReplans := cfg.MaxReplans
	if maxReplans < 0 {
		maxReplans = DefaultMaxReplans
	}
	return &Orchestrator{
		loader:      cfg.Loader,
		summarizer:  cfg.Summarizer,
		planner:     cfg.Planner,
		generator:   cfg.Generator,
		evaluator:   cfg.Evaluator,
		recommender: cfg.Recommender,
		sink:        sink,
		maxReplans:  maxReplans,
		now:         time.Now,
	}
}

// RunResult carries the final report plus run-level traceability.
type RunResult struct {
	RunID  core.RunID
	Plan   *plan.TaskPlan
	Report *report.FinalReport
}

// Run answers one analytical question against the dataset at path.
//
// The loop makes up to maxReplans+1 passes. A pass whose evaluation flags
// NeedsReplan restarts generation with the evaluator's focus suggestions,
// unless the replan budget is spent, in which case the pass's results are
// carried forward to recommendation regardless.
func (o *Orchestrator) Run(ctx context.Context, query, dataPath string) (*RunResult, error) {
	runID := core.RunID(core.NewID())
	o.sink.Emit(orchestratorName, "run_start", "success", telemetry.Fields{
		"run_id": runID.String(),
		"query":  query,
	})

	var (
		taskPlan   *plan.TaskPlan
		dataset    *ads.Dataset
		summary    *ads.DataSummary
		batch      *analysis.EvaluationBatch
		hypotheses []analysis.Hypothesis
		focus      string
		passes     int
	)

	for pass := 0; pass <= o.maxReplans; pass++ {
		passes = pass + 1

		// Data is reloaded every pass so a replan sees fresh rows.
		o.transition(runID, StateLoadingData, pass)
		var err error
		dataset, err = o.loader.Load(ctx, dataPath)
		if err != nil {
			return nil, err
		}
		summary, err = o.summarizer.Summarize(ctx, dataPath)
		if err != nil {
			return nil, err
		}

		// The planner runs every pass, replan included. Later stages only
		// consume the plan for traceability, but a fresh pass gets a fresh
		// plan over the reloaded data.
		o.transition(runID, StatePlanning, pass)
		taskPlan, err = o.planner.Plan(ctx, query, dataContext(summary))
		if err != nil {
			return nil, err
		}

		o.transition(runID, StateGeneratingHypotheses, pass)
		gen, err := o.generator.GenerateHypotheses(ctx, query, summary, focus)
		if err != nil {
			return nil, err
		}
		hypotheses = gen.Hypotheses

		o.transition(runID, StateEvaluating, pass)
		batch = o.evaluator.Evaluate(ctx, hypotheses, dataset)

		if batch.NeedsReplan && pass < o.maxReplans {
			o.transition(runID, StateReplan, pass)
			o.sink.Emit(orchestratorName, "replan", "success", telemetry.Fields{
				"run_id": runID.String(),
				"pass":   pass,
				"reason": batch.ReplanReason,
			})
			focus = strings.Join(batch.SuggestedFocusAreas, "; ")
			continue
		}
		break
	}

	if batch == nil {
		o.transition(runID, StateExhausted, passes-1)
		return nil, core.NewReplanExhaustedError(passes, "no evaluation completed")
	}

	o.transition(runID, StateRecommending, passes-1)
	recs, err := o.recommender.Recommend(ctx, batch.ValidatedInsights, dataset)
	if err != nil {
		return nil, err
	}

	o.transition(runID, StateDone, passes-1)
	rep := AssembleReport(query, summary, hypotheses, batch, recs, passes, o.now())

	o.sink.Emit(orchestratorName, "run_complete", "success", telemetry.Fields{
		"run_id":       runID.String(),
		"iterations":   passes,
		"insights":     len(rep.KeyInsights),
		"success_rate": rep.ValidationSuccessRate,
	})

	return &RunResult{RunID: runID, Plan: taskPlan, Report: rep}, nil
}

func (o *Orchestrator) transition(runID core.RunID, state State, pass int) {
	o.sink.Emit(orchestratorName, "state_transition", "success", telemetry.Fields{
		"run_id": runID.String(),
		"state":  string(state),
		"pass":   pass,
	})
}

func dataContext(summary *ads.DataSummary) plan.DataContext {
	return plan.DataContext{
		StartDate:   summary.DateRange.Start,
		EndDate:     summary.DateRange.End,
		TotalSpend:  summary.TotalSpend,
		OverallROAS: summary.OverallROAS,
	}
}
