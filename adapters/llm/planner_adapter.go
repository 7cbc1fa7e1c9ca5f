package llm

import (
	"context"
	"fmt"

	"adinsight/domain/core"
	"adinsight/domain/plan"
	"adinsight/internal/telemetry"
	"adinsight/ports"
)

const plannerAgent = "PlannerAgent"

// PlannerAdapter implements ports.PlannerPort over a text generator.
type PlannerAdapter struct {
	gen  ports.TextGenerator
	sink telemetry.EventSink
}

// NewPlannerAdapter creates a planner agent.
func NewPlannerAdapter(gen ports.TextGenerator, sink telemetry.EventSink) *PlannerAdapter {
	if sink == nil {
		sink = telemetry.Nop()
	}
	return &PlannerAdapter{gen: gen, sink: sink}
}

type taskPayload struct {
	TaskID        string   `json:"task_id"`
	Description   string   `json:"description"`
	AssignedAgent string   `json:"assigned_agent"`
	Dependencies  []string `json:"dependencies"`
	Status        string   `json:"status"`
}

type planPayload struct {
	Query            string        `json:"query"`
	Tasks            []taskPayload `json:"tasks"`
	Reasoning        string        `json:"reasoning"`
	ExpectedInsights []string      `json:"expected_insights"`
}

// Plan decomposes the query into a task plan.
func (p *PlannerAdapter) Plan(ctx context.Context, query string, dc plan.DataContext) (*plan.TaskPlan, error) {
	p.sink.Emit(plannerAgent, "plan_creation_start", "success", telemetry.Fields{"query": query})

	response, err := p.gen.Generate(ctx, plannerSystemPrompt, formatPlannerPrompt(query, dc))
	if err != nil {
		p.sink.Emit(plannerAgent, "llm_call_error", "error", telemetry.Fields{"error": err.Error()})
		return nil, fmt.Errorf("planner: %w", err)
	}

	var payload planPayload
	if err := decodeChecked(plannerAgent, response, []string{"query", "tasks", "reasoning"}, &payload); err != nil {
		p.sink.Emit(plannerAgent, "validation_error", "error", telemetry.Fields{"error": err.Error()})
		return nil, err
	}
	if len(payload.Tasks) == 0 {
		return nil, core.NewParseError(plannerAgent, fmt.Errorf("plan has no tasks"))
	}

	tasks := make([]plan.Task, 0, len(payload.Tasks))
	for i, t := range payload.Tasks {
		if t.TaskID == "" || t.Description == "" || t.AssignedAgent == "" {
			return nil, core.NewParseError(plannerAgent,
				fmt.Errorf("task %d missing task_id, description or assigned_agent", i))
		}
		status := t.Status
		if status == "" {
			status = "pending"
		}
		tasks = append(tasks, plan.Task{
			ID:            t.TaskID,
			Description:   t.Description,
			AssignedAgent: t.AssignedAgent,
			Dependencies:  t.Dependencies,
			Status:        status,
		})
	}

	p.sink.Emit(plannerAgent, "plan_creation_success", "success", telemetry.Fields{
		"num_tasks": len(tasks),
	})

	return &plan.TaskPlan{
		Query:            payload.Query,
		Tasks:            tasks,
		Reasoning:        payload.Reasoning,
		ExpectedInsights: payload.ExpectedInsights,
	}, nil
}
