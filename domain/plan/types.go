package plan

// Task is one step in a task plan.
type Task struct {
	ID            string   `json:"task_id"`
	Description   string   `json:"description"`
	AssignedAgent string   `json:"assigned_agent"`
	Dependencies  []string `json:"dependencies,omitempty"`
	Status        string   `json:"status,omitempty"`
}

// TaskPlan is the planner's decomposition of a query. The plan is recorded
// for traceability; later pipeline steps do not consume it.
type TaskPlan struct {
	Query            string   `json:"query"`
	Tasks            []Task   `json:"tasks"`
	Reasoning        string   `json:"reasoning"`
	ExpectedInsights []string `json:"expected_insights,omitempty"`
}

// DataContext is the dataset framing handed to the planner.
type DataContext struct {
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	TotalSpend  float64 `json:"total_spend"`
	OverallROAS float64 `json:"overall_roas"`
}
