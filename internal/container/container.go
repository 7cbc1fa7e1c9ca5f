// Package container wires application dependencies from configuration.
package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"adinsight/adapters/llm"
	"adinsight/adapters/llm/heuristic"
	"adinsight/adapters/postgres"
	"adinsight/adapters/stats"
	"adinsight/adapters/tabular"
	"adinsight/app"
	"adinsight/internal"
	"adinsight/internal/config"
	"adinsight/internal/telemetry"
	"adinsight/ports"
)

// Container holds all application dependencies and manages their lifecycle.
type Container struct {
	Config *config.Config
	Logger *internal.Logger
	Sink   telemetry.EventSink

	// Infrastructure
	DB         *sqlx.DB
	ReportRepo ports.ReportRepository

	// Agents
	Loader      ports.DatasetLoader
	Summarizer  ports.DataSummaryPort
	Planner     ports.PlannerPort
	Generator   ports.GeneratorPort
	Evaluator   ports.EvaluatorPort
	Recommender ports.RecommenderPort

	Orchestrator *app.Orchestrator
}

// New builds the agent graph from configuration. When the Anthropic key is
// absent the heuristic generator fills the Generator port but the planner
// and recommender stay nil, so no Orchestrator is built. Full analysis runs
// require the key; callers holding a keyless container get the data, stats
// and generation ports only.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewDefaultLogger()
	sink := telemetry.NewLogSink(logger)

	c := &Container{
		Config: cfg,
		Logger: logger,
		Sink:   sink,
	}

	c.Loader = tabular.NewLoader(sink)
	c.Summarizer = tabular.NewSummarizer(c.Loader, sink)
	c.Evaluator = stats.NewEvaluator(sink)

	if cfg.AI.AnthropicKey != "" {
		client, err := llm.NewAnthropicClient(llm.Config{
			APIKey:      cfg.AI.AnthropicKey,
			Model:       cfg.AI.Model,
			MaxTokens:   cfg.AI.MaxTokens,
			Temperature: cfg.AI.Temperature,
			MaxRetries:  cfg.AI.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create text generation client: %w", err)
		}
		c.Planner = llm.NewPlannerAdapter(client, sink)
		c.Generator = llm.NewGeneratorAdapter(client, sink)
		c.Recommender = llm.NewRecommenderAdapter(client, sink)
	} else {
		c.Generator = heuristic.NewGenerator()
	}

	if c.Planner != nil && c.Recommender != nil {
		c.Orchestrator = app.NewOrchestrator(app.OrchestratorConfig{
			Loader:      c.Loader,
			Summarizer:  c.Summarizer,
			Planner:     c.Planner,
			Generator:   c.Generator,
			Evaluator:   c.Evaluator,
			Recommender: c.Recommender,
			Sink:        sink,
			MaxReplans:  cfg.Workflow.MaxReplans,
		})
	}

	return c, nil
}

// InitWithDatabase connects the optional report ledger.
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}
	c.DB = db
	c.ReportRepo = postgres.NewReportRepository(db)
	return nil
}

// Shutdown gracefully releases held resources.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
