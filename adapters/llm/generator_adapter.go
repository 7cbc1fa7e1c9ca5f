package llm

import (
	"context"
	"fmt"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
	"adinsight/domain/core"
	"adinsight/internal/telemetry"
	"adinsight/ports"
)

const generatorAgent = "InsightGeneratorAgent"

const defaultGenerationConfidence = 0.7

// GeneratorAdapter implements ports.GeneratorPort over a text generator.
type GeneratorAdapter struct {
	gen  ports.TextGenerator
	sink telemetry.EventSink
}

// NewGeneratorAdapter creates a hypothesis generation agent.
func NewGeneratorAdapter(gen ports.TextGenerator, sink telemetry.EventSink) *GeneratorAdapter {
	if sink == nil {
		sink = telemetry.Nop()
	}
	return &GeneratorAdapter{gen: gen, sink: sink}
}

type generationPayload struct {
	Hypotheses []analysis.Hypothesis `json:"hypotheses_generated"`
	Reasoning  string                `json:"reasoning"`
	Confidence *float64              `json:"confidence_in_hypotheses"`
}

// GenerateHypotheses asks the model for testable hypotheses grounded in the
// data summary. focusDimension steers a replanning pass toward segments the
// evaluator flagged; it is empty on the first pass.
func (g *GeneratorAdapter) GenerateHypotheses(ctx context.Context, query string, summary *ads.DataSummary, focusDimension string) (*ports.HypothesisGeneration, error) {
	g.sink.Emit(generatorAgent, "hypothesis_generation_start", "success", telemetry.Fields{
		"query": query,
		"focus": focusDimension,
	})

	response, err := g.gen.Generate(ctx, generatorSystemPrompt, formatGeneratorPrompt(query, summary, focusDimension))
	if err != nil {
		g.sink.Emit(generatorAgent, "llm_call_error", "error", telemetry.Fields{"error": err.Error()})
		return nil, fmt.Errorf("hypothesis generation: %w", err)
	}

	var payload generationPayload
	if err := decodeChecked(generatorAgent, response, []string{"hypotheses_generated", "reasoning"}, &payload); err != nil {
		g.sink.Emit(generatorAgent, "validation_error", "error", telemetry.Fields{"error": err.Error()})
		return nil, err
	}
	if len(payload.Hypotheses) == 0 {
		return nil, core.NewParseError(generatorAgent, fmt.Errorf("no hypotheses generated"))
	}

	for i, h := range payload.Hypotheses {
		if err := validateHypothesisFields(i, h); err != nil {
			g.sink.Emit(generatorAgent, "validation_error", "error", telemetry.Fields{"error": err.Error()})
			return nil, core.NewParseError(generatorAgent, err)
		}
	}

	confidence := defaultGenerationConfidence
	if payload.Confidence != nil {
		confidence = *payload.Confidence
	}

	g.sink.Emit(generatorAgent, "hypothesis_generation_success", "success", telemetry.Fields{
		"num_hypotheses": len(payload.Hypotheses),
		"confidence":     confidence,
	})

	return &ports.HypothesisGeneration{
		Hypotheses: payload.Hypotheses,
		Reasoning:  payload.Reasoning,
		Confidence: confidence,
	}, nil
}

func validateHypothesisFields(i int, h analysis.Hypothesis) error {
	if h.ID == "" || h.Statement == "" || h.Rationale == "" {
		return fmt.Errorf("hypothesis %d missing hypothesis_id, statement or rationale", i)
	}
	if h.Metric == "" {
		return fmt.Errorf("hypothesis %q missing metric_to_test", h.ID)
	}
	if !analysis.ValidDirection(string(h.ExpectedDirection)) {
		return fmt.Errorf("hypothesis %q has unknown expected_direction %q", h.ID, h.ExpectedDirection)
	}
	if !analysis.ValidConfidenceLevel(string(h.Confidence)) {
		return fmt.Errorf("hypothesis %q has unknown confidence %q", h.ID, h.Confidence)
	}
	return nil
}
