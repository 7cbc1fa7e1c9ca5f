package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"adinsight/domain/ads"
	"adinsight/domain/analysis"
	"adinsight/domain/plan"
)

const plannerSystemPrompt = `You are a strategic planning agent for advertising performance analysis.
You decompose analytical questions into ordered task plans for a team of
specialized agents (data, insight, evaluator, creative). Respond with a single
JSON object and nothing else.`

const generatorSystemPrompt = `You are an insight generation agent for advertising performance data.
You propose specific, statistically testable hypotheses that explain
performance patterns. Every hypothesis must name a metric and, where
applicable, a segment dimension and value present in the data. Respond with a
single JSON object and nothing else.`

const recommenderSystemPrompt = `You are a creative strategy agent for paid social advertising.
Given validated performance insights and creative-level statistics, you
produce concrete, prioritized creative recommendations. Respond with a single
JSON object and nothing else.`

func formatPlannerPrompt(query string, dc plan.DataContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analytical question: %s\n\n", query)
	fmt.Fprintf(&b, "Dataset context:\n- period: %s to %s\n- total spend: %.2f\n- overall ROAS: %.2f\n\n",
		dc.StartDate, dc.EndDate, dc.TotalSpend, dc.OverallROAS)
	b.WriteString(`Produce a task plan as JSON with this shape:
{
  "query": "<the question>",
  "tasks": [{"task_id": "t1", "description": "...", "assigned_agent": "data|insight|evaluator|creative", "dependencies": []}],
  "reasoning": "why this plan",
  "expected_insights": ["..."]
}`)
	return b.String()
}

func formatGeneratorPrompt(query string, summary *ads.DataSummary, focusDimension string) string {
	summaryJSON, _ := json.MarshalIndent(summary, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Analytical question: %s\n\n", query)
	fmt.Fprintf(&b, "Focus: %s\n\n", focusDimension)
	fmt.Fprintf(&b, "Data summary:\n%s\n\n", summaryJSON)
	b.WriteString(`Generate 3-5 testable hypotheses as JSON with this shape:
{
  "hypotheses_generated": [
    {
      "hypothesis_id": "h1",
      "statement": "clear testable claim",
      "rationale": "why this matters",
      "metric_to_test": "roas|ctr|cpc|spend|revenue|impressions|clicks|purchases",
      "expected_direction": "increase|decrease|change",
      "segment_dimension": "creative_type|platform|country|campaign_name (optional)",
      "segment_value": "specific value (optional)",
      "confidence": "high|medium|low",
      "supporting_evidence": ["..."]
    }
  ],
  "reasoning": "overall reasoning",
  "confidence_in_hypotheses": 0.7
}`)
	return b.String()
}

func formatRecommenderPrompt(insights []analysis.Insight, ca creativeAnalysis) string {
	insightsJSON, _ := json.MarshalIndent(insights, "", "  ")
	topJSON, _ := json.MarshalIndent(ca.Top, "", "  ")
	bottomJSON, _ := json.MarshalIndent(ca.Bottom, "", "  ")
	budgetJSON, _ := json.MarshalIndent(ca.SpendByCreativeType, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Validated insights:\n%s\n\n", insightsJSON)
	fmt.Fprintf(&b, "Top performing creatives:\n%s\n\n", topJSON)
	fmt.Fprintf(&b, "Underperforming creatives:\n%s\n\n", bottomJSON)
	fmt.Fprintf(&b, "Total spend: %.2f\nSpend by creative type:\n%s\n\n", ca.TotalSpend, budgetJSON)
	if len(ca.Winning) > 0 {
		fmt.Fprintf(&b, "Winning patterns: %s\n", strings.Join(ca.Winning, "; "))
	}
	if len(ca.Losing) > 0 {
		fmt.Fprintf(&b, "Losing patterns: %s\n", strings.Join(ca.Losing, "; "))
	}
	b.WriteString(`
Produce ranked creative recommendations as JSON with this shape:
{
  "recommendations": [
    {
      "recommendation_id": "r1",
      "recommendation_type": "new_creative|optimize_existing|pause_creative|scale_creative",
      "action": "specific action to take",
      "creative_type": "Image|Video|UGC|Carousel",
      "target_platform": "Facebook|Instagram",
      "data_driven_rationale": "data evidence supporting this",
      "expected_improvement": {"roas": 1.2},
      "implementation_details": {"copy_angle": "..."},
      "priority_score": 8.5,
      "estimated_budget_allocation": 0.0,
      "reference_examples": []
    }
  ]
}`)
	return b.String()
}
