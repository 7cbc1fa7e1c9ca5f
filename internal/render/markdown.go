// Package render turns final reports into human-readable documents.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"adinsight/domain/report"
)

// Markdown renders a final report as a markdown document.
func Markdown(rep *report.FinalReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Advertising Performance Analysis\n\n")
	fmt.Fprintf(&b, "**Report:** %s  \n", rep.ReportID)
	fmt.Fprintf(&b, "**Generated:** %s  \n", rep.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Question:** %s\n\n", rep.OriginalQuery)

	fmt.Fprintf(&b, "## Executive Summary\n\n%s\n\n", rep.ExecutiveSummary)

	fmt.Fprintf(&b, "## Analysis Period\n\n%s to %s (%d days, %d rows)\n\n",
		rep.AnalysisPeriod.Start, rep.AnalysisPeriod.End, rep.AnalysisPeriod.Days, rep.DataSummary.TotalRows)

	if len(rep.KeyInsights) > 0 {
		b.WriteString("## Key Insights\n\n")
		for _, in := range rep.KeyInsights {
			fmt.Fprintf(&b, "### %s\n\n", in.Title)
			fmt.Fprintf(&b, "%s\n\n", in.Description)
			fmt.Fprintf(&b, "- Impact score: %.1f/10\n", in.ImpactScore)
			fmt.Fprintf(&b, "- Estimated revenue impact: %.2f\n", in.EstimatedRevenueImpact)
			fmt.Fprintf(&b, "- Urgency: %s\n", in.Urgency)
			fmt.Fprintf(&b, "- Evidence: p=%.4f, effect size %.3f\n\n", in.Validation.PValue, in.Validation.EffectSize)
		}
	}

	if len(rep.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		recs := append([]report.Recommendation(nil), rep.Recommendations...)
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].PriorityScore > recs[j].PriorityScore })
		for i, r := range recs {
			fmt.Fprintf(&b, "%d. **%s** (%s, priority %.1f)  \n", i+1, r.Action, r.Type, r.PriorityScore)
			fmt.Fprintf(&b, "   %s\n", r.Rationale)
			if r.CreativeType != "" || r.TargetPlatform != "" {
				fmt.Fprintf(&b, "   Target: %s / %s\n", r.CreativeType, r.TargetPlatform)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Validation Trail\n\n")
	fmt.Fprintf(&b, "%d hypotheses tested across %d iterations, %.0f%% validated.\n\n",
		rep.TotalHypothesesTested, rep.TotalIterations, rep.ValidationSuccessRate*100)
	b.WriteString("| Hypothesis | Status | p-value | Effect | Confidence |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, v := range rep.ValidationTrail {
		fmt.Fprintf(&b, "| %s | %s | %.4f | %.3f | %.3f |\n",
			v.HypothesisID, v.Status, v.PValue, v.EffectSize, v.ConfidenceScore)
	}
	b.WriteString("\n")

	if len(rep.DataSummary.Anomalies) > 0 {
		b.WriteString("## Anomalies\n\n")
		for _, a := range rep.DataSummary.Anomalies {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders a final report as a standalone HTML fragment.
func HTML(rep *report.FinalReport) []byte {
	doc := Markdown(rep)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(doc), p, renderer)
}
