package tabular

import (
	"context"
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"

	"adinsight/domain/ads"
	"adinsight/internal/telemetry"
	"adinsight/ports"
)

// Anomaly detection thresholds over the 7 earliest/latest rows.
const (
	anomalyWindow  = 7
	roasDropFactor = 0.8
	ctrDropFactor  = 0.85
	lowROASBar     = 3.0
	budgetShareBar = 0.15
)

// Summarizer implements the data summary provider over a dataset loader.
type Summarizer struct {
	loader ports.DatasetLoader
	sink   telemetry.EventSink
}

// NewSummarizer creates a summarizer over the given loader.
func NewSummarizer(loader ports.DatasetLoader, sink telemetry.EventSink) *Summarizer {
	if sink == nil {
		sink = telemetry.Nop()
	}
	return &Summarizer{loader: loader, sink: sink}
}

// Summarize loads the dataset at path and computes its aggregate summary.
func (s *Summarizer) Summarize(ctx context.Context, path string) (*ads.DataSummary, error) {
	s.sink.Emit("DataAgent", "data_load_start", "success", telemetry.Fields{"file": path})

	dataset, err := s.loader.Load(ctx, path)
	if err != nil {
		s.sink.Emit("DataAgent", "data_load_error", "error", telemetry.Fields{"error": err.Error()})
		return nil, err
	}

	summary := BuildSummary(dataset)

	s.sink.Emit("DataAgent", "data_summary_ready", "success", telemetry.Fields{
		"rows":            summary.TotalRows,
		"campaigns":       len(summary.Campaigns),
		"anomalies_found": len(summary.Anomalies),
	})
	return summary, nil
}

// BuildSummary computes aggregate metrics, dimensional breakdowns and
// anomalies for a loaded dataset.
func BuildSummary(dataset *ads.Dataset) *ads.DataSummary {
	totalSpend := dataset.TotalSpend()
	totalRevenue := dataset.TotalRevenue()

	overallROAS := 0.0
	if totalSpend > 0 {
		overallROAS = roundTo(totalRevenue/totalSpend, 2)
	}

	start, end := dataset.DateRange()
	days := 0
	if dataset.Len() > 0 {
		days = int(end.Sub(start).Hours()/24) + 1
	}

	return &ads.DataSummary{
		TotalRows: dataset.Len(),
		DateRange: ads.DateRange{
			Start: start.Format("2006-01-02"),
			End:   end.Format("2006-01-02"),
			Days:  days,
		},
		Campaigns:                 dataset.Campaigns(),
		TotalSpend:                roundTo(totalSpend, 2),
		TotalRevenue:              roundTo(totalRevenue, 2),
		OverallROAS:               overallROAS,
		PerformanceByCreativeType: aggregateByDimension(dataset, ads.DimensionCreativeType),
		PerformanceByPlatform:     aggregateByDimension(dataset, ads.DimensionPlatform),
		PerformanceByCountry:      aggregateByDimension(dataset, ads.DimensionCountry),
		Anomalies:                 detectAnomalies(dataset),
	}
}

func aggregateByDimension(dataset *ads.Dataset, dimension string) map[string]ads.DimensionStats {
	out := make(map[string]ads.DimensionStats)
	for _, row := range dataset.Rows {
		value, err := row.Dimension(dimension)
		if err != nil {
			continue
		}
		agg := out[value]
		agg.Spend += row.Spend
		agg.Revenue += row.Revenue
		agg.Impressions += row.Impressions
		agg.Clicks += row.Clicks
		agg.Purchases += row.Purchases
		out[value] = agg
	}

	for value, agg := range out {
		if agg.Spend > 0 {
			agg.ROAS = roundTo(agg.Revenue/agg.Spend, 3)
		}
		if agg.Impressions > 0 {
			agg.CTR = roundTo(agg.Clicks/agg.Impressions*100, 3)
		}
		if agg.Clicks > 0 {
			agg.CPC = roundTo(agg.Spend/agg.Clicks, 3)
		}
		agg.Spend = roundTo(agg.Spend, 3)
		agg.Revenue = roundTo(agg.Revenue, 3)
		out[value] = agg
	}
	return out
}

// detectAnomalies flags ROAS/CTR decay between the earliest and latest rows
// and creative types that burn budget without returning it.
func detectAnomalies(dataset *ads.Dataset) []string {
	anomalies := []string{}
	if dataset.Len() == 0 {
		return anomalies
	}

	previousROAS := windowMean(dataset.Rows[:min(anomalyWindow, dataset.Len())], ads.MetricROAS)
	recentROAS := windowMean(dataset.Rows[max(0, dataset.Len()-anomalyWindow):], ads.MetricROAS)
	if previousROAS > 0 && recentROAS < previousROAS*roasDropFactor {
		anomalies = append(anomalies, fmt.Sprintf(
			"ROAS dropped %.1f%% in recent 7 days (%.2f -> %.2f)",
			(previousROAS-recentROAS)/previousROAS*100, previousROAS, recentROAS))
	}

	previousCTR := windowMean(dataset.Rows[:min(anomalyWindow, dataset.Len())], ads.MetricCTR)
	recentCTR := windowMean(dataset.Rows[max(0, dataset.Len()-anomalyWindow):], ads.MetricCTR)
	if previousCTR > 0 && recentCTR < previousCTR*ctrDropFactor {
		anomalies = append(anomalies, fmt.Sprintf(
			"CTR declined %.1f%% in recent period (%.2f%% -> %.2f%%)",
			(previousCTR-recentCTR)/previousCTR*100, previousCTR, recentCTR))
	}

	totalSpend := dataset.TotalSpend()
	if totalSpend > 0 {
		for creativeType, agg := range aggregateSpendROAS(dataset) {
			if agg.meanROAS < lowROASBar && agg.spend > totalSpend*budgetShareBar {
				anomalies = append(anomalies, fmt.Sprintf(
					"%s creatives consuming %.1f%% of budget but ROAS only %.2f",
					creativeType, agg.spend/totalSpend*100, agg.meanROAS))
			}
		}
	}
	return anomalies
}

type spendROAS struct {
	spend    float64
	meanROAS float64
}

func aggregateSpendROAS(dataset *ads.Dataset) map[string]spendROAS {
	spend := make(map[string]float64)
	roas := make(map[string][]float64)
	for _, row := range dataset.Rows {
		spend[row.CreativeType] += row.Spend
		roas[row.CreativeType] = append(roas[row.CreativeType], row.ROAS)
	}

	out := make(map[string]spendROAS, len(spend))
	for creativeType, values := range roas {
		mean, _ := mstats.Mean(values)
		out[creativeType] = spendROAS{spend: spend[creativeType], meanROAS: mean}
	}
	return out
}

func windowMean(rows []ads.Row, metric string) float64 {
	values, err := ads.MetricValues(rows, metric)
	if err != nil || len(values) == 0 {
		return 0
	}
	mean, _ := mstats.Mean(values)
	return mean
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
