package ads

// DateRange describes the analyzed time window.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// DimensionStats aggregates delivery metrics for one slice of a dimension.
type DimensionStats struct {
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Purchases   float64 `json:"purchases"`
	ROAS        float64 `json:"roas"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
}

// DataSummary is the data agent's aggregate view of one dataset load.
type DataSummary struct {
	TotalRows int       `json:"total_rows"`
	DateRange DateRange `json:"date_range"`
	Campaigns []string  `json:"campaigns"`

	TotalSpend   float64 `json:"total_spend"`
	TotalRevenue float64 `json:"total_revenue"`
	OverallROAS  float64 `json:"overall_roas"`

	PerformanceByCreativeType map[string]DimensionStats `json:"performance_by_creative_type"`
	PerformanceByPlatform     map[string]DimensionStats `json:"performance_by_platform"`
	PerformanceByCountry      map[string]DimensionStats `json:"performance_by_country"`

	Anomalies []string `json:"anomalies"`
}
