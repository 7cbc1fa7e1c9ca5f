package ads

import (
	"fmt"
	"sort"
	"time"

	"adinsight/domain/core"
)

// Metric column names understood by the analysis layer.
const (
	MetricSpend       = "spend"
	MetricRevenue     = "revenue"
	MetricImpressions = "impressions"
	MetricClicks      = "clicks"
	MetricPurchases   = "purchases"
	MetricCTR         = "ctr"
	MetricROAS        = "roas"
	MetricCPC         = "cpc"
)

// Dimension column names usable for segmentation.
const (
	DimensionCampaign        = "campaign_name"
	DimensionCreativeType    = "creative_type"
	DimensionPlatform        = "platform"
	DimensionCountry         = "country"
	DimensionCreativeMessage = "creative_message"
)

// Row is one observation of ad delivery: a single campaign/creative/day cell.
type Row struct {
	Date            time.Time `json:"date"`
	CampaignName    string    `json:"campaign_name"`
	CreativeType    string    `json:"creative_type"`
	Platform        string    `json:"platform"`
	Country         string    `json:"country"`
	CreativeMessage string    `json:"creative_message"`
	Spend           float64   `json:"spend"`
	Revenue         float64   `json:"revenue"`
	Impressions     float64   `json:"impressions"`
	Clicks          float64   `json:"clicks"`
	Purchases       float64   `json:"purchases"`
	CTR             float64   `json:"ctr"`
	ROAS            float64   `json:"roas"`
	CPC             float64   `json:"cpc"`
}

// Metric returns the named numeric column of the row.
func (r Row) Metric(name string) (float64, error) {
	switch name {
	case MetricSpend:
		return r.Spend, nil
	case MetricRevenue:
		return r.Revenue, nil
	case MetricImpressions:
		return r.Impressions, nil
	case MetricClicks:
		return r.Clicks, nil
	case MetricPurchases:
		return r.Purchases, nil
	case MetricCTR:
		return r.CTR, nil
	case MetricROAS:
		return r.ROAS, nil
	case MetricCPC:
		return r.CPC, nil
	default:
		return 0, fmt.Errorf("%w: %q", core.ErrUnknownMetric, name)
	}
}

// Dimension returns the named categorical column of the row.
func (r Row) Dimension(name string) (string, error) {
	switch name {
	case DimensionCampaign:
		return r.CampaignName, nil
	case DimensionCreativeType:
		return r.CreativeType, nil
	case DimensionPlatform:
		return r.Platform, nil
	case DimensionCountry:
		return r.Country, nil
	case DimensionCreativeMessage:
		return r.CreativeMessage, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnknownDimension, name)
	}
}

// Dataset is an in-memory ad performance table, ordered by date ascending.
// It is treated as read-only by every agent.
type Dataset struct {
	Rows []Row
}

// NewDataset builds a dataset and establishes the time ordering invariant.
func NewDataset(rows []Row) *Dataset {
	ds := &Dataset{Rows: rows}
	sort.SliceStable(ds.Rows, func(i, j int) bool {
		return ds.Rows[i].Date.Before(ds.Rows[j].Date)
	})
	return ds
}

// Len returns the row count.
func (d *Dataset) Len() int { return len(d.Rows) }

// TotalSpend sums the spend column.
func (d *Dataset) TotalSpend() float64 {
	var total float64
	for _, r := range d.Rows {
		total += r.Spend
	}
	return total
}

// TotalRevenue sums the revenue column.
func (d *Dataset) TotalRevenue() float64 {
	var total float64
	for _, r := range d.Rows {
		total += r.Revenue
	}
	return total
}

// DistinctDays counts unique calendar dates in the dataset.
func (d *Dataset) DistinctDays() int {
	seen := make(map[string]struct{}, len(d.Rows))
	for _, r := range d.Rows {
		seen[r.Date.Format("2006-01-02")] = struct{}{}
	}
	return len(seen)
}

// Campaigns returns distinct campaign names in first-seen order.
func (d *Dataset) Campaigns() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.Rows {
		if _, ok := seen[r.CampaignName]; ok {
			continue
		}
		seen[r.CampaignName] = struct{}{}
		out = append(out, r.CampaignName)
	}
	return out
}

// DateRange returns the first and last dates. Zero times when empty.
func (d *Dataset) DateRange() (start, end time.Time) {
	if len(d.Rows) == 0 {
		return time.Time{}, time.Time{}
	}
	return d.Rows[0].Date, d.Rows[len(d.Rows)-1].Date
}

// SplitByDimension partitions rows into those matching value on the given
// dimension and all others.
func (d *Dataset) SplitByDimension(dimension, value string) (match, rest []Row, err error) {
	for _, r := range d.Rows {
		v, derr := r.Dimension(dimension)
		if derr != nil {
			return nil, nil, derr
		}
		if v == value {
			match = append(match, r)
		} else {
			rest = append(rest, r)
		}
	}
	return match, rest, nil
}

// SplitByMidpoint partitions the time-ordered rows into first and second halves.
func (d *Dataset) SplitByMidpoint() (first, second []Row) {
	mid := len(d.Rows) / 2
	return d.Rows[:mid], d.Rows[mid:]
}

// MetricValues extracts the named metric from a slice of rows.
func MetricValues(rows []Row, metric string) ([]float64, error) {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		v, err := r.Metric(metric)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
