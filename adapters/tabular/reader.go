// Package tabular loads ad performance tables from CSV or Excel files and
// computes the aggregate data summary consumed by the generator agents.
package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"adinsight/domain/ads"
	"adinsight/domain/core"
	"adinsight/internal/telemetry"
)

var requiredColumns = []string{
	"date", "campaign_name", "creative_type", "platform", "country",
	"spend", "revenue", "impressions", "clicks", "purchases", "ctr", "roas",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// Loader reads CSV and XLSX ad performance files into datasets.
type Loader struct {
	sink telemetry.EventSink
}

// NewLoader creates a dataset loader reporting to the given event sink.
func NewLoader(sink telemetry.EventSink) *Loader {
	if sink == nil {
		sink = telemetry.Nop()
	}
	return &Loader{sink: sink}
}

// Load reads the file at path into a time-ordered dataset. The file type is
// inferred from the extension; anything that is not .xlsx is read as CSV.
func (l *Loader) Load(ctx context.Context, path string) (*ads.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, core.NewDataLoadError(path, err)
	}

	var records [][]string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = readExcelRecords(path)
	} else {
		records, err = readCSVRecords(path)
	}
	if err != nil {
		return nil, core.NewDataLoadError(path, err)
	}

	dataset, err := parseRecords(records)
	if err != nil {
		return nil, core.NewDataLoadError(path, err)
	}

	l.sink.Emit("DataAgent", "data_load_success", "success", telemetry.Fields{
		"file": path,
		"rows": dataset.Len(),
	})
	return dataset, nil
}

func readCSVRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readExcelRecords(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheet)
}

func parseRecords(records [][]string) (*ads.Dataset, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns %v", missing)
	}

	rows := make([]ads.Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return ads.NewDataset(rows), nil
}

func parseRow(rec []string, cols map[string]int) (ads.Row, error) {
	cell := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}
	num := func(name string) (float64, error) {
		raw := cell(name)
		if raw == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", name, err)
		}
		return v, nil
	}

	date, err := parseDate(cell("date"))
	if err != nil {
		return ads.Row{}, err
	}

	row := ads.Row{
		Date:            date,
		CampaignName:    cell("campaign_name"),
		CreativeType:    cell("creative_type"),
		Platform:        cell("platform"),
		Country:         cell("country"),
		CreativeMessage: cell("creative_message"),
	}

	numeric := []struct {
		name string
		dst  *float64
	}{
		{"spend", &row.Spend},
		{"revenue", &row.Revenue},
		{"impressions", &row.Impressions},
		{"clicks", &row.Clicks},
		{"purchases", &row.Purchases},
		{"ctr", &row.CTR},
		{"roas", &row.ROAS},
		{"cpc", &row.CPC},
	}
	for _, c := range numeric {
		v, err := num(c.name)
		if err != nil {
			return ads.Row{}, err
		}
		*c.dst = v
	}

	// Derive cost per click when the column is absent; a zero click count
	// divides by one to stay finite.
	if _, ok := cols["cpc"]; !ok {
		clicks := row.Clicks
		if clicks == 0 {
			clicks = 1
		}
		row.CPC = row.Spend / clicks
	}
	return row, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}
