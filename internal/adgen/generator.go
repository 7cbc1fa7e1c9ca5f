// Package adgen produces deterministic synthetic ad performance datasets for
// local development and tests.
package adgen

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"adinsight/domain/ads"
)

// Config controls the shape of the generated dataset.
type Config struct {
	Days      int
	Seed      int64
	StartDate time.Time

	// Planted signals the analysis loop should recover.
	VideoROASBoost  float64 // multiplicative ROAS edge for Video creatives
	FatigueOnset    int     // day index where CTR starts decaying
	FatigueDailyPct float64 // per-day CTR decay after onset
}

// DefaultConfig returns the canonical generation parameters.
func DefaultConfig() Config {
	return Config{
		Days:            90,
		Seed:            42,
		StartDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		VideoROASBoost:  1.6,
		FatigueOnset:    60,
		FatigueDailyPct: 0.01,
	}
}

var (
	campaigns = []string{"Spring_Sale", "Brand_Awareness", "Retargeting_Q1", "New_Collection"}

	creativeTypes = []string{"Image", "Video", "UGC", "Carousel"}
	platforms     = []string{"Facebook", "Instagram"}
	countries     = []string{"US", "GB", "DE"}

	messages = map[string]string{
		"Image":    "Shop the looks everyone is talking about this season",
		"Video":    "See it in action: 30 seconds to your new favorite",
		"UGC":      "Real customers, real results, zero filters",
		"Carousel": "Swipe through the collection and pick your style",
	}
)

// Generate builds one row per (day, campaign, creative_type, platform) cell.
// Output is deterministic for a given config.
func Generate(cfg Config) (*ads.Dataset, error) {
	if cfg.Days <= 0 {
		return nil, fmt.Errorf("days must be > 0")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	var rows []ads.Row
	for d := 0; d < cfg.Days; d++ {
		date := cfg.StartDate.AddDate(0, 0, d)
		weekendLift := 1.0
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekendLift = 1.3
		}

		for _, campaign := range campaigns {
			for _, creativeType := range creativeTypes {
				for _, platform := range platforms {
					country := countries[rng.Intn(len(countries))]

					spend := (80 + rng.Float64()*220) * weekendLift
					impressions := spend * (400 + rng.Float64()*200)

					ctr := 0.012 + rng.NormFloat64()*0.002
					if creativeType == "UGC" {
						ctr *= 1.25
					}
					if d >= cfg.FatigueOnset {
						ctr *= math.Pow(1-cfg.FatigueDailyPct, float64(d-cfg.FatigueOnset))
					}
					ctr = math.Max(ctr, 0.001)

					clicks := impressions * ctr
					purchases := clicks * (0.02 + rng.Float64()*0.02)

					roas := 2.0 + rng.NormFloat64()*0.6
					if creativeType == "Video" {
						roas *= cfg.VideoROASBoost
					}
					if platform == "Instagram" && creativeType == "UGC" {
						roas *= 1.2
					}
					roas = math.Max(roas, 0.2)
					revenue := spend * roas

					cpc := 0.0
					if clicks > 0 {
						cpc = spend / clicks
					}

					rows = append(rows, ads.Row{
						Date:            date,
						CampaignName:    campaign,
						CreativeType:    creativeType,
						Platform:        platform,
						Country:         country,
						CreativeMessage: messages[creativeType],
						Spend:           round2(spend),
						Revenue:         round2(revenue),
						Impressions:     math.Round(impressions),
						Clicks:          math.Round(clicks),
						Purchases:       math.Round(purchases),
						CTR:             round4(ctr),
						ROAS:            round2(roas),
						CPC:             round4(cpc),
					})
				}
			}
		}
	}

	return ads.NewDataset(rows), nil
}

var csvHeader = []string{
	"date", "campaign_name", "creative_type", "platform", "country", "creative_message",
	"spend", "revenue", "impressions", "clicks", "purchases", "ctr", "roas", "cpc",
}

func rowStrings(r ads.Row) []string {
	return []string{
		r.Date.Format("2006-01-02"),
		r.CampaignName,
		r.CreativeType,
		r.Platform,
		r.Country,
		r.CreativeMessage,
		fToStr(r.Spend, 2),
		fToStr(r.Revenue, 2),
		fToStr(r.Impressions, 0),
		fToStr(r.Clicks, 0),
		fToStr(r.Purchases, 0),
		fToStr(r.CTR, 4),
		fToStr(r.ROAS, 2),
		fToStr(r.CPC, 4),
	}
}

// WriteCSV persists the dataset in the column layout the loader expects.
func WriteCSV(path string, ds *ads.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := w.Write(rowStrings(row)); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteXLSX persists the dataset as a single-sheet workbook.
func WriteXLSX(path string, ds *ads.Dataset) error {
	f := excelize.NewFile()

	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	for i, h := range csvHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range ds.Rows {
		for c, v := range rowStrings(row) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round4(x float64) float64 { return math.Round(x*10000) / 10000 }

func fToStr(x float64, decimals int) string {
	return strconv.FormatFloat(x, 'f', decimals, 64)
}
