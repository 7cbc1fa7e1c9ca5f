package llm

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"adinsight/domain/ads"
	"adinsight/domain/report"
)

const (
	topPerformerCount    = 5
	minUnderperformShare = 0.01 // ignore slices below 1% of spend when ranking losers
	minSegmentShare      = 0.05 // best-segment floor
	fatigueWindow        = 7
	fatigueDropFactor    = 0.8
	messagePreviewLen    = 50
)

// creativeAnalysis is the aggregate picture of creative performance the
// recommender reasons over.
type creativeAnalysis struct {
	Top    []report.PerformerSummary
	Bottom []report.PerformerSummary

	Winning []string
	Losing  []string

	AvgROASByType map[string]float64
	BestSegment   string
	Fatigue       bool

	TotalSpend          float64
	SpendByCreativeType map[string]float64
}

type creativeSlice struct {
	creativeType string
	platform     string
	message      string
	roas         []float64
	ctr          []float64
	spend        float64
	revenue      float64
}

// analyzeCreatives groups rows by (creative_type, platform, message) and
// derives rankings, patterns, the best segment and fatigue signals.
func analyzeCreatives(dataset *ads.Dataset) creativeAnalysis {
	ca := creativeAnalysis{
		AvgROASByType:       map[string]float64{},
		SpendByCreativeType: map[string]float64{},
	}
	if dataset == nil || dataset.Len() == 0 {
		return ca
	}

	slices := map[string]*creativeSlice{}
	var order []string
	roasByType := map[string][]float64{}

	for _, r := range dataset.Rows {
		key := r.CreativeType + "\x00" + r.Platform + "\x00" + r.CreativeMessage
		s, ok := slices[key]
		if !ok {
			s = &creativeSlice{creativeType: r.CreativeType, platform: r.Platform, message: r.CreativeMessage}
			slices[key] = s
			order = append(order, key)
		}
		s.roas = append(s.roas, r.ROAS)
		s.ctr = append(s.ctr, r.CTR)
		s.spend += r.Spend
		s.revenue += r.Revenue

		ca.TotalSpend += r.Spend
		ca.SpendByCreativeType[r.CreativeType] += r.Spend
		roasByType[r.CreativeType] = append(roasByType[r.CreativeType], r.ROAS)
	}

	summaries := make([]report.PerformerSummary, 0, len(order))
	for _, key := range order {
		s := slices[key]
		meanROAS, _ := stats.Mean(s.roas)
		meanCTR, _ := stats.Mean(s.ctr)
		summaries = append(summaries, report.PerformerSummary{
			CreativeType:   s.creativeType,
			Platform:       s.platform,
			MessagePreview: previewMessage(s.message),
			ROAS:           roundTo(meanROAS, 2),
			Spend:          roundTo(s.spend, 2),
			CTR:            roundTo(meanCTR, 4),
		})
	}

	byROASDesc := append([]report.PerformerSummary(nil), summaries...)
	sort.SliceStable(byROASDesc, func(i, j int) bool { return byROASDesc[i].ROAS > byROASDesc[j].ROAS })
	ca.Top = head(byROASDesc, topPerformerCount)

	spendFloor := ca.TotalSpend * minUnderperformShare
	var losers []report.PerformerSummary
	for i := len(byROASDesc) - 1; i >= 0; i-- {
		if byROASDesc[i].Spend > spendFloor {
			losers = append(losers, byROASDesc[i])
		}
	}
	ca.Bottom = head(losers, topPerformerCount)

	for creativeType, values := range roasByType {
		mean, _ := stats.Mean(values)
		ca.AvgROASByType[creativeType] = roundTo(mean, 2)
	}

	ca.Winning, ca.Losing = identifyPatterns(ca.Top, ca.Bottom, ca.AvgROASByType)
	ca.BestSegment = bestSegment(dataset, ca.TotalSpend)
	ca.Fatigue = detectFatigue(dataset)
	return ca
}

func previewMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= messagePreviewLen {
		return message
	}
	return string(runes[:messagePreviewLen]) + "..."
}

func head(s []report.PerformerSummary, n int) []report.PerformerSummary {
	if len(s) > n {
		s = s[:n]
	}
	return s
}

// identifyPatterns looks for creative types that dominate the top and bottom
// ranks and for types whose mean ROAS stands out from the rest.
func identifyPatterns(top, bottom []report.PerformerSummary, avgByType map[string]float64) (winning, losing []string) {
	if dominant, ok := dominantType(top); ok {
		winning = append(winning, fmt.Sprintf("Best performers dominated by %s format", dominant))
	}
	if dominant, ok := dominantType(bottom); ok {
		losing = append(losing, fmt.Sprintf("Worst performers dominated by %s format", dominant))
	}

	if len(avgByType) > 1 {
		var overall float64
		for _, v := range avgByType {
			overall += v
		}
		overall /= float64(len(avgByType))
		types := make([]string, 0, len(avgByType))
		for t := range avgByType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			switch {
			case avgByType[t] > overall*1.2:
				winning = append(winning, fmt.Sprintf("%s shows stronger performance in this set", t))
			case avgByType[t] < overall*0.8:
				losing = append(losing, fmt.Sprintf("%s shows weaker performance in this set", t))
			}
		}
	}
	return winning, losing
}

// dominantType reports the creative type holding a strict majority of slots.
func dominantType(performers []report.PerformerSummary) (string, bool) {
	if len(performers) == 0 {
		return "", false
	}
	counts := map[string]int{}
	for _, p := range performers {
		counts[p.CreativeType]++
	}
	for t, n := range counts {
		if n*2 > len(performers) {
			return t, true
		}
	}
	return "", false
}

// bestSegment picks the (creative_type, platform) pair with the highest mean
// ROAS among segments carrying a meaningful share of spend.
func bestSegment(dataset *ads.Dataset, totalSpend float64) string {
	type segAgg struct {
		roas  []float64
		spend float64
	}
	segs := map[[2]string]*segAgg{}
	for _, r := range dataset.Rows {
		key := [2]string{r.CreativeType, r.Platform}
		s, ok := segs[key]
		if !ok {
			s = &segAgg{}
			segs[key] = s
		}
		s.roas = append(s.roas, r.ROAS)
		s.spend += r.Spend
	}

	floor := totalSpend * minSegmentShare
	best := ""
	bestROAS := -1.0
	keys := make([][2]string, 0, len(segs))
	for k := range segs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, k := range keys {
		s := segs[k]
		if s.spend < floor {
			continue
		}
		mean, _ := stats.Mean(s.roas)
		if mean > bestROAS {
			bestROAS = mean
			best = fmt.Sprintf("%s on %s", k[0], k[1])
		}
	}
	return best
}

// detectFatigue compares CTR of the first and last seven rows. Rows arrive
// date-ordered, so these windows bracket the analysis period.
func detectFatigue(dataset *ads.Dataset) bool {
	if dataset.Len() < 2*fatigueWindow {
		return false
	}
	first := make([]float64, 0, fatigueWindow)
	last := make([]float64, 0, fatigueWindow)
	for _, r := range dataset.Rows[:fatigueWindow] {
		first = append(first, r.CTR)
	}
	for _, r := range dataset.Rows[dataset.Len()-fatigueWindow:] {
		last = append(last, r.CTR)
	}
	firstMean, _ := stats.Mean(first)
	lastMean, _ := stats.Mean(last)
	return firstMean > 0 && lastMean < firstMean*fatigueDropFactor
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
