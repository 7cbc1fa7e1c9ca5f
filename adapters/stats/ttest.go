package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// TwoSampleTTest runs an independent two-sample Student's t-test with pooled
// variance and returns the t statistic and two-sided p-value. Degenerate
// inputs (fewer than two observations per group, or zero pooled variance with
// equal means) yield t=0, p=1 rather than an error.
func TwoSampleTTest(a, b []float64) (tStat, pValue float64) {
	n1 := float64(len(a))
	n2 := float64(len(b))
	if n1 < 2 || n2 < 2 {
		return 0, 1
	}

	mean1, _ := mstats.Mean(a)
	mean2, _ := mstats.Mean(b)
	var1, _ := mstats.SampleVariance(a)
	var2, _ := mstats.SampleVariance(b)

	df := n1 + n2 - 2
	pooled := ((n1-1)*var1 + (n2-1)*var2) / df
	se := math.Sqrt(pooled * (1/n1 + 1/n2))
	if se == 0 {
		if mean1 == mean2 {
			return 0, 1
		}
		// Constant groups with different means: the difference is certain.
		if mean1 > mean2 {
			return math.Inf(1), 0
		}
		return math.Inf(-1), 0
	}

	tStat = (mean1 - mean2) / se
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue = 2 * tDist.CDF(-math.Abs(tStat))
	return tStat, pValue
}

// CohenD computes the standardized mean difference |meanA-meanB|/pooledStd
// where pooledStd = sqrt((varA+varB)/2) with sample variances. A zero pooled
// standard deviation yields an effect size of 0 by contract.
func CohenD(a, b []float64) float64 {
	meanA, _ := mstats.Mean(a)
	meanB, _ := mstats.Mean(b)
	varA, _ := mstats.SampleVariance(a)
	varB, _ := mstats.SampleVariance(b)

	pooledStd := math.Sqrt((varA + varB) / 2)
	if pooledStd == 0 {
		return 0
	}
	return math.Abs(meanA-meanB) / pooledStd
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
