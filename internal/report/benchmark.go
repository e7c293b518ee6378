package report

import "math"

// Benchmark places the site against the market and its peers.
type Benchmark struct {
	UKMarketAvg float64
	SiteRank    int
	TotalSites  int
}

// DefaultBenchmark is used until real market data is wired in.
var DefaultBenchmark = Benchmark{UKMarketAvg: 74, SiteRank: 3, TotalSites: 12}

// Percentile maps a score onto a market percentile in [1, 99]. Scores at or
// above the market average spread over [50, 99], scores below it over
// [0, 50].
func Percentile(score, marketAvg float64) int {
	var p float64
	if score >= marketAvg {
		p = roundHalfUp(50 + (score-marketAvg)/(100-marketAvg)*49)
	} else {
		p = roundHalfUp(score / marketAvg * 50)
	}
	return int(math.Min(99, math.Max(1, p)))
}

// Mean returns the rounded mean of scores, or 0 for none.
func Mean(scores []float64) int {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return int(roundHalfUp(sum / float64(len(scores))))
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
