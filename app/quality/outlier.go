package quality

import (
	"math"

	"github.com/montanaflynn/stats"
)

// OutlierScores measures how anomalous each item's content length is relative
// to its sibling batch: min(1, |z|/3) using the population standard deviation.
// Batches with fewer than two items, or with near-zero spread, score all zeros.
func OutlierScores(contentLengths []int) []float64 {
	scores := make([]float64, len(contentLengths))
	if len(contentLengths) < 2 {
		return scores
	}

	data := make(stats.Float64Data, len(contentLengths))
	for i, length := range contentLengths {
		data[i] = float64(length)
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return scores
	}

	stdDev, err := stats.StandardDeviationPopulation(data)
	if err != nil || stdDev < 1e-9 {
		return scores
	}

	for i, value := range data {
		z := math.Abs(value-mean) / stdDev
		scores[i] = math.Min(1.0, z/3.0)
	}

	return scores
}
