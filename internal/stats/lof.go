package stats

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// LOFThreshold is the factor above which a sample is reported as an
// outlier when contamination is left to the data ("auto").
const LOFThreshold = 1.5

type neighbor struct {
	index int
	dist  float64
}

// nearest returns the k nearest samples to rows[i], excluding i itself.
func nearest(rows [][]float64, i, k int, dist func(a, b []float64) float64) []neighbor {
	all := make([]neighbor, 0, len(rows)-1)
	for j := range rows {
		if j == i {
			continue
		}
		all = append(all, neighbor{index: j, dist: dist(rows[i], rows[j])})
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].dist < all[b].dist })
	if k > len(all) {
		k = len(all)
	}
	return all[:k]
}

func euclidean(a, b []float64) float64 { return floats.Distance(a, b, 2) }

// LOF computes the local outlier factor of every row using k neighbors.
// k is clamped to [1, len(rows)-1]. Values close to 1 are inliers.
func LOF(rows [][]float64, k int) []float64 {
	n := len(rows)
	if n < 2 {
		return make([]float64, n)
	}
	if k > n-1 {
		k = n - 1
	}
	if k < 1 {
		k = 1
	}

	neighbors := make([][]neighbor, n)
	kdist := make([]float64, n)
	for i := range rows {
		neighbors[i] = nearest(rows, i, k, euclidean)
		kdist[i] = neighbors[i][len(neighbors[i])-1].dist
	}

	lrd := make([]float64, n)
	for i := range rows {
		var reach float64
		for _, nb := range neighbors[i] {
			if kdist[nb.index] > nb.dist {
				reach += kdist[nb.index]
			} else {
				reach += nb.dist
			}
		}
		lrd[i] = 1 / (reach/float64(len(neighbors[i])) + 1e-10)
	}

	lof := make([]float64, n)
	for i := range rows {
		var sum float64
		for _, nb := range neighbors[i] {
			sum += lrd[nb.index]
		}
		lof[i] = sum / float64(len(neighbors[i])) / lrd[i]
	}
	return lof
}
