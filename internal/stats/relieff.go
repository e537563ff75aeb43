package stats

import "math"

// ReliefF scores every column of rows against the discrete labels using k
// nearest hits and, for each other class, k nearest misses weighted by
// the class prior. Distances are Manhattan over range-normalised columns.
// tick, when non-nil, is called once per processed sample.
func ReliefF(rows [][]float64, labels []string, k int, tick func()) []float64 {
	n := len(rows)
	if n == 0 {
		return nil
	}
	m := len(rows[0])
	spans := make([]float64, m)
	for f := 0; f < m; f++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, r := range rows {
			lo = math.Min(lo, r[f])
			hi = math.Max(hi, r[f])
		}
		spans[f] = hi - lo
	}
	diff := func(f int, a, b []float64) float64 {
		if spans[f] == 0 {
			return 0
		}
		return math.Abs(a[f]-b[f]) / spans[f]
	}
	dist := func(a, b []float64) float64 {
		var d float64
		for f := 0; f < m; f++ {
			d += diff(f, a, b)
		}
		return d
	}

	prior := make(map[string]float64)
	byClass := make(map[string][]int)
	for i, l := range labels {
		prior[l] += 1 / float64(n)
		byClass[l] = append(byClass[l], i)
	}
	classes := uniqueSorted(labels)

	weights := make([]float64, m)
	for i := 0; i < n; i++ {
		own := labels[i]
		for _, class := range classes {
			members := byClass[class]
			near := nearestIn(rows, i, members, k, dist)
			if len(near) == 0 {
				continue
			}
			scale := 1 / (float64(n) * float64(len(near)))
			if class == own {
				for _, j := range near {
					for f := 0; f < m; f++ {
						weights[f] -= diff(f, rows[i], rows[j]) * scale
					}
				}
				continue
			}
			if prior[own] >= 1 {
				continue
			}
			w := prior[class] / (1 - prior[own])
			for _, j := range near {
				for f := 0; f < m; f++ {
					weights[f] += w * diff(f, rows[i], rows[j]) * scale
				}
			}
		}
		if tick != nil {
			tick()
		}
	}
	return weights
}

// nearestIn is nearest restricted to a candidate subset.
func nearestIn(rows [][]float64, i int, candidates []int, k int, dist func(a, b []float64) float64) []int {
	sub := make([][]float64, 0, len(candidates)+1)
	ids := make([]int, 0, len(candidates)+1)
	self := -1
	for _, c := range candidates {
		if c == i {
			self = len(sub)
		}
		sub = append(sub, rows[c])
		ids = append(ids, c)
	}
	if self < 0 {
		self = len(sub)
		sub = append(sub, rows[i])
		ids = append(ids, i)
	}
	near := nearest(sub, self, k, dist)
	out := make([]int, len(near))
	for j, nb := range near {
		out[j] = ids[nb.index]
	}
	return out
}
