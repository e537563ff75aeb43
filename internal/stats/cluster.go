package stats

import "math"

// WardOrder clusters points agglomeratively with Ward linkage and returns
// the leaf order of the resulting dendrogram: at every merge the cluster
// created first goes on the left.
func WardOrder(points [][]float64) []int {
	n := len(points)
	if n == 0 {
		return nil
	}
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			dist[i][j] = euclidean(points[i], points[j])
		}
	}

	type cluster struct {
		id     int
		size   float64
		leaves []int
	}
	active := make([]*cluster, n)
	for i := range active {
		active[i] = &cluster{id: i, size: 1, leaves: []int{i}}
	}
	next := n
	for len(active) > 1 {
		a, b := 0, 1
		best := math.Inf(1)
		for i := 0; i < len(active); i++ {
			for j := i + 1; j < len(active); j++ {
				if d := dist[i][j]; d < best {
					best, a, b = d, i, j
				}
			}
		}

		ca, cb := active[a], active[b]
		left, right := ca, cb
		if cb.id < ca.id {
			left, right = cb, ca
		}
		merged := &cluster{
			id:     next,
			size:   ca.size + cb.size,
			leaves: append(append([]int(nil), left.leaves...), right.leaves...),
		}
		next++

		// Lance-Williams update for Ward linkage, stored in row a.
		for k := range active {
			if k == a || k == b {
				continue
			}
			nk := active[k].size
			d2 := ((nk+ca.size)*dist[a][k]*dist[a][k] +
				(nk+cb.size)*dist[b][k]*dist[b][k] -
				nk*best*best) / (nk + merged.size)
			d := math.Sqrt(math.Max(d2, 0))
			dist[a][k], dist[k][a] = d, d
		}
		active[a] = merged

		active = append(active[:b], active[b+1:]...)
		dist = append(dist[:b], dist[b+1:]...)
		for k := range dist {
			dist[k] = append(dist[k][:b], dist[k][b+1:]...)
		}
	}
	return active[0].leaves
}
