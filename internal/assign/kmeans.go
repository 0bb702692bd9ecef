package assign

import (
	"context"
	"math"
	"math/rand"
)

// Clustering is tuned for reproducibility: a fixed seed makes a rerun of
// the same order table against the same driver set produce the same
// partition, and multiple restarts guard against bad local minima. The
// restart count is an operational constant, not a caller parameter.
const (
	clusterSeed   = 42
	restarts      = 10
	maxIterations = 300
)

type point struct {
	lat float64
	lon float64
}

func squaredDistance(a, b point) float64 {
	dLat := a.lat - b.lat
	dLon := a.lon - b.lon
	return dLat*dLat + dLon*dLon
}

// cluster partitions points into k groups with Lloyd's algorithm and
// returns one cluster label per point. The best of several seeded runs
// (lowest total within-cluster squared distance) wins. Cancellation is
// checked every iteration so a huge order table cannot stall the process
// past its deadline.
func cluster(ctx context.Context, points []point, k int) ([]int, error) {
	if k <= 0 || len(points) == 0 {
		return nil, nil
	}
	if k >= len(points) {
		labels := make([]int, len(points))
		for i := range points {
			labels[i] = i
		}
		return labels, nil
	}

	rng := rand.New(rand.NewSource(clusterSeed))

	var bestLabels []int
	bestInertia := math.Inf(1)

	for run := 0; run < restarts; run++ {
		labels, inertia, err := lloyd(ctx, points, k, rng)
		if err != nil {
			return nil, err
		}
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
		}
	}
	return bestLabels, nil
}

func lloyd(ctx context.Context, points []point, k int, rng *rand.Rand) ([]int, float64, error) {
	centroids := seedCentroids(points, k, rng)
	labels := make([]int, len(points))

	for iter := 0; iter < maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		changed := false
		for i, p := range points {
			best := 0
			bestDist := squaredDistance(p, centroids[0])
			for c := 1; c < k; c++ {
				if d := squaredDistance(p, centroids[c]); d < bestDist {
					bestDist = d
					best = c
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids; an emptied cluster keeps its previous
		// centroid rather than collapsing.
		sums := make([]point, k)
		counts := make([]int, k)
		for i, p := range points {
			sums[labels[i]].lat += p.lat
			sums[labels[i]].lon += p.lon
			counts[labels[i]]++
		}
		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				centroids[c] = point{lat: sums[c].lat / float64(counts[c]), lon: sums[c].lon / float64(counts[c])}
			}
		}
	}

	inertia := 0.0
	for i, p := range points {
		inertia += squaredDistance(p, centroids[labels[i]])
	}
	return labels, inertia, nil
}

// seedCentroids picks initial centroids k-means++ style: the first
// uniformly, each subsequent one weighted by squared distance to the
// nearest centroid chosen so far.
func seedCentroids(points []point, k int, rng *rand.Rand) []point {
	centroids := make([]point, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	dists := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d := squaredDistance(p, centroids[0])
			for _, c := range centroids[1:] {
				if dc := squaredDistance(p, c); dc < d {
					d = dc
				}
			}
			dists[i] = d
			total += d
		}

		if total == 0 {
			// All remaining points coincide with a centroid.
			centroids = append(centroids, points[rng.Intn(len(points))])
			continue
		}

		target := rng.Float64() * total
		acc := 0.0
		chosen := len(points) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}
	return centroids
}
