package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

// ErrNoData is returned when there are no rows or no features to cluster.
var ErrNoData = errors.New("input data cannot be empty")

// KMeans partitions feature vectors into K clusters with Lloyd's algorithm
// and k-means++ seeding. Runs are reproducible for a given Seed.
type KMeans struct {
	K       int
	MaxIter int
	// NInit is the number of seeded restarts; the run with the lowest
	// inertia wins.
	NInit int
	Seed  int64

	Centroids  [][]float64
	Inertia    float64 // Sum of squared distances to nearest centroid
	Iterations int
}

// New returns a KMeans with k clusters and default iteration settings.
func New(k int) *KMeans {
	return &KMeans{
		K:       k,
		MaxIter: 300,
		NInit:   10,
		Seed:    42,
	}
}

// FitPredict fits the model and returns the cluster index of every row.
func (m *KMeans) FitPredict(X [][]float64) ([]int, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return nil, ErrNoData
	}
	if m.K <= 0 {
		return nil, fmt.Errorf("invalid cluster count %d", m.K)
	}
	n, p := len(X), len(X[0])
	for i, row := range X {
		if len(row) != p {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), p)
		}
	}
	if n < m.K {
		return nil, fmt.Errorf("number of data points (%d) is less than K (%d)", n, m.K)
	}
	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = 300
	}
	nInit := m.NInit
	if nInit <= 0 {
		nInit = 1
	}

	rng := rand.New(rand.NewSource(m.Seed))
	var best []int
	m.Inertia = math.Inf(1)
	for run := 0; run < nInit; run++ {
		centroids := initCenters(X, m.K, rng)
		labels, inertia, iters := lloyd(X, centroids, maxIter)
		if inertia < m.Inertia {
			m.Inertia = inertia
			m.Centroids = centroids
			m.Iterations = iters
			best = labels
		}
	}
	return best, nil
}

// lloyd alternates assignment and update steps until no assignment changes
// or maxIter is reached. centroids is updated in place.
func lloyd(X, centroids [][]float64, maxIter int) ([]int, float64, int) {
	n, p := len(X), len(X[0])
	k := len(centroids)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	iters := 0
	for iters < maxIter {
		iters++
		changed, _ := assign(X, centroids, labels)
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, p)
		}
		for i, c := range labels {
			counts[c]++
			for j := 0; j < p; j++ {
				sums[c][j] += X[i][j]
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue // empty cluster keeps its previous centroid
			}
			for j := 0; j < p; j++ {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}
	_, inertia := assign(X, centroids, labels)
	return labels, inertia, iters
}

// assign sets labels to the nearest centroid, splitting rows across
// GOMAXPROCS workers. It reports whether any label changed and the inertia.
func assign(X, centroids [][]float64, labels []int) (bool, float64) {
	n := len(X)
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers
	changed := make([]bool, workers)
	inertia := make([]float64, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				best, bestd := 0, math.MaxFloat64
				for c := range centroids {
					if d := euclidSquared(X[i], centroids[c]); d < bestd {
						bestd = d
						best = c
					}
				}
				if labels[i] != best {
					changed[w] = true
					labels[i] = best
				}
				inertia[w] += bestd
			}
		}(w, start, end)
	}
	wg.Wait()

	anyChanged, total := false, 0.0
	for w := range changed {
		anyChanged = anyChanged || changed[w]
		total += inertia[w]
	}
	return anyChanged, total
}

// initCenters picks k starting centroids with k-means++ seeding.
func initCenters(X [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(X)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), X[rng.Intn(n)]...))

	distSq := make([]float64, n)
	for len(centroids) < k {
		total := 0.0
		for i, x := range X {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				if d := euclidSquared(x, c); d < minDist {
					minDist = d
				}
			}
			distSq[i] = minDist
			total += minDist
		}

		// All points coincide with a centroid: any pick is as good as another.
		idx := rng.Intn(n)
		if total > 0 {
			r := rng.Float64() * total
			cumulative := 0.0
			for i, d2 := range distSq {
				if d2 == 0 {
					continue
				}
				idx = i
				cumulative += d2
				if cumulative >= r {
					break
				}
			}
		}
		centroids = append(centroids, append([]float64(nil), X[idx]...))
	}
	return centroids
}

func euclidSquared(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
