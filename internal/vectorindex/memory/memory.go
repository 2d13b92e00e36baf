// Package memory provides a brute-force in-memory vector index, used in
// tests and for local runs without a remote index.
package memory

import (
	"context"
	"errors"
	"sync"

	"nhsrag/internal/domain"
)

type entry struct {
	vector []float64
	result domain.SearchResult
}

// Index holds vectors per namespace and answers cosine-similarity queries.
// Vectors are assumed L2-normalized, so dot product equals cosine similarity.
type Index struct {
	mu         sync.RWMutex
	namespaces map[string][]entry
}

func NewIndex() *Index {
	return &Index{namespaces: make(map[string][]entry)}
}

// Upsert adds passages with their vectors to a namespace.
func (x *Index) Upsert(namespace string, results []domain.SearchResult, vectors [][]float64) error {
	if len(results) != len(vectors) {
		return errors.New("results and vectors length mismatch")
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for i := range results {
		x.namespaces[namespace] = append(x.namespaces[namespace], entry{vector: vectors[i], result: results[i]})
	}
	return nil
}

// Query returns the topK most similar passages in descending score order.
func (x *Index) Query(ctx context.Context, vector []float64, topK int, namespace string) ([]domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	entries := x.namespaces[namespace]
	scores := make([]float64, len(entries))
	for i := range entries {
		scores[i] = dot(entries[i].vector, vector)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		r := entries[j].result
		r.Score = scores[j]
		results = append(results, r)
	}
	return results, nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	quicksort(idxs, vals, 0, len(idxs)-1)
	return idxs
}

func quicksort(idxs []int, vals []float64, lo, hi int) {
	if lo >= hi {
		return
	}
	i, j := lo, hi
	pivot := vals[idxs[(lo+hi)/2]]
	for i <= j {
		for vals[idxs[i]] > pivot { // desc order
			i++
		}
		for vals[idxs[j]] < pivot {
			j--
		}
		if i <= j {
			idxs[i], idxs[j] = idxs[j], idxs[i]
			i++
			j--
		}
	}
	if lo < j {
		quicksort(idxs, vals, lo, j)
	}
	if i < hi {
		quicksort(idxs, vals, i, hi)
	}
}
