package hybrid

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges KNN and BM25 rankings via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) for each ranking where d appears.
// The BM25 record is kept when a document appears in both lists (it carries
// a lexical snippet); sub-scores from both sides are preserved.
func fuseRRF(knn, bm25 []result.Raw, topK int) []result.Raw {
	merged := make(map[string]*result.Raw, len(knn)+len(bm25))
	order := make([]string, 0, len(knn)+len(bm25))

	for rank, r := range bm25 {
		if _, dup := merged[r.DocumentID]; dup {
			continue
		}
		r.LexicalScore = r.NativeScore
		r.NativeScore = 1.0 / float64(rrfK+rank+1)
		merged[r.DocumentID] = &r
		order = append(order, r.DocumentID)
	}

	for rank, r := range knn {
		s := 1.0 / float64(rrfK+rank+1)
		if existing, ok := merged[r.DocumentID]; ok {
			if existing.VectorScore == 0 {
				existing.NativeScore += s
				existing.VectorScore = r.NativeScore
			}
			continue
		}
		r.VectorScore = r.NativeScore
		r.NativeScore = s
		merged[r.DocumentID] = &r
		order = append(order, r.DocumentID)
	}

	results := make([]result.Raw, 0, len(merged))
	for _, id := range order {
		results = append(results, *merged[id])
	}

	slices.SortStableFunc(results, func(a, b result.Raw) int {
		return cmp.Compare(b.NativeScore, a.NativeScore)
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
