package fusion

import "github.com/kailas-cloud/regsearch/internal/domain/search/result"

// minMax rescales native scores to [0,1] within one tier's result list.
// When every score is equal the list maps to 1 if the scores are positive, else 0.
func minMax(raws []result.Raw) []float64 {
	out := make([]float64, len(raws))
	if len(raws) == 0 {
		return out
	}
	lo, hi := raws[0].NativeScore, raws[0].NativeScore
	for _, r := range raws[1:] {
		lo = min(lo, r.NativeScore)
		hi = max(hi, r.NativeScore)
	}
	if hi == lo {
		v := 0.0
		if hi > 0 {
			v = 1
		}
		for i := range out {
			out[i] = v
		}
		return out
	}
	span := hi - lo
	for i, r := range raws {
		out[i] = (r.NativeScore - lo) / span
	}
	return out
}
