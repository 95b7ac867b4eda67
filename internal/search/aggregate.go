package search

import "sort"

// chunkHit is a hydrated index hit: the chunk's similarity score joined with
// its parent document id.
type chunkHit struct {
	documentID string
	score      float32
}

// docScore is one aggregated entry in the document ranking.
type docScore struct {
	documentID string
	score      float32
}

// aggregate collapses chunk-level hits into a document-level ranking.
//
// Each document scores as its single best (maximum-similarity) chunk: a
// document is only as relevant as its most relevant chunk — never an average,
// so a document is neither penalized for many mediocre chunks nor rewarded
// for sheer chunk count. Documents are ordered by score descending with ties
// broken by ascending document id, giving a total, repeatable order. The
// ranking is truncated to top entries; fewer distinct documents than top is
// not an error.
func aggregate(hits []chunkHit, top int) []docScore {
	if top <= 0 || len(hits) == 0 {
		return nil
	}

	best := make(map[string]float32, len(hits))
	for _, h := range hits {
		if s, ok := best[h.documentID]; !ok || h.score > s {
			best[h.documentID] = h.score
		}
	}

	ranked := make([]docScore, 0, len(best))
	for id, s := range best {
		ranked = append(ranked, docScore{documentID: id, score: s})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].documentID < ranked[j].documentID
	})

	if len(ranked) > top {
		ranked = ranked[:top]
	}
	return ranked
}
