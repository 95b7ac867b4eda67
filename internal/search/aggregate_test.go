package search

import "testing"

func Test_Aggregate_BestChunkWins(t *testing.T) {
	t.Parallel()

	// docA has two hits; its score must be the best one, not the average.
	hits := []chunkHit{
		{documentID: "docA", score: 0.9},
		{documentID: "docA", score: 0.95},
		{documentID: "docB", score: 0.80},
	}

	got := aggregate(hits, 2)
	if len(got) != 2 {
		t.Fatalf("want 2 documents, got %d", len(got))
	}
	if got[0].documentID != "docA" || got[0].score != 0.95 {
		t.Errorf("rank 0: want docA@0.95, got %s@%v", got[0].documentID, got[0].score)
	}
	if got[1].documentID != "docB" || got[1].score != 0.80 {
		t.Errorf("rank 1: want docB@0.80, got %s@%v", got[1].documentID, got[1].score)
	}
}

func Test_Aggregate_TieBreakAscendingID(t *testing.T) {
	t.Parallel()

	hits := []chunkHit{
		{documentID: "zeta", score: 0.7},
		{documentID: "alpha", score: 0.7},
		{documentID: "mid", score: 0.7},
	}

	// Repeated calls must yield the same total order.
	for range 5 {
		got := aggregate(hits, 3)
		if len(got) != 3 {
			t.Fatalf("want 3 documents, got %d", len(got))
		}
		for i, want := range []string{"alpha", "mid", "zeta"} {
			if got[i].documentID != want {
				t.Fatalf("rank %d: want %s, got %s", i, want, got[i].documentID)
			}
		}
	}
}

func Test_Aggregate_Truncates(t *testing.T) {
	t.Parallel()

	var hits []chunkHit
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		hits = append(hits, chunkHit{documentID: id, score: 0.5})
	}

	got := aggregate(hits, 5)
	if len(got) != 5 {
		t.Errorf("want exactly 5 documents, got %d", len(got))
	}
}

func Test_Aggregate_FewerDocsThanTop(t *testing.T) {
	t.Parallel()

	hits := []chunkHit{
		{documentID: "only", score: 0.5},
		{documentID: "only", score: 0.4},
	}

	got := aggregate(hits, 10)
	if len(got) != 1 {
		t.Errorf("want 1 document (no padding), got %d", len(got))
	}
}

func Test_Aggregate_Empty(t *testing.T) {
	t.Parallel()

	if got := aggregate(nil, 10); got != nil {
		t.Errorf("want nil for no hits, got %v", got)
	}
	if got := aggregate([]chunkHit{{documentID: "a", score: 1}}, 0); got != nil {
		t.Errorf("want nil for top=0, got %v", got)
	}
}
