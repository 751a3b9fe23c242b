package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/kailas-cloud/insighthire/internal/domain"
	"github.com/kailas-cloud/insighthire/internal/domain/rank"
	"github.com/kailas-cloud/insighthire/internal/domain/rank/mode"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ids(results []rank.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID()
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func abcItems() []rank.Item {
	return []rank.Item{
		{ID: "A", Vector: []float32{1, 0, 0}},
		{ID: "B", Vector: []float32{0, 1, 0}},
		{ID: "C", Vector: []float32{-1, 0, 0}},
	}
}

func TestRank_BasicScenario(t *testing.T) {
	svc := New(&mockEmbedder{})

	out, err := svc.Rank(context.Background(), rank.Query{Vector: []float32{1, 0, 0}}, abcItems(), mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		id    string
		score float64
	}{{"A", 1}, {"B", 0}, {"C", -1}}

	if len(out.Results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(out.Results))
	}
	for i, w := range want {
		r := out.Results[i]
		if r.ID() != w.id || !almost(r.Score(), w.score) {
			t.Errorf("result[%d] = %s (%f), want %s (%f)", i, r.ID(), r.Score(), w.id, w.score)
		}
	}
	if out.Mode != mode.VectorMath {
		t.Errorf("mode = %q, want %q", out.Mode, mode.VectorMath)
	}
	if out.Cancelled || len(out.Skipped) != 0 {
		t.Errorf("unexpected cancelled=%v skipped=%v", out.Cancelled, out.Skipped)
	}
}

func TestRank_EmbedsQueryText(t *testing.T) {
	emb := &mockEmbedder{
		vectors: map[string][]float32{"backend engineer": {1, 0, 0}},
		tokens:  12,
	}
	svc := New(emb)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	out, err := svc.Rank(ctx, rank.Query{Text: "backend engineer"}, abcItems(), mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(out.Results); !equalIDs(got, []string{"A", "B", "C"}) {
		t.Errorf("order = %v", got)
	}
	if len(emb.calls) != 1 || emb.calls[0] != "backend engineer" {
		t.Errorf("expected one embed call for the query, got %v", emb.calls)
	}
	if usage.TotalTokens != 12 {
		t.Errorf("expected 12 tokens recorded, got %d", usage.TotalTokens)
	}
}

func TestRank_PrecomputedVectorSkipsEmbedding(t *testing.T) {
	emb := &mockEmbedder{}
	svc := New(emb)

	_, err := svc.Rank(context.Background(),
		rank.Query{Text: "ignored", Vector: []float32{1, 0, 0}}, abcItems(), mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emb.calls) != 0 {
		t.Errorf("expected no embed calls, got %v", emb.calls)
	}
}

func TestRank_CallerTruncation(t *testing.T) {
	svc := New(&mockEmbedder{})

	out, err := svc.Rank(context.Background(), rank.Query{Vector: []float32{1, 0, 0}}, abcItems(), mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("ranker must return the full list, got %d", len(out.Results))
	}
	top := out.Top(2)
	if got := ids(top); !equalIDs(got, []string{"A", "B"}) {
		t.Errorf("Top(2) = %v, want [A B]", got)
	}
}

func TestRank_EmptyCandidates(t *testing.T) {
	emb := &mockEmbedder{}
	svc := New(emb)

	out, err := svc.Rank(context.Background(), rank.Query{Text: "anything"}, nil, mode.VectorMath)
	if err != nil {
		t.Fatalf("empty candidate set must not be an error, got %v", err)
	}
	if len(out.Results) != 0 || out.Cancelled {
		t.Errorf("expected empty non-cancelled outcome, got %+v", out)
	}
	if len(emb.calls) != 0 {
		t.Errorf("expected no embed call for empty set, got %v", emb.calls)
	}
}

func TestRank_SkipsZeroVector(t *testing.T) {
	svc := New(&mockEmbedder{})
	items := []rank.Item{
		{ID: "A", Vector: []float32{1, 0, 0}},
		{ID: "Z", Vector: []float32{0, 0, 0}},
		{ID: "B", Vector: []float32{0, 1, 0}},
	}

	out, err := svc.Rank(context.Background(), rank.Query{Vector: []float32{1, 0, 0}}, items, mode.VectorMath)
	if err != nil {
		t.Fatalf("skip policy must not fail the call, got %v", err)
	}
	if got := ids(out.Results); !equalIDs(got, []string{"A", "B"}) {
		t.Errorf("results = %v, want [A B]", got)
	}
	if got := out.SkippedIDs(); !equalIDs(got, []string{"Z"}) {
		t.Fatalf("skipped = %v, want [Z]", got)
	}
	sk := out.Skipped[0]
	if sk.Reason != rank.ReasonDegenerateVector {
		t.Errorf("reason = %q, want %q", sk.Reason, rank.ReasonDegenerateVector)
	}
	if !errors.Is(sk.Err, domain.ErrDegenerateVector) {
		t.Errorf("expected ErrDegenerateVector, got %v", sk.Err)
	}
}

func TestRank_SkipsDimensionMismatch(t *testing.T) {
	svc := New(&mockEmbedder{})
	items := []rank.Item{
		{ID: "short", Vector: []float32{1, 0}},
		{ID: "ok", Vector: []float32{0, 0, 1}},
	}

	out, err := svc.Rank(context.Background(), rank.Query{Vector: []float32{1, 0, 0}}, items, mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(out.Results); !equalIDs(got, []string{"ok"}) {
		t.Errorf("results = %v", got)
	}
	if len(out.Skipped) != 1 || out.Skipped[0].Reason != rank.ReasonDimensionMismatch {
		t.Fatalf("skipped = %+v", out.Skipped)
	}
	var dme *domain.DimensionMismatchError
	if !errors.As(out.Skipped[0].Err, &dme) || dme.Query != 3 || dme.Candidate != 2 {
		t.Errorf("expected DimensionMismatchError{3,2}, got %v", out.Skipped[0].Err)
	}
}

func TestRank_SkipsDuplicateAndMissing(t *testing.T) {
	svc := New(&mockEmbedder{})
	items := []rank.Item{
		{ID: "A", Vector: []float32{1, 0, 0}},
		{ID: "empty"},
		{ID: "A", Vector: []float32{0, 1, 0}},
	}

	out, err := svc.Rank(context.Background(), rank.Query{Vector: []float32{1, 0, 0}}, items, mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Results) != 1 || out.Results[0].ID() != "A" || !almost(out.Results[0].Score(), 1) {
		t.Fatalf("expected first A only, got %v", ids(out.Results))
	}
	if len(out.Skipped) != 2 {
		t.Fatalf("expected 2 skipped, got %+v", out.Skipped)
	}
	if out.Skipped[0].ID != "empty" || out.Skipped[0].Reason != rank.ReasonMissingVector {
		t.Errorf("skipped[0] = %+v", out.Skipped[0])
	}
	if out.Skipped[1].ID != "A" || out.Skipped[1].Reason != rank.ReasonDuplicateID {
		t.Errorf("skipped[1] = %+v", out.Skipped[1])
	}
}

func TestRank_SkippedInInputOrder(t *testing.T) {
	svc := New(&mockEmbedder{}, WithWorkers(4))
	items := []rank.Item{
		{ID: "z1", Vector: []float32{0, 0, 0}},
		{ID: "dup", Vector: []float32{1, 0, 0}},
		{ID: "dup", Vector: []float32{1, 0, 0}},
		{ID: "m1", Vector: []float32{1, 0}},
		{ID: "nil"},
	}

	out, err := svc.Rank(context.Background(), rank.Query{Vector: []float32{1, 0, 0}}, items, mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.SkippedIDs(); !equalIDs(got, []string{"z1", "dup", "m1", "nil"}) {
		t.Errorf("skipped order = %v", got)
	}
}

func TestRank_StableTieBreak(t *testing.T) {
	svc := New(&mockEmbedder{}, WithWorkers(3))
	items := []rank.Item{
		{ID: "first", Vector: []float32{0, 1}},
		{ID: "best", Vector: []float32{1, 0}},
		{ID: "second", Vector: []float32{0, 2}},
		{ID: "third", Vector: []float32{0, 0.5}},
	}

	out, err := svc.Rank(context.Background(), rank.Query{Vector: []float32{1, 0}}, items, mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"best", "first", "second", "third"}
	if got := ids(out.Results); !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func randomItems(r *rand.Rand, n, dim int) []rank.Item {
	items := make([]rank.Item, n)
	for i := range items {
		v := make([]float32, dim)
		for j := range v {
			v[j] = r.Float32()*2 - 1
		}
		items[i] = rank.Item{ID: fmt.Sprintf("c%03d", i), Vector: v}
	}
	return items
}

func TestRank_PermutationInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	items := randomItems(r, 200, 16)
	q := rank.Query{Vector: items[0].Vector}
	svc := New(&mockEmbedder{}, WithWorkers(8))

	base, err := svc.Rank(context.Background(), q, items, mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for trial := 0; trial < 5; trial++ {
		shuffled := make([]rank.Item, len(items))
		copy(shuffled, items)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		out, err := svc.Rank(context.Background(), q, shuffled, mode.VectorMath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !equalIDs(ids(out.Results), ids(base.Results)) {
			t.Fatalf("trial %d: permuted input changed the ranking", trial)
		}
	}
}

func TestRank_Idempotent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	items := randomItems(r, 50, 8)
	emb := &mockEmbedder{def: items[3].Vector}
	svc := New(emb, WithWorkers(4))

	first, err := svc.Rank(context.Background(), rank.Query{Text: "data scientist"}, items, mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Rank(context.Background(), rank.Query{Text: "data scientist"}, items, mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Results) != len(second.Results) {
		t.Fatal("result lengths differ")
	}
	for i := range first.Results {
		a, b := first.Results[i], second.Results[i]
		if a.ID() != b.ID() || a.Score() != b.Score() {
			t.Fatalf("position %d differs: %s/%f vs %s/%f", i, a.ID(), a.Score(), b.ID(), b.Score())
		}
	}
}

func TestRank_WorkerCountDoesNotChangeOutput(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	items := randomItems(r, 300, 12)
	q := rank.Query{Vector: items[10].Vector}

	single, err := New(&mockEmbedder{}, WithWorkers(1)).Rank(context.Background(), q, items, mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pooled, err := New(&mockEmbedder{}, WithWorkers(16)).Rank(context.Background(), q, items, mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalIDs(ids(single.Results), ids(pooled.Results)) {
		t.Fatal("pool size changed the ranking")
	}
}

func TestRank_UpstreamEmbeddingError(t *testing.T) {
	cause := errors.New("429 rate limited")
	svc := New(&mockEmbedder{err: cause})

	out, err := svc.Rank(context.Background(), rank.Query{Text: "pm"}, abcItems(), mode.VectorMath)
	if !errors.Is(err, domain.ErrUpstreamEmbedding) {
		t.Fatalf("expected ErrUpstreamEmbedding, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected provider cause to be preserved, got %v", err)
	}
	var uee *domain.UpstreamEmbeddingError
	if !errors.As(err, &uee) {
		t.Errorf("expected *UpstreamEmbeddingError, got %T", err)
	}
	if len(out.Results) != 0 || len(out.Skipped) != 0 {
		t.Errorf("no partial work expected, got %+v", out)
	}
}

func TestRank_EmptyQueryEmbeddingIsUpstreamError(t *testing.T) {
	svc := New(&mockEmbedder{def: nil})

	_, err := svc.Rank(context.Background(), rank.Query{Text: "pm"}, abcItems(), mode.VectorMath)
	if !errors.Is(err, domain.ErrUpstreamEmbedding) {
		t.Fatalf("expected ErrUpstreamEmbedding, got %v", err)
	}
}

func TestRank_ZeroQueryVectorFails(t *testing.T) {
	svc := New(&mockEmbedder{})

	_, err := svc.Rank(context.Background(), rank.Query{Vector: []float32{0, 0, 0}}, abcItems(), mode.VectorMath)
	if !errors.Is(err, domain.ErrDegenerateVector) {
		t.Fatalf("expected ErrDegenerateVector, got %v", err)
	}
}

func TestRank_UnknownMode(t *testing.T) {
	emb := &mockEmbedder{}
	svc := New(emb)

	_, err := svc.Rank(context.Background(), rank.Query{Text: "x"}, abcItems(), mode.Mode("vibes"))
	if !errors.Is(err, domain.ErrUnknownRankingMode) {
		t.Fatalf("expected ErrUnknownRankingMode, got %v", err)
	}
	if len(emb.calls) != 0 {
		t.Error("unknown mode must fail before embedding")
	}
}

func TestRank_GenerativeRerankIsExplicitStub(t *testing.T) {
	emb := &mockEmbedder{}
	svc := New(emb)

	out, err := svc.Rank(context.Background(), rank.Query{Text: "x"}, abcItems(), mode.GenerativeRerank)
	if !errors.Is(err, domain.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if len(out.Results) != 0 {
		t.Error("stub mode must not return placeholder scores")
	}
	if len(emb.calls) != 0 {
		t.Error("stub mode must fail before embedding")
	}
}

func TestRank_InvalidQuery(t *testing.T) {
	svc := New(&mockEmbedder{})
	_, err := svc.Rank(context.Background(), rank.Query{}, abcItems(), mode.VectorMath)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestRank_EmbedsItemContentInBatch(t *testing.T) {
	emb := &mockBatchEmbedder{mockEmbedder: mockEmbedder{
		vectors: map[string][]float32{
			"golang":     {1, 0},
			"kubernetes": {0.7, 0.7},
			"painting":   {0, 1},
			"query":      {1, 0},
		},
	}}
	svc := New(emb)
	items := []rank.Item{
		{ID: "0", Content: "painting"},
		{ID: "1", Content: "golang"},
		{ID: "2", Content: "kubernetes"},
	}

	out, err := svc.Rank(context.Background(), rank.Query{Text: "query"}, items, mode.VectorMath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emb.batchCalls) != 1 || len(emb.batchCalls[0]) != 3 {
		t.Fatalf("expected one batch call with 3 texts, got %v", emb.batchCalls)
	}
	want := []string{"1", "2", "0"}
	if got := ids(out.Results); !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if out.Results[0].Content() != "golang" {
		t.Errorf("content not carried through: %q", out.Results[0].Content())
	}
}

func TestRank_ItemEmbeddingFailureIsFatal(t *testing.T) {
	emb := &mockBatchEmbedder{
		mockEmbedder: mockEmbedder{def: []float32{1, 0}},
		batchErr:     errors.New("quota"),
	}
	svc := New(emb)

	out, err := svc.Rank(context.Background(), rank.Query{Text: "q"},
		[]rank.Item{{ID: "a", Content: "sql"}}, mode.VectorMath)
	if !errors.Is(err, domain.ErrUpstreamEmbedding) {
		t.Fatalf("expected ErrUpstreamEmbedding, got %v", err)
	}
	if len(out.Results) != 0 {
		t.Error("expected no results")
	}
}

func TestRank_CancelledBeforeStart(t *testing.T) {
	emb := &mockEmbedder{}
	svc := New(emb)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := svc.Rank(ctx, rank.Query{Text: "q"}, abcItems(), mode.VectorMath)
	if !errors.Is(err, domain.ErrRankingCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected ErrRankingCancelled wrapping context.Canceled, got %v", err)
	}
	if !out.Cancelled {
		t.Error("outcome must be tagged cancelled")
	}
	if len(emb.calls) != 0 {
		t.Error("no embedding expected after cancellation")
	}
}

func TestRank_CancelledBeforeScoring(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// the query embeds successfully, then the caller goes away before scoring starts
	emb := &mockEmbedder{def: []float32{1, 0, 0}, onEmbed: cancel}
	svc := New(emb, WithWorkers(2))

	out, err := svc.Rank(ctx, rank.Query{Text: "q"}, abcItems(), mode.VectorMath)
	if !errors.Is(err, domain.ErrRankingCancelled) {
		t.Fatalf("expected ErrRankingCancelled, got %v", err)
	}
	if !out.Cancelled {
		t.Error("outcome must be tagged cancelled")
	}
	if len(out.Results) != 0 {
		t.Errorf("no candidate should be scored after cancellation, got %v", ids(out.Results))
	}
}

func TestRank_CancelledDuringScoring(t *testing.T) {
	// one Err check at entry, then one per candidate: the first two candidates
	// are scored and the third check cancels
	ctx := newCancelAfterCtx(3)
	defer ctx.cancel()
	svc := New(&mockEmbedder{}, WithWorkers(1))

	items := []rank.Item{
		{ID: "low", Vector: []float32{0, 1, 0}},
		{ID: "high", Vector: []float32{1, 0, 0}},
		{ID: "c", Vector: []float32{1, 1, 0}},
		{ID: "d", Vector: []float32{1, 0, 1}},
		{ID: "e", Vector: []float32{0, 0, 1}},
	}
	out, err := svc.Rank(ctx, rank.Query{Vector: []float32{1, 0, 0}}, items, mode.VectorMath)
	if !errors.Is(err, domain.ErrRankingCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected ErrRankingCancelled wrapping context.Canceled, got %v", err)
	}
	if !out.Cancelled {
		t.Error("outcome must be tagged cancelled")
	}
	if got := ids(out.Results); !equalIDs(got, []string{"high", "low"}) {
		t.Errorf("expected partial sorted results [high low], got %v", got)
	}
	if len(out.Skipped) != 0 {
		t.Errorf("unscored candidates are not skips, got %+v", out.Skipped)
	}
}

func TestScore_StopsOnCancelledContext(t *testing.T) {
	svc := New(&mockEmbedder{}, WithWorkers(4))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	queue := make([]work, 100)
	for i := range queue {
		queue[i] = work{idx: i, item: rank.Item{ID: fmt.Sprint(i), Vector: []float32{1, 1}}}
	}
	for i, sl := range svc.score(ctx, []float32{1, 0}, queue) {
		if sl.done {
			t.Fatalf("slot %d scored after cancellation", i)
		}
	}
}

func TestWithWorkers_IgnoresNonPositive(t *testing.T) {
	svc := New(&mockEmbedder{}, WithWorkers(0), WithWorkers(-3))
	if svc.workers < 1 {
		t.Errorf("workers = %d, want >= 1", svc.workers)
	}
	svc = New(&mockEmbedder{}, WithWorkers(5))
	if svc.workers != 5 {
		t.Errorf("workers = %d, want 5", svc.workers)
	}
}

func BenchmarkRank1000x1536(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	items := randomItems(r, 1000, 1536)
	q := rank.Query{Vector: items[0].Vector}
	svc := New(&mockEmbedder{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Rank(context.Background(), q, items, mode.VectorMath); err != nil {
			b.Fatal(err)
		}
	}
}
