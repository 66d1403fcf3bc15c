package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/LJTian/NewsLens/internal/config"
)

type fakeIngestor struct {
	mu    sync.Mutex
	calls int
	// 每个源的延迟，用来打乱完成顺序
	delay map[string]time.Duration
}

func (f *fakeIngestor) Fetch(_ context.Context, feedURL string, limit int) []collector.RawArticle {
	f.mu.Lock()
	f.calls++
	d := f.delay[feedURL]
	f.mu.Unlock()
	time.Sleep(d)

	out := make([]collector.RawArticle, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, collector.RawArticle{
			OriginalTitle: fmt.Sprintf("%s #%d", feedURL, i),
			URL:           fmt.Sprintf("%s/%d", feedURL, i),
			Source:        feedURL,
		})
	}
	return out
}

type slowPipeline struct {
	mu    sync.Mutex
	calls int
}

// 越靠前的文章越慢，确保完成顺序与输入顺序相反
func (s *slowPipeline) Process(_ context.Context, raw collector.RawArticle) ArticleResult {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	var idx int
	_, _ = fmt.Sscanf(raw.URL[len(raw.URL)-1:], "%d", &idx)
	time.Sleep(time.Duration(5-idx) * 3 * time.Millisecond)
	return ArticleResult{Title: raw.OriginalTitle, URL: raw.URL, Source: raw.Source}
}

type recordingArchive struct {
	mu    sync.Mutex
	saved map[string]int
	err   error
}

func (r *recordingArchive) SaveBatch(category string, articles []ArticleResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		r.saved = make(map[string]int)
	}
	r.saved[category] += len(articles)
	return r.err
}

var testCategories = []config.Category{
	{Name: "technology", Feeds: []string{"https://f1", "https://f2", "https://f3"}},
	{Name: "sports", Feeds: []string{"https://s1"}},
}

func TestAggregatorPreservesFeedThenEntryOrder(t *testing.T) {
	ing := &fakeIngestor{delay: map[string]time.Duration{"https://f1": 20 * time.Millisecond}}
	pipe := &slowPipeline{}
	gw, _ := newGateway()
	agg := NewAggregator(testCategories, ing, pipe, gw, 4)

	res, err := agg.Fetch(context.Background(), "technology", 3, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Category != "technology" || len(res.Articles) != 9 {
		t.Fatalf("unexpected result: %s with %d articles", res.Category, len(res.Articles))
	}
	i := 0
	for _, f := range testCategories[0].Feeds {
		for n := 0; n < 3; n++ {
			want := fmt.Sprintf("%s/%d", f, n)
			if res.Articles[i].URL != want {
				t.Fatalf("Articles[%d].URL = %q, want %q", i, res.Articles[i].URL, want)
			}
			i++
		}
	}
}

func TestAggregatorCacheHitAndRefresh(t *testing.T) {
	ing := &fakeIngestor{}
	pipe := &slowPipeline{}
	gw, store := newGateway()
	agg := NewAggregator(testCategories, ing, pipe, gw, 10)
	ctx := context.Background()

	first, err := agg.Fetch(ctx, "sports", 2, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	second, err := agg.Fetch(ctx, "sports", 2, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if ing.calls != 1 || pipe.calls != 2 {
		t.Fatalf("cache hit should not touch sub stages: ingest=%d pipeline=%d", ing.calls, pipe.calls)
	}

	b1, _ := json.Marshal(first)
	b2, _ := json.Marshal(second)
	if string(b1) != string(b2) {
		t.Fatalf("cached response differs:\n%s\n%s", b1, b2)
	}

	if _, err := agg.Fetch(ctx, "sports", 2, true); err != nil {
		t.Fatalf("Fetch refresh: %v", err)
	}
	if ing.calls != 2 || pipe.calls != 4 {
		t.Fatalf("refresh should bypass category cache: ingest=%d pipeline=%d", ing.calls, pipe.calls)
	}
	if n := store.SetCount("category_response:sports:2"); n != 2 {
		t.Fatalf("category response written %d times, want 2", n)
	}
}

func TestAggregatorUnknownCategory(t *testing.T) {
	gw, _ := newGateway()
	agg := NewAggregator(testCategories, &fakeIngestor{}, &slowPipeline{}, gw, 2)

	_, err := agg.Fetch(context.Background(), "music", 3, false)
	var nf *CategoryNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected CategoryNotFoundError, got %v", err)
	}
	if nf.Error() != "Category not found. Available categories: technology, sports" {
		t.Fatalf("message = %q", nf.Error())
	}
}

func TestAggregatorArchiveAndWarm(t *testing.T) {
	gw, _ := newGateway()
	archive := &recordingArchive{err: errors.New("db down")}
	agg := NewAggregator(testCategories, &fakeIngestor{}, &slowPipeline{}, gw, 2).WithArchive(archive)

	if err := agg.Warm(context.Background(), 1); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if archive.saved["technology"] != 3 || archive.saved["sports"] != 1 {
		t.Fatalf("unexpected archive calls: %v", archive.saved)
	}
}

func TestAggregatorEmptyCategoryIsNotNull(t *testing.T) {
	gw, _ := newGateway()
	agg := NewAggregator(testCategories, &fakeIngestor{}, &slowPipeline{}, gw, 2)

	res, err := agg.Fetch(context.Background(), "sports", 0, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	b, _ := json.Marshal(res)
	if string(b) != `{"category":"sports","articles":[]}` {
		t.Fatalf("json = %s", b)
	}
}
