package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LJTian/NewsLens/internal/cache"
)

type fakeScraper struct {
	mu    sync.Mutex
	pages map[string]*Page
	calls int
}

func (f *fakeScraper) Scrape(_ context.Context, pageURL string) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	p, ok := f.pages[pageURL]
	if !ok {
		return nil, errors.New("404")
	}
	return p, nil
}

func TestExtractorTextCachesAndPrimesImage(t *testing.T) {
	scraper := &fakeScraper{pages: map[string]*Page{
		"https://a": {Text: "  body text  ", TopImage: "https://img/a.jpg"},
	}}
	gw, store := newTestGateway()
	x := NewExtractor(scraper, gw)
	ctx := context.Background()

	text, err := x.Text(ctx, "https://a")
	if err != nil || text != "body text" {
		t.Fatalf("Text() = %q, %v", text, err)
	}
	if _, err := x.Text(ctx, "https://a"); err != nil {
		t.Fatalf("second Text(): %v", err)
	}
	img, err := x.Image(ctx, "https://a")
	if err != nil || img != "https://img/a.jpg" {
		t.Fatalf("Image() = %q, %v", img, err)
	}
	if scraper.calls != 1 {
		t.Fatalf("scraper called %d times, want 1", scraper.calls)
	}
	if store.SetCount(cache.ArticleContentKey("https://a")) != 1 {
		t.Fatalf("content key should be written once")
	}
}

func TestExtractorFailuresAreNotCached(t *testing.T) {
	scraper := &fakeScraper{pages: map[string]*Page{
		"https://empty": {Text: "   "},
	}}
	gw, store := newTestGateway()
	x := NewExtractor(scraper, gw)
	ctx := context.Background()

	if text, err := x.Text(ctx, "https://missing"); err == nil || text != "" {
		t.Fatalf("expected failure, got %q, %v", text, err)
	}
	if _, err := x.Text(ctx, "https://empty"); !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
	if _, err := x.Image(ctx, "https://empty"); !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent for image, got %v", err)
	}
	if len(store.Keys()) != 0 {
		t.Fatalf("nothing should be cached: %v", store.Keys())
	}
}

func TestExtractorImageOnly(t *testing.T) {
	scraper := &fakeScraper{pages: map[string]*Page{
		"https://b": {Text: "text", TopImage: "https://img/b.png"},
	}}
	gw, _ := newTestGateway()
	x := NewExtractor(scraper, gw)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		img, err := x.Image(ctx, "https://b")
		if err != nil || img != "https://img/b.png" {
			t.Fatalf("Image() = %q, %v", img, err)
		}
	}
	if scraper.calls != 1 {
		t.Fatalf("scraper called %d times, want 1", scraper.calls)
	}
}

func TestExtractorImageReusesTextScrapeWithoutImage(t *testing.T) {
	scraper := &fakeScraper{pages: map[string]*Page{
		"https://c": {Text: "body without picture"},
	}}
	gw, store := newTestGateway()
	x := NewExtractor(scraper, gw)
	ctx := context.Background()

	if _, err := x.Text(ctx, "https://c"); err != nil {
		t.Fatalf("Text(): %v", err)
	}
	if _, err := x.Image(ctx, "https://c"); !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
	if scraper.calls != 1 {
		t.Fatalf("scraper called %d times, want 1", scraper.calls)
	}
	if n := store.SetCount(cache.ArticleImageKey("https://c")); n != 0 {
		t.Fatalf("missing image must not be cached, got %d writes", n)
	}

	// 超过记录时间后重新抓取
	x.mu.Lock()
	x.noImage["https://c"] = time.Now().Add(-2 * noImageTTL)
	x.mu.Unlock()
	_, _ = x.Image(ctx, "https://c")
	if scraper.calls != 2 {
		t.Fatalf("scraper called %d times after expiry, want 2", scraper.calls)
	}
}
