package collector

import "context"

// RawArticle 从 RSS 条目整理出的原始文章，URL 是唯一标识
type RawArticle struct {
	OriginalTitle string  `json:"original_title"`
	URL           string  `json:"url"`
	Published     *string `json:"published"`
	Source        string  `json:"source"`
	ImageURL      *string `json:"image_url"`
	// 正文（content）优先，没有时用 description
	RSSContent *string `json:"rss_content"`
}

// Feed 是 FeedParser 的输出，字段全部显式，不做反射探测
type Feed struct {
	Title   string
	Entries []Entry
}

type Entry struct {
	Title       string
	Link        string
	Published   string
	Content     string
	Description string

	// media:content / media:thumbnail 中的 url，按出现顺序
	MediaContent   []string
	MediaThumbnail []string
	Enclosures     []Enclosure
}

type Enclosure struct {
	URL  string
	Type string
}

// Page 抓取到的文章正文与头图
type Page struct {
	Text     string
	TopImage string
}

// FeedParser 抽象 RSS/Atom 解析
type FeedParser interface {
	Parse(ctx context.Context, feedURL string) (*Feed, error)
}

// Scraper 抽象网页下载 + 正文抽取
type Scraper interface {
	Scrape(ctx context.Context, pageURL string) (*Page, error)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
