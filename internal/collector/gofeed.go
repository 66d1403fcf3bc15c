package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// GofeedParser 用 gofeed 解析 RSS/Atom/JSON Feed
type GofeedParser struct {
	parser *gofeed.Parser
}

func NewGofeedParser(userAgent string) *GofeedParser {
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	p.Client = &http.Client{Timeout: 30 * time.Second}
	return &GofeedParser{parser: p}
}

func (g *GofeedParser) Parse(ctx context.Context, feedURL string) (*Feed, error) {
	feed, err := g.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", feedURL, err)
	}
	return convertFeed(feed), nil
}

func convertFeed(feed *gofeed.Feed) *Feed {
	out := &Feed{
		Title:   feed.Title,
		Entries: make([]Entry, 0, len(feed.Items)),
	}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		e := Entry{
			Title:       item.Title,
			Link:        item.Link,
			Published:   item.Published,
			Content:     item.Content,
			Description: item.Description,
		}

		if media, ok := item.Extensions["media"]; ok {
			e.MediaContent = mediaURLs(media, "content")
			e.MediaThumbnail = mediaURLs(media, "thumbnail")
		}
		// item.Image 可能来自 itunes:image，不属于 media 字段，这里不使用

		for _, enc := range item.Enclosures {
			if enc == nil {
				continue
			}
			e.Enclosures = append(e.Enclosures, Enclosure{URL: enc.URL, Type: enc.Type})
		}
		out.Entries = append(out.Entries, e)
	}
	return out
}

// mediaURLs 收集 media:<name> 的 url 属性，兼容包在 media:group 里的情况
func mediaURLs(media map[string][]ext.Extension, name string) []string {
	var urls []string
	for _, m := range media[name] {
		if u := m.Attrs["url"]; u != "" {
			urls = append(urls, u)
		}
	}
	for _, group := range media["group"] {
		for _, m := range group.Children[name] {
			if u := m.Attrs["url"]; u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}
