package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
)

const (
	scraperUserAgent      = "NewsLensBot/1.0"
	scraperRequestTimeout = 30 * time.Second
	scraperMaxBodyBytes   = 5 << 20 // 5MB
)

// ReadabilityScraper 用 colly 下载页面，再用 go-readability 抽取正文与头图
type ReadabilityScraper struct {
	UserAgent string
	Timeout   time.Duration
}

func NewReadabilityScraper() *ReadabilityScraper {
	return &ReadabilityScraper{UserAgent: scraperUserAgent, Timeout: scraperRequestTimeout}
}

func (s *ReadabilityScraper) Scrape(ctx context.Context, pageURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 每次抓取用独立的 collector，避免 colly 的"已访问"去重影响重复抓取
	c := colly.NewCollector(
		colly.UserAgent(s.UserAgent),
		colly.MaxBodySize(scraperMaxBodyBytes),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(s.Timeout)

	var (
		body     []byte
		finalURL *url.URL
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		finalURL = r.Request.URL
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("download %s: %w", pageURL, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("download %s: empty body", pageURL)
	}
	if finalURL == nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("parse url %s: %w", pageURL, err)
		}
		finalURL = u
	}

	article, err := readability.FromReader(bytes.NewReader(body), finalURL)
	if err != nil {
		return nil, fmt.Errorf("readability %s: %w", pageURL, err)
	}

	return &Page{
		Text:     strings.TrimSpace(article.TextContent),
		TopImage: strings.TrimSpace(article.Image),
	}, nil
}
