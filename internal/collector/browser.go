package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// BrowserRequest / BrowserResponse 是 browser-scraper 服务的 /extract 协议
type BrowserRequest struct {
	URL      string `json:"url"`
	MaxChars int    `json:"maxChars"`
}

type BrowserResponse struct {
	OK    bool   `json:"ok"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
	Error string `json:"error,omitempty"`
}

const browserMaxChars = 8000

// BrowserScraper 调用独立部署的 headless 浏览器服务抽取正文，
// 用于 JS 渲染、普通下载拿不到正文的页面
type BrowserScraper struct {
	Endpoint string
	MaxChars int
	Client   *http.Client
}

func NewBrowserScraper(endpoint string) *BrowserScraper {
	return &BrowserScraper{
		Endpoint: strings.TrimRight(endpoint, "/") + "/extract",
		MaxChars: browserMaxChars,
		// 浏览器侧单页超时 20 秒，这里多留一些余量
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *BrowserScraper) Scrape(ctx context.Context, pageURL string) (*Page, error) {
	payload, err := json.Marshal(BrowserRequest{URL: pageURL, MaxChars: s.MaxChars})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("browser scraper: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("browser scraper: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("browser scraper: status %d", resp.StatusCode)
	}

	var out BrowserResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("browser scraper: decode: %w", err)
	}
	if !out.OK {
		return nil, fmt.Errorf("browser scraper: %s", out.Error)
	}
	return &Page{Text: strings.TrimSpace(out.Text), TopImage: strings.TrimSpace(out.Image)}, nil
}

// FallbackScraper 先用 Primary，失败或正文为空时再用 Fallback。
// Fallback 也失败时返回 Primary 的结果，头图尽量保留。
type FallbackScraper struct {
	Primary  Scraper
	Fallback Scraper
}

func (s FallbackScraper) Scrape(ctx context.Context, pageURL string) (*Page, error) {
	page, err := s.Primary.Scrape(ctx, pageURL)
	if err == nil && page != nil && strings.TrimSpace(page.Text) != "" {
		return page, nil
	}
	if s.Fallback == nil {
		return page, err
	}

	alt, altErr := s.Fallback.Scrape(ctx, pageURL)
	if altErr != nil {
		log.Printf("scrape: fallback for %s error: %v", pageURL, altErr)
		if err != nil {
			return nil, errors.Join(err, altErr)
		}
		return page, nil
	}
	if alt.TopImage == "" && page != nil {
		alt.TopImage = page.TopImage
	}
	return alt, nil
}
