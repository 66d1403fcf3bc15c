package collector

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ResolveImage 按固定优先级从 RSS 条目里找一张代表图：
// media:content → media:thumbnail → image/* 类型的 enclosure → content/description 中第一个 <img src>。
// 找不到返回空字符串。
func ResolveImage(e Entry) string {
	if u := firstNonEmpty(e.MediaContent); u != "" {
		return u
	}
	if u := firstNonEmpty(e.MediaThumbnail); u != "" {
		return u
	}
	for _, enc := range e.Enclosures {
		if enc.URL != "" && strings.HasPrefix(strings.ToLower(enc.Type), "image/") {
			return enc.URL
		}
	}
	for _, html := range []string{e.Content, e.Description} {
		if u := firstImgSrc(html); u != "" {
			return u
		}
	}
	return ""
}

func firstNonEmpty(urls []string) string {
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			return u
		}
	}
	return ""
}

func firstImgSrc(html string) (src string) {
	if !strings.Contains(strings.ToLower(html), "<img") {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("image: parse inline html failed: %v", r)
			src = ""
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("image: parse inline html error: %v", err)
		return ""
	}
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("src"); ok && strings.TrimSpace(v) != "" {
			src = strings.TrimSpace(v)
			return false
		}
		return true
	})
	return src
}
