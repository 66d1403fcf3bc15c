package cache

import "fmt"

// 各阶段的 key 命名空间
const (
	prefixArticleContent   = "article_content:"
	prefixArticleImage     = "article_image:"
	prefixSummary          = "summary:"
	prefixFeed             = "rss_feed:"
	prefixProcessedArticle = "processed_article:"
	prefixCategory         = "category_response:"
)

func ArticleContentKey(url string) string { return prefixArticleContent + url }

func ArticleImageKey(url string) string { return prefixArticleImage + url }

func SummaryKey(fingerprint string) string { return prefixSummary + fingerprint }

func FeedKey(feedURL string, limit int) string {
	return fmt.Sprintf("%s%s:%d", prefixFeed, feedURL, limit)
}

func ProcessedArticleKey(url string) string { return prefixProcessedArticle + url }

func CategoryKey(category string, limit int) string {
	return fmt.Sprintf("%s%s:%d", prefixCategory, category, limit)
}
