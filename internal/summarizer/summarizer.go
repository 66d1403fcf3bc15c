package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/LJTian/NewsLens/internal/cache"
	"github.com/cespare/xxhash/v2"
)

const (
	minContentChars    = 100
	maxPromptChars     = 4000
	titleFailed        = "Title extraction failed"
	summaryFailed      = "Summary extraction failed"
	titleNoKey         = "No Groq API key provided"
	summaryNoKey       = "No Groq API key provided. Summary generation skipped."
	titleTooShort      = "Content too short"
	summaryTooShort    = "Content too short or empty to summarize."
	titleError         = "Error"
	titleAPIError      = "API Error"
	errorSummaryPrefix = "Error generating content: "
)

const systemPrompt = "You are an expert news editor who creates accurate titles and summaries based on article content. Provide direct, clear responses without introductory phrases."

const userPrompt = `Based on the following article content, generate:
1. A concise, accurate title (one line)
2. A brief 2-3 sentence summary

Format your response exactly like this:
TITLE: [your generated title]
SUMMARY: [your generated summary]

Here's the article content:
%s`

var (
	titleRe   = regexp.MustCompile(`(?i)TITLE:\s*(.*?)(?:\n|$)`)
	summaryRe = regexp.MustCompile(`(?is)SUMMARY:\s*(.*)`)
	newlineRe = regexp.MustCompile(`\n+`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Result 生成的标题与摘要
type Result struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Failed 表示本次调用 LLM 出错（占位结果），调用方不应长期缓存
func (r Result) Failed() bool {
	return r.Title == titleError || r.Title == titleAPIError
}

// Summarizer 按内容指纹缓存 LLM 生成的标题与摘要。
// 所有失败都转换为固定的占位结果，不向调用方返回错误。
type Summarizer struct {
	llm   Completer
	cache *cache.Gateway
}

// New llm 为 nil 表示没有配置 API Key
func New(llm Completer, gw *cache.Gateway) *Summarizer {
	return &Summarizer{llm: llm, cache: gw}
}

func (s *Summarizer) Summarize(ctx context.Context, content string) Result {
	if s.llm == nil {
		return Result{Title: titleNoKey, Summary: summaryNoKey}
	}
	if utf8.RuneCountInString(strings.TrimSpace(content)) < minContentChars {
		return Result{Title: titleTooShort, Summary: summaryTooShort}
	}

	key := cache.SummaryKey(Fingerprint(content))
	var cached Result
	if s.cache.Get(ctx, key, &cached) {
		return cached
	}

	log.Printf("summarizer: calling llm for title and summary")
	raw, err := s.llm.Complete(ctx, systemPrompt, fmt.Sprintf(userPrompt, truncateRunes(content, maxPromptChars)))
	if err != nil {
		log.Printf("summarizer: llm error: %v", err)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return Result{Title: titleAPIError, Summary: errorSummaryPrefix + err.Error()}
		}
		return Result{Title: titleError, Summary: errorSummaryPrefix + err.Error()}
	}

	res := parseResponse(raw)
	log.Printf("summarizer: generated title %q", res.Title)
	s.cache.Set(ctx, key, res, 0)
	return res
}

// Fingerprint 内容的 64 位 xxhash（十六进制）。相同文本得到相同 key，不要求抗碰撞
func Fingerprint(content string) string {
	return strconv.FormatUint(xxhash.Sum64String(content), 16)
}

func parseResponse(raw string) Result {
	raw = strings.TrimSpace(raw)

	res := Result{Title: titleFailed, Summary: summaryFailed}
	if m := titleRe.FindStringSubmatch(raw); m != nil {
		res.Title = cleanText(m[1])
	}
	if m := summaryRe.FindStringSubmatch(raw); m != nil {
		res.Summary = cleanText(m[1])
	}
	return res
}

// cleanText 把连续换行/空白折叠成单个空格
func cleanText(s string) string {
	s = newlineRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	rs := []rune(s)
	return string(rs[:limit])
}
