package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/LJTian/NewsLens/internal/cache"
	"github.com/LJTian/NewsLens/internal/processor"
	"github.com/LJTian/NewsLens/internal/storage"
	"github.com/gin-gonic/gin"
)

// ArticleService 由 processor.Aggregator 实现
type ArticleService interface {
	Fetch(ctx context.Context, category string, limit int, refresh bool) (*processor.CategoryResult, error)
	Categories() []string
}

// CacheAdmin 由 cache.Gateway 实现
type CacheAdmin interface {
	Clear(ctx context.Context, pattern string) (int64, error)
	Stats(ctx context.Context) (cache.Stats, error)
}

// ArchiveReader 由 storage.Store 实现
type ArchiveReader interface {
	ListArticles(category string, limit int) ([]storage.Article, error)
}

type Server struct {
	articles ArticleService
	cache    CacheAdmin
	archive  ArchiveReader
}

// NewServer archive 可以为 nil（未配置 Postgres）
func NewServer(articles ArticleService, cacheAdmin CacheAdmin, archive ArchiveReader) *Server {
	return &Server{articles: articles, cache: cacheAdmin, archive: archive}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/", s.root)
	r.GET("/health", s.health)
	r.GET("/categories/", s.listCategories)
	r.GET("/fetch-articles/", s.fetchArticles)
	r.GET("/clear-cache/", s.clearCache)
	r.GET("/cache-stats/", s.cacheStats)
	r.GET("/archive/", s.listArchive)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "RSS Feed Aggregator with Groq Llama Summarization API",
		"endpoints": gin.H{
			"List categories": "/categories/",
			"Fetch articles":  "/fetch-articles/?category=<category_name>&limit=<number>&refresh_cache=<bool>",
			"Clear cache":     "/clear-cache/?pattern=<glob>",
			"Cache stats":     "/cache-stats/",
		},
		"available_categories": s.articles.Categories(),
	})
}

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": s.articles.Categories()})
}

type fetchArticlesQuery struct {
	Category     string `form:"category" binding:"required"`
	Limit        *int   `form:"limit" binding:"omitempty,min=1,max=10"`
	RefreshCache bool   `form:"refresh_cache"`
}

const defaultLimit = 3

func (s *Server) fetchArticles(c *gin.Context) {
	var q fetchArticlesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	limit := defaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}

	// 与请求生命周期解绑：客户端断开后，已开始的抓取仍然可以写入缓存
	ctx := context.WithoutCancel(c.Request.Context())

	res, err := s.articles.Fetch(ctx, q.Category, limit, q.RefreshCache)
	if err != nil {
		var nf *processor.CategoryNotFoundError
		if errors.As(err, &nf) {
			c.JSON(http.StatusNotFound, gin.H{"detail": nf.Error()})
			return
		}
		log.Printf("api: fetch %s error: %v", q.Category, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) clearCache(c *gin.Context) {
	pattern := c.DefaultQuery("pattern", "*")
	n, err := s.cache.Clear(c.Request.Context(), pattern)
	if err != nil {
		log.Printf("api: clear cache %q error: %v", pattern, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("Error clearing cache: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Cleared %d cache entries", n),
		"pattern":       pattern,
		"deleted_count": n,
	})
}

func (s *Server) cacheStats(c *gin.Context) {
	st, err := s.cache.Stats(c.Request.Context())
	if err != nil {
		log.Printf("api: cache stats error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("Error getting cache stats: %v", err)})
		return
	}
	c.JSON(http.StatusOK, st)
}

type archiveQuery struct {
	Category string `form:"category"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (s *Server) listArchive(c *gin.Context) {
	if s.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "archive is not configured"})
		return
	}
	var q archiveQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	items, err := s.archive.ListArticles(q.Category, q.Limit)
	if err != nil {
		log.Printf("api: list archive error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": items})
}
