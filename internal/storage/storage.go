package storage

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/LJTian/NewsLens/internal/processor"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	titleMaxRunes   = 512
	summaryMaxRunes = 2000
)

// Article 归档的文章，按 URL 去重；同一 URL 再次处理时更新标题/摘要等
type Article struct {
	ID        string            `gorm:"primaryKey;size:40" json:"id"`
	Category  string            `gorm:"size:64;index" json:"category"`
	Title     string            `gorm:"size:512" json:"title"`
	URL       string            `gorm:"size:1024;uniqueIndex" json:"url"`
	Source    string            `gorm:"size:256;index" json:"source"`
	Summary   string            `gorm:"size:2000" json:"summary"`
	Content   string            `gorm:"type:text" json:"content"`
	ImageURL  string            `gorm:"size:1024" json:"imageUrl"`
	Published string            `gorm:"size:64" json:"published"`
	ExtraData datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB *gorm.DB
}

func NewStore(dsn string) (*Store, error) {
	return openStore(postgres.Open(dsn))
}

func openStore(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Article{}); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// articleFromResult 把处理结果转换为归档行；降级结果（没有正文）也照常记录
func articleFromResult(category string, r processor.ArticleResult) Article {
	extra := datatypes.JSONMap{
		"has_content": r.Content != nil,
		"has_summary": r.Summary != nil,
	}
	return Article{
		ID:        hashURL(r.URL),
		Category:  category,
		Title:     truncateRunesDB(toValidUTF8(r.Title), titleMaxRunes),
		URL:       r.URL,
		Source:    toValidUTF8(r.Source),
		Summary:   truncateRunesDB(toValidUTF8(deref(r.Summary)), summaryMaxRunes),
		Content:   toValidUTF8(deref(r.Content)),
		ImageURL:  deref(r.ImageURL),
		Published: truncateRunesDB(deref(r.Published), 64),
		ExtraData: extra,
	}
}

// SaveBatch 保存一批处理结果，以 URL 作为幂等键
func (s *Store) SaveBatch(category string, items []processor.ArticleResult) error {
	for _, it := range items {
		if it.URL == "" {
			continue
		}
		fresh := articleFromResult(category, it)
		// FirstOrCreate 命中已有行时会把旧值写回 row，更新字段只能取自 fresh
		updates := map[string]any{
			"category":   fresh.Category,
			"title":      fresh.Title,
			"source":     fresh.Source,
			"summary":    fresh.Summary,
			"content":    fresh.Content,
			"image_url":  fresh.ImageURL,
			"published":  fresh.Published,
			"extra_data": fresh.ExtraData,
		}

		row := fresh
		if err := s.DB.Where("url = ?", fresh.URL).FirstOrCreate(&row).Error; err != nil {
			return err
		}
		if err := s.DB.Model(&row).Updates(updates).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListArticles 按更新时间倒序返回归档文章，category 为空时不过滤
func (s *Store) ListArticles(category string, limit int) ([]Article, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []Article
	db := s.DB.Model(&Article{})
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if err := db.Order("updated_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
