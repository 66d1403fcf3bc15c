package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category 一个新闻分类及其 RSS 源，顺序即展示顺序
type Category struct {
	Name  string   `yaml:"name"`
	Feeds []string `yaml:"feeds"`
}

// DefaultCategories 内置的分类与 RSS 源
var DefaultCategories = []Category{
	{
		Name: "technology",
		Feeds: []string{
			"https://indianexpress.com/section/technology/feed/",
			"https://www.livemint.com/rss/technology",
			"https://tech.hindustantimes.com/rss/rssfeed",
		},
	},
	{
		Name: "business",
		Feeds: []string{
			"https://indianexpress.com/section/business/feed/",
			"https://www.livemint.com/rss/companies",
			"https://www.hindustantimes.com/business/rssfeed.xml",
		},
	},
	{
		Name: "sports",
		Feeds: []string{
			"https://indianexpress.com/section/sports/feed/",
			"https://www.livemint.com/rss/sports",
			"https://www.hindustantimes.com/sports/rssfeed.xml",
		},
	},
	{
		Name: "india",
		Feeds: []string{
			"https://indianexpress.com/section/india/feed/",
			"https://www.livemint.com/rss/politics",
			"https://www.hindustantimes.com/india-news/rssfeed.xml",
		},
	},
}

// feedsFile YAML 结构:
//
//	categories:
//	  - name: technology
//	    feeds:
//	      - https://...
type feedsFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadCategories 读取分类配置；path 为空时使用内置列表
func LoadCategories(path string) ([]Category, error) {
	if path == "" {
		return DefaultCategories, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ff feedsFile
	if err := yaml.NewDecoder(f).Decode(&ff); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return validateCategories(ff.Categories)
}

func validateCategories(in []Category) ([]Category, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("no categories configured")
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]Category, 0, len(in))
	for _, c := range in {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category with empty name")
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = struct{}{}

		feeds := make([]string, 0, len(c.Feeds))
		for _, u := range c.Feeds {
			if u = strings.TrimSpace(u); u != "" {
				feeds = append(feeds, u)
			}
		}
		if len(feeds) == 0 {
			return nil, fmt.Errorf("category %q has no feeds", name)
		}
		out = append(out, Category{Name: name, Feeds: feeds})
	}
	return out, nil
}
