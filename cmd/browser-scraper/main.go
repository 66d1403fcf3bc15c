package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/chromedp/chromedp"
)

const (
	defaultMaxChars = 8000
	maxMaxChars     = 20000
)

// 独立部署的正文抽取服务：对 JS 渲染的新闻页用 headless Chrome 取正文与头图。
// API 进程配置 BROWSER_SCRAPER_URL 后，在普通抓取拿不到正文时回退到这里。
func main() {
	// 创建浏览器执行器与顶层上下文，整个进程复用一个 headless 实例
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// 预热浏览器，避免首个请求耗时过长
	if err := chromedp.Run(browserCtx); err != nil {
		log.Printf("warn: warmup chromedp failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/extract", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req collector.BrowserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, collector.BrowserResponse{OK: false, Error: "invalid json"})
			return
		}
		if req.URL == "" {
			writeJSON(w, http.StatusBadRequest, collector.BrowserResponse{OK: false, Error: "url is required"})
			return
		}
		if req.MaxChars <= 0 || req.MaxChars > maxMaxChars {
			req.MaxChars = defaultMaxChars
		}

		// 每个请求用独立的超时上下文，复用同一个 browserCtx
		ctx, cancel := context.WithTimeout(browserCtx, 20*time.Second)
		defer cancel()

		var text, image string
		err := chromedp.Run(ctx,
			chromedp.Navigate(req.URL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Evaluate(extractJS(), &text),
			chromedp.Evaluate(imageJS, &image),
		)
		if err != nil {
			log.Printf("extract error: %v (url=%s)", err, req.URL)
			writeJSON(w, http.StatusOK, collector.BrowserResponse{OK: false, Error: err.Error()})
			return
		}

		text = trimWhitespace(text)
		if text == "" {
			writeJSON(w, http.StatusOK, collector.BrowserResponse{OK: false, Error: "empty content", Image: image})
			return
		}

		// rune 级截断，避免多字节字符被截成半个
		rs := []rune(text)
		if len(rs) > req.MaxChars {
			text = string(rs[:req.MaxChars]) + "…"
		}

		writeJSON(w, http.StatusOK, collector.BrowserResponse{OK: true, Text: text, Image: strings.TrimSpace(image)})
	})

	srv := &http.Server{
		Addr:              ":" + getEnv("PORT", "4000"),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("browser-scraper listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("browser-scraper stopped")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// imageJS 依次取 og:image、twitter:image、正文里第一张图
const imageJS = `(function () {
  var metas = ['meta[property="og:image"]', 'meta[name="twitter:image"]'];
  for (var i = 0; i < metas.length; i++) {
    var m = document.querySelector(metas[i]);
    if (m && m.content) return m.content;
  }
  var img = document.querySelector("article img, main img");
  return img && img.src ? img.src : "";
})();`

// extractJS 返回一段 JS，用于在页面中提取正文文本。
// 会优先在常见正文容器中找段落，找不到时再全页兜底。
func extractJS() string {
	return `(function () {
  function getTextFromSelector(selector) {
    var el = document.querySelector(selector);
    if (!el) return "";
    return el.innerText || "";
  }

  var selectors = [
    "article",
    "[itemprop=articleBody]",
    "div.article-body",
    "div.story-body",
    "div.article-content",
    "div#content",
    "div.main-content",
    "main"
  ];

  var text = "";
  for (var i = 0; i < selectors.length; i++) {
    text = getTextFromSelector(selectors[i]).trim();
    if (text && text.length > 200) {
      break;
    }
  }

  if (!text || text.length < 200) {
    // 兜底：遍历全页较长段落
    var nodes = Array.prototype.slice.call(document.querySelectorAll("p"));
    var pieces = [];
    for (var j = 0; j < nodes.length; j++) {
      var t = (nodes[j].innerText || "").trim();
      if (t.length >= 40) {
        pieces.push(t);
      }
      if (pieces.join("\\n\\n").length > 20000) break;
    }
    text = pieces.join("\\n\\n");
  }

  return (text || "").replace(/\\s+\\n/g, "\\n").trim();
})();`
}

func trimWhitespace(s string) string {
	// 简单的空白清理，避免过多连续空行
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}
