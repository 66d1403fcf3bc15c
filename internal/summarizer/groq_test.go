package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGroqClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "llama3-8b-8192" || req.MaxTokens != 300 || len(req.Messages) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		if req.Messages[0].Role != "system" || req.Messages[1].Content != "hello" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"TITLE: t\nSUMMARY: s"}}]}`))
	}))
	defer srv.Close()

	c := NewGroqClient("secret", srv.URL, "llama3-8b-8192")
	out, err := c.Complete(context.Background(), "sys", "hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "TITLE: t\nSUMMARY: s" {
		t.Fatalf("Complete = %q", out)
	}
}

func TestGroqClientAPIErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"non 200", http.StatusTooManyRequests, `{"error":{"message":"rate limit"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"malformed", http.StatusOK, `not json`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			}))
			defer srv.Close()

			_, err := NewGroqClient("k", srv.URL, "m").Complete(context.Background(), "s", "p")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != c.status {
				t.Fatalf("StatusCode = %d, want %d", apiErr.StatusCode, c.status)
			}
		})
	}
}

func TestGroqClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewGroqClient("k", url, "m").Complete(context.Background(), "s", "p")
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure should not be an APIError")
	}
}
