package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articleHTML = `<html><head><title>Park</title><script>var x = 1;</script></head>
<body>
<nav><p>Home | World | Sport</p></nav>
<article>
  <h1>Council approves park</h1>
  <p>The city council approved the new riverside park project on Tuesday evening after a long debate.</p>
  <p>Construction is expected to start in spring and take about eighteen months, officials said.</p>
  <div class="share"><p>Share this article</p></div>
  <p>Residents welcomed the decision, which adds twelve hectares of green space to the district.</p>
</article>
<footer><p>Copyright 2024</p></footer>
</body></html>`

func TestFetchAndExtract(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articleHTML)
	}))
	defer srv.Close()

	s := New("Mozilla/5.0 test", 5*time.Second)
	text, err := s.FetchAndExtract(context.Background(), srv.URL+"/news/park")
	if err != nil {
		t.Fatalf("FetchAndExtract: %v", err)
	}
	if userAgent != "Mozilla/5.0 test" {
		t.Errorf("User-Agent = %q", userAgent)
	}
	if !strings.HasPrefix(text, "The city council approved") {
		t.Errorf("text starts with %.40q", text)
	}
	if !strings.Contains(text, "\n\nConstruction is expected") {
		t.Errorf("paragraphs not separated: %q", text)
	}
	for _, noise := range []string{"Share this article", "Copyright", "Home | World", "var x"} {
		if strings.Contains(text, noise) {
			t.Errorf("text contains noise %q", noise)
		}
	}
}

func TestFetchAndExtractErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	s := New("ua", time.Second)
	if _, err := s.FetchAndExtract(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 404 page")
	}
	if _, err := s.FetchAndExtract(context.Background(), "ftp://example.com/file"); err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestExtractMainTextFallsBackToBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div><p>Short note one.</p><p>Short note two.</p></div></body></html>`)
	}))
	defer srv.Close()

	text, err := New("ua", time.Second).FetchAndExtract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchAndExtract: %v", err)
	}
	if text != "Short note one.\n\nShort note two." {
		t.Errorf("text = %q", text)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com/a", false},
		{"http://example.com", false},
		{"ftp://example.com", true},
		{"https://", true},
		{"://bad", true},
	}
	for _, tt := range tests {
		if err := ValidateURL(tt.url); (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}
