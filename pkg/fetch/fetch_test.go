package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>北緯44度の街で</title><meta name="author" content="山田太郎"></head>
<body><article>
<h1>北緯44度の街で</h1>
<p class="byline">3時間前</p>
<p>この街では冬になると<ruby>流氷<rt>りゅうひょう</rt></ruby>が海を覆い尽くし、漁師たちは港で春を待ち続ける。
長い冬の間、町の人々は集まって昔話をしながら、次の季節の準備を少しずつ進めていく。</p>
<p>春が来ると港は再び活気を取り戻し、朝早くから船のエンジン音が響き渡る。
観光客も訪れるようになり、小さな食堂には行列ができることもある。</p>
</article></body></html>`

func TestArticle(t *testing.T) {
	agents := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	a, err := f.Article(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Article: %v", err)
	}
	if gotUA := <-agents; gotUA != DefaultUserAgent {
		t.Errorf("expected browser user agent, got %q", gotUA)
	}
	if !strings.Contains(a.Title, "北緯44度の街で") {
		t.Errorf("unexpected title %q", a.Title)
	}
	if !strings.Contains(a.Text, "流氷") {
		t.Errorf("expected article text, got %q", a.Text)
	}
	if strings.Contains(a.Text, "りゅうひょう") {
		t.Errorf("furigana leaked into text: %q", a.Text)
	}
	if a.URL != srv.URL {
		t.Errorf("expected URL %q, got %q", srv.URL, a.URL)
	}
}

func TestArticleStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := (&Fetcher{}).Article(context.Background(), srv.URL)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusForbidden {
		t.Fatalf("expected StatusError 403, got %v", err)
	}
}

func TestArticleTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Chunked encoding hides the length, so the read limit must catch it.
		w.(http.Flusher).Flush()
		w.Write([]byte(strings.Repeat("a", 2048)))
	}))
	defer srv.Close()

	f := &Fetcher{MaxBodySize: 1024}
	if _, err := f.Article(context.Background(), srv.URL); !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
}

func TestArticleCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(time.Second).Article(ctx, srv.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractFurigana(t *testing.T) {
	u, _ := url.Parse("http://localhost/furigana")
	a, err := Extract([]byte(articleHTML), u)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if strings.Contains(a.Text, "流氷りゅうひょう") {
		t.Errorf("readability output still contains furigana: %q", a.Text)
	}
}

func TestSanitizeRuby(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple Ruby",
			input:    "<ruby>漢字<rt>かんじ</rt></ruby>",
			expected: "<ruby>漢字</ruby>",
		},
		{
			name:     "Ruby with RP",
			input:    "<ruby>漢字<rp>(</rp><rt>かんじ</rt><rp>)</rp></ruby>",
			expected: "<ruby>漢字</ruby>",
		},
		{
			name:     "Multiple Ruby",
			input:    "<ruby>私<rt>わたし</rt></ruby>は<ruby>猫<rt>ねこ</rt></ruby>である",
			expected: "<ruby>私</ruby>は<ruby>猫</ruby>である",
		},
		{
			name:     "Attributes in tags",
			input:    "<ruby class='test'>漢字<rt class='reading'>かんじ</rt></ruby>",
			expected: "<ruby class='test'>漢字</ruby>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeRuby([]byte(tt.input))
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}
