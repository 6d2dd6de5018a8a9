package generic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brogergvhs/ficpub/internal/extract"
	"github.com/brogergvhs/ficpub/internal/util"
)

var names = []string{"1. Ashes", "2. Embers", "3. Flame"}

func storyPage(n int) string {
	var opts strings.Builder
	for i, name := range names {
		sel := ""
		if i+1 == n {
			sel = " selected"
		}
		fmt.Fprintf(&opts, `<option value="%d"%s>%s</option>`, i+1, sel, name)
	}

	return fmt.Sprintf(`<html><head><title>Fire</title></head><body>
<div id="profile_top"><b>Fire</b> <a href="/u/5/Ember">Ember</a></div>
<select id="chap_select">%s</select>
<div id="storytext"><p>chapter %d body</p></div>
</body></html>`, opts.String(), n)
}

func newTestScraper(t *testing.T, h http.Handler) (*Scraper, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:   5 * time.Second,
		Transport: http.DefaultTransport,
	})
	if err != nil {
		t.Fatal(err)
	}

	return NewScraper(client, extract.DefaultLayout(), nil), srv
}

func storyHandler() http.Handler {
	mux := http.NewServeMux()
	for i := range names {
		n := i + 1
		mux.HandleFunc(fmt.Sprintf("/s/77/%d/Fire", n), func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, storyPage(n))
		})
	}
	mux.HandleFunc("/s/77/9/Fire", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<html><body><p>Chapter not found.</p></body></html>`)
	})
	return mux
}

func TestGetChapters(t *testing.T) {
	s, srv := newTestScraper(t, storyHandler())

	chs, err := s.GetChapters(context.Background(), srv.URL+"/s/77/2/Fire")
	if err != nil {
		t.Fatalf("GetChapters failed: %v", err)
	}

	if len(chs) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(chs))
	}
	for i, ch := range chs {
		if ch.Number != i+1 || ch.Title != names[i] {
			t.Errorf("chapter %d = %+v", i, ch)
		}
		if want := fmt.Sprintf("%s/s/77/%d/Fire", srv.URL, i+1); ch.URL != want {
			t.Errorf("url = %q, want %q", ch.URL, want)
		}
	}
}

func TestSnapshot(t *testing.T) {
	s, srv := newTestScraper(t, storyHandler())

	body, err := s.Snapshot(context.Background(), srv.URL+"/s/77/3/Fire")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if !strings.Contains(string(body), "chapter 3 body") {
		t.Errorf("unexpected body %s", body)
	}

	if _, err := s.Snapshot(context.Background(), srv.URL+"/s/77/9/Fire"); !errors.Is(err, extract.ErrStoryNotFound) {
		t.Errorf("expected ErrStoryNotFound for a non-chapter page, got %v", err)
	}

	if _, err := s.Snapshot(context.Background(), srv.URL+"/nowhere"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestChapterURL(t *testing.T) {
	s := NewScraper(nil, extract.DefaultLayout(), nil)

	tests := []struct {
		page string
		n    int
		name string
		want string
	}{
		{"https://example.net/s/123/1/Some-Story", 4, "4. Four", "https://example.net/s/123/4/Some-Story"},
		{"https://example.net/s/123/7", 2, "2. Two", "https://example.net/s/123/2"},
		{"https://reader.example/read?story=8&chapter=One", 2, "Chapter Two", "https://reader.example/read?chapter=Chapter+Two&story=8"},
	}

	for _, tt := range tests {
		got, err := s.chapterURL(tt.page, tt.n, tt.name)
		if err != nil {
			t.Errorf("chapterURL(%q): %v", tt.page, err)
			continue
		}
		if got != tt.want {
			t.Errorf("chapterURL(%q) = %q, want %q", tt.page, got, tt.want)
		}
	}

	if _, err := s.chapterURL("https://example.net/works/1", 1, "x"); !errors.Is(err, ErrUnknownURL) {
		t.Errorf("expected ErrUnknownURL, got %v", err)
	}
}

func TestGetChaptersSingle(t *testing.T) {
	s, srv := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<html><head><title>Oneshot</title></head><body><div id="storytext">x</div></body></html>`)
	}))

	chs, err := s.GetChapters(context.Background(), srv.URL+"/s/1/1/Oneshot")
	if err != nil {
		t.Fatal(err)
	}
	if len(chs) != 1 || chs[0].Title != "Oneshot" || chs[0].URL != srv.URL+"/s/1/1/Oneshot" {
		t.Errorf("unexpected chapters %+v", chs)
	}
}
