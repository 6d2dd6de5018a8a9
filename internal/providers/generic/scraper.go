package generic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/ficpub/internal/extract"
	"github.com/brogergvhs/ficpub/internal/providers"
	"github.com/brogergvhs/ficpub/internal/ui"
	"github.com/brogergvhs/ficpub/internal/util"
)

type Scraper struct {
	client *http.Client
	layout extract.Layout
	log    *ui.Logger
}

func NewScraper(c *http.Client, layout extract.Layout, log *ui.Logger) *Scraper {
	if log == nil {
		log = ui.NopLogger()
	}

	return &Scraper{
		client: c,
		layout: layout.WithDefaults(),
		log:    log,
	}
}

var (
	// /s/<story>/<chapter>[/<slug>]
	reStoryPath = regexp.MustCompile(`^/s/(\d+)/(\d+)(/.*)?$`)

	ErrUnknownURL = errors.New("cannot derive chapter URLs from this address")
)

func (s *Scraper) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := util.DoWithRetry(s.client, req, 3, 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", target, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// GetChapters reads the chapter selector of the page at pageURL and returns
// one entry per listed chapter. A page without a selector is a single
// chapter story.
func (s *Scraper) GetChapters(ctx context.Context, pageURL string) ([]providers.Chapter, error) {
	body, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	names := s.layout.ChapterList(doc)
	s.log.Debugf("chapter selector lists %d chapters", len(names))

	if len(names) == 0 {
		title := strings.TrimSpace(doc.Find("title").First().Text())
		return []providers.Chapter{{URL: pageURL, Title: title, Number: 1, Label: "1"}}, nil
	}

	out := make([]providers.Chapter, 0, len(names))
	for i, name := range names {
		u, err := s.chapterURL(pageURL, i+1, name)
		if err != nil {
			return nil, err
		}

		out = append(out, providers.Chapter{
			URL:    u,
			Title:  name,
			Number: i + 1,
			Label:  strconv.Itoa(i + 1),
		})
	}

	return out, nil
}

// chapterURL points pageURL at chapter number n. Story paths carry the
// number as a path segment; reader pages carry the chapter name in a
// query parameter.
func (s *Scraper) chapterURL(pageURL string, n int, name string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	if m := reStoryPath.FindStringSubmatch(u.Path); m != nil {
		u.Path = fmt.Sprintf("/s/%s/%d%s", m[1], n, m[3])
		return u.String(), nil
	}

	q := u.Query()
	if q.Has(s.layout.ChapterParam) {
		q.Set(s.layout.ChapterParam, name)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownURL, pageURL)
}

// Snapshot downloads the raw chapter page and checks that it can be
// imported.
func (s *Scraper) Snapshot(ctx context.Context, chapterURL string) ([]byte, error) {
	body, err := s.fetch(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	if _, err := s.layout.Parse(bytes.NewReader(body), chapterURL); err != nil {
		return nil, fmt.Errorf("%s: %w", chapterURL, err)
	}

	return body, nil
}
