// Package extract pulls story text and metadata out of saved fan-fiction
// chapter pages. Two page layouts are known; both are described by a
// Layout of candidate element ids.
package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/ficpub/internal/errs"
)

// Extract is the data read from one saved chapter page.
type Extract struct {
	Source      string
	Story       *goquery.Selection
	Title       string
	Author      string
	Chapter     string
	AllChapters []string
}

func (l Layout) Parse(r io.Reader, source string) (*Extract, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errs.App(fmt.Errorf("parse html: %w", err), source)
	}

	ext, err := l.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	ext.Source = source

	return ext, nil
}

func (l Layout) FromDocument(doc *goquery.Document) (*Extract, error) {
	story, ok := firstByID(doc.Selection, l.StoryIDs)
	if !ok {
		return nil, missing(ErrStoryNotFound, l.StoryIDs)
	}

	profile, ok := firstByID(doc.Selection, l.ProfileIDs)
	if !ok {
		return nil, missing(ErrProfileNotFound, l.ProfileIDs)
	}

	author := profile.Find("a").First()
	if author.Length() == 0 {
		return nil, missing(ErrAuthorNotFound, nil)
	}

	title := profile.Find("b").First()
	if title.Length() == 0 {
		return nil, missing(ErrTitleNotFound, nil)
	}

	chapter, err := l.chapterName(doc)
	if err != nil {
		return nil, err
	}

	return &Extract{
		Story:       story,
		Title:       strings.TrimSpace(title.Text()),
		Author:      strings.TrimSpace(author.Text()),
		Chapter:     chapter,
		AllChapters: l.ChapterList(doc),
	}, nil
}

func (l Layout) chapterName(doc *goquery.Document) (string, error) {
	strategies := []func(*goquery.Document) (string, bool){
		l.chapterFromAnchor,
		l.chapterFromSelector,
	}

	for _, s := range strategies {
		if name, ok := s(doc); ok {
			return name, nil
		}
	}

	return "", missing(ErrChapterNotFound, nil)
}

// chapterFromAnchor reads the chapter from the link next to the selected
// entry of a rendered chapter menu, e.g.
//
//	<li class="selected"></li><a href="?chapter=2.%20Two">…</a>
func (l Layout) chapterFromAnchor(doc *goquery.Document) (string, bool) {
	var name string

	doc.Find(`.selected, [aria-selected="true"]`).Not("option").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, a := range []*goquery.Selection{s.NextFiltered("a[href]"), s.PrevFiltered("a[href]")} {
			href, ok := a.Attr("href")
			if !ok {
				continue
			}

			u, err := url.Parse(strings.TrimSpace(href))
			if err != nil {
				continue
			}

			if v := strings.TrimSpace(u.Query().Get(l.ChapterParam)); v != "" {
				name = v
				return false
			}
		}

		return true
	})

	return name, name != ""
}

func (l Layout) chapterFromSelector(doc *goquery.Document) (string, bool) {
	sel, ok := firstByID(doc.Selection, l.SelectorIDs)
	if !ok {
		return "", false
	}

	options := sel.Find("option")
	if options.Length() == 0 {
		return "", false
	}

	// A select without an explicit selection shows its first option.
	selected := options.Filter("[selected]").First()
	if selected.Length() == 0 {
		selected = options.First()
	}

	name := optionText(selected)

	return name, name != ""
}

// ChapterList returns every chapter name offered by the chapter selector in
// document order, or nil when the page has no selector.
func (l Layout) ChapterList(doc *goquery.Document) []string {
	sel, ok := firstByID(doc.Selection, l.SelectorIDs)
	if !ok {
		return nil
	}

	var out []string
	sel.Find("option").Each(func(_ int, o *goquery.Selection) {
		if name := optionText(o); name != "" {
			out = append(out, name)
		}
	})

	return out
}

func firstByID(root *goquery.Selection, ids []string) (*goquery.Selection, bool) {
	for _, id := range ids {
		s := root.Find(`[id="` + id + `"]`).First()
		if s.Length() > 0 {
			return s, true
		}
	}

	return nil, false
}

func optionText(o *goquery.Selection) string {
	return strings.Join(strings.Fields(o.Text()), " ")
}
