// Package book assembles ordered chapter extracts into a single book and
// writes it out as an e-book.
package book

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/ficpub/internal/errs"
	"github.com/brogergvhs/ficpub/internal/extract"
)

// Book holds the concatenated story. Story is a container element whose
// direct children are the chapter bodies, in the same order as Chapters.
type Book struct {
	Story    *goquery.Selection
	Title    string
	Author   string
	Chapters []string
}

type Section struct {
	Title string
	Body  *goquery.Selection
}

// Assemble appends copies of the ordered story bodies into one container.
// Title and author are taken from the first extract.
func Assemble(ordered []*extract.Extract) (*Book, error) {
	if len(ordered) == 0 {
		return nil, errs.User("No files selected")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div class="book"></div>`))
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}
	container := doc.Find("div.book")

	names := make([]string, 0, len(ordered))
	for _, e := range ordered {
		container.AppendSelection(e.Story.Clone())
		names = append(names, e.Chapter)
	}

	first := ordered[0]

	return &Book{
		Story:    container,
		Title:    first.Title,
		Author:   first.Author,
		Chapters: names,
	}, nil
}

// HTML returns the combined story markup.
func (b *Book) HTML() (string, error) {
	return goquery.OuterHtml(b.Story)
}

// Sections pairs every chapter body with its name.
func (b *Book) Sections() []Section {
	children := b.Story.Children()
	out := make([]Section, 0, children.Length())

	children.Each(func(i int, s *goquery.Selection) {
		title := fmt.Sprintf("Chapter %d", i+1)
		if i < len(b.Chapters) && b.Chapters[i] != "" {
			title = b.Chapters[i]
		}
		out = append(out, Section{Title: title, Body: s})
	})

	return out
}
