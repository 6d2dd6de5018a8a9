package extract

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/ficpub/internal/errs"
)

func parseFixture(t *testing.T, name string) (*Extract, error) {
	t.Helper()

	f, err := os.Open(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	return DefaultLayout().Parse(f, name)
}

func TestParseSelectorLayout(t *testing.T) {
	ext, err := parseFixture(t, "ffnet_chapter.html")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if ext.Title != "The Long Road" {
		t.Errorf("title = %q", ext.Title)
	}
	if ext.Author != "Quillfeather" {
		t.Errorf("author = %q", ext.Author)
	}
	if ext.Chapter != "2. Crossroads" {
		t.Errorf("chapter = %q", ext.Chapter)
	}
	if ext.Source != "ffnet_chapter.html" {
		t.Errorf("source = %q", ext.Source)
	}

	want := []string{"1. Departure", "2. Crossroads", "3. Arrival"}
	if !reflect.DeepEqual(ext.AllChapters, want) {
		t.Errorf("all chapters = %v, want %v", ext.AllChapters, want)
	}

	html, err := goquery.OuterHtml(ext.Story)
	if err != nil {
		t.Fatalf("OuterHtml: %v", err)
	}
	if !strings.Contains(html, `id="storytext"`) || !strings.Contains(html, "old oak") {
		t.Errorf("unexpected story html: %s", html)
	}
}

func TestParseAnchorLayout(t *testing.T) {
	ext, err := parseFixture(t, "reader_chapter.html")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if ext.Title != "Starfall" || ext.Author != "Nightjar" {
		t.Errorf("got title %q author %q", ext.Title, ext.Author)
	}
	if ext.Chapter != "Chapter Three" {
		t.Errorf("chapter = %q", ext.Chapter)
	}
	if ext.AllChapters != nil {
		t.Errorf("expected no chapter list, got %v", ext.AllChapters)
	}
	if !strings.Contains(ext.Story.Text(), "harbour") {
		t.Errorf("unexpected story text %q", ext.Story.Text())
	}
}

func TestParseUnknownLayout(t *testing.T) {
	_, err := parseFixture(t, "unknown_layout.html")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrStoryNotFound) {
		t.Errorf("expected ErrStoryNotFound, got %v", err)
	}
	if errs.KindOf(err) != errs.KindApplication {
		t.Errorf("expected application error, got %s", errs.KindOf(err))
	}
}

func TestParseMissingParts(t *testing.T) {
	tests := []struct {
		name string
		html string
		want error
	}{
		{
			name: "no profile",
			html: `<div id="storytext">x</div>`,
			want: ErrProfileNotFound,
		},
		{
			name: "no author",
			html: `<div id="profile_top"><b>T</b></div><div id="storytext">x</div>`,
			want: ErrAuthorNotFound,
		},
		{
			name: "no title",
			html: `<div id="profile_top"><a href="/u/1">A</a></div><div id="storytext">x</div>`,
			want: ErrTitleNotFound,
		},
		{
			name: "no chapter",
			html: `<div id="profile_top"><b>T</b><a href="/u/1">A</a></div><div id="storytext">x</div>`,
			want: ErrChapterNotFound,
		},
		{
			name: "empty selector",
			html: `<div id="profile_top"><b>T</b><a href="/u/1">A</a></div><select id="chap_select"></select><div id="storytext">x</div>`,
			want: ErrChapterNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultLayout().Parse(strings.NewReader(tt.html), "inline")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if errs.KindOf(err) != errs.KindApplication {
				t.Errorf("expected application error")
			}
		})
	}
}

func TestStoryIDPriority(t *testing.T) {
	html := `<div id="profile_top"><b>T</b><a href="/u/1">A</a></div>
<select id="chap_select"><option>Only</option></select>
<div id="storycontent">second</div>
<div id="storytext">first</div>`

	ext, err := DefaultLayout().Parse(strings.NewReader(html), "inline")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := ext.Story.Text(); got != "first" {
		t.Errorf("expected storytext to win, got %q", got)
	}
	if ext.Chapter != "Only" {
		t.Errorf("select without selection should use first option, got %q", ext.Chapter)
	}
}

func TestAnchorStrategyWinsOverSelector(t *testing.T) {
	html := `<div id="profile_top"><b>T</b><a href="/u/1">A</a></div>
<ul><li aria-selected="true"></li><a href="https://example.org/r?chapter=From%20Anchor">x</a></ul>
<select id="chap_select"><option selected>From Select</option></select>
<div id="storytext">body</div>`

	ext, err := DefaultLayout().Parse(strings.NewReader(html), "inline")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ext.Chapter != "From Anchor" {
		t.Errorf("chapter = %q", ext.Chapter)
	}
	if !reflect.DeepEqual(ext.AllChapters, []string{"From Select"}) {
		t.Errorf("chapter list must come from the selector, got %v", ext.AllChapters)
	}
}

func TestWithDefaults(t *testing.T) {
	l := Layout{StoryIDs: []string{" #custom ", ""}, ChapterParam: " "}.WithDefaults()

	if !reflect.DeepEqual(l.StoryIDs, []string{"custom"}) {
		t.Errorf("story ids = %v", l.StoryIDs)
	}
	if !reflect.DeepEqual(l.ProfileIDs, DefaultLayout().ProfileIDs) {
		t.Errorf("profile ids = %v", l.ProfileIDs)
	}
	if l.ChapterParam != "chapter" {
		t.Errorf("chapter param = %q", l.ChapterParam)
	}
}
