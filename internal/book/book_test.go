package book

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taylorskalyo/goreader/epub"

	"github.com/brogergvhs/ficpub/internal/extract"
)

func chapterPage(chapter, body string) string {
	return fmt.Sprintf(`<html><body>
<div id="profile_top"><b>Tide &amp; Stone</b> By: <a href="/u/9/Wren">Wren</a></div>
<select id="chap_select"><option selected>%s</option></select>
<div id="storytext"><p>%s</p><script>track()</script><p onclick="x()">tail<br>line</p></div>
</body></html>`, chapter, body)
}

func mustExtract(t *testing.T, chapter, body string) *extract.Extract {
	t.Helper()

	e, err := extract.DefaultLayout().Parse(strings.NewReader(chapterPage(chapter, body)), chapter+".html")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return e
}

func TestAssemble(t *testing.T) {
	one := mustExtract(t, "One", "first body")
	two := mustExtract(t, "Two", "second body")

	b, err := Assemble([]*extract.Extract{one, two})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if b.Title != "Tide & Stone" || b.Author != "Wren" {
		t.Errorf("got title %q author %q", b.Title, b.Author)
	}

	html, err := b.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.HasPrefix(html, `<div class="book">`) {
		t.Errorf("expected container, got %s", html)
	}
	if i, j := strings.Index(html, "first body"), strings.Index(html, "second body"); i < 0 || j < i {
		t.Errorf("bodies out of order: %s", html)
	}

	sections := b.Sections()
	if len(sections) != 2 || sections[0].Title != "One" || sections[1].Title != "Two" {
		t.Fatalf("unexpected sections %+v", sections)
	}

	// the extracts keep their own story nodes
	if one.Story.Parent().Length() == 0 || !strings.Contains(one.Story.Text(), "first body") {
		t.Error("assembly must not move nodes out of the extract")
	}
}

func TestToXHTML(t *testing.T) {
	e := mustExtract(t, "One", "clean")

	out, err := toXHTML(e.Story)
	if err != nil {
		t.Fatalf("toXHTML: %v", err)
	}

	if strings.Contains(out, "<script") || strings.Contains(out, "onclick") {
		t.Errorf("page furniture not removed: %s", out)
	}
	if !strings.Contains(out, "<br/>") {
		t.Errorf("void element not self-closed: %s", out)
	}
	if !strings.Contains(e.Story.Text(), "track()") {
		t.Error("scrubbing must work on a copy")
	}
}

func TestWriteEPUB(t *testing.T) {
	b, err := Assemble([]*extract.Extract{
		mustExtract(t, "One", "alpha text"),
		mustExtract(t, "Two", "beta text"),
		mustExtract(t, "Three", "gamma text"),
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), FileName(b.Title, FormatEPUB))
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Write(b, f, ExportOptions{Format: FormatEPUB, Language: "en"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	rc, err := epub.OpenReader(path)
	if err != nil {
		t.Fatalf("generated epub does not open: %v", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		t.Fatal("no rootfiles")
	}
	pkg := rc.Rootfiles[0]

	if pkg.Title != "Tide & Stone" {
		t.Errorf("title = %q", pkg.Title)
	}
	if pkg.Creator != "Wren" {
		t.Errorf("creator = %q", pkg.Creator)
	}

	var bodies []string
	for _, ref := range pkg.Spine.Itemrefs {
		if ref.Item == nil || !strings.Contains(ref.Item.HREF, "chapter") {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			t.Fatalf("open %s: %v", ref.Item.HREF, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatal(err)
		}
		bodies = append(bodies, string(data))
	}

	want := []string{"alpha text", "beta text", "gamma text"}
	if len(bodies) != len(want) {
		t.Fatalf("expected %d chapter documents, got %d", len(want), len(bodies))
	}
	for i, w := range want {
		if !strings.Contains(bodies[i], w) {
			t.Errorf("chapter %d missing %q", i+1, w)
		}
	}
}

func TestWriteMarkdown(t *testing.T) {
	b, err := Assemble([]*extract.Extract{
		mustExtract(t, "One", "alpha text"),
		mustExtract(t, "Two", "beta text"),
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(b, &buf, ExportOptions{Format: FormatMarkdown}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"# Tide & Stone", "by Wren", "## One", "alpha text", "## Two", "beta text"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "## One") > strings.Index(out, "## Two") {
		t.Error("chapters out of order")
	}
	if strings.Contains(out, "track()") {
		t.Error("script content leaked into markdown")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title string
		f     Format
		want  string
	}{
		{"The Long Road", FormatEPUB, "The Long Road.epub"},
		{"What/If: Part 2?", FormatEPUB, "What_If_ Part 2_.epub"},
		{"  spaced \t out  ", FormatMarkdown, "spaced out.md"},
		{"", FormatEPUB, "book.epub"},
		{"...", FormatEPUB, "book.epub"},
	}

	for _, tt := range tests {
		if got := FileName(tt.title, tt.f); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatEPUB, "EPUB": FormatEPUB, "md": FormatMarkdown, "markdown": FormatMarkdown} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}

func TestHeadingText(t *testing.T) {
	tests := map[string]string{
		"Plain":               "Plain",
		"  Two\nLines  ":      "Two Lines",
		"# Not a heading":     `\# Not a heading`,
		"Tabs\tand\r\nbreaks": "Tabs and breaks",
	}
	for in, want := range tests {
		if got := headingText(in); got != want {
			t.Errorf("headingText(%q) = %q, want %q", in, got, want)
		}
	}
}
