package book

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	epub "github.com/go-shiori/go-epub"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

type Format string

const (
	FormatEPUB     Format = "epub"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "epub":
		return FormatEPUB, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want epub or markdown)", s)
	}
}

func (f Format) Ext() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return ".epub"
}

func (f Format) ContentType() string {
	if f == FormatMarkdown {
		return "text/markdown; charset=utf-8"
	}
	return "application/epub+zip"
}

type ExportOptions struct {
	Format   Format
	Language string
}

// Write renders the book in the requested format to w.
func Write(b *Book, w io.Writer, opts ExportOptions) error {
	switch opts.Format {
	case FormatMarkdown:
		return writeMarkdown(b, w)
	case FormatEPUB, "":
		return writeEPUB(b, w, opts.Language)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

func writeEPUB(b *Book, w io.Writer, lang string) error {
	e, err := epub.NewEpub(b.Title)
	if err != nil {
		return fmt.Errorf("epub: %w", err)
	}

	e.SetAuthor(b.Author)
	e.SetIdentifier("urn:uuid:" + uuid.NewString())
	if lang != "" {
		e.SetLang(lang)
	}

	for i, s := range b.Sections() {
		body, err := toXHTML(s.Body)
		if err != nil {
			return fmt.Errorf("epub: render %q: %w", s.Title, err)
		}

		heading := "<h2>" + html.EscapeString(s.Title) + "</h2>\n"
		filename := fmt.Sprintf("chapter%03d.xhtml", i+1)

		if _, err := e.AddSection(heading+body, s.Title, filename, ""); err != nil {
			return fmt.Errorf("epub: add section %q: %w", s.Title, err)
		}
	}

	if _, err := e.WriteTo(w); err != nil {
		return fmt.Errorf("epub: %w", err)
	}

	return nil
}

func writeMarkdown(b *Book, w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\nby %s\n", headingText(b.Title), headingText(b.Author))

	for _, s := range b.Sections() {
		body, err := toXHTML(s.Body)
		if err != nil {
			return fmt.Errorf("markdown: render %q: %w", s.Title, err)
		}

		md, err := htmltomarkdown.ConvertString(body)
		if err != nil {
			return fmt.Errorf("markdown: convert %q: %w", s.Title, err)
		}

		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", headingText(s.Title), strings.TrimSpace(md))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

var reSpaces = regexp.MustCompile(`\s+`)

// headingText keeps s on one Markdown line. A leading '#' is escaped so it
// does not deepen the heading.
func headingText(s string) string {
	s = strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
	if strings.HasPrefix(s, "#") {
		s = `\` + s
	}
	return s
}

// FileName derives the output file name from the book title.
func FileName(title string, f Format) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, title)

	name = reSpaces.ReplaceAllString(name, " ")
	name = strings.Trim(name, " .")

	if r := []rune(name); len(r) > 150 {
		name = strings.TrimSpace(string(r[:150]))
	}
	if name == "" {
		name = "book"
	}

	return name + f.Ext()
}
