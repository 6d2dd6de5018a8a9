package chapters

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/brogergvhs/ficpub/internal/providers"
)

type Chapter struct {
	providers.Chapter
}

var reUnderscore = regexp.MustCompile(`_+`)

func sanitize(s string) string {
	s = strings.ToLower(s)

	repl := []string{
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		" ", "_",
		"(", "",
		")", "",
	}
	for i := 0; i < len(repl); i += 2 {
		s = strings.ReplaceAll(s, repl[i], repl[i+1])
	}

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}
	s = string(clean)

	s = reUnderscore.ReplaceAllString(s, "_")

	return strings.Trim(s, "_")
}

func (c Chapter) baseName() string {
	title := sanitize(c.Title)
	if title == "" {
		title = sanitize(c.Label)
	}

	return fmt.Sprintf("%03d_%s", c.Number, title)
}

// SnapshotName is the file name a fetched chapter page is saved under. The
// zero-padded number keeps a directory listing in reading order.
func (c Chapter) SnapshotName() string {
	return strings.TrimSuffix(c.baseName(), "_") + ".html"
}

func (c Chapter) SnapshotPath(out string) string {
	return filepath.Join(out, c.SnapshotName())
}
