package chapters

import (
	"errors"

	"github.com/brogergvhs/ficpub/internal/errs"
	"github.com/brogergvhs/ficpub/internal/extract"
)

var ErrNoChapterList = errors.New("first file has no chapter list to order by")

// Order arranges extracts in the chapter order declared by the first one.
// A single extract is returned as is. Every declared chapter must be
// present; when several extracts carry the same chapter the first wins.
func Order(extracts []*extract.Extract) ([]*extract.Extract, error) {
	if len(extracts) == 0 {
		return nil, errs.User("No files selected")
	}
	if len(extracts) == 1 {
		return extracts, nil
	}

	declared := extracts[0].AllChapters
	if len(declared) == 0 {
		return nil, errs.App(ErrNoChapterList, extracts[0].Source)
	}

	listed := make(map[string]bool, len(declared))
	for _, name := range declared {
		listed[name] = true
	}
	for _, e := range extracts {
		if !listed[e.Chapter] {
			return nil, errs.User("Chapter not listed: %s", e.Chapter)
		}
	}

	out := make([]*extract.Extract, 0, len(declared))
	emitted := make(map[string]bool, len(declared))
	for _, name := range declared {
		if emitted[name] {
			continue
		}
		emitted[name] = true

		match := find(extracts, name)
		if match == nil {
			return nil, errs.User("Chapter missing: %s", name)
		}
		out = append(out, match)
	}

	return out, nil
}

func find(extracts []*extract.Extract, chapter string) *extract.Extract {
	for _, e := range extracts {
		if e.Chapter == chapter {
			return e
		}
	}

	return nil
}

// Duplicates reports chapter names supplied by more than one extract.
func Duplicates(extracts []*extract.Extract) []string {
	seen := map[string]int{}
	var out []string

	for _, e := range extracts {
		seen[e.Chapter]++
		if seen[e.Chapter] == 2 {
			out = append(out, e.Chapter)
		}
	}

	return out
}
