package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brogergvhs/ficpub/internal/errs"
)

// Layout lists the element ids that locate each part of a saved chapter
// page. Ids are tried in order and the first present one wins.
type Layout struct {
	StoryIDs     []string
	ProfileIDs   []string
	SelectorIDs  []string
	ChapterParam string
}

func DefaultLayout() Layout {
	return Layout{
		StoryIDs:     []string{"storytext", "storycontent", "storytextp"},
		ProfileIDs:   []string{"profile_top", "storyinfo"},
		SelectorIDs:  []string{"chap_select", "chapter-select"},
		ChapterParam: "chapter",
	}
}

// WithDefaults fills empty fields from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	def := DefaultLayout()

	if len(clean(l.StoryIDs)) == 0 {
		l.StoryIDs = def.StoryIDs
	}
	if len(clean(l.ProfileIDs)) == 0 {
		l.ProfileIDs = def.ProfileIDs
	}
	if len(clean(l.SelectorIDs)) == 0 {
		l.SelectorIDs = def.SelectorIDs
	}
	if strings.TrimSpace(l.ChapterParam) == "" {
		l.ChapterParam = def.ChapterParam
	}

	l.StoryIDs = clean(l.StoryIDs)
	l.ProfileIDs = clean(l.ProfileIDs)
	l.SelectorIDs = clean(l.SelectorIDs)
	l.ChapterParam = strings.TrimSpace(l.ChapterParam)

	return l
}

func clean(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(id), "#"))
		if id != "" {
			out = append(out, id)
		}
	}

	return out
}

var (
	ErrStoryNotFound   = errors.New("story content not found")
	ErrProfileNotFound = errors.New("author/title container not found")
	ErrAuthorNotFound  = errors.New("author link not found")
	ErrTitleNotFound   = errors.New("title not found")
	ErrChapterNotFound = errors.New("chapter name not found")
)

func missing(sentinel error, ids []string) error {
	if len(ids) == 0 {
		return errs.App(sentinel, "")
	}

	return errs.App(fmt.Errorf("%w (tried #%s)", sentinel, strings.Join(ids, ", #")), "")
}
