package chapters

import (
	"strconv"
	"strings"
)

// Filter narrows the chapters to fetch. chapter selects one chapter by
// label, title or 1-based index, rng is an inclusive "from-to" index range
// and list a comma separated set of indices. The first non-empty one applies.
func Filter(all []Chapter, chapter string, rng string, list string) []Chapter {
	switch {
	case chapter != "":
		if byLabel := FilterChaptersByLabel(all, chapter); len(byLabel) > 0 {
			return byLabel
		}
		if ch, ok := at(all, chapter); ok {
			return []Chapter{ch}
		}
		return []Chapter{}
	case rng != "":
		return FilterChapterRange(all, rng)
	case list != "":
		return FilterChapterList(all, list)
	default:
		return all
	}
}

// FilterChaptersByLabel matches the site label or the chapter title exactly.
func FilterChaptersByLabel(all []Chapter, label string) []Chapter {
	var out []Chapter
	for _, ch := range all {
		if ch.Label == label || ch.Title == label {
			out = append(out, ch)
		}
	}
	return out
}

// FilterChapterRange selects "from-to" by index. An open end ("5-") runs to
// the last chapter and an end past the last chapter is clamped.
func FilterChapterRange(all []Chapter, rng string) []Chapter {
	from, to, ok := strings.Cut(rng, "-")
	if !ok {
		return nil
	}

	start, err := atoi(from)
	if err != nil || start <= 0 || start > len(all) {
		return nil
	}

	end := len(all)
	if strings.TrimSpace(to) != "" {
		if end, err = atoi(to); err != nil {
			return nil
		}
	}
	if end > len(all) {
		end = len(all)
	}
	if start > end {
		return nil
	}

	return all[start-1 : end]
}

// FilterChapterList selects the listed indices in the given order, skipping
// repeats and anything out of range.
func FilterChapterList(all []Chapter, list string) []Chapter {
	out := []Chapter{}
	seen := map[int]bool{}

	for _, n := range strings.Split(list, ",") {
		idx, err := atoi(n)
		if err != nil || idx <= 0 || idx > len(all) || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, all[idx-1])
	}

	return out
}

func at(all []Chapter, s string) (Chapter, bool) {
	idx, err := atoi(s)
	if err != nil || idx <= 0 || idx > len(all) {
		return Chapter{}, false
	}
	return all[idx-1], true
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
