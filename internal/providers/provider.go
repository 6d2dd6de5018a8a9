package providers

import "context"

// Chapter is one chapter page of a story hosted on a provider site.
type Chapter struct {
	URL    string
	Title  string
	Number int
	Label  string
}

// Snapshotter discovers the chapters of a story and downloads the raw
// chapter pages so they can be imported later.
type Snapshotter interface {
	GetChapters(ctx context.Context, url string) ([]Chapter, error)
	Snapshot(ctx context.Context, chapterURL string) ([]byte, error)
}
