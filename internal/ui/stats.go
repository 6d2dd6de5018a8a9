package ui

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/ficpub/internal/util"
)

type Stats struct {
	TotalFiles    atomic.Int64
	TotalChapters atomic.Int64
	TotalBytes    atomic.Int64
}

func (s *Stats) Print(w io.Writer, title string, elapsed time.Duration) {
	_, _ = fmt.Fprintln(w, title)
	_, _ = fmt.Fprintf(w, "Files:    %d\n", s.TotalFiles.Load())
	_, _ = fmt.Fprintf(w, "Chapters: %d\n", s.TotalChapters.Load())
	_, _ = fmt.Fprintf(w, "Data:     %s\n", util.Human(s.TotalBytes.Load()))
	_, _ = fmt.Fprintf(w, "Time:     %s\n", elapsed.Round(time.Millisecond))
}
