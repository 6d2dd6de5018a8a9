package downloader

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/brogergvhs/ficpub/internal/chapters"
	"github.com/brogergvhs/ficpub/internal/errs"
	"github.com/brogergvhs/ficpub/internal/providers"
	"github.com/brogergvhs/ficpub/internal/util"
)

// Progress receives page counts and bytes as snapshots complete.
type Progress interface {
	Update(done, total int, bytes int64)
	MarkDone()
}

type Downloader struct {
	snap       providers.Snapshotter
	outputDir  string
	skipBroken bool
	delay      time.Duration
	backoff    time.Duration
}

func New(snap providers.Snapshotter, outputDir string, skipBroken bool, delay time.Duration) *Downloader {
	return &Downloader{
		snap:       snap,
		outputDir:  outputDir,
		skipBroken: skipBroken,
		delay:      delay,
		backoff:    time.Second,
	}
}

type fetchState struct {
	mu    sync.Mutex
	done  int
	total int
	bytes int64
}

// SavePagesConcurrently snapshots every chapter into the output folder
// using at most maxParallel workers and returns the written paths in
// chapter order. Failed chapters leave a gap in the result.
func (d *Downloader) SavePagesConcurrently(
	ctx context.Context,
	chs []chapters.Chapter,
	maxParallel int,
	ph Progress,
) ([]string, int64, error) {

	total := len(chs)
	if maxParallel < 1 {
		maxParallel = 1
	}
	if maxParallel > total && total > 0 {
		maxParallel = total
	}

	st := &fetchState{total: total}
	if ph != nil {
		ph.Update(0, total, 0)
		defer ph.MarkDone()
	}

	files := make([]string, total)
	var errs []error

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			ch := chs[i]

			n, err := d.saveWithRetry(ctx, ch)

			st.mu.Lock()
			st.done++
			if err != nil {
				errs = append(errs, fmt.Errorf("chapter %d (%s): %w", ch.Number, ch.Title, err))
			} else {
				files[i] = ch.SnapshotPath(d.outputDir)
				st.bytes += n
			}
			if ph != nil {
				ph.Update(st.done, st.total, st.bytes)
			}
			st.mu.Unlock()

			if d.delay > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(d.delay):
				}
			}
		}
	}

	wg.Add(maxParallel)
	for w := 0; w < maxParallel; w++ {
		go worker()
	}

	for i := range chs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return compact(files), st.bytes, ctx.Err()
		case jobs <- i:
		}
	}

	close(jobs)
	wg.Wait()

	if len(errs) > 0 && !d.skipBroken {
		return compact(files), st.bytes, fmt.Errorf("failed %d/%d chapters (use --skip-broken to continue): %w", len(errs), total, errs[0])
	}

	return compact(files), st.bytes, nil
}

// saveWithRetry retries transient failures. A page that does not match
// the extraction layout fails the same way every time and is not retried.
func (d *Downloader) saveWithRetry(ctx context.Context, ch chapters.Chapter) (int64, error) {
	return retry.DoWithData(
		func() (int64, error) {
			return d.save(ctx, ch)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(d.backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errs.KindOf(err) != errs.KindApplication
		}),
	)
}

func (d *Downloader) save(ctx context.Context, ch chapters.Chapter) (int64, error) {
	body, err := d.snap.Snapshot(ctx, ch.URL)
	if err != nil {
		return 0, err
	}

	return util.WriteFileAtomic(ch.SnapshotPath(d.outputDir), func(w io.Writer) error {
		_, err := w.Write(body)
		return err
	})
}

func compact(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
