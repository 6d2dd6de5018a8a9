// Package importer runs the import of saved chapter pages: read every
// selected file in turn, extract it, put the chapters in order and build
// the book.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/brogergvhs/ficpub/internal/book"
	"github.com/brogergvhs/ficpub/internal/chapters"
	"github.com/brogergvhs/ficpub/internal/errs"
	"github.com/brogergvhs/ficpub/internal/extract"
	"github.com/brogergvhs/ficpub/internal/ui"
	"github.com/brogergvhs/ficpub/internal/util"
)

// Progress receives per-file updates. *ui.ProgressHandle satisfies it.
type Progress interface {
	SetTotal(total int)
	Update(done, total int, bytes int64)
	MarkDone()
}

type Importer struct {
	layout extract.Layout
	export book.ExportOptions
	log    *ui.Logger
}

func New(layout extract.Layout, export book.ExportOptions, log *ui.Logger) *Importer {
	if log == nil {
		log = ui.NopLogger()
	}

	return &Importer{
		layout: layout.WithDefaults(),
		export: export,
		log:    log,
	}
}

type Result struct {
	Book  *book.Book
	Files int
	Bytes int64
}

// Import reads the sources one after another and assembles the book. Any
// failing file aborts the whole import.
func (im *Importer) Import(ctx context.Context, sources []Source, p Progress) (*Result, error) {
	if len(sources) == 0 {
		return nil, errs.User("No files selected")
	}

	if p != nil {
		p.SetTotal(len(sources))
		defer p.MarkDone()
	}

	extracts := make([]*extract.Extract, 0, len(sources))
	var total int64

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := readSource(src)
		if err != nil {
			return nil, err
		}
		total += int64(len(raw))

		ext, err := im.layout.Parse(bytes.NewReader(raw), src.Name())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name(), err)
		}

		im.log.With("file", src.Name()).Debugf("%q by %s, chapter %q (%d listed)", ext.Title, ext.Author, ext.Chapter, len(ext.AllChapters))
		extracts = append(extracts, ext)

		if p != nil {
			p.Update(i+1, len(sources), total)
		}
	}

	for _, d := range chapters.Duplicates(extracts) {
		im.log.Debugf("chapter %q supplied more than once, using the first file", d)
	}

	ordered, err := chapters.Order(extracts)
	if err != nil {
		return nil, err
	}

	b, err := book.Assemble(ordered)
	if err != nil {
		return nil, err
	}

	return &Result{Book: b, Files: len(sources), Bytes: total}, nil
}

func readSource(src Source) ([]byte, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, errs.App(err, "Error reading file "+src.Name())
	}
	defer func() {
		_ = rc.Close()
	}()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, errs.App(err, "Error reading file "+src.Name())
	}

	return raw, nil
}

// OutputPath is where Export will write b inside dir.
func (im *Importer) OutputPath(b *book.Book, dir string) string {
	return filepath.Join(dir, book.FileName(b.Title, im.export.Format))
}

// Export writes the book into dir, named after its title. An existing file
// is replaced only when overwrite is set or confirm approves it.
func (im *Importer) Export(b *book.Book, dir string, overwrite bool, confirm func(path string) bool) (string, int64, error) {
	path := im.OutputPath(b, dir)

	if util.Exists(path) && !overwrite {
		if confirm == nil || !confirm(path) {
			return "", 0, errs.User("Output file %s already exists (use --overwrite to replace it)", path)
		}
	}

	n, err := util.WriteFileAtomic(path, func(w io.Writer) error {
		return book.Write(b, w, im.export)
	})
	if err != nil {
		return "", 0, err
	}

	im.log.Debugf("wrote %s (%s)", path, util.Human(n))
	return path, n, nil
}

// WriteTo renders the book in the configured format.
func (im *Importer) WriteTo(b *book.Book, w io.Writer) error {
	return book.Write(b, w, im.export)
}

func (im *Importer) Format() book.Format {
	return im.export.Format
}

// Guard runs fn and turns a panic into an error that renders generically.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.FromPanic(r)
		}
	}()

	return fn()
}
