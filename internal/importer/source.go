package importer

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// Source is one selected input file.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FileSource is a file on the local disk.
type FileSource string

func (f FileSource) Name() string { return filepath.Base(string(f)) }

func (f FileSource) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

func FileSources(paths []string) []Source {
	out := make([]Source, len(paths))
	for i, p := range paths {
		out[i] = FileSource(p)
	}
	return out
}

// UploadSource is a file received in a multipart form.
type UploadSource struct {
	*multipart.FileHeader
}

func (u UploadSource) Name() string { return u.Filename }

func (u UploadSource) Open() (io.ReadCloser, error) { return u.FileHeader.Open() }
