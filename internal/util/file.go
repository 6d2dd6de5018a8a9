package util

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// TmpSuffix marks outputs that are still being written.
const TmpSuffix = ".tmp"

// WriteFileAtomic writes through fill into output+TmpSuffix and renames it
// into place once fill succeeds. A failed write leaves no file behind.
func WriteFileAtomic(output string, fill func(w io.Writer) error) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return 0, fmt.Errorf("create output folder: %w", err)
	}

	tmp := output + TmpSuffix
	out, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", tmp, err)
	}

	cw := &countingWriter{w: out}
	if err := fill(cw); err != nil {
		closeQuietly(out, tmp)
		_ = os.Remove(tmp)
		return 0, err
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, output); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("rename %s: %w", tmp, err)
	}

	return cw.n, nil
}

// Exists reports whether path names an existing file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func closeQuietly(f *os.File, name string) {
	if cerr := f.Close(); cerr != nil {
		log.Printf("error closing output file %s: %v", name, cerr)
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// Human formats a byte count with binary units, e.g. "3.00 MB".
func Human(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	v := float64(n)
	unit := ""
	for _, u := range byteUnits {
		v /= 1024
		unit = u
		if v < 1024 {
			break
		}
	}

	return fmt.Sprintf("%.2f %s", v, unit)
}
