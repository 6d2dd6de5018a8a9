// Package generic implements a providers.Snapshotter for story sites whose
// chapter pages match one of the known extraction layouts. Chapters are
// discovered from the chapter selector of any chapter page.
package generic
