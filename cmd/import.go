package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/ficpub/internal/book"
	"github.com/brogergvhs/ficpub/internal/config"
	"github.com/brogergvhs/ficpub/internal/importer"
	"github.com/brogergvhs/ficpub/internal/ui"
	"github.com/brogergvhs/ficpub/internal/util"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	flagOutput    string
	flagFormat    string
	flagLanguage  string
	flagOverwrite bool
)

func init() {
	importCmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Build one e-book from saved chapter pages. Uses the defaults from the selected config, overwritten by CLI flags",
		Args:  cobra.ArbitraryArgs,
		RunE:  runImport,
	}

	importCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for the book")
	importCmd.Flags().StringVar(&flagFormat, "format", "", "output format: epub or markdown")
	importCmd.Flags().StringVar(&flagLanguage, "language", "", "book language code (e.g. en)")
	importCmd.Flags().BoolVar(&flagOverwrite, "overwrite", false, "replace an existing book without asking")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Output:       flagOutput,
		Format:       flagFormat,
		Language:     flagLanguage,
		Overwrite:    flagOverwrite,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	defer logSvc.Sync()

	logSvc.Debugf("config: %s", usedPath)

	format, err := book.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	im := importer.New(cfg.Layout(), book.ExportOptions{Format: format, Language: cfg.Language}, logSvc)
	util.SetupInterruptHandler(cfg.Output)

	pm := ui.NewProgressManager()
	handle := pm.Register("Reading", "files")
	start := time.Now()

	var res *importer.Result
	err = importer.Guard(func() error {
		var err error
		res, err = im.Import(context.Background(), importer.FileSources(args), handle)
		return err
	})
	if err != nil {
		handle.Abort()
		pm.Close()
		return err
	}
	pm.Close()

	var (
		path    string
		written int64
	)
	err = importer.Guard(func() error {
		var err error
		path, written, err = im.Export(res.Book, cfg.Output, cfg.Overwrite, confirmOverwrite())
		return err
	})
	if err != nil {
		return err
	}

	stats := &ui.Stats{}
	stats.TotalFiles.Store(int64(res.Files))
	stats.TotalChapters.Store(int64(len(res.Book.Chapters)))
	stats.TotalBytes.Store(written)

	fmt.Println()
	stats.Print(os.Stdout, "Import Summary:", time.Since(start))
	fmt.Printf("\nSaved %q to %s\n", res.Book.Title, path)

	return nil
}

// confirmOverwrite asks before replacing an existing book when a person is
// at the terminal; otherwise existing files are left alone.
func confirmOverwrite() func(string) bool {
	if !stdinIsTerminal() {
		return nil
	}

	return func(path string) bool {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite", filepath.Base(path)),
			IsConfirm: true,
		}
		_, err := prompt.Run()
		return err == nil
	}
}

func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
