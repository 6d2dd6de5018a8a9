package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brogergvhs/ficpub/internal/book"
	"github.com/brogergvhs/ficpub/internal/chapters"
	"github.com/brogergvhs/ficpub/internal/config"
	"github.com/brogergvhs/ficpub/internal/downloader"
	"github.com/brogergvhs/ficpub/internal/errs"
	"github.com/brogergvhs/ficpub/internal/importer"
	"github.com/brogergvhs/ficpub/internal/providers/generic"
	"github.com/brogergvhs/ficpub/internal/ui"
	"github.com/brogergvhs/ficpub/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagURL     string
	flagChapter string
	flagRange   string
	flagList    string

	// runtime
	flagWorkers    int
	flagDelay      time.Duration
	flagDryRun     bool
	flagSkipBroken bool
	flagThenImport bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Save chapter pages of a story for a later import",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}

	// selection
	fetchCmd.Flags().StringVar(&flagURL, "url", "", "any chapter page of the story")
	fetchCmd.Flags().StringVar(&flagChapter, "chapter", "", "save a single chapter by index or name")
	fetchCmd.Flags().StringVar(&flagRange, "range", "", "save a range of chapters by index (e.g. 5-12)")
	fetchCmd.Flags().StringVar(&flagList, "list", "", "save specific chapter indices (e.g. 1,3,5)")

	// runtime
	fetchCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for the saved pages")
	fetchCmd.Flags().IntVar(&flagWorkers, "workers", 1, "parallel page downloads")
	fetchCmd.Flags().DurationVar(&flagDelay, "delay", 0, "pause per worker between pages (e.g. 2s)")
	fetchCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be saved, don't download")
	fetchCmd.Flags().BoolVar(&flagSkipBroken, "skip-broken", false, "keep going when a chapter cannot be saved")
	fetchCmd.Flags().BoolVar(&flagThenImport, "import", false, "build the book from the saved pages afterwards")

	// headers/auth
	fetchCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	fetchCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	fetchCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	opts := config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Output:       flagOutput,
		Cookie:       flagCookie,
		CookieFile:   flagCookieFile,
		UserAgent:    flagUserAgent,
	}
	if cmd.Flags().Changed("workers") {
		opts.FetchWorkers = flagWorkers
	}

	cfg, usedPath, err := config.LoadMerged(opts)
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	defer logSvc.Sync()

	logSvc.Debugf("config: %s", usedPath)

	if flagURL == "" {
		return fmt.Errorf("missing --url")
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     30 * time.Second,
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		DebugLogger: logSvc,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	util.SetupInterruptHandler(cfg.Output)

	scr := generic.NewScraper(client, cfg.Layout(), logSvc)

	allChaptersRaw, err := scr.GetChapters(ctx, flagURL)
	if err != nil {
		return err
	}

	allChapters := make([]chapters.Chapter, len(allChaptersRaw))
	for i, c := range allChaptersRaw {
		allChapters[i] = chapters.Chapter{Chapter: c}
	}
	fmt.Printf("Found %d chapters on the site.\n\n", len(allChapters))

	selected, err := selectChapters(allChapters)
	if err != nil {
		return err
	}
	if flagThenImport {
		if err := checkImportSelection(len(selected), len(allChapters)); err != nil {
			return err
		}
	}

	if flagDryRun {
		fmt.Printf("Dry-run: %d chapters selected.\n\n", len(selected))
		for i, ch := range selected {
			fmt.Printf("%3d) %s  -> %s\n    %s\n", i+1, ch.Title, ch.SnapshotName(), ch.URL)
		}
		return nil
	}

	pm := ui.NewProgressManager()
	handle := pm.Register("Fetching", "pages")

	dl := downloader.New(scr, cfg.Output, flagSkipBroken, flagDelay)
	start := time.Now()

	files, bytes, err := dl.SavePagesConcurrently(ctx, selected, cfg.FetchWorkers, handle)
	pm.Close()
	if err != nil {
		return err
	}

	stats := &ui.Stats{}
	stats.TotalFiles.Store(int64(len(files)))
	stats.TotalChapters.Store(int64(len(selected)))
	stats.TotalBytes.Store(bytes)

	fmt.Println()
	stats.Print(os.Stdout, "Fetch Summary:", time.Since(start))

	if !flagThenImport {
		fmt.Println("\nAll done.")
		return nil
	}

	return importSaved(cfg, logSvc, files)
}

func selectChapters(all []chapters.Chapter) ([]chapters.Chapter, error) {
	var selected []chapters.Chapter

	if flagChapter != "" {
		direct := chapters.FilterChaptersByLabel(all, flagChapter)

		if len(direct) > 0 {
			selected = direct
		} else {
			var idx int
			if _, err := fmt.Sscanf(flagChapter, "%d", &idx); err == nil && idx > 0 {
				selected = chapters.Filter(all, strconv.Itoa(idx), flagRange, flagList)
			} else {
				return nil, fmt.Errorf("chapter '%s' not found", flagChapter)
			}
		}
	} else {
		selected = chapters.Filter(all, "", flagRange, flagList)
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("no chapters selected")
	}

	return selected, nil
}

// checkImportSelection rejects --import for a partial selection. The saved
// pages still list every chapter, so the book could not be assembled.
func checkImportSelection(selected, total int) error {
	if selected < total {
		return errs.User("--import needs every chapter, but only %d of %d are selected; drop --chapter, --range and --list or import the saved pages yourself", selected, total)
	}
	return nil
}

func importSaved(cfg *config.Config, logSvc *ui.Logger, files []string) error {
	format, err := book.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	im := importer.New(cfg.Layout(), book.ExportOptions{Format: format, Language: cfg.Language}, logSvc)

	return importer.Guard(func() error {
		res, err := im.Import(context.Background(), importer.FileSources(files), nil)
		if err != nil {
			return err
		}

		path, _, err := im.Export(res.Book, cfg.Output, cfg.Overwrite, confirmOverwrite())
		if err != nil {
			return err
		}

		fmt.Printf("\nSaved %q to %s\n", res.Book.Title, path)
		return nil
	})
}
