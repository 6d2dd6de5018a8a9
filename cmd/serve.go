package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brogergvhs/ficpub/internal/book"
	"github.com/brogergvhs/ficpub/internal/config"
	"github.com/brogergvhs/ficpub/internal/importer"
	"github.com/brogergvhs/ficpub/internal/server"
	"github.com/brogergvhs/ficpub/internal/ui"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var flagListen string

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the one-button import page on a local address",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	serveCmd.Flags().StringVar(&flagListen, "listen", "", "address to listen on (e.g. 127.0.0.1:8080)")
	serveCmd.Flags().StringVar(&flagFormat, "format", "", "output format: epub or markdown")
	serveCmd.Flags().StringVar(&flagLanguage, "language", "", "book language code (e.g. en)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Format:       flagFormat,
		Language:     flagLanguage,
		Listen:       flagListen,
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

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	im := importer.New(cfg.Layout(), book.ExportOptions{Format: format, Language: cfg.Language}, logSvc)
	srv := server.New(im, cfg.MaxUploadMB, logSvc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Open http://%s in your browser. Press Ctrl+C to stop.\n", cfg.Listen)
	return srv.Run(ctx, cfg.Listen)
}
