// Package server exposes the importer as a small local web page: one button
// that picks chapter files and a text area for the result.
package server

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"mime"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brogergvhs/ficpub/internal/book"
	"github.com/brogergvhs/ficpub/internal/errs"
	"github.com/brogergvhs/ficpub/internal/importer"
	"github.com/brogergvhs/ficpub/internal/ui"
)

//go:embed index.html
var indexPage []byte

type Server struct {
	im        *importer.Importer
	log       *ui.Logger
	maxUpload int64
	busy      atomic.Bool
	engine    *gin.Engine
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func New(im *importer.Importer, maxUploadMB int, log *ui.Logger) *Server {
	if log == nil {
		log = ui.NopLogger()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}

	s := &Server{
		im:        im,
		log:       log,
		maxUpload: int64(maxUploadMB) << 20,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	r.MaxMultipartMemory = s.maxUpload

	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealth)
	r.POST("/api/import", s.handleImport)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.log.Infof("listening on http://%s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debugf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleImport(c *gin.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, errorResponse{
			Error: "Another import is already running",
			Kind:  errs.KindUser.String(),
		})
		return
	}
	defer s.busy.Store(false)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	var sources []importer.Source
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
				Error: errs.Render(errs.User("Upload exceeds %d MB", s.maxUpload>>20)),
				Kind:  errs.KindUser.String(),
			})
			return
		}
		s.log.Debugf("no multipart form: %v", err)
	} else {
		for _, fh := range form.File["files"] {
			sources = append(sources, importer.UploadSource{FileHeader: fh})
		}
	}

	var (
		out  bytes.Buffer
		name string
	)
	err = importer.Guard(func() error {
		res, err := s.im.Import(c.Request.Context(), sources, nil)
		if err != nil {
			return err
		}

		if err := s.im.WriteTo(res.Book, &out); err != nil {
			return err
		}
		name = book.FileName(res.Book.Title, s.im.Format())

		s.log.Infof("imported %d file(s) into %q", res.Files, res.Book.Title)
		return nil
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, s.im.Format().ContentType(), out.Bytes())
}

func (s *Server) writeError(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	if errs.IsPanic(err) {
		s.log.Errorf("import panicked: %v", err)
	} else {
		s.log.Debugf("import failed (%s): %v", kind, err)
	}

	c.JSON(statusFor(kind), errorResponse{
		Error: errs.Render(err),
		Kind:  kind.String(),
	})
}

func statusFor(k errs.Kind) int {
	switch k {
	case errs.KindUser:
		return http.StatusBadRequest
	case errs.KindApplication:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
