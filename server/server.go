// Package server exposes the conversion pipeline over HTTP. Results stream
// back as server-sent events so the client sees pages as they finish.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/wudi/pdfmath/extract"
	"github.com/wudi/pdfmath/observability"
	"github.com/wudi/pdfmath/stream"
)

// DefaultMaxUpload bounds the accepted document size (32 MiB).
const DefaultMaxUpload int64 = 32 << 20

// Opener turns uploaded bytes into a document handle. The default uses
// extract.Open; tests substitute their own.
type Opener func(ctx context.Context, data []byte) (extract.Document, error)

// Server handles document uploads and streams conversion events back.
type Server struct {
	driver    *stream.Driver
	logger    observability.Logger
	open      Opener
	ocr       extract.OCREngine
	maxUpload int64
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l observability.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithOCREngine enables the OCR fallback for pages without text operators.
func WithOCREngine(e extract.OCREngine) Option {
	return func(s *Server) { s.ocr = e }
}

func WithMaxUpload(limit int64) Option {
	return func(s *Server) { s.maxUpload = limit }
}

// WithOpener overrides how uploads become documents.
func WithOpener(open Opener) Option {
	return func(s *Server) { s.open = open }
}

func New(opts ...Option) *Server {
	s := &Server{
		logger:    observability.NopLogger{},
		maxUpload: DefaultMaxUpload,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.open == nil {
		s.open = func(ctx context.Context, data []byte) (extract.Document, error) {
			docOpts := []extract.Option{extract.WithLogger(s.logger)}
			if s.ocr != nil {
				docOpts = append(docOpts, extract.WithOCR(s.ocr))
			}
			return extract.Open(ctx, data, docOpts...)
		}
	}
	s.driver = stream.NewDriver(stream.WithLogger(s.logger))
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/convert", s.handleConvert)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

// handleConvert accepts a multipart upload (field "file") and answers with
// an SSE stream. Input problems surface as error events on the stream, not
// as HTTP status codes: by the time they are known the stream headers are
// already committed, and the client decodes one format either way.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)
	send := func(ev stream.Event) bool {
		if err := stream.WriteEvent(w, ev); err != nil {
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			send(stream.Error{Message: fmt.Sprintf("File exceeds the %d byte upload limit", tooLarge.Limit)})
			return
		}
		send(stream.Error{Message: stream.NoFileMessage})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Warn("upload read failed", observability.Error("err", err))
		send(stream.Error{Message: "Failed to read uploaded file"})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	doc, err := s.open(ctx, data)
	if err != nil {
		s.logger.Warn("decode failed", observability.Error("err", err))
		send(stream.Error{Message: err.Error()})
		return
	}

	events := s.driver.Stream(ctx, doc)
	for ev := range events {
		if !send(ev) {
			// Client is gone: stop the producer and drain so its goroutine
			// exits. Nothing already sent needs retracting.
			cancel()
			for range events {
			}
			return
		}
	}
}
