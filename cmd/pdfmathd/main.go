// pdfmathd serves the PDF-to-math-markup conversion API.
//
// Configuration comes from flags, with defaults taken from the environment
// (a .env file is loaded when present): PDFMATH_ADDR, PDFMATH_MAX_UPLOAD,
// PDFMATH_OCR.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/wudi/pdfmath/extract"
	"github.com/wudi/pdfmath/observability"
	"github.com/wudi/pdfmath/server"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("PDFMATH_ADDR", ":8080"), "listen address")
	maxUpload := flag.Int64("max-upload", envInt64("PDFMATH_MAX_UPLOAD", server.DefaultMaxUpload), "upload size limit in bytes")
	ocr := flag.Bool("ocr", os.Getenv("PDFMATH_OCR") == "1", "enable the Tesseract OCR fallback for pages without text")
	flag.Parse()

	logger := observability.NewWriterLogger(os.Stderr)

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithMaxUpload(*maxUpload),
	}
	if *ocr {
		opts = append(opts, server.WithOCREngine(extract.NewTesseractEngine()))
	}

	logger.Info("pdfmathd listening", observability.String("addr", *addr))
	if err := http.ListenAndServe(*addr, server.New(opts...).Handler()); err != nil {
		fmt.Fprintf(os.Stderr, "pdfmathd: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
