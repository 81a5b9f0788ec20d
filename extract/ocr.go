package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/wudi/pdfkit/extractor"
	"github.com/wudi/pdfkit/ir/semantic"

	"github.com/wudi/pdfmath/observability"
)

// OCREngine recognizes text in a PNG-encoded image. It is the fallback path
// for pages whose content streams carry no text operators (scanned pages).
type OCREngine interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// TesseractEngine is the gosseract-backed OCREngine.
type TesseractEngine struct {
	languages []string
}

// NewTesseractEngine returns a Tesseract-backed engine. Language hints are
// optional; Tesseract's default applies when none are given.
func NewTesseractEngine(languages ...string) *TesseractEngine {
	return &TesseractEngine{languages: languages}
}

func (e *TesseractEngine) Recognize(ctx context.Context, png []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	c := gosseract.NewClient()
	defer c.Close()
	if err := c.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// ocrLineStep is the synthetic baseline distance between OCR lines. Anything
// above the 5-unit line-break threshold works; 20 keeps the values readable
// in logs.
const ocrLineStep = 20.0

// largestPageAsset picks the biggest image on the given page, by pixel area.
// A scanned page is typically one full-page raster, so biggest wins.
func largestPageAsset(assets []extractor.ImageAsset, pageIndex int) *extractor.ImageAsset {
	var best *extractor.ImageAsset
	for i := range assets {
		if assets[i].Page != pageIndex {
			continue
		}
		if best == nil || assets[i].Width*assets[i].Height > best.Width*best.Height {
			best = &assets[i]
		}
	}
	return best
}

// synthesizeOCRFragments turns recognized text into positioned fragments, one
// per non-blank line, with baselines descending from the page top in
// ocrLineStep increments so downstream line reconstruction sees each OCR line
// as its own line. A zero top falls back to Letter height.
func synthesizeOCRFragments(text string, top float64) []Fragment {
	if top == 0 {
		top = 792
	}
	var frags []Fragment
	y := top - ocrLineStep
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		frags = append(frags, Fragment{Text: line, BaselineY: y})
		y -= ocrLineStep
	}
	return frags
}

// ocrFragments recognizes the largest image on the page and synthesizes one
// fragment per OCR line, with descending baselines so downstream line
// reconstruction keeps the line structure.
func (d *PDFDocument) ocrFragments(ctx context.Context, page *semantic.Page) ([]Fragment, error) {
	dec := d.sem.Decoded()
	if dec == nil {
		return nil, nil
	}
	ext, err := extractor.New(dec)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	assets, err := ext.ExtractImages()
	if err != nil {
		return nil, fmt.Errorf("extract images: %w", err)
	}

	best := largestPageAsset(assets, page.Index)
	if best == nil {
		return nil, nil
	}

	png, err := best.ToPNG()
	if err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}
	text, err := d.ocr.Recognize(ctx, png)
	if err != nil {
		return nil, fmt.Errorf("ocr page %d: %w", page.Index, err)
	}

	frags := synthesizeOCRFragments(text, page.MediaBox.URY)
	if frags == nil {
		return nil, nil
	}
	d.logger.Info("ocr fallback used",
		observability.Int("page", page.Index),
		observability.Int(observability.MetricOCRPages, 1),
		observability.Int(observability.MetricFragmentCount, len(frags)))
	return frags, nil
}
