// Package pdfparser extracts the text layer of ÖSYM bulletin PDFs.
package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/parsererror"

	"github.com/ledongthuc/pdf"
)

// DefaultColumnGap is the horizontal gap, in multiples of the font size,
// above which two glyph runs on one row are treated as separate cells.
const DefaultColumnGap = 1.0

// headerWindow is how far into the file the %PDF- marker may appear.
const headerWindow = 1024

// PDFExtractor implements Extractor with github.com/ledongthuc/pdf.
type PDFExtractor struct {
	logger    logging.Logger
	columnGap float64
}

// NewPDFExtractor creates an extractor. A columnGap <= 0 selects DefaultColumnGap.
func NewPDFExtractor(logger logging.Logger, columnGap float64) *PDFExtractor {
	if columnGap <= 0 {
		columnGap = DefaultColumnGap
	}
	return &PDFExtractor{logger: logger, columnGap: columnGap}
}

type extraction struct {
	text string
	err  error
}

// ExtractText decodes data and returns its text, pages 1..N in order with a
// newline after each page. Decoding runs in its own goroutine so a hung or
// very slow document is abandoned when ctx expires.
func (e *PDFExtractor) ExtractText(ctx context.Context, name string, data []byte) (string, error) {
	if !hasPDFHeader(data) {
		return "", &parsererror.DocumentParseError{File: name, Err: parsererror.ErrNotPDF}
	}
	if err := ctx.Err(); err != nil {
		return "", &parsererror.DocumentParseError{File: name, Err: err}
	}

	done := make(chan extraction, 1)
	go func() {
		text, err := e.extract(ctx, name, data)
		done <- extraction{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		e.logger.Warn("Abandoning PDF decode",
			logging.F(logging.FieldFile, name),
			logging.F(logging.FieldError, ctx.Err().Error()))
		return "", &parsererror.DocumentParseError{File: name, Err: ctx.Err()}
	}
}

func (e *PDFExtractor) extract(ctx context.Context, name string, data []byte) (text string, err error) {
	page := 0
	defer func() {
		// the decoder panics on some malformed object streams
		if r := recover(); r != nil {
			text = ""
			err = &parsererror.DocumentParseError{File: name, Page: page, Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &parsererror.DocumentParseError{File: name, Err: err}
	}

	var b strings.Builder
	numPages := reader.NumPage()
	for page = 1; page <= numPages; page++ {
		if err := ctx.Err(); err != nil {
			return "", &parsererror.DocumentParseError{File: name, Page: page, Err: err}
		}
		p := reader.Page(page)
		if p.V.IsNull() {
			b.WriteString("\n")
			continue
		}
		b.WriteString(assemblePage(p.Content().Text, e.columnGap))
		b.WriteString("\n")
	}

	e.logger.Debug("Extracted PDF text",
		logging.F(logging.FieldFile, name),
		logging.F(logging.FieldPages, numPages),
		logging.F("chars", b.Len()))
	return b.String(), nil
}

func hasPDFHeader(data []byte) bool {
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	return bytes.Contains(window, []byte("%PDF-"))
}
