package pdfparser

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// defaultFontSize stands in for glyphs decoded before any Tf.
	defaultFontSize = 8.0
	// rowTolerance is the baseline shift, in font sizes, that starts a new row.
	rowTolerance = 0.5
	// wordGap is the gap, in font sizes, that separates two words of one item.
	wordGap = 0.15
)

// assemblePage flattens the glyphs of one page, in content-stream order,
// into a single line. A baseline change ends the row. Within a row a gap
// wider than columnGap font sizes, or a move back to the left, starts a new
// item; a smaller visible gap becomes a space. Each row ends with an empty
// item, so rows are separated by two spaces once items are joined with one.
func assemblePage(glyphs []pdf.Text, columnGap float64) string {
	var (
		items []string
		cur   strings.Builder
		inRow bool
		rowY  float64
		end   float64
	)
	flushItem := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			items = append(items, s)
		}
		cur.Reset()
	}
	endRow := func() {
		flushItem()
		if inRow {
			items = append(items, "")
		}
		inRow = false
	}

	for _, t := range glyphs {
		if t.S == "" || t.S == "\n" || t.S == "\r" {
			continue
		}
		size := fontSize(t)
		if inRow && math.Abs(t.Y-rowY) > rowTolerance*size {
			endRow()
		}
		if !inRow {
			inRow = true
			rowY = t.Y
		} else if cur.Len() > 0 {
			gap := t.X - end
			switch {
			case gap > columnGap*size || gap < -columnGap*size:
				flushItem()
			case gap > wordGap*size:
				writeSpace(&cur)
			}
		}

		if strings.TrimSpace(t.S) == "" {
			writeSpace(&cur)
		} else {
			cur.WriteString(t.S)
		}
		end = t.X + t.W
	}
	endRow()
	return strings.Join(items, " ")
}

func writeSpace(b *strings.Builder) {
	if b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
		b.WriteByte(' ')
	}
}

func fontSize(t pdf.Text) float64 {
	size := math.Abs(t.FontSize)
	if size == 0 {
		return defaultFontSize
	}
	return size
}
