package pdfparser

import (
	"context"
	"sync"
)

// Extractor turns the bytes of a PDF document into plain text. The page
// layout of the result is what the bulletin parsers rely on: text items
// joined by single spaces, rows separated by two spaces, one line per page.
type Extractor interface {
	ExtractText(ctx context.Context, name string, data []byte) (string, error)
}

// MockExtractor implements Extractor for tests. Texts maps a document name to
// the text to return; Errs maps a name to a failure. Unknown names yield
// MockText and MockErr.
type MockExtractor struct {
	MockText string
	MockErr  error
	Texts    map[string]string
	Errs     map[string]error

	mu    sync.Mutex
	calls []string
}

// NewMockExtractor creates a MockExtractor returning text or err for every document.
func NewMockExtractor(text string, err error) *MockExtractor {
	return &MockExtractor{MockText: text, MockErr: err}
}

// ExtractText returns the configured text or error for name.
func (e *MockExtractor) ExtractText(ctx context.Context, name string, _ []byte) (string, error) {
	e.mu.Lock()
	e.calls = append(e.calls, name)
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := e.Errs[name]; ok {
		return "", err
	}
	if text, ok := e.Texts[name]; ok {
		return text, nil
	}
	if e.MockErr != nil {
		return "", e.MockErr
	}
	return e.MockText, nil
}

// Calls returns the document names seen so far, in call order.
func (e *MockExtractor) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}
