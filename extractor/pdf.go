package extractor

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageReader returns the raw text of every page in a PDF document, in page
// order. On failure it may return the pages read so far with the error.
type PageReader interface {
	Pages(data []byte) ([]string, error)
}

// PageReaderFunc adapts a function to PageReader.
type PageReaderFunc func(data []byte) ([]string, error)

// Pages calls f(data).
func (f PageReaderFunc) Pages(data []byte) ([]string, error) { return f(data) }

// ReadPages extracts plain text per page using github.com/ledongthuc/pdf.
// A page without content yields an empty string.
func ReadPages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf: %v", r)
		}
	}()
	if len(data) == 0 {
		return nil, fmt.Errorf("pdf: empty file")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	count := reader.NumPage()
	fonts := make(map[string]*pdf.Font)
	pages = make([]string, 0, count)
	for i := 1; i <= count; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return pages, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
