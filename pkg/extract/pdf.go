package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat means the bytes are not a readable PDF.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document is the text pulled out of an uploaded PDF.
type Document struct {
	Text      string
	PageCount int
}

// PageMarker is written before each page's text. Pages are 1-based.
func PageMarker(page int) string {
	return fmt.Sprintf("\n--- Page %d ---\n", page)
}

// PDF extracts page-marked text from raw PDF bytes. A page whose text
// cannot be read contributes an empty string; only an unreadable document
// fails.
func PDF(data []byte) (doc Document, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return Document{}, ErrUnsupportedFormat
	}
	defer func() {
		if r := recover(); r != nil {
			doc, err = Document{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	total := reader.NumPage()
	if total <= 0 {
		return Document{}, fmt.Errorf("%w: no pages", ErrUnsupportedFormat)
	}

	var sb strings.Builder
	for i := 1; i <= total; i++ {
		sb.WriteString(PageMarker(i))
		sb.WriteString(pageText(reader, i))
	}
	return Document{Text: sb.String(), PageCount: total}, nil
}

func pageText(reader *pdf.Reader, i int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := reader.Page(i)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
