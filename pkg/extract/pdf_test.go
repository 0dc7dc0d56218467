package extract

import (
	"errors"
	"strings"
	"testing"

	"edutechai/internal/testutil"
)

func TestPDFMarksEveryPage(t *testing.T) {
	doc, err := PDF(testutil.PDF("Photosynthesis basics", "Cell division"))
	if err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	if doc.PageCount != 2 {
		t.Fatalf("PageCount = %d, want 2", doc.PageCount)
	}
	first := strings.Index(doc.Text, "\n--- Page 1 ---\n")
	second := strings.Index(doc.Text, "\n--- Page 2 ---\n")
	if first != 0 || second <= first {
		t.Fatalf("markers at %d and %d in %q", first, second, doc.Text)
	}
	if !strings.Contains(doc.Text[first:second], "Photosynthesis") {
		t.Fatalf("page 1 text missing in %q", doc.Text)
	}
	if !strings.Contains(doc.Text[second:], "Cell division") {
		t.Fatalf("page 2 text missing in %q", doc.Text)
	}
}

func TestPDFEmptyPageKeepsMarker(t *testing.T) {
	doc, err := PDF(testutil.PDF("", "only text"))
	if err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	if !strings.HasPrefix(doc.Text, "\n--- Page 1 ---\n") || doc.PageCount != 2 {
		t.Fatalf("PDF() = %+v", doc)
	}
}

func TestPDFRejectsOtherFormats(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":     nil,
		"text":      []byte("just some notes"),
		"truncated": []byte("%PDF-1.4\n1 0 obj\n<<"),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := PDF(data); !errors.Is(err, ErrUnsupportedFormat) {
				t.Fatalf("PDF() error = %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestPageMarker(t *testing.T) {
	if got := PageMarker(12); got != "\n--- Page 12 ---\n" {
		t.Fatalf("PageMarker(12) = %q", got)
	}
}
