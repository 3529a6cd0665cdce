package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/novanote/novanote/internal/domain"
)

// MaxPDFBytes bounds uploads accepted by PDFExtractor.
const MaxPDFBytes = 20 << 20

// PDFExtractor pulls the plain text out of a PDF, one page per paragraph.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the text of every readable page. Unreadable pages are
// skipped. A document without any text yields domain.ErrEmptyContent.
func (e *PDFExtractor) Extract(data []byte) (text string, err error) {
	if len(data) > MaxPDFBytes {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "pdf is too large")
	}

	// the parser panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			text, err = "", domain.NewDomainError(domain.ErrCodeValidation, fmt.Sprintf("invalid pdf: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid pdf", err)
	}

	var content strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if content.Len() > 0 {
			content.WriteString("\n\n")
		}
		content.WriteString(pageText)
	}

	if content.Len() == 0 {
		return "", domain.ErrEmptyContent
	}
	return content.String(), nil
}
