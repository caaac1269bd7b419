package extract

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"dms-backend/internal/document"
)

const mimePDF = "application/pdf"

// Analyze produces a normalized ExtractedDocument from raw file bytes. It
// is a total function: unreadable or unrecognized content yields a document
// with empty fields rather than an error, so naming and filing never block
// on bad input.
func Analyze(ctx context.Context, data []byte, mimeType, fileName string) document.ExtractedDocument {
	if ctx.Err() != nil {
		return document.ExtractedDocument{}
	}

	text := extractText(data, mimeType, fileName)
	doc := DetectFields(text)
	doc.OCRText = text

	if doc.DocType == "" {
		doc.DocType = detectTypeFromName(fileName)
	}
	return doc
}

// extractText pulls plain text from the payload. PDFs go through the PDF
// reader; anything that looks like UTF-8 text is used as-is.
func extractText(data []byte, mimeType, fileName string) string {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if normalized == "" {
		normalized = strings.ToLower(http.DetectContentType(data))
	}

	if strings.HasPrefix(normalized, mimePDF) || strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		if text, err := extractPDF(data); err == nil {
			return text
		}
		return ""
	}

	if utf8.Valid(data) && !bytes.ContainsRune(data, 0) {
		return string(data)
	}
	return ""
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func detectTypeFromName(fileName string) string {
	name := strings.ToLower(fileName)
	switch {
	case strings.Contains(name, "invoice"):
		return "Invoice"
	case strings.Contains(name, "receipt"):
		return "Receipt"
	case strings.Contains(name, "contract"), strings.Contains(name, "agreement"):
		return "Contract"
	default:
		return "Other"
	}
}
