package naming

import (
	"strings"

	"dms-backend/internal/document"
)

// FolderPath derives the canonical storage folder for a document, always of
// the shape /{Category}/{YYYY}/{MM}/{Entity}/. Total function: incomplete
// input degrades to /General/.../Unsorted/.
func (n Namer) FolderPath(doc document.ExtractedDocument) string {
	category := stripWhitespace(firstNonEmpty(doc.DocType, doc.Category))
	if category == "" {
		category = "General"
	}

	date := docDate(doc)

	entity := folderEntity(firstNonEmpty(doc.Vendor, doc.Name))
	if entity == "" {
		entity = "Unsorted"
	}

	return "/" + category + "/" + date.Format("2006") + "/" + date.Format("01") + "/" + entity + "/"
}

// folderEntity keeps letters, digits, and spaces, trims the result, then
// drops interior spaces so the segment is a single clean token.
func folderEntity(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "")
}
