package files

import (
	"strings"
	"time"
)

// AllSentinel disables the docType and provider criteria when supplied.
const AllSentinel = "All"

// Criteria is a set of search filters. Absent criteria match everything;
// present criteria are ANDed together.
type Criteria struct {
	Search    string
	DocType   string
	Provider  string
	StartDate *time.Time
	EndDate   *time.Time
	Tags      []string
}

// Filter returns the order-preserving subsequence of files matching every
// present criterion.
func Filter(list []StoredFile, c Criteria) []StoredFile {
	out := make([]StoredFile, 0, len(list))
	for _, f := range list {
		if matches(f, c) {
			out = append(out, f)
		}
	}
	return out
}

func matches(f StoredFile, c Criteria) bool {
	if q := strings.TrimSpace(c.Search); q != "" {
		haystack := strings.ToLower(f.OCRText + f.FileName)
		if !strings.Contains(haystack, strings.ToLower(q)) {
			return false
		}
	}

	if c.DocType != "" && c.DocType != AllSentinel && f.Metadata.DocType != c.DocType {
		return false
	}

	if c.Provider != "" && c.Provider != AllSentinel && f.StorageProvider != c.Provider {
		return false
	}

	if c.StartDate != nil && f.CreatedAt.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && f.CreatedAt.After(*c.EndDate) {
		return false
	}

	if len(c.Tags) > 0 && !anyTagOverlap(f.Tags, c.Tags) {
		return false
	}

	return true
}

// anyTagOverlap reports whether the two tag sets share at least one tag.
func anyTagOverlap(have, want []string) bool {
	if len(have) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, tag := range have {
		set[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}
	for _, tag := range want {
		if _, ok := set[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return true
		}
	}
	return false
}
