package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"dms-backend/internal/document"
)

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	emailRe     = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe     = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)
	amountRe    = regexp.MustCompile(`(?i)(?:total|amount|grand total|balance due)\s*[:\s]*(?:SGD|USD|EUR|S?\$|€)?\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	currencyRe  = regexp.MustCompile(`\b(SGD|USD|EUR|MYR|GBP|JPY)\b`)
)

var stopwords = map[string]struct{}{
	"about": {}, "above": {}, "after": {}, "amount": {}, "balance": {},
	"between": {}, "dated": {}, "hereby": {}, "invoice": {}, "number": {},
	"payment": {}, "please": {}, "receipt": {}, "shall": {}, "their": {},
	"there": {}, "these": {}, "total": {}, "under": {}, "where": {}, "which": {},
}

// DetectFields runs the deterministic heuristics over extracted text.
func DetectFields(text string) document.ExtractedDocument {
	doc := document.ExtractedDocument{}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return doc
	}

	lower := strings.ToLower(trimmed)
	lines := nonEmptyLines(trimmed)

	doc.DocType = detectDocType(lower, lines)
	doc.Date = detectDate(trimmed)
	doc.Email = emailRe.FindString(trimmed)
	doc.Keywords = detectKeywords(lower)

	switch doc.DocType {
	case "Business Card":
		fillBusinessCard(&doc, lines)
	default:
		if len(lines) > 0 {
			doc.Vendor = strings.TrimSpace(lines[0])
		}
		if match := amountRe.FindStringSubmatch(trimmed); match != nil {
			raw := strings.ReplaceAll(match[1], ",", "")
			if amount, err := strconv.ParseFloat(raw, 64); err == nil {
				doc.Amount = &amount
			}
		}
		doc.Currency = detectCurrency(trimmed)
	}

	return doc
}

func detectDocType(lower string, lines []string) string {
	switch {
	case strings.Contains(lower, "tax invoice"), strings.Contains(lower, "invoice"):
		return "Invoice"
	case strings.Contains(lower, "receipt"):
		return "Receipt"
	case strings.Contains(lower, "agreement"), strings.Contains(lower, "contract"),
		strings.Contains(lower, "memorandum of understanding"):
		return "Contract"
	case looksLikeBusinessCard(lower, lines):
		return "Business Card"
	default:
		return ""
	}
}

// looksLikeBusinessCard: short documents carrying both an email and a phone
// number are almost always cards.
func looksLikeBusinessCard(lower string, lines []string) bool {
	if len(lines) == 0 || len(lines) > 10 {
		return false
	}
	return emailRe.MatchString(lower) && phoneRe.MatchString(lower)
}

func fillBusinessCard(doc *document.ExtractedDocument, lines []string) {
	if len(lines) > 0 {
		doc.Name = strings.TrimSpace(lines[0])
	}
	for _, line := range lines[1:] {
		clean := strings.TrimSpace(line)
		switch {
		case emailRe.MatchString(clean):
			// Already captured.
		case phoneRe.MatchString(clean) && doc.Phone == "":
			doc.Phone = phoneRe.FindString(clean)
		case doc.Title == "" && looksLikeTitle(clean):
			doc.Title = clean
		case doc.Company == "":
			doc.Company = clean
		}
	}
}

func looksLikeTitle(line string) bool {
	lower := strings.ToLower(line)
	for _, hint := range []string{"director", "manager", "officer", "engineer", "founder", "partner", "head of", "lead", "ceo", "cto", "cfo"} {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func detectDate(text string) string {
	if match := isoDateRe.FindString(text); match != "" {
		return match
	}
	if match := slashDateRe.FindStringSubmatch(text); match != nil {
		day, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		// Ambiguous d/m vs m/d: assume day-first unless impossible.
		if day <= 12 && month > 12 {
			day, month = month, day
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return match[3] + "-" + pad2(month) + "-" + pad2(day)
		}
	}
	return ""
}

func detectCurrency(text string) string {
	if match := currencyRe.FindString(text); match != "" {
		return match
	}
	if strings.Contains(text, "S$") {
		return "SGD"
	}
	if strings.Contains(text, "€") {
		return "EUR"
	}
	return ""
}

// detectKeywords returns up to five frequent content words.
func detectKeywords(lower string) []string {
	counts := make(map[string]int)
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	}) {
		if len(word) < 5 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > 5 {
		words = words[:5]
	}
	return words
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}
