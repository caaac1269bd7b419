package naming

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"

	"dms-backend/internal/document"
)

// DefaultTemplate is used when a tenant has not configured a naming scheme.
const DefaultTemplate = "{YYYY}{MM}{DD}_{DocType}_{Entity}_{Amount}"

// DefaultExtension is appended to every generated file name.
const DefaultExtension = ".pdf"

const shortHashAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// nowFunc is overridable in tests.
var nowFunc = time.Now

// Namer generates file names and folder paths from extracted document
// fields. The zero value uses DefaultTemplate and DefaultExtension.
type Namer struct {
	Template  string
	Extension string
}

// FileName expands the configured template against the document. It is a
// total function: missing fields degrade to defaults and the result always
// ends with the configured extension.
func (n Namer) FileName(doc document.ExtractedDocument) string {
	tmpl := strings.TrimSpace(n.Template)
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	ext := n.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	name := expandTokens(tmpl, doc)
	name = collapseUnderscores(name)
	name = strings.TrimSuffix(name, "_")
	return name + ext
}

// expandTokens substitutes every {Token} occurrence in a single pass.
// Unrecognized tokens expand to nothing so the output never contains an
// unresolved brace literal.
func expandTokens(tmpl string, doc document.ExtractedDocument) string {
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); {
		if tmpl[i] != '{' {
			b.WriteByte(tmpl[i])
			i++
			continue
		}
		end := strings.IndexByte(tmpl[i:], '}')
		if end < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		token := tmpl[i+1 : i+end]
		b.WriteString(tokenValue(token, doc))
		i += end + 1
	}
	return b.String()
}

func tokenValue(token string, doc document.ExtractedDocument) string {
	date := docDate(doc)
	switch token {
	case "YYYY":
		return date.Format("2006")
	case "MM":
		return date.Format("01")
	case "DD":
		return date.Format("02")
	case "DocType":
		if v := stripWhitespace(doc.DocType); v != "" {
			return v
		}
		return "Doc"
	case "Entity":
		if v := stripNonAlnum(firstNonEmpty(doc.Vendor, doc.Name, doc.Company)); v != "" {
			return v
		}
		return "Unknown"
	case "Vendor":
		return stripNonAlnum(doc.Vendor)
	case "Amount":
		if amt, ok := doc.Amt(); ok {
			return formatAmount(amt) + doc.Currency
		}
		return ""
	case "Keywords":
		if len(doc.Keywords) == 0 {
			return "NoKey"
		}
		kw := doc.Keywords
		if len(kw) > 2 {
			kw = kw[:2]
		}
		return strings.Join(kw, "_")
	case "Item":
		if len(doc.Items) > 0 {
			if v := truncate(stripNonAlnum(doc.Items[0].Description), 10); v != "" {
				return v
			}
		}
		return "Gen"
	case "ShortHash":
		return shortHash()
	default:
		return ""
	}
}

// docDate parses doc.Date, falling back to the current date.
func docDate(doc document.ExtractedDocument) time.Time {
	raw := strings.TrimSpace(doc.Date)
	if raw == "" {
		return nowFunc()
	}
	if len(raw) > 10 {
		raw = raw[:10]
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nowFunc()
	}
	return parsed
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func stripWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// shortHash is a cosmetic disambiguator, not a uniqueness guarantee.
func shortHash() string {
	var raw [4]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return strconv.FormatInt(nowFunc().UnixNano()%10000, 10)
	}
	out := make([]byte, len(raw))
	for i, v := range raw {
		out[i] = shortHashAlphabet[int(v)%len(shortHashAlphabet)]
	}
	return string(out)
}
