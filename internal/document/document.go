package document

// LineItem is a single billed line on an invoice or receipt.
type LineItem struct {
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity,omitempty"`
	Total       float64 `json:"total,omitempty"`
}

// ExtractedDocument is the normalized output of document analysis. Every
// field is optional; downstream naming, routing, and mapping logic must
// degrade to defaults when fields are absent.
type ExtractedDocument struct {
	DocType  string   `json:"docType,omitempty"`
	Category string   `json:"category,omitempty"`
	Language string   `json:"language,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Keywords []string `json:"keywords,omitempty"`

	// Date is an ISO-8601 calendar date (YYYY-MM-DD).
	Date     string     `json:"date,omitempty"`
	Vendor   string     `json:"vendor,omitempty"`
	Amount   *float64   `json:"amount,omitempty"`
	Currency string     `json:"currency,omitempty"`
	Items    []LineItem `json:"items,omitempty"`

	// Business-card fields.
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Title   string `json:"title,omitempty"`

	Parties     []string `json:"parties,omitempty"`
	ProjectName string   `json:"projectName,omitempty"`
	OCRText     string   `json:"ocrText,omitempty"`
}

// Amt returns the amount value and whether it was present.
func (d ExtractedDocument) Amt() (float64, bool) {
	if d.Amount == nil {
		return 0, false
	}
	return *d.Amount, true
}
