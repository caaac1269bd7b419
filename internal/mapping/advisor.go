package mapping

import (
	"fmt"
	"strings"

	"dms-backend/internal/document"
)

// DefaultCurrency is applied to drafted purchase invoices when the document
// has no currency of its own.
const DefaultCurrency = "SGD"

// Advisor proposes downstream entity actions for an extracted document.
// The zero value uses DefaultCurrency.
type Advisor struct {
	Currency string
}

// Suggest evaluates the rule set against the document. Rules are
// independent: a document can match several and produce one suggestion per
// matching rule, in rule order. An empty result means nothing to propose.
func (a Advisor) Suggest(doc document.ExtractedDocument, docType string) []Suggestion {
	rules := []func(document.ExtractedDocument, string) (Suggestion, bool){
		a.contactFromBusinessCard,
		a.purchaseInvoiceDraft,
		a.projectLink,
	}

	out := make([]Suggestion, 0, len(rules))
	for _, rule := range rules {
		if s, ok := rule(doc, docType); ok {
			out = append(out, s)
		}
	}
	return out
}

func (a Advisor) contactFromBusinessCard(doc document.ExtractedDocument, docType string) (Suggestion, bool) {
	if docType != "Business Card" || strings.TrimSpace(doc.Name) == "" {
		return Suggestion{}, false
	}

	first, last := splitName(doc.Name)
	return Suggestion{
		TargetEntityType: "Contact",
		Action:           ActionCreate,
		Description:      fmt.Sprintf("Create contact for %s", strings.TrimSpace(doc.Name)),
		Payload: map[string]any{
			"firstName": first,
			"lastName":  last,
			"email":     doc.Email,
			"phone":     doc.Phone,
			"company":   doc.Company,
			"title":     doc.Title,
		},
	}, true
}

func (a Advisor) purchaseInvoiceDraft(doc document.ExtractedDocument, docType string) (Suggestion, bool) {
	if docType != "Receipt" && docType != "Invoice" {
		return Suggestion{}, false
	}
	amount, ok := doc.Amt()
	if !ok {
		return Suggestion{}, false
	}

	currency := strings.TrimSpace(doc.Currency)
	if currency == "" {
		currency = a.currency()
	}

	// Supplier is the raw vendor string; matching it against the vendor
	// registry is the executing system's job.
	return Suggestion{
		TargetEntityType: "Purchase Invoice",
		Action:           ActionCreateDraft,
		Description:      fmt.Sprintf("Draft purchase invoice from %s for %g %s", vendorLabel(doc), amount, currency),
		Payload: map[string]any{
			"supplier":    doc.Vendor,
			"postingDate": doc.Date,
			"grandTotal":  amount,
			"currency":    currency,
			"items":       doc.Items,
		},
	}, true
}

func (a Advisor) projectLink(doc document.ExtractedDocument, docType string) (Suggestion, bool) {
	if docType != "Contract" {
		return Suggestion{}, false
	}

	label := strings.TrimSpace(doc.ProjectName)
	if label == "" {
		label = "General"
	}
	return Suggestion{
		TargetEntityType: "Project",
		Action:           ActionLink,
		Description:      fmt.Sprintf("Link contract to project %s", label),
		Payload: map[string]any{
			"projectName": doc.ProjectName,
		},
	}, true
}

func (a Advisor) currency() string {
	if strings.TrimSpace(a.Currency) != "" {
		return a.Currency
	}
	return DefaultCurrency
}

// splitName treats the first token as the first name and joins the rest
// into the last name.
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func vendorLabel(doc document.ExtractedDocument) string {
	if strings.TrimSpace(doc.Vendor) != "" {
		return doc.Vendor
	}
	return "unknown vendor"
}
