package files

import (
	"testing"
	"time"

	"dms-backend/internal/document"
)

func fixtureFiles() []StoredFile {
	at := func(day int) time.Time {
		return time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
	}
	return []StoredFile{
		{
			ID: "f1", FileName: "20240301_Invoice_Acme.pdf", StorageProvider: "Local",
			Metadata: document.ExtractedDocument{DocType: "Invoice"}, OCRText: "acme corp invoice total 120",
			Tags: []string{"finance"}, CreatedAt: at(1),
		},
		{
			ID: "f2", FileName: "20240310_Receipt_Lunch.pdf", StorageProvider: "Dropbox",
			Metadata: document.ExtractedDocument{DocType: "Receipt"}, OCRText: "team lunch receipt",
			Tags: []string{"expenses", "team"}, CreatedAt: at(10),
		},
		{
			ID: "f3", FileName: "20240315_Invoice_Globex.pdf", StorageProvider: "Local",
			Metadata: document.ExtractedDocument{DocType: "Invoice"}, OCRText: "globex services rendered",
			CreatedAt: at(15),
		},
		{
			ID: "f4", FileName: "20240320_Contract_Acme.pdf", StorageProvider: "Google Drive",
			Metadata: document.ExtractedDocument{DocType: "Contract"}, OCRText: "master services agreement acme",
			Tags: []string{"legal"}, CreatedAt: at(20),
		},
	}
}

func ids(list []StoredFile) []string {
	out := make([]string, 0, len(list))
	for _, f := range list {
		out = append(out, f.ID)
	}
	return out
}

func assertIDs(t *testing.T, got []StoredFile, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, gotIDs)
		}
	}
}

func TestFilterEmptyCriteriaReturnsAll(t *testing.T) {
	list := fixtureFiles()
	assertIDs(t, Filter(list, Criteria{}), "f1", "f2", "f3", "f4")
}

func TestFilterANDSemantics(t *testing.T) {
	list := fixtureFiles()

	byType := Filter(list, Criteria{DocType: "Invoice"})
	byProvider := Filter(list, Criteria{Provider: "Local"})
	both := Filter(list, Criteria{DocType: "Invoice", Provider: "Local"})

	// The combined filter must equal the intersection of the two.
	inProvider := make(map[string]bool)
	for _, f := range byProvider {
		inProvider[f.ID] = true
	}
	var intersection []string
	for _, f := range byType {
		if inProvider[f.ID] {
			intersection = append(intersection, f.ID)
		}
	}
	assertIDs(t, both, intersection...)
}

func TestFilterAllSentinelDisables(t *testing.T) {
	list := fixtureFiles()
	assertIDs(t, Filter(list, Criteria{DocType: AllSentinel, Provider: AllSentinel}), "f1", "f2", "f3", "f4")
}

func TestFilterFreeTextMatchesOCRAndName(t *testing.T) {
	list := fixtureFiles()
	assertIDs(t, Filter(list, Criteria{Search: "ACME"}), "f1", "f4")
	assertIDs(t, Filter(list, Criteria{Search: "Globex"}), "f3")
	assertIDs(t, Filter(list, Criteria{Search: "Lunch"}), "f2")
}

func TestFilterFreeTextSpansTextNameBoundary(t *testing.T) {
	// The haystack is the plain concatenation ocrText+fileName, so a query
	// straddling the join point still matches.
	list := []StoredFile{
		{ID: "f1", FileName: "report.pdf", OCRText: "quarterly summary"},
	}
	assertIDs(t, Filter(list, Criteria{Search: "summaryreport"}), "f1")
}

func TestFilterDateBoundsInclusive(t *testing.T) {
	list := fixtureFiles()
	start := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	assertIDs(t, Filter(list, Criteria{StartDate: &start, EndDate: &end}), "f2", "f3")
	assertIDs(t, Filter(list, Criteria{StartDate: &start}), "f2", "f3", "f4")
	assertIDs(t, Filter(list, Criteria{EndDate: &start}), "f1", "f2")
}

func TestFilterTagsOrSemantics(t *testing.T) {
	list := fixtureFiles()
	assertIDs(t, Filter(list, Criteria{Tags: []string{"legal", "expenses"}}), "f2", "f4")
	assertIDs(t, Filter(list, Criteria{Tags: []string{"nonexistent"}}))
}

func TestFilterPreservesOrder(t *testing.T) {
	list := fixtureFiles()
	got := Filter(list, Criteria{Provider: "Local"})
	assertIDs(t, got, "f1", "f3")
}
