package coherence

import (
	"sort"
	"time"

	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// checkContext carries the document index and the derived values shared by
// several rules. Derivations are computed once so every rule that needs the
// trip window or the freshest bank statement sees the same value.
type checkContext struct {
	visaType          string
	destinationRegion string
	today             time.Time

	documents []models.Document
	byType    map[models.DocumentType][]models.Document

	passport     *models.Document
	freshestBank *models.Document

	tripStart    *time.Time
	tripEnd      *time.Time
	tripEvidence []models.DocumentEvidence

	issues      []models.DocumentIssue
	assumptions []string
}

func newCheckContext(documents []models.Document, visaType, destinationRegion string, today time.Time) *checkContext {
	ctx := &checkContext{
		visaType:          visaType,
		destinationRegion: destinationRegion,
		today:             time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
		documents:         documents,
		byType:            make(map[models.DocumentType][]models.Document),
	}
	for _, doc := range documents {
		ctx.byType[doc.DocType] = append(ctx.byType[doc.DocType], doc)
	}

	// Instance selection uses the typed date fields only; the extracted map
	// is consulted later, when the chosen document is inspected.
	if passports := ctx.byType[models.DocPassport]; len(passports) > 0 {
		ctx.passport = latestBy(passports, func(d *models.Document) *time.Time {
			return d.ExpiresDate
		})
	}
	if bank := ctx.byType[models.DocBankStatement]; len(bank) > 0 {
		ctx.freshestBank = latestBy(bank, func(d *models.Document) *time.Time {
			return d.IssuedDate
		})
	}
	ctx.tripStart, ctx.tripEnd, ctx.tripEvidence = extractTripWindow(documents)
	return ctx
}

func (c *checkContext) addIssue(issue models.DocumentIssue) {
	c.issues = append(c.issues, issue)
}

func (c *checkContext) assume(note string) {
	c.assumptions = append(c.assumptions, note)
}

// firstOf returns the first document of the given type, or nil. Several
// rules deliberately look only at the first instance of their type.
func (c *checkContext) firstOf(t models.DocumentType) *models.Document {
	docs := c.byType[t]
	if len(docs) == 0 {
		return nil
	}
	return &docs[0]
}

// latestBy picks the document with the maximum date according to key, with a
// stable sort so ties resolve deterministically. Documents without a date
// sort last.
func latestBy(docs []models.Document, key func(*models.Document) *time.Time) *models.Document {
	sorted := make([]models.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := key(&sorted[i]), key(&sorted[j])
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return di.After(*dj)
	})
	return &sorted[0]
}

// documentExpiry resolves a document's expiry from the typed field first,
// falling back to the extracted map.
func documentExpiry(d *models.Document) *time.Time {
	if d.ExpiresDate != nil {
		return d.ExpiresDate
	}
	return normalize.ParseISODate(d.Field("expires_date"))
}

// documentIssued resolves a document's issue date the same way.
func documentIssued(d *models.Document) *time.Time {
	if d.IssuedDate != nil {
		return d.IssuedDate
	}
	return normalize.ParseISODate(d.Field("issued_date"))
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
