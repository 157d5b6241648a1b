// Package models defines the core data structures for documents, profiles,
// findings, and verification results.
package models

import "time"

// DocumentType identifies a recognized kind of dossier document.
type DocumentType string

const (
	DocPassport             DocumentType = "passport"
	DocPhoto                DocumentType = "photo"
	DocBankStatement        DocumentType = "bank_statement"
	DocPayslips             DocumentType = "payslips"
	DocEmploymentLetter     DocumentType = "employment_letter"
	DocBusinessRegistration DocumentType = "business_registration"
	DocStudentCertificate   DocumentType = "student_certificate"
	DocEnrollmentLetter     DocumentType = "enrollment_letter"
	DocInvitationLetter     DocumentType = "invitation_letter"
	DocTravelInsurance      DocumentType = "travel_insurance"
	DocAccommodationPlan    DocumentType = "accommodation_plan"
	DocItinerary            DocumentType = "itinerary"
	DocCivilStatus          DocumentType = "civil_status"
	DocSponsorLetter        DocumentType = "sponsor_letter"
	DocRefusalLetter        DocumentType = "refusal_letter"
	DocOther                DocumentType = "other"
)

// DocumentTypes lists all recognized document kinds.
var DocumentTypes = []DocumentType{
	DocPassport, DocPhoto, DocBankStatement, DocPayslips,
	DocEmploymentLetter, DocBusinessRegistration, DocStudentCertificate,
	DocEnrollmentLetter, DocInvitationLetter, DocTravelInsurance,
	DocAccommodationPlan, DocItinerary, DocCivilStatus, DocSponsorLetter,
	DocRefusalLetter, DocOther,
}

// ParseDocumentType maps a string onto a known DocumentType, defaulting to DocOther.
func ParseDocumentType(s string) DocumentType {
	for _, t := range DocumentTypes {
		if string(t) == s {
			return t
		}
	}
	return DocOther
}

// Document is an immutable record of one dossier piece. There is no binary
// payload here; the extracted field bag comes from an external OCR/extraction
// step and may hold strings, numbers, or ISO-date strings.
type Document struct {
	DocID       string         `json:"doc_id"`
	DocType     DocumentType   `json:"doc_type"`
	Filename    string         `json:"filename,omitempty"`
	IssuedDate  *time.Time     `json:"issued_date,omitempty"`
	ExpiresDate *time.Time     `json:"expires_date,omitempty"`
	Extracted   map[string]any `json:"extracted,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

// Field returns the raw extracted value for key, or nil when absent.
func (d *Document) Field(key string) any {
	if d.Extracted == nil {
		return nil
	}
	return d.Extracted[key]
}

// FirstField returns the raw value of the first key present in the bag.
// Empty strings count as absent, matching how extraction reports blanks.
func (d *Document) FirstField(keys ...string) any {
	for _, k := range keys {
		v := d.Field(k)
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return v
	}
	return nil
}

// Severity classifies how strongly an issue weighs on the dossier.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityRisk    Severity = "risk"
)

// DocumentEvidence is a structured citation justifying an issue. A missing
// document is cited with an empty DocID and Present=false; DocType still
// names the kind so the UI can offer an "add" action.
type DocumentEvidence struct {
	DocID        string `json:"doc_id"`
	DocType      string `json:"doc_type"`
	ExtractedKey string `json:"extracted_key"`
	Value        any    `json:"value"`
	Present      bool   `json:"present"`
	Note         string `json:"note,omitempty"`
}

// DocumentIssue is one finding of the coherence checks. Code is the stable
// machine identifier consumers key off; message/why/fix are presentation text
// and may be reworded without breaking callers.
type DocumentIssue struct {
	Severity     Severity           `json:"severity"`
	Code         string             `json:"code"`
	Message      string             `json:"message"`
	Why          []string           `json:"why,omitempty"`
	SuggestedFix []string           `json:"suggested_fix,omitempty"`
	Evidence     []DocumentEvidence `json:"evidence,omitempty"`
}

// DocumentCheckResult is the output of one coherence check call.
type DocumentCheckResult struct {
	MissingDocumentTypes []DocumentType  `json:"missing_document_types"`
	Issues               []DocumentIssue `json:"issues"`
	Assumptions          []string        `json:"assumptions"`
	Disclaimers          []string        `json:"disclaimers"`
}

// HasIssue reports whether the result contains an issue with the given code.
func (r *DocumentCheckResult) HasIssue(code string) bool {
	return r.Issue(code) != nil
}

// Issue returns the first issue with the given code, or nil.
func (r *DocumentCheckResult) Issue(code string) *DocumentIssue {
	for i := range r.Issues {
		if r.Issues[i].Code == code {
			return &r.Issues[i]
		}
	}
	return nil
}
