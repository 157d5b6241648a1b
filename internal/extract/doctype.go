package extract

import (
	"path/filepath"
	"strings"

	"github.com/visado/visado/internal/models"
)

// docTypeHints maps filename substrings to document types. Order matters:
// the first hit wins, so the more specific hints come first.
var docTypeHints = []struct {
	hint    string
	docType models.DocumentType
}{
	{"passport", models.DocPassport},
	{"passeport", models.DocPassport},
	{"bank", models.DocBankStatement},
	{"statement", models.DocBankStatement},
	{"releve", models.DocBankStatement},
	{"payslip", models.DocPayslips},
	{"salary", models.DocPayslips},
	{"bulletin", models.DocPayslips},
	{"employment", models.DocEmploymentLetter},
	{"employer", models.DocEmploymentLetter},
	{"travail", models.DocEmploymentLetter},
	{"insurance", models.DocTravelInsurance},
	{"assurance", models.DocTravelInsurance},
	{"itinerary", models.DocItinerary},
	{"itineraire", models.DocItinerary},
	{"flight", models.DocItinerary},
	{"invitation", models.DocInvitationLetter},
	{"accommodation", models.DocAccommodationPlan},
	{"hotel", models.DocAccommodationPlan},
	{"booking", models.DocAccommodationPlan},
	{"enrollment", models.DocEnrollmentLetter},
	{"inscription", models.DocEnrollmentLetter},
	{"student", models.DocStudentCertificate},
	{"sponsor", models.DocSponsorLetter},
	{"photo", models.DocPhoto},
	{"refusal", models.DocRefusalLetter},
}

// GuessDocType infers a document type from a filename. Vault files follow no
// enforced naming scheme, so this is a best-effort match on common names like
// passport.pdf or bank_statement_june.pdf; unmatched files become "other".
func GuessDocType(filename string) models.DocumentType {
	name := strings.ToLower(filepath.Base(filename))
	for _, h := range docTypeHints {
		if strings.Contains(name, h.hint) {
			return h.docType
		}
	}
	return models.DocOther
}
