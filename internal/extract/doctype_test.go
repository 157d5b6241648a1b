package extract

import (
	"testing"

	"github.com/visado/visado/internal/models"
)

func TestGuessDocType(t *testing.T) {
	tests := []struct {
		filename string
		want     models.DocumentType
	}{
		{"passport.pdf", models.DocPassport},
		{"/vault/2026/Passeport_scan.pdf", models.DocPassport},
		{"bank_statement_june.pdf", models.DocBankStatement},
		{"releve-bancaire.pdf", models.DocBankStatement},
		{"payslip_2026_07.pdf", models.DocPayslips},
		{"attestation_travail.docx", models.DocEmploymentLetter},
		{"travel_insurance.pdf", models.DocTravelInsurance},
		{"flight_itinerary.pdf", models.DocItinerary},
		{"hotel_booking.pdf", models.DocAccommodationPlan},
		{"sponsor_letter.docx", models.DocSponsorLetter},
		{"IMG_1234.jpg", models.DocOther},
		{"notes.txt", models.DocOther},
	}
	for _, tt := range tests {
		if got := GuessDocType(tt.filename); got != tt.want {
			t.Errorf("GuessDocType(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
