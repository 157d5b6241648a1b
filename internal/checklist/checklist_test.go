package checklist

import (
	"testing"

	"github.com/visado/visado/internal/models"
)

func TestRequiredDocuments(t *testing.T) {
	tests := []struct {
		name        string
		visaType    string
		destination string
		want        []models.DocumentType
	}{
		{
			name:        "baseline always passport and photo",
			visaType:    "tourism",
			destination: "Japan",
			want:        []models.DocumentType{models.DocPassport, models.DocPhoto},
		},
		{
			name:        "schengen tourism",
			visaType:    "tourist visa",
			destination: "Schengen Area",
			want: []models.DocumentType{
				models.DocPassport, models.DocPhoto,
				models.DocBankStatement, models.DocTravelInsurance,
				models.DocItinerary, models.DocAccommodationPlan,
			},
		},
		{
			name:        "uk adds bank itinerary accommodation",
			visaType:    "tourism",
			destination: "UK",
			want: []models.DocumentType{
				models.DocPassport, models.DocPhoto,
				models.DocBankStatement, models.DocItinerary,
				models.DocAccommodationPlan,
			},
		},
		{
			name:        "us adds bank statement only",
			visaType:    "tourism",
			destination: "USA",
			want: []models.DocumentType{
				models.DocPassport, models.DocPhoto, models.DocBankStatement,
			},
		},
		{
			name:        "study keywords",
			visaType:    "Study visa",
			destination: "Canada",
			want: []models.DocumentType{
				models.DocPassport, models.DocPhoto,
				models.DocEnrollmentLetter, models.DocStudentCertificate,
			},
		},
		{
			name:        "french study keyword",
			visaType:    "visa étudiant",
			destination: "Canada",
			want: []models.DocumentType{
				models.DocPassport, models.DocPhoto,
				models.DocEnrollmentLetter, models.DocStudentCertificate,
			},
		},
		{
			name:        "business keywords",
			visaType:    "business trip",
			destination: "Japan",
			want: []models.DocumentType{
				models.DocPassport, models.DocPhoto, models.DocInvitationLetter,
			},
		},
		{
			name:        "family visit schengen dedups invitation",
			visaType:    "family visit",
			destination: "Schengen",
			want: []models.DocumentType{
				models.DocPassport, models.DocPhoto,
				models.DocBankStatement, models.DocTravelInsurance,
				models.DocItinerary, models.DocAccommodationPlan,
				models.DocInvitationLetter, models.DocCivilStatus,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiredDocuments(tt.visaType, tt.destination)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("position %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRequiredDocumentsNoDuplicates(t *testing.T) {
	got := RequiredDocuments("business affairs family", "schengen europe uk usa")
	seen := map[models.DocumentType]bool{}
	for _, d := range got {
		if seen[d] {
			t.Errorf("duplicate type %s in %v", d, got)
		}
		seen[d] = true
	}
}
