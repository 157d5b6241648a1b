package coherence

import (
	"strings"

	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// checkItinerary compares the traveler name on the first itinerary against
// the passport and soft-checks the stated destination against the requested
// region.
func checkItinerary(ctx *checkContext) {
	itin := ctx.firstOf(models.DocItinerary)
	if itin == nil {
		return
	}

	traveler := normalize.Text(itin.FirstField("traveler_name", "full_name"))
	if ctx.passport != nil && traveler != "" {
		passportName := normalize.Text(ctx.passport.Field("full_name"))
		if passportName != "" && !normalize.NamesLike(passportName, traveler) {
			ctx.addIssue(models.DocumentIssue{
				Severity:     models.SeverityWarning,
				Code:         "NAME_MISMATCH_PASSPORT_ITINERARY",
				Message:      "Name mismatch between passport and itinerary.",
				SuggestedFix: []string{"Correct the name on the itinerary or explain the gap (missing first name, transliteration)."},
				Evidence: []models.DocumentEvidence{
					{
						DocID:        ctx.passport.DocID,
						DocType:      string(ctx.passport.DocType),
						ExtractedKey: "full_name",
						Value:        passportName,
						Present:      true,
						Note:         "Passport name.",
					},
					{
						DocID:        itin.DocID,
						DocType:      string(itin.DocType),
						ExtractedKey: "traveler_name",
						Value:        traveler,
						Present:      true,
						Note:         "Name on the itinerary.",
					},
				},
			})
		}
	}

	dest := normalize.Text(itin.FirstField("destination", "country", "region"))
	region := normalize.Text(ctx.destinationRegion)
	if dest != "" && region != "" && !strings.Contains(normalize.Key(dest), normalize.Key(region)) {
		ctx.addIssue(models.DocumentIssue{
			Severity:     models.SeverityInfo,
			Code:         "ITINERARY_DESTINATION_MISMATCH",
			Message:      "Itinerary destination differs from the requested region.",
			Why:          []string{"Not necessarily a problem, but an inconsistency can raise doubts."},
			SuggestedFix: []string{"Check that the destination region is correct both in the parameters and on the itinerary."},
			Evidence: []models.DocumentEvidence{{
				DocID:        itin.DocID,
				DocType:      string(itin.DocType),
				ExtractedKey: "destination",
				Value:        dest,
				Present:      true,
				Note:         "Destination extracted from the itinerary.",
			}},
		})
	}
}
