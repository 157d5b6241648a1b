package coherence

import (
	"time"

	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

var tripKeyPairs = [][2]string{
	{"start_date", "end_date"},
	{"trip_start_date", "trip_end_date"},
	{"travel_start_date", "travel_end_date"},
}

// extractTripWindow scans itinerary and accommodation documents for any of
// the known start/end key pairs and returns the min start and max end across
// everything that parses. Evidence covers every key pair where at least one
// raw value was provided, parsed or not.
func extractTripWindow(docs []models.Document) (start, end *time.Time, evidence []models.DocumentEvidence) {
	for i := range docs {
		doc := &docs[i]
		if doc.DocType != models.DocItinerary && doc.DocType != models.DocAccommodationPlan {
			continue
		}
		for _, pair := range tripKeyPairs {
			rawStart := doc.Field(pair[0])
			rawEnd := doc.Field(pair[1])
			parsedStart := normalize.ParseISODate(rawStart)
			parsedEnd := normalize.ParseISODate(rawEnd)

			if rawStart != nil || rawEnd != nil {
				evidence = append(evidence,
					models.DocumentEvidence{
						DocID:        doc.DocID,
						DocType:      string(doc.DocType),
						ExtractedKey: pair[0],
						Value:        rawStart,
						Present:      parsedStart != nil,
						Note:         "Trip start date from itinerary or accommodation.",
					},
					models.DocumentEvidence{
						DocID:        doc.DocID,
						DocType:      string(doc.DocType),
						ExtractedKey: pair[1],
						Value:        rawEnd,
						Present:      parsedEnd != nil,
						Note:         "Trip end date from itinerary or accommodation.",
					},
				)
			}

			if parsedStart != nil && (start == nil || parsedStart.Before(*start)) {
				start = parsedStart
			}
			if parsedEnd != nil && (end == nil || parsedEnd.After(*end)) {
				end = parsedEnd
			}
		}
	}
	return start, end, evidence
}
