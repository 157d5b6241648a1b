package coherence

import (
	"strings"

	"github.com/visado/visado/internal/models"
	"github.com/visado/visado/internal/normalize"
)

// Region heuristics. These are order-of-magnitude defaults standing in for a
// per-country rules source; thresholds are kept conservative.
const (
	passportExpirySoonDays = 180
	statementStaleDays     = 120
	tripBudgetBufferUSD    = 300.0
	schengenMinCoverageEUR = 30000.0
	minPayslipCount        = 3
	incomeMismatchRatio    = 0.35
	fundsWarningRatio      = 0.85
)

func isSchengen(destinationRegion string) bool {
	d := strings.ToLower(normalize.Text(destinationRegion))
	return strings.Contains(d, "schengen") || strings.Contains(d, "europe")
}

// minPassportValidityAfterTripDays returns the post-trip passport validity
// margin expected for a region. Schengen commonly wants three months after
// departure, most other destinations six.
func minPassportValidityAfterTripDays(destinationRegion string) int {
	if isSchengen(destinationRegion) {
		return 90
	}
	return 180
}

// dailyBudgetUSD estimates a per-day spend for a region.
func dailyBudgetUSD(destinationRegion string) float64 {
	d := strings.ToLower(normalize.Text(destinationRegion))
	switch {
	case strings.Contains(d, "schengen") || strings.Contains(d, "europe"):
		return 110.0
	case strings.Contains(d, "uk") || strings.Contains(d, "royaume"):
		return 140.0
	case strings.Contains(d, "us") || strings.Contains(d, "usa"):
		return 160.0
	default:
		return 90.0
	}
}

var familyKeywords = []string{
	"spouse", "wife", "husband",
	"époux", "epoux", "épouse", "epouse", "mari", "femme",
	"parent", "famill", "sister", "brother", "mother", "father",
}

func relationshipImpliesFamily(rel string) bool {
	r := strings.ToLower(normalize.Text(rel))
	if r == "" {
		return false
	}
	for _, k := range familyKeywords {
		if strings.Contains(r, k) {
			return true
		}
	}
	return false
}

// addressLike pulls the first address-flavored field out of a document.
func addressLike(d *models.Document) string {
	return normalize.Text(d.FirstField(
		"address",
		"host_address",
		"accommodation_address",
		"hotel_address",
		"stay_address",
	))
}
