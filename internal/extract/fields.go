package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	passportLabelRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)passport\s*(?:no|number|n°)\s*[:\-]?\s*([A-Z0-9]{6,12})`),
		regexp.MustCompile(`(?i)num[eé]ro\s+de\s+passeport\s*[:\-]?\s*([A-Z0-9]{6,12})`),
	}
	passportShapeRe = regexp.MustCompile(`\b([A-Z]{1,2}\d{5,10})\b`)

	isoDateRe  = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	euroDateRe = regexp.MustCompile(`\b(\d{1,2})[/.](\d{1,2})[/.](\d{4})\b`)
	anyDateRe  = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}[/.]\d{1,2}[/.]\d{4}\b`)

	fullNameRe      = regexp.MustCompile(`(?i)(?:full\s+name|nom\s+complet)\s*[:\-]?\s*([A-Z][A-Z \-']{3,})`)
	endingBalanceRe = regexp.MustCompile(`(?i)(?:ending\s+balance|solde\s+final|closing\s+balance)\s*[:\-]?\s*([0-9][0-9\s,.]+)`)
	accountHolderRe = regexp.MustCompile(`(?i)(?:account\s+holder|titulaire\s+du\s+compte)\s*[:\-]?\s*([A-Z][A-Z \-']{3,})`)
	coverageRe      = regexp.MustCompile(`(?i)(?:coverage|couverture)\s*[:\-]?\s*(?:EUR|USD|€|\$)?\s*([0-9][0-9\s,.]+)`)

	nonAlnumRe = regexp.MustCompile(`[^A-Z0-9]`)
	numberRe   = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

var expiryContext = []string{"expire", "expiry", "exp.", "date of expiry", "date d'expiration", "valid until", "valide jusqu"}

var issueContext = []string{"issue", "issued", "date of issue", "date d'emission", "date d'émission", "délivr", "deliver"}

// Fields mines the structured fields the coherence rules consume out of
// extracted text. Every rule is a best-effort heuristic; absent fields are
// simply omitted from the map.
func Fields(text string) map[string]any {
	out := make(map[string]any)

	if n, ok := passportNumber(text); ok {
		out["passport_number"] = n
	}

	// Classify dates by the words within 25 characters on either side.
	type dateHit struct {
		iso string
		ctx string
	}
	var hits []dateHit
	for _, loc := range anyDateRe.FindAllStringIndex(text, -1) {
		iso, ok := ISODate(text[loc[0]:loc[1]])
		if !ok {
			continue
		}
		start := max(0, loc[0]-25)
		end := min(len(text), loc[1]+25)
		// Lowercase per window: ToLower can change byte length, so offsets
		// into a pre-lowered copy of the whole text would misalign.
		hits = append(hits, dateHit{iso: iso, ctx: strings.ToLower(text[start:end])})
	}
	for _, h := range hits {
		if containsAny(h.ctx, expiryContext) {
			if _, seen := out["expires_date"]; !seen {
				out["expires_date"] = h.iso
			}
		}
		if containsAny(h.ctx, issueContext) {
			if _, seen := out["issued_date"]; !seen {
				out["issued_date"] = h.iso
			}
		}
	}
	// A lone unlabelled date is more likely an issue date than an expiry.
	if _, hasIss := out["issued_date"]; !hasIss {
		if _, hasExp := out["expires_date"]; !hasExp && len(hits) > 0 {
			out["issued_date"] = hits[0].iso
		}
	}

	if m := fullNameRe.FindStringSubmatch(text); m != nil {
		out["full_name"] = collapse(m[1])
	}
	if m := endingBalanceRe.FindStringSubmatch(text); m != nil {
		if v, ok := ParseAmount(m[1]); ok {
			out["ending_balance_usd"] = v
		}
	}
	if m := accountHolderRe.FindStringSubmatch(text); m != nil {
		out["account_holder_name"] = collapse(m[1])
	}
	if m := coverageRe.FindStringSubmatch(text); m != nil {
		if v, ok := ParseAmount(m[1]); ok {
			out["coverage_amount"] = v
		}
	}
	return out
}

func passportNumber(text string) (string, bool) {
	for _, re := range passportLabelRe {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		cand := nonAlnumRe.ReplaceAllString(strings.ToUpper(m[1]), "")
		if len(cand) >= 6 && len(cand) <= 12 {
			return cand, true
		}
	}
	if m := passportShapeRe.FindStringSubmatch(strings.ToUpper(text)); m != nil {
		return m[1], true
	}
	return "", false
}

// ISODate normalizes a date fragment to YYYY-MM-DD. It accepts ISO dates
// and the DD/MM/YYYY and DD.MM.YYYY forms common on consular paperwork.
func ISODate(s string) (string, bool) {
	t := collapse(s)
	if t == "" {
		return "", false
	}
	if m := isoDateRe.FindStringSubmatch(t); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3], true
	}
	if m := euroDateRe.FindStringSubmatch(t); m != nil {
		dd, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		yy, _ := strconv.Atoi(m[3])
		if mm >= 1 && mm <= 12 && dd >= 1 && dd <= 31 {
			return fmt.Sprintf("%04d-%02d-%02d", yy, mm, dd), true
		}
	}
	return "", false
}

// ParseAmount parses a monetary amount, resolving the "1,234.56" versus
// "1.234,56" separator ambiguity by the last separator seen.
func ParseAmount(s string) (float64, bool) {
	raw := strings.ReplaceAll(collapse(s), " ", "")
	hasComma := strings.Contains(raw, ",")
	hasDot := strings.Contains(raw, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(raw, ".") > strings.LastIndex(raw, ",") {
			raw = strings.ReplaceAll(raw, ",", "")
		} else {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
		}
	case hasComma:
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	m := numberRe.FindString(raw)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
