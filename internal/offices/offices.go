// Package offices holds the bundled catalog of consulates and visa
// application centers, searchable through a Bleve index so users can find
// where to submit a dossier.
package offices

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Office is one consulate or visa application center.
type Office struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Country   string   `json:"country"`
	City      string   `json:"city"`
	Region    string   `json:"region"`
	VisaTypes []string `json:"visa_types"`
	Website   string   `json:"website,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

//go:embed offices.json
var catalogJSON []byte

// Catalog returns the bundled office catalog.
func Catalog() ([]Office, error) {
	var offices []Office
	if err := json.Unmarshal(catalogJSON, &offices); err != nil {
		return nil, fmt.Errorf("decode office catalog: %w", err)
	}
	return offices, nil
}
