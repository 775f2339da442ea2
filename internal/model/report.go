package model

import (
	"sort"
	"time"
)

// Report is the comparison handed to the presentation layer: one ranked
// result per insurer that took part in the run.
type Report struct {
	Question Question                `json:"question"`
	AskedAt  time.Time               `json:"asked_at"`
	Engine   string                  `json:"engine"`
	Results  map[string]RankedResult `json:"results"`
}

// Insurers returns the insurer names of the report in sorted order
func (r *Report) Insurers() []string {
	names := make([]string, 0, len(r.Results))
	for name := range r.Results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
