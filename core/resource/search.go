package resource

import "strings"

// Filter returns the records whose search fields contain query, ignoring case.
// An empty query returns recs unchanged.
func Filter(def *Definition, recs []Record, query string) []Record {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return recs
	}
	matches := make([]Record, 0, len(recs))
	for _, rec := range recs {
		for _, field := range def.SearchFields {
			if strings.Contains(strings.ToLower(def.Display(rec, field)), query) {
				matches = append(matches, rec)
				break
			}
		}
	}
	return matches
}
