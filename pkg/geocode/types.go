// Package geocode resolves free-text locations to coordinates through
// Nominatim and shapes the answer into a stable response schema.
package geocode

import (
	"encoding/json"

	"github.com/NERVsystems/geocodemcp/pkg/geo"
)

const (
	// MinLimit is the smallest number of results that can be requested
	MinLimit = 1

	// MaxLimit is the largest number of results that can be requested
	MaxLimit = 10

	// DefaultLimit is used when the caller does not ask for a count
	DefaultLimit = 1

	// NoResultsMessage is the error text of an empty result
	NoResultsMessage = "No coordinates found for the specified location"
)

// NoResultsSuggestions are returned with every empty result.
var NoResultsSuggestions = []string{
	"Try including more specific details (e.g., state, country)",
	"Check spelling of the location name",
	"Use a more general location (e.g., city instead of specific address)",
}

// LocationQuery is one normalized lookup request.
type LocationQuery struct {
	Text  string `validate:"required"`
	Limit int    `validate:"min=1,max=10"`
}

// Coordinate is one matched place, copied from a single upstream record.
type Coordinate struct {
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	DisplayName string          `json:"display_name"`
	PlaceID     int64           `json:"place_id"`
	Type        string          `json:"type"`
	Class       string          `json:"class"`
	Importance  float64         `json:"importance"`
	BoundingBox geo.BoundingBox `json:"bounding_box"`
}

// Outcome tags which variant a GeocodeResult holds.
type Outcome int

const (
	// OutcomeFound means at least one place matched.
	OutcomeFound Outcome = iota
	// OutcomeEmpty means the lookup succeeded but nothing matched.
	OutcomeEmpty
)

// GeocodeResult is either a list of coordinates or an empty result with
// suggestions. Use Found or Empty to construct one.
type GeocodeResult struct {
	Outcome     Outcome
	Query       string
	Coordinates []Coordinate
	Suggestions []string
}

// Found builds the success variant. Order of coords is preserved.
func Found(query string, coords []Coordinate) GeocodeResult {
	return GeocodeResult{
		Outcome:     OutcomeFound,
		Query:       query,
		Coordinates: coords,
	}
}

// Empty builds the no-match variant with the standard suggestions.
func Empty(query string) GeocodeResult {
	suggestions := make([]string, len(NoResultsSuggestions))
	copy(suggestions, NoResultsSuggestions)
	return GeocodeResult{
		Outcome:     OutcomeEmpty,
		Query:       query,
		Suggestions: suggestions,
	}
}

// IsEmpty reports whether the result is the no-match variant.
func (r GeocodeResult) IsEmpty() bool {
	return r.Outcome == OutcomeEmpty
}

// ResultsCount is the number of coordinates in a found result.
func (r GeocodeResult) ResultsCount() int {
	return len(r.Coordinates)
}

type foundPayload struct {
	Query        string       `json:"query"`
	ResultsCount int          `json:"results_count"`
	Coordinates  []Coordinate `json:"coordinates"`
}

type emptyPayload struct {
	Error       string   `json:"error"`
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

// MarshalJSON renders only the fields of the active variant.
func (r GeocodeResult) MarshalJSON() ([]byte, error) {
	if r.IsEmpty() {
		return json.Marshal(emptyPayload{
			Error:       NoResultsMessage,
			Query:       r.Query,
			Suggestions: r.Suggestions,
		})
	}
	coords := r.Coordinates
	if coords == nil {
		coords = []Coordinate{}
	}
	return json.Marshal(foundPayload{
		Query:        r.Query,
		ResultsCount: len(coords),
		Coordinates:  coords,
	})
}
