package geocode

import (
	"encoding/json"
	"testing"

	"github.com/NERVsystems/geocodemcp/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocodeResultMarshalFound(t *testing.T) {
	result := Found("Paris, France", []Coordinate{{
		Latitude:    48.8534951,
		Longitude:   2.3483915,
		DisplayName: "Paris, France",
		PlaceID:     88066702,
		Type:        "administrative",
		Class:       "boundary",
		Importance:  0.88,
		BoundingBox: geo.BoundingBox{South: 48.81, North: 48.90, West: 2.22, East: 2.46},
	}})

	data, err := json.MarshalIndent(result, "", "  ")
	require.NoError(t, err)

	want := `{
  "query": "Paris, France",
  "results_count": 1,
  "coordinates": [
    {
      "latitude": 48.8534951,
      "longitude": 2.3483915,
      "display_name": "Paris, France",
      "place_id": 88066702,
      "type": "administrative",
      "class": "boundary",
      "importance": 0.88,
      "bounding_box": {
        "south": 48.81,
        "north": 48.9,
        "west": 2.22,
        "east": 2.46
      }
    }
  ]
}`
	assert.Equal(t, want, string(data))
}

func TestGeocodeResultMarshalEmpty(t *testing.T) {
	data, err := json.MarshalIndent(Empty("Atlantis"), "", "  ")
	require.NoError(t, err)

	want := `{
  "error": "No coordinates found for the specified location",
  "query": "Atlantis",
  "suggestions": [
    "Try including more specific details (e.g., state, country)",
    "Check spelling of the location name",
    "Use a more general location (e.g., city instead of specific address)"
  ]
}`
	assert.Equal(t, want, string(data))
}

func TestEmptyDoesNotShareSuggestions(t *testing.T) {
	r := Empty("x")
	r.Suggestions[0] = "changed"
	assert.NotEqual(t, "changed", NoResultsSuggestions[0])
}

func TestErrorKinds(t *testing.T) {
	err := NetworkError(assert.AnError)
	assert.Equal(t, KindNetwork, GetKind(err))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "network_error", err.Kind.String())

	assert.Equal(t, KindUnknown, GetKind(assert.AnError))
	assert.True(t, Is(InvalidArgument("bad"), KindInvalidArgument))
	assert.Equal(t, "unexpected_response", UnexpectedResponse(assert.AnError).Kind.String())
}
