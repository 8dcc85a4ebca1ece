// Package prompts provides prompt templates for use with the MCP server.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// GeocodingPromptName is the main usage prompt
	GeocodingPromptName = "geocoding"

	// GetCoordinatesExamplesPromptName holds worked examples
	GetCoordinatesExamplesPromptName = "get_coordinates_examples"
)

// RegisterGeocodingPrompts registers all geocoding-related prompts with the MCP server
func RegisterGeocodingPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt(GeocodingPromptName,
		mcp.WithPromptDescription("Instructions for properly using the get_coordinates tool"),
	), GeocodingPromptHandler)

	s.AddPrompt(mcp.NewPrompt(GetCoordinatesExamplesPromptName,
		mcp.WithPromptDescription("Examples of well-formed get_coordinates queries"),
	), GetCoordinatesExamplesHandler)
}

// GeocodingPromptHandler returns the main prompt for the geocoding tool
func GeocodingPromptHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	systemPrompt := `You have access to get_coordinates, which converts a place name or address into latitude and longitude using OpenStreetMap Nominatim.
When using it:

1. Pass the place as free text in "location", e.g. "Paris, France" or "123 Main St, Seattle"
2. Include the region and country for ambiguous names ("Springfield, Illinois, USA", not "Springfield")
3. Set "limit" (1 to 10) when you want to compare several candidates; larger values are capped at 10
4. Results come back in relevance order; the first coordinate is the best match
5. Each result carries a bounding_box (south, north, west, east) describing the extent of the place

READING THE RESPONSE:
- A successful answer has "results_count" and a "coordinates" list
- An answer with "error" and "suggestions" means nothing matched; apply a suggestion and try again
- A text answer starting with "Error:" means the request failed (empty location, service error, network problem)

IMPORTANT LOCATION FORMATTING EXAMPLES:
✅ GOOD: "Eiffel Tower, Paris, France"
❌ BAD: "Eiffel Tower (the big one)"

✅ GOOD: "Sydney Opera House, Sydney, Australia"
❌ BAD: "The Opera House"`

	return mcp.NewGetPromptResult(
		"Geocoding Tool Usage Guidelines",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(systemPrompt),
			),
		},
	), nil
}

// GetCoordinatesExamplesHandler returns examples for get_coordinates
func GetCoordinatesExamplesHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	examplesPrompt := `EXAMPLES OF EFFECTIVE GET_COORDINATES USAGE:

User: "What are the coordinates of the Eiffel Tower?"
AI: *uses get_coordinates with location "Eiffel Tower, Paris, France"*

User: "Which Springfields are there in the US?"
AI: *uses get_coordinates with location "Springfield, USA" and limit 5*

User: "Where is Merlion Park?"
AI: *uses get_coordinates with location "Merlion Park, Singapore"*

ERROR CORRECTION PATTERN:
1. If the response contains "No coordinates found for the specified location"
2. Read the "suggestions" list
3. Retry with more detail, corrected spelling, or a more general place
4. Return the successfully geocoded coordinates`

	return mcp.NewGetPromptResult(
		"Get Coordinates Examples",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(examplesPrompt),
			),
		},
	), nil
}
