package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"

	"github.com/NERVsystems/geocodemcp/pkg/geocode"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// GetCoordinatesToolName is the name the tool is listed under
	GetCoordinatesToolName = "get_coordinates"

	getCoordinatesDescription = "Get latitude and longitude coordinates for a city or location"
)

// Resolver resolves location text to a geocoding result.
type Resolver interface {
	Resolve(ctx context.Context, locationText string, limit int) (geocode.GeocodeResult, error)
}

// GetCoordinatesTool returns the tool definition for get_coordinates. The
// definition is static and identical on every call.
func GetCoordinatesTool() mcp.Tool {
	return mcp.NewTool(GetCoordinatesToolName,
		mcp.WithDescription(getCoordinatesDescription),
		mcp.WithString("location",
			mcp.Required(),
			mcp.Description("City name, address, or location (e.g., 'New York', 'Paris, France', '123 Main St, Seattle')"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 1, max: 10)"),
			mcp.DefaultNumber(geocode.DefaultLimit),
			mcp.Min(geocode.MinLimit),
			mcp.Max(geocode.MaxLimit),
		),
	)
}

// GetCoordinatesHandler serves get_coordinates calls through a Resolver.
type GetCoordinatesHandler struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewGetCoordinatesHandler creates a handler backed by resolver.
func NewGetCoordinatesHandler(resolver Resolver, logger *slog.Logger) *GetCoordinatesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetCoordinatesHandler{
		resolver: resolver,
		logger:   logger.With("tool", GetCoordinatesToolName),
	}
}

// Handle implements the get_coordinates functionality. Every failure,
// including a panic in the resolver, becomes an "Error: <message>" result.
func (h *GetCoordinatesHandler) Handle(ctx context.Context, req mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	logger := h.logger.With("request_id", uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			perr := panicError(r)
			logger.Error("recovered from panic", "error", perr)
			result, err = ErrorResponse(perr.Error()), nil
		}
	}()

	location := mcp.ParseString(req, "location", "")
	limit := parseLimit(req)
	logger.Debug("handling call", "location", location, "limit", limit)

	res, rerr := h.resolver.Resolve(ctx, location, limit)
	if rerr != nil {
		logger.Warn("get_coordinates failed", "kind", geocode.GetKind(rerr).String(), "error", rerr)
		return ErrorResponse(errorMessage(rerr)), nil
	}

	data, merr := json.MarshalIndent(res, "", "  ")
	if merr != nil {
		logger.Error("failed to marshal result", "error", merr)
		return ErrorResponse("Failed to generate result"), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

// parseLimit reads the numeric limit argument, truncating fractions and
// clamping to the allowed range. Unparsable values fall back to the minimum.
func parseLimit(req mcp.CallToolRequest) int {
	f := mcp.ParseFloat64(req, "limit", geocode.DefaultLimit)
	switch {
	case math.IsNaN(f):
		return geocode.DefaultLimit
	case f > geocode.MaxLimit:
		return geocode.MaxLimit
	case f < geocode.MinLimit:
		return geocode.MinLimit
	}
	return geocode.ClampLimit(int(math.Trunc(f)))
}
