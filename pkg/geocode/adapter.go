package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/NERVsystems/geocodemcp/pkg/geo"
	"github.com/NERVsystems/geocodemcp/pkg/osm"
	"github.com/go-playground/validator/v10"
)

// EmptyLocationMessage is reported when the location is blank.
const EmptyLocationMessage = "Location parameter is required and cannot be empty"

// Searcher performs one forward geocoding search against the upstream.
type Searcher interface {
	Search(ctx context.Context, params osm.SearchParams) ([]osm.Place, error)
}

// Adapter turns location text into a GeocodeResult through a Searcher.
// It owns the searcher and releases it on Close.
type Adapter struct {
	searcher Searcher
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAdapter creates an adapter over searcher.
func NewAdapter(searcher Searcher, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		searcher: searcher,
		validate: validator.New(),
		logger:   logger,
	}
}

// Close releases the searcher's resources if it holds any.
func (a *Adapter) Close() error {
	if c, ok := a.searcher.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ClampLimit caps limit into [MinLimit, MaxLimit]. Out-of-range values are
// never rejected.
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NewLocationQuery trims text, clamps limit and validates the result.
func (a *Adapter) NewLocationQuery(text string, limit int) (LocationQuery, error) {
	q := LocationQuery{
		Text:  strings.TrimSpace(text),
		Limit: ClampLimit(limit),
	}
	if err := a.validate.Struct(q); err != nil {
		a.logger.Debug("rejected location query", "error", err)
		return LocationQuery{}, InvalidArgument(EmptyLocationMessage)
	}
	return q, nil
}

// Resolve looks up locationText and returns up to limit matches. An empty
// match list is not an error: it yields the Empty variant. Exactly one
// upstream request is made for a valid query and none for an invalid one.
func (a *Adapter) Resolve(ctx context.Context, locationText string, limit int) (GeocodeResult, error) {
	q, err := a.NewLocationQuery(locationText, limit)
	if err != nil {
		return GeocodeResult{}, err
	}

	logger := a.logger.With("query", q.Text, "limit", q.Limit)
	start := time.Now()

	places, err := a.searcher.Search(ctx, osm.SearchParams{Query: q.Text, Limit: q.Limit})
	if err != nil {
		mapped := mapSearchError(err)
		logger.Warn("geocoding failed", "kind", mapped.Kind.String(), "error", err)
		return GeocodeResult{}, mapped
	}

	if len(places) == 0 {
		logger.Info("no coordinates found", "duration", time.Since(start))
		return Empty(q.Text), nil
	}

	coords := make([]Coordinate, 0, len(places))
	for i, p := range places {
		c, err := ToCoordinate(p)
		if err != nil {
			logger.Warn("malformed upstream record", "index", i, "error", err)
			return GeocodeResult{}, UnexpectedResponse(fmt.Errorf("result %d: %w", i, err))
		}
		coords = append(coords, c)
	}

	logger.Info("geocoded location", "results", len(coords), "duration", time.Since(start))
	return Found(q.Text, coords), nil
}

// ToCoordinate copies one upstream record. Required fields must be present
// and well-formed; type, class and importance default to their zero values.
func ToCoordinate(p osm.Place) (Coordinate, error) {
	if p.PlaceID == nil {
		return Coordinate{}, errors.New("missing place_id")
	}
	if p.DisplayName == nil {
		return Coordinate{}, errors.New("missing display_name")
	}

	loc, err := geo.ParseCoordinate(string(p.Lat), string(p.Lon))
	if err != nil {
		return Coordinate{}, err
	}

	bounds := make([]string, len(p.BoundingBox))
	for i, v := range p.BoundingBox {
		bounds[i] = string(v)
	}
	bbox, err := geo.ParseBoundingBox(bounds)
	if err != nil {
		return Coordinate{}, err
	}

	var importance float64
	if p.Importance != nil {
		importance = *p.Importance
	}

	return Coordinate{
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		DisplayName: *p.DisplayName,
		PlaceID:     *p.PlaceID,
		Type:        p.Type,
		Class:       p.Class,
		Importance:  importance,
		BoundingBox: bbox,
	}, nil
}

// mapSearchError classifies a Searcher failure into an error Kind.
func mapSearchError(err error) *Error {
	var httpErr *osm.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return newError(KindUpstreamHTTP, httpErr.Error(), err)
	case errors.Is(err, osm.ErrMalformedResponse):
		return UnexpectedResponse(err)
	default:
		return NetworkError(err)
	}
}
