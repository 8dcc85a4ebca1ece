package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

// ParisSearchResponse is a trimmed Nominatim /search payload for "Paris, France".
const ParisSearchResponse = `[
  {
    "place_id": 88066702,
    "licence": "Data © OpenStreetMap contributors, ODbL 1.0. http://osm.org/copyright",
    "osm_type": "relation",
    "osm_id": 7444,
    "lat": "48.8534951",
    "lon": "2.3483915",
    "class": "boundary",
    "type": "administrative",
    "place_rank": 12,
    "importance": 0.8845663630228834,
    "addresstype": "city",
    "name": "Paris",
    "display_name": "Paris, Île-de-France, France métropolitaine, France",
    "address": {"city": "Paris", "state": "Île-de-France", "country": "France", "country_code": "fr"},
    "boundingbox": ["48.8155755", "48.9021560", "2.2241220", "2.4697602"]
  }
]`

// SpringfieldSearchResponse carries two records, the second without the
// optional type, class and importance fields.
const SpringfieldSearchResponse = `[
  {
    "place_id": 297118163,
    "lat": "39.7990175",
    "lon": "-89.6439575",
    "class": "boundary",
    "type": "administrative",
    "importance": 0.6,
    "display_name": "Springfield, Sangamon County, Illinois, United States",
    "boundingbox": ["39.6526310", "39.8723180", "-89.7705280", "-89.5704550"]
  },
  {
    "place_id": 297405562,
    "lat": "37.2081729",
    "lon": "-93.2922715",
    "display_name": "Springfield, Greene County, Missouri, United States",
    "boundingbox": ["37.0874180", "37.2706280", "-93.4158750", "-93.1923870"]
  }
]`

// RecordedRequest is what the stub saw for one inbound request.
type RecordedRequest struct {
	Path      string
	RawQuery  string
	Query     url.Values
	UserAgent string
}

// NominatimStub is an httptest server standing in for Nominatim. It counts
// and records every request it receives.
type NominatimStub struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	delay    time.Duration
	requests []RecordedRequest
}

// NewNominatimStub starts a stub answering 200 with body. It is closed
// when the test ends.
func NewNominatimStub(t testing.TB, body string) *NominatimStub {
	t.Helper()

	s := &NominatimStub{status: http.StatusOK, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

// SetResponse changes the status and body returned by later requests.
func (s *NominatimStub) SetResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// SetDelay makes the stub wait before answering, or until the client gives up.
func (s *NominatimStub) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns a copy of the requests received so far.
func (s *NominatimStub) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount returns the number of requests received so far.
func (s *NominatimStub) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *NominatimStub) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Path:      r.URL.Path,
		RawQuery:  r.URL.RawQuery,
		Query:     r.URL.Query(),
		UserAgent: r.Header.Get("User-Agent"),
	})
	status, body, delay := s.status, s.body, s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
