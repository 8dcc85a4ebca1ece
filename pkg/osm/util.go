// Package osm provides a client for the OpenStreetMap Nominatim geocoder.
package osm

import (
	"net/http"
	"time"
)

const (
	// NominatimBaseURL is the public Nominatim endpoint
	NominatimBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultTimeout bounds every outbound request
	DefaultTimeout = 10 * time.Second

	// maxResponseBytes caps how much of a search response is read
	maxResponseBytes = 5 << 20
)

// newHTTPClient returns an HTTP client configured for Nominatim requests
func newHTTPClient(timeout time.Duration) (*http.Client, *http.Transport) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     30 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, transport
}
