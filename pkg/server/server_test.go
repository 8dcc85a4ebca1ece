package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/NERVsystems/geocodemcp/pkg/osm"
	"github.com/NERVsystems/geocodemcp/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const initializeRequest = `{"jsonrpc":"2.0","id":0,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test-client","version":"1.0.0"}}}`

type rpcResponse struct {
	ID     any             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type toolsListResult struct {
	Tools []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		InputSchema struct {
			Type       string                    `json:"type"`
			Properties map[string]map[string]any `json:"properties"`
			Required   []string                  `json:"required"`
		} `json:"inputSchema"`
	} `json:"tools"`
}

type callToolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func newTestServer(t *testing.T, stub *testutil.NominatimStub) *Server {
	t.Helper()
	s, err := NewServer(osm.Options{
		BaseURL:   stub.URL,
		UserAgent: "geocodemcp-test",
		Timeout:   2 * time.Second,
	}, testutil.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	handle(t, s, initializeRequest)
	return s
}

func handle(t *testing.T, s *Server, payload string) rpcResponse {
	t.Helper()
	msg := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(payload))
	require.NotNil(t, msg)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func listTools(t *testing.T, s *Server, id int) toolsListResult {
	t.Helper()
	resp := handle(t, s, fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"tools/list","params":{}}`, id))
	require.Nil(t, resp.Error)

	var result toolsListResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	return result
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) rpcResponse {
	t.Helper()
	params, err := json.Marshal(map[string]any{"name": name, "arguments": args})
	require.NoError(t, err)
	return handle(t, s, fmt.Sprintf(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":%s}`, params))
}

func toolText(t *testing.T, resp rpcResponse) (string, bool) {
	t.Helper()
	require.Nil(t, resp.Error, "tool failures must not become protocol errors")

	var result callToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	return result.Content[0].Text, result.IsError
}

func TestNewServer(t *testing.T) {
	stub := testutil.NewNominatimStub(t, "[]")
	s := newTestServer(t, stub)
	assert.NotNil(t, s.MCPServer())
	assert.Zero(t, stub.RequestCount(), "no upstream traffic before the first call")
}

func TestToolsList(t *testing.T) {
	stub := testutil.NewNominatimStub(t, testutil.ParisSearchResponse)
	s := newTestServer(t, stub)

	check := func(result toolsListResult) {
		require.Len(t, result.Tools, 1)
		tool := result.Tools[0]
		assert.Equal(t, "get_coordinates", tool.Name)
		assert.Equal(t, []string{"location"}, tool.InputSchema.Required)
		limit := tool.InputSchema.Properties["limit"]
		assert.Equal(t, 1.0, limit["default"])
		assert.Equal(t, 1.0, limit["minimum"])
		assert.Equal(t, 10.0, limit["maximum"])
	}

	first := listTools(t, s, 1)
	check(first)

	callTool(t, s, "get_coordinates", map[string]any{"location": "Paris"})
	callTool(t, s, "get_coordinates", map[string]any{"location": ""})

	for i := 0; i < 3; i++ {
		again := listTools(t, s, 10+i)
		check(again)
		assert.Equal(t, first, again)
	}
}

func TestGetCoordinatesEndToEnd(t *testing.T) {
	stub := testutil.NewNominatimStub(t, testutil.ParisSearchResponse)
	s := newTestServer(t, stub)

	text, isError := toolText(t, callTool(t, s, "get_coordinates", map[string]any{
		"location": "Paris, France",
		"limit":    1,
	}))
	assert.False(t, isError)

	var payload struct {
		Query        string `json:"query"`
		ResultsCount int    `json:"results_count"`
		Coordinates  []struct {
			DisplayName string  `json:"display_name"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
		} `json:"coordinates"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	assert.Equal(t, "Paris, France", payload.Query)
	assert.Equal(t, 1, payload.ResultsCount)
	require.Len(t, payload.Coordinates, 1)
	assert.Contains(t, payload.Coordinates[0].DisplayName, "Paris")
	assert.InDelta(t, 48.8534951, payload.Coordinates[0].Latitude, 1e-9)

	requests := stub.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "Paris, France", requests[0].Query.Get("q"))
	assert.Equal(t, "1", requests[0].Query.Get("limit"))
	assert.Equal(t, "geocodemcp-test", requests[0].UserAgent)
}

func TestGetCoordinatesCapsLimit(t *testing.T) {
	stub := testutil.NewNominatimStub(t, testutil.SpringfieldSearchResponse)
	s := newTestServer(t, stub)

	text, isError := toolText(t, callTool(t, s, "get_coordinates", map[string]any{
		"location": "Springfield",
		"limit":    15,
	}))
	assert.False(t, isError)
	assert.Contains(t, text, `"results_count": 2`)

	requests := stub.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "10", requests[0].Query.Get("limit"))
}

func TestGetCoordinatesFailuresAreText(t *testing.T) {
	stub := testutil.NewNominatimStub(t, "")
	stub.SetResponse(http.StatusServiceUnavailable, "")
	s := newTestServer(t, stub)

	text, isError := toolText(t, callTool(t, s, "get_coordinates", map[string]any{"location": "   "}))
	assert.True(t, isError)
	assert.Equal(t, "Error: Location parameter is required and cannot be empty", text)
	assert.Zero(t, stub.RequestCount())

	text, isError = toolText(t, callTool(t, s, "get_coordinates", map[string]any{"location": "Paris"}))
	assert.True(t, isError)
	assert.True(t, strings.HasPrefix(text, "Error:"))
	assert.Contains(t, text, "503")
	assert.Equal(t, 1, stub.RequestCount())

	stub.SetResponse(http.StatusOK, "[]")
	text, isError = toolText(t, callTool(t, s, "get_coordinates", map[string]any{"location": "Nowhere"}))
	assert.False(t, isError, "the server keeps serving after a failed call")
	assert.Contains(t, text, "No coordinates found for the specified location")
}

func TestUnknownTool(t *testing.T) {
	stub := testutil.NewNominatimStub(t, "[]")
	s := newTestServer(t, stub)

	resp := callTool(t, s, "get_elevation", map[string]any{"location": "Paris"})
	require.NotNil(t, resp.Error, "unknown operations are protocol errors")
	assert.Contains(t, resp.Error.Message, "get_elevation")
	assert.Zero(t, stub.RequestCount())
}

func TestPromptsList(t *testing.T) {
	stub := testutil.NewNominatimStub(t, "[]")
	s := newTestServer(t, stub)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"prompts/list","params":{}}`)
	require.Nil(t, resp.Error)

	var result struct {
		Prompts []struct {
			Name string `json:"name"`
		} `json:"prompts"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))

	var names []string
	for _, p := range result.Prompts {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"geocoding", "get_coordinates_examples"}, names)
}

func TestServe(t *testing.T) {
	stub := testutil.NewNominatimStub(t, "[]")
	s, err := NewServer(osm.Options{BaseURL: stub.URL}, testutil.DiscardLogger())
	require.NoError(t, err)
	defer s.Close()

	in := strings.NewReader(initializeRequest + "\n" +
		`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}` + "\n")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Serve(ctx, in, &out))
	assert.Contains(t, out.String(), `"get_coordinates"`)
}

func TestClose(t *testing.T) {
	stub := testutil.NewNominatimStub(t, testutil.ParisSearchResponse)
	s := newTestServer(t, stub)

	_, isError := toolText(t, callTool(t, s, "get_coordinates", map[string]any{"location": "Paris"}))
	require.False(t, isError)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	text, isError := toolText(t, callTool(t, s, "get_coordinates", map[string]any{"location": "Paris"}))
	assert.True(t, isError)
	assert.Contains(t, text, "Network error")
	assert.Equal(t, 1, stub.RequestCount())
}
