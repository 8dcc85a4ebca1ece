package tools

import (
	"errors"
	"fmt"

	"github.com/NERVsystems/geocodemcp/pkg/geocode"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorPrefix starts the text of every failed tool result.
const ErrorPrefix = "Error: "

// ErrorResponse is used for consistent error reporting. The caller always
// receives a well-formed tool result, never a protocol fault.
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(ErrorPrefix + message)
}

// errorMessage returns the caller-facing text of err.
func errorMessage(err error) string {
	var gerr *geocode.Error
	if errors.As(err, &gerr) {
		return gerr.Message
	}
	return err.Error()
}

// panicError converts a recovered panic value into an error.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("internal error: %w", err)
	}
	return fmt.Errorf("internal error: %v", v)
}
