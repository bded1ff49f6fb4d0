// Package mcp provides an MCP (Model Context Protocol) server adapter for reportgen.
// It lets AI assistants retrieve report contents and derive combination keys.
package mcp

import "errors"

// ErrMissingContentService is returned when the content service is not provided.
var ErrMissingContentService = errors.New("mcp: content service is required")
