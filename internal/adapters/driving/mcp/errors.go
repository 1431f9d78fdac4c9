// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// workspace client. It lets AI assistants inspect connectors, plan usage and
// the drive, and trigger connector actions through the same guard as the UI.
package mcp

import "errors"

// ErrMissingReconciler is returned when the reconciler is not provided.
var ErrMissingReconciler = errors.New("mcp: reconciler is required")
