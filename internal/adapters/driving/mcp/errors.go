// Package mcp provides an MCP (Model Context Protocol) server adapter
// for the smart TRA query core. It lets AI assistants search trains,
// resolve stations and plan branch-line transfers in natural language.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// ErrMissingStationResolver is returned when the station resolver is not provided.
var ErrMissingStationResolver = errors.New("mcp: station resolver is required")

// ErrMissingTrainResolver is returned when the train resolver is not provided.
var ErrMissingTrainResolver = errors.New("mcp: train resolver is required")
