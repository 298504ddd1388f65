// Package file provides file-based configuration for the server: a
// TOML config store under ~/.smart-tra/ and the curated station alias
// table, shipped embedded and overridable on disk with live reload.
package file
