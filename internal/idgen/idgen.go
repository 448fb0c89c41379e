// Package idgen generates random identifiers for tool calls and HTTP
// requests.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
)

// Prefixes used across the server.
const (
	ToolCallPrefix = "call_"
	RequestPrefix  = "req_"
)

// WithPrefix returns prefix followed by 24 random hex characters.
func WithPrefix(prefix string) string {
	b := make([]byte, 12)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)
	return prefix + hex.EncodeToString(b)
}

// ToolCall returns a fresh id for an MCP tool invocation.
func ToolCall() string { return WithPrefix(ToolCallPrefix) }

// Request returns a fresh id for an HTTP request.
func Request() string { return WithPrefix(RequestPrefix) }
