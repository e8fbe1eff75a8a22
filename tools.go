//go:build tools
// +build tools

// Package tools pins the code generators used by `go generate` (mockgen) so
// they are tracked in go.mod like any other dependency.
package chat_relay

import (
	_ "go.uber.org/mock/mockgen"
)
