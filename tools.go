//go:build tools
// +build tools

// Package tools pins go:generate tools such as mockgen in go.mod.
package chat_sync

import (
	_ "go.uber.org/mock/mockgen"
)
