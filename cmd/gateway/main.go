// Package main is the entry point for the MCP gateway server.
package main

import (
	"os"

	"github.com/jasonp/mcp-gateway/cmd/gateway/app"
	"github.com/jasonp/mcp-gateway/pkg/logger"
)

func main() {
	logger.Initialize()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
