// Package main is the entry point for the standalone OAuth broker.
package main

import (
	"os"

	"github.com/jasonp/mcp-gateway/cmd/broker/app"
	"github.com/jasonp/mcp-gateway/pkg/logger"
)

func main() {
	logger.Initialize()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
