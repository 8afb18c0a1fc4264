// Package main is the entry point for the ACMS MCP server.
//
// The ACMS server publishes the container CLI as a catalog of Model Context
// Protocol (MCP) tools. Every tool call is validated and run through one
// shared command executor that bounds concurrency, enforces timeouts and
// drains in-flight processes on shutdown. The server supports both stdio and
// HTTP transports and can export executor metrics for Prometheus.
//
// The application uses Uber's fx framework for dependency injection and lifecycle
// management, with zap for structured logging and viper for configuration.
package main
