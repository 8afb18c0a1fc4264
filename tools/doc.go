// Package tools turns the embedded tool catalog into MCP tools.
//
// Every catalog entry describes one container CLI subcommand: its fixed
// command words, its flags and positionals, and the MCP annotations the
// tool is published with. Spec.BuildArgs converts a tool call's arguments
// into the argument vector handed to the executor, and Registry binds the
// entries to an MCP server by category.
//
// Usage:
//
//	registry, err := tools.LoadRegistry(logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry.RegisterAll(mcpServer, exec)
package tools
