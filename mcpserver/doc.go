// Package mcpserver publishes the container tool catalog over MCP.
//
// New registers the tools of every configured category plus the discovery
// tools (acms_search_tools, acms_list_categories, acms_executor_stats) on a
// mark3labs/mcp-go server. Serve then runs either the stdio transport or
// the streamable HTTP transport on /mcp, depending on server.transport.
// Every tool call goes through the shared command executor.
package mcpserver
