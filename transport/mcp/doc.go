// Package mcp provides a Model Context Protocol server for inspecting
// the sketchd drawing server.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions over the room inspection API
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//   - list_rooms: List active rooms with codes, names and member counts
//   - room_info: Get one room with its members
//   - server_stats: Get connection/room counters and uptime
//
// The server is a thin client that proxies every tool call to the REST
// API, so the MCP surface can never observe state the HTTP surface
// would not also show.
//
// Transport Modes:
//   - Stdio: direct stdio communication for local MCP clients
//   - HTTP: the /mcp endpoint of the main server
package mcp
