// Package api provides the HTTP surface of the sketchd server.
//
// The api package implements:
//   - The /socket websocket endpoint clients draw over
//   - Read-only room inspection endpoints
//   - A process stats endpoint and a health check
//   - Static file serving with the client assets
//
// Endpoints:
//
// Realtime:
//   - GET /socket - websocket upgrade for the drawing protocol
//
// Inspection:
//   - GET /api/rooms - list active rooms (code, name, member count)
//   - GET /api/rooms/{code} - one room with its member names
//   - GET /api/stats - connection/room counters and uptime
//   - GET /healthz - liveness probe
//
// All inspection endpoints return JSON. Errors are returned as JSON
// with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
//
// The inspection surface is read-only on purpose: rooms are created and
// destroyed exclusively through the websocket protocol, so the REST
// side can never race the connection lifecycle into an invalid state.
package api
