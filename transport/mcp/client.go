package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openboard/sketchd/api"
)

// Client is a thin MCP server that proxies to the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates an MCP client that calls the REST API at baseURL.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"sketchd",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`sketchd - collaborative drawing server, MCP interface

This is a thin client that proxies all requests to the REST inspection API.

The server hosts numbered rooms in which connected clients stream
freehand drawing strokes to each other. Rooms are ephemeral: they exist
only while at least one member is connected.

AVAILABLE TOOLS:
- list_rooms: list all active rooms
- room_info: members of one room, by room code
- server_stats: connection and room counters

Rooms cannot be created or modified over MCP; the drawing protocol on
the websocket endpoint is the only write path.`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all active rooms with code, name and member count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_info",
		Description: "Get one room with its member names",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_code": map[string]interface{}{
					"type":        "number",
					"description": "Room code in [1, 9999]",
				},
			},
			Required: []string{"room_code"},
		},
	}, c.handleRoomInfo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get active connection/room counters and uptime",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)
}

// GetMCPServer returns the underlying MCP server for serving.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(path string, result interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// Tool handlers

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rooms []api.RoomSummary
	if err := c.apiCall("/api/rooms", &rooms); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(rooms) == 0 {
		return mcp.NewToolResultText("No active rooms."), nil
	}

	var b strings.Builder
	b.WriteString("Active Rooms:\n\n")
	for _, r := range rooms {
		fmt.Fprintf(&b, "• #%04d %s (%d members)\n", r.Code, r.Name, r.Members)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleRoomInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	code, ok := args["room_code"].(float64)
	if !ok {
		return mcp.NewToolResultError("room_code is required"), nil
	}

	var detail api.RoomDetail
	if err := c.apiCall(fmt.Sprintf("/api/rooms/%d", int(code)), &detail); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Room #%04d %q, %d members:\n", detail.Code, detail.Name, detail.Members)
	for _, p := range detail.Peers {
		fmt.Fprintf(&b, "• #%d %s\n", p.ID, p.Name)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats api.Stats
	if err := c.apiCall("/api/stats", &stats); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Rooms: %d active\nConnections: %d open\nUptime: %s",
		stats.ActiveRooms, stats.ActiveConnections,
		(time.Duration(stats.UptimeSeconds) * time.Second).String())
	return mcp.NewToolResultText(text), nil
}
