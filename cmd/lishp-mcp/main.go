package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/JerryNyoike/lishp"
)

var (
	conn   net.Conn
	connMu sync.Mutex
)

// send sends a request to the lishp core and returns the response.
func send(req map[string]any) (map[string]any, error) {
	req["id"] = lishp.NextID()
	connMu.Lock()
	defer connMu.Unlock()
	if err := lishp.WriteMsg(conn, req); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	resp, err := lishp.ReadMsg(conn)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return resp, nil
}

// formatResult turns a core response into an MCP tool result. Evaluations
// are shown in printed form; everything else as indented JSON.
func formatResult(resp map[string]any) (*mcp.CallToolResult, error) {
	ok, _ := resp["ok"].(bool)
	if !ok {
		errMsg, _ := resp["error"].(string)
		if errMsg == "" {
			errMsg = "unknown error"
		}
		return mcp.NewToolResultError(errMsg), nil
	}
	if printed, ok := resp["printed"].(string); ok {
		return mcp.NewToolResultText(printed), nil
	}
	out, err := json.MarshalIndent(resp["value"], "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func handleEval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := send(map[string]any{"op": "eval", "expr": expr})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := map[string]any{"op": "history"}
	if limit := request.GetInt("limit", 0); limit > 0 {
		req["limit"] = limit
	}
	resp, err := send(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func handleClear(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := send(map[string]any{"op": "clear"})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func main() {
	cfg := lishp.ConfigFromEnv()
	if err := cfg.SetupLogging(); err != nil {
		log.Fatalf("bad LISHP_LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}

	var err error
	conn, err = net.Dial("unix", cfg.SockPath)
	if err != nil {
		log.Fatalf("connect to %s: %v", cfg.SockPath, err)
	}
	defer conn.Close()
	log.Infof("connected to lishp core: %s", cfg.SockPath)

	s := server.NewMCPServer(
		"lishp",
		"0.0.1",
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("lishp_eval",
			mcp.WithDescription("Evaluate a lishp expression. Returns the printed result, e.g. 6 or {1 2 3} or Error: Division by zero."),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("Expression to evaluate, e.g. + 1 (* 2 3) or head {1 2 3}"),
			),
		),
		handleEval,
	)

	s.AddTool(
		mcp.NewTool("lishp_history",
			mcp.WithDescription("List recent evaluations, oldest first."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of entries (default 20)"),
			),
		),
		handleHistory,
	)

	s.AddTool(
		mcp.NewTool("lishp_clear",
			mcp.WithDescription("Delete the evaluation history."),
		),
		handleClear,
	)

	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
