package lishp

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

// testCore returns a core with an in-process actor and a temp history. The
// actor and the history are stopped when the test ends.
func testCore(t *testing.T) *Core {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	c := newCore(NewEvaluator(), h)
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(finished)
	}()
	t.Cleanup(func() {
		cancel()
		<-finished
	})
	return c
}

func TestCoreEval(t *testing.T) {
	c := testCore(t)
	resp := c.sendToActor(map[string]any{"id": "r1", "op": "eval", "expr": "+ 1 2"})
	if ok, _ := resp["ok"].(bool); !ok {
		t.Fatalf("eval failed: %v", resp)
	}
	if resp["id"] != "r1" || resp["printed"] != "3" || resp["kind"] != "Number" {
		t.Fatalf("unexpected response: %v", resp)
	}
	if resp["value"] != int64(3) {
		t.Fatalf("expected value 3, got %v", resp["value"])
	}
}

func TestCoreEvalErrorValueIsOK(t *testing.T) {
	c := testCore(t)
	resp := c.sendToActor(map[string]any{"id": "r1", "op": "eval", "expr": "/ 4 0"})
	if ok, _ := resp["ok"].(bool); !ok {
		t.Fatalf("error values should be ok responses: %v", resp)
	}
	if resp["printed"] != "Error: Division by zero" || resp["kind"] != "Error" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestCoreEvalParseError(t *testing.T) {
	c := testCore(t)
	resp := c.sendToActor(map[string]any{"id": "r1", "op": "eval", "expr": "(+ 1"})
	if ok, _ := resp["ok"].(bool); ok {
		t.Fatalf("expected parse failure, got %v", resp)
	}
	if resp["error"] == "" {
		t.Fatal("expected an error message")
	}
	hist := c.sendToActor(map[string]any{"id": "r2", "op": "history"})
	if entries := hist["value"].([]any); len(entries) != 0 {
		t.Fatalf("parse failures must not be recorded, got %d entries", len(entries))
	}
}

func TestCoreEvalMissingExpr(t *testing.T) {
	c := testCore(t)
	resp := c.sendToActor(map[string]any{"id": "r1", "op": "eval"})
	if ok, _ := resp["ok"].(bool); ok {
		t.Fatalf("expected failure, got %v", resp)
	}
}

func TestCoreHistoryAndClear(t *testing.T) {
	c := testCore(t)
	for _, expr := range []string{"+ 1 2", "list 1 2", "head {}"} {
		c.sendToActor(map[string]any{"id": expr, "op": "eval", "expr": expr})
	}

	resp := c.sendToActor(map[string]any{"id": "h", "op": "history", "limit": float64(2)})
	entries, ok := resp["value"].([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", resp)
	}
	first := entries[0].(map[string]any)
	if first["input"] != "list 1 2" || first["result"] != "{1 2}" || first["kind"] != "Q-Expression" {
		t.Fatalf("unexpected entry: %v", first)
	}
	last := entries[1].(map[string]any)
	if last["result"] != "Error: Function 'head' passed {}." {
		t.Fatalf("unexpected entry: %v", last)
	}

	resp = c.sendToActor(map[string]any{"id": "c", "op": "clear"})
	if ok, _ := resp["ok"].(bool); !ok {
		t.Fatalf("clear failed: %v", resp)
	}
	resp = c.sendToActor(map[string]any{"id": "h2", "op": "history"})
	if entries := resp["value"].([]any); len(entries) != 0 {
		t.Fatalf("expected empty history after clear, got %d", len(entries))
	}
}

func TestCoreHistoryBadLimit(t *testing.T) {
	c := testCore(t)
	resp := c.sendToActor(map[string]any{"id": "h", "op": "history", "limit": "ten"})
	if ok, _ := resp["ok"].(bool); ok {
		t.Fatalf("expected failure, got %v", resp)
	}
}

func TestCoreHistoryHugeLimit(t *testing.T) {
	c := testCore(t)
	c.sendToActor(map[string]any{"id": "e1", "op": "eval", "expr": "+ 1 2"})
	c.sendToActor(map[string]any{"id": "e2", "op": "eval", "expr": "len {1 2}"})

	for _, limit := range []float64{1e15, 1e300} {
		resp := c.sendToActor(map[string]any{"id": "h", "op": "history", "limit": limit})
		if ok, _ := resp["ok"].(bool); !ok {
			t.Fatalf("limit %g: history failed: %v", limit, resp)
		}
		if entries := resp["value"].([]any); len(entries) != 2 {
			t.Fatalf("limit %g: expected 2 entries, got %d", limit, len(entries))
		}
	}

	// The actor must still be serving.
	resp := c.sendToActor(map[string]any{"id": "e3", "op": "eval", "expr": "* 2 3"})
	if resp["printed"] != "6" {
		t.Fatalf("core stopped answering: %v", resp)
	}

	srv := httptest.NewServer(c.httpHandler())
	defer srv.Close()
	res, err := http.Get(srv.URL + "/history?limit=1000000000000")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var hist map[string]any
	if err := json.NewDecoder(res.Body).Decode(&hist); err != nil {
		t.Fatal(err)
	}
	if entries, ok := hist["value"].([]any); !ok || len(entries) != 3 {
		t.Fatalf("unexpected history: %v", hist)
	}
}

func TestCoreManualAndUnknownOp(t *testing.T) {
	c := testCore(t)
	resp := c.sendToActor(map[string]any{"id": "m"})
	manual, ok := resp["value"].(map[string]any)
	if !ok || manual["name"] != "lishp" {
		t.Fatalf("unexpected manual: %v", resp)
	}
	builtins := manual["builtins"].([]any)
	if len(builtins) != 13 {
		t.Fatalf("expected 13 builtins, got %d: %v", len(builtins), builtins)
	}

	resp = c.sendToActor(map[string]any{"id": "x", "op": "define"})
	if ok, _ := resp["ok"].(bool); ok {
		t.Fatalf("expected unknown op failure, got %v", resp)
	}
}

func TestCoreSocket(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		SockPath:    filepath.Join(dir, "lishp.sock"),
		HistoryPath: filepath.Join(dir, "history.db"),
	}
	c, err := NewCore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(finished)
	}()
	defer func() {
		cancel()
		<-finished
	}()

	conn, err := net.Dial("unix", cfg.SockPath)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := WriteMsg(conn, map[string]any{"op": "eval", "expr": "join {1 2} {3}"}); err != nil {
		t.Fatal(err)
	}
	resp, err := ReadMsg(conn)
	if err != nil {
		t.Fatal(err)
	}
	if resp["printed"] != "{1 2 3}" {
		t.Fatalf("unexpected response: %v", resp)
	}
	if id, _ := resp["id"].(string); id == "" {
		t.Fatal("expected the core to assign an id")
	}
}

func TestCoreHTTP(t *testing.T) {
	c := testCore(t)
	srv := httptest.NewServer(c.httpHandler())
	defer srv.Close()

	post := func(body string) (int, map[string]any) {
		t.Helper()
		res, err := http.Post(srv.URL+"/eval", "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatal(err)
		}
		defer res.Body.Close()
		var out map[string]any
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		return res.StatusCode, out
	}

	status, out := post(`{"expr": "eval {* 6 7}"}`)
	if status != http.StatusOK || out["printed"] != "42" {
		t.Fatalf("unexpected response %d: %v", status, out)
	}
	// JSON numbers decode as float64
	if out["value"] != float64(42) {
		t.Fatalf("expected value 42, got %v", out["value"])
	}

	status, _ = post(`{"expr": "(+ 1"}`)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for a parse error, got %d", status)
	}
	status, _ = post(`not json`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad JSON, got %d", status)
	}

	res, err := http.Get(srv.URL + "/history?limit=1")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	var hist map[string]any
	if err := json.NewDecoder(res.Body).Decode(&hist); err != nil {
		t.Fatal(err)
	}
	entries, ok := hist["value"].([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("unexpected history: %v", hist)
	}
	if entries[0].(map[string]any)["input"] != "eval {* 6 7}" {
		t.Fatalf("unexpected entry: %v", entries[0])
	}
}
