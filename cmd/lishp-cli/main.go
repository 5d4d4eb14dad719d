package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/JerryNyoike/lishp"
)

// readRequest builds the request from -expr when given, otherwise from a
// JSON object on stdin.
func readRequest(expr string, stdin io.Reader) (map[string]any, error) {
	if expr != "" {
		return map[string]any{"op": "eval", "expr": expr}, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	if msg == nil {
		msg = map[string]any{}
	}
	return msg, nil
}

func main() {
	expr := flag.String("expr", "", "send an eval request for `expr` instead of reading JSON from stdin")
	flag.Parse()
	cfg := lishp.ConfigFromEnv()

	msg, err := readRequest(*expr, os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, ok := msg["id"]; !ok {
		msg["id"] = lishp.NextID()
	}

	conn, err := net.Dial("unix", cfg.SockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := lishp.WriteMsg(conn, msg); err != nil {
		fmt.Fprintf(os.Stderr, "send: %v\n", err)
		os.Exit(1)
	}

	resp, err := lishp.ReadMsg(conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "receive: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "format response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
