package lishp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = math.MaxInt32
	version             = "0.0.1"
)

// Core is the evaluation daemon. A single actor goroutine owns the
// Evaluator and the History; connection handlers only frame and forward.
type Core struct {
	eval     *Evaluator
	history  *History
	requests chan coreRequest
	done     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{} // closed when the actor exits; nil until Run

	listener net.Listener // unix socket
	httpSrv  *http.Server // nil when HTTP is disabled
	httpLn   net.Listener
}

type coreRequest struct {
	msg      map[string]any
	response chan map[string]any
}

// NewCore opens the history store and the listeners named by cfg.
func NewCore(cfg Config) (*Core, error) {
	history, err := OpenHistory(cfg.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}
	c := newCore(NewEvaluator(), history)

	// Clean up a stale socket
	os.Remove(cfg.SockPath)
	listener, err := net.Listen("unix", cfg.SockPath)
	if err != nil {
		history.Close()
		return nil, fmt.Errorf("listen %s: %w", cfg.SockPath, err)
	}
	c.listener = listener

	if cfg.HTTPAddr != "" {
		httpLn, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			listener.Close()
			history.Close()
			return nil, fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
		}
		c.httpLn = httpLn
		c.httpSrv = &http.Server{Handler: c.httpHandler()}
	}
	return c, nil
}

func newCore(ev *Evaluator, history *History) *Core {
	return &Core{
		eval:     ev,
		history:  history,
		requests: make(chan coreRequest, 64),
		done:     make(chan struct{}),
	}
}

// Run starts the actor and accepts connections. It blocks until ctx is
// cancelled, then shuts the core down.
func (c *Core) Run(ctx context.Context) {
	c.stopped = make(chan struct{})
	go func() {
		c.actorLoop()
		close(c.stopped)
	}()
	if c.listener != nil {
		go c.acceptClients()
	}
	if c.httpSrv != nil {
		go func() {
			if err := c.httpSrv.Serve(c.httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("http server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	c.Shutdown()
}

// Shutdown closes the listeners, waits for the actor to stop and closes
// the history. Run calls it when its context ends.
func (c *Core) Shutdown() {
	c.stopOnce.Do(func() {
		close(c.done)
		if c.listener != nil {
			c.listener.Close()
		}
		if c.httpSrv != nil {
			c.httpSrv.Close()
		}
		if c.stopped != nil {
			<-c.stopped
		}
		if c.history != nil {
			c.history.Close()
		}
	})
}

func (c *Core) acceptClients() {
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			return
		}
		go c.handleClientConnection(conn)
	}
}

// actorLoop is the single goroutine that evaluates and touches history.
func (c *Core) actorLoop() {
	for {
		select {
		case req := <-c.requests:
			req.response <- c.handleRequest(req.msg)
		case <-c.done:
			return
		}
	}
}

// sendToActor hands msg to the actor and waits for its response.
func (c *Core) sendToActor(msg map[string]any) map[string]any {
	id, _ := msg["id"].(string)
	resp := make(chan map[string]any, 1)
	select {
	case c.requests <- coreRequest{msg: msg, response: resp}:
	case <-c.done:
		return errorResponse(id, "core is shutting down")
	}
	select {
	case r := <-resp:
		return r
	case <-c.done:
		return errorResponse(id, "core is shutting down")
	}
}

func (c *Core) handleRequest(msg map[string]any) map[string]any {
	id, _ := msg["id"].(string)
	op, _ := msg["op"].(string)
	log.WithFields(log.Fields{"id": id, "op": op}).Debug("request")

	switch op {
	case "":
		return c.coreManual(id)
	case "eval":
		return c.handleEval(id, msg)
	case "history":
		return c.handleHistory(id, msg)
	case "clear":
		return c.handleClear(id)
	default:
		return errorResponse(id, fmt.Sprintf("unknown op: %s", op))
	}
}

func (c *Core) coreManual(id string) map[string]any {
	names := make([]any, 0, len(c.eval.Builtins))
	for name := range c.eval.Builtins {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].(string) < names[j].(string) })
	return map[string]any{
		"id": id,
		"ok": true,
		"value": map[string]any{
			"name":    "lishp",
			"version": version,
			"ops": map[string]any{
				"eval":    "Evaluate a lishp expression. Params: expr (string)",
				"history": "Recent evaluations, oldest first. Params: limit (number, optional, default 20)",
				"clear":   "Delete the evaluation history.",
			},
			"builtins": names,
		},
	}
}

func (c *Core) handleEval(id string, msg map[string]any) map[string]any {
	expr, ok := msg["expr"].(string)
	if !ok {
		return errorResponse(id, "eval: missing 'expr' string")
	}

	val, err := c.eval.EvalString(expr)
	if err != nil {
		return errorResponse(id, err.Error())
	}

	printed := val.String()
	if c.history != nil {
		if _, err := c.history.Record(Entry{
			RequestID: id,
			Input:     expr,
			Result:    printed,
			Kind:      val.KindName(),
		}); err != nil {
			log.WithField("id", id).Warnf("record history: %v", err)
		}
	}

	return map[string]any{
		"id":      id,
		"ok":      true,
		"value":   ValueToGo(val),
		"kind":    val.KindName(),
		"printed": printed,
	}
}

func (c *Core) handleHistory(id string, msg map[string]any) map[string]any {
	limit := defaultHistoryLimit
	if raw, exists := msg["limit"]; exists {
		f, ok := raw.(float64)
		if !ok || f < 0 {
			return errorResponse(id, "history: 'limit' must be a non-negative number")
		}
		limit = int(min(f, maxHistoryLimit))
	}
	entries, err := c.history.Recent(limit)
	if err != nil {
		return errorResponse(id, err.Error())
	}
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = e.ToGo()
	}
	return map[string]any{"id": id, "ok": true, "value": out}
}

func (c *Core) handleClear(id string) map[string]any {
	if err := c.history.Clear(); err != nil {
		return errorResponse(id, err.Error())
	}
	return map[string]any{"id": id, "ok": true, "value": "cleared"}
}

func errorResponse(id, errMsg string) map[string]any {
	return map[string]any{"id": id, "ok": false, "error": errMsg}
}

// --- Connection handling ---

func (c *Core) handleClientConnection(conn net.Conn) {
	defer conn.Close()

	for {
		msg, err := ReadMsg(conn)
		if err != nil {
			if err != io.EOF {
				log.Warnf("read client message: %v", err)
			}
			return
		}
		if _, ok := msg["id"]; !ok {
			msg["id"] = NextID()
		}

		resp := c.sendToActor(msg)
		if err := WriteMsg(conn, resp); err != nil {
			log.Warnf("write client response: %v", err)
			return
		}
	}
}
