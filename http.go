package lishp

import (
	"encoding/json"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// httpHandler serves POST /eval and GET /history through the actor.
func (c *Core) httpHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /eval", c.serveEval)
	mux.HandleFunc("GET /history", c.serveHistory)
	return mux
}

func (c *Core) serveEval(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Expr *string `json:"expr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("", "invalid JSON body: "+err.Error()))
		return
	}
	msg := map[string]any{"id": NextID(), "op": "eval"}
	if body.Expr != nil {
		msg["expr"] = *body.Expr
	}
	writeResponse(w, c.sendToActor(msg))
}

func (c *Core) serveHistory(w http.ResponseWriter, r *http.Request) {
	msg := map[string]any{"id": NextID(), "op": "history"}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse("", "invalid limit: "+s))
			return
		}
		msg["limit"] = float64(n)
	}
	writeResponse(w, c.sendToActor(msg))
}

// writeResponse maps ok:false to 422. Error values are successful
// evaluations and stay 200.
func writeResponse(w http.ResponseWriter, resp map[string]any) {
	status := http.StatusOK
	if ok, _ := resp["ok"].(bool); !ok {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("write http response: %v", err)
	}
}
