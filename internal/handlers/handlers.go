package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"dga_gateway/internal/services/export"
	"dga_gateway/internal/services/pipeline"
)

// Pinger is anything /health can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Pipeline *pipeline.Service
	Export   *export.Service // nil when export is disabled

	// Checks are probed by /health in name order.
	Checks map[string]Pinger

	AgentID     string
	ConsumerKey string

	Logger *log.Logger
}

func New(p *pipeline.Service, exp *export.Service, consumerKey string, checks map[string]Pinger) *Handlers {
	if checks == nil {
		checks = map[string]Pinger{}
	}
	return &Handlers{
		Pipeline:    p,
		Export:      exp,
		Checks:      checks,
		AgentID:     p.AgentID(),
		ConsumerKey: consumerKey,
		Logger:      log.Default(),
	}
}

func (h *Handlers) JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

const maxBody = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	return dec.Decode(v)
}
