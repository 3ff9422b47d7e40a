// Package web exposes the threshold and the live sample stream over HTTP.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/puRe1337/water-level/pkg/broadcast"
	"github.com/puRe1337/water-level/pkg/monitor"
	"github.com/puRe1337/water-level/pkg/threshold"
	"go.uber.org/zap"
)

// ThresholdRequest is the body of POST /api/threshold.
type ThresholdRequest struct {
	Value *int32 `json:"value"`
}

// ThresholdResponse is returned by both threshold endpoints.
type ThresholdResponse struct {
	Threshold int32 `json:"threshold"`
}

// StatsResponse is returned by GET /api/stats.
type StatsResponse struct {
	Loop        monitor.Stats `json:"loop"`
	Subscribers int           `json:"subscribers"`
	Published   uint64        `json:"published"`
}

// Server holds the HTTP handlers.
type Server struct {
	threshold *threshold.Cell
	samples   *broadcast.Broadcaster
	stats     func() monitor.Stats
	logger    *zap.Logger

	mux *http.ServeMux
}

// New creates the handlers. stats may be nil; staticDir may be empty to
// disable static file serving.
func New(th *threshold.Cell, samples *broadcast.Broadcaster, stats func() monitor.Stats, staticDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stats == nil {
		stats = func() monitor.Stats { return monitor.Stats{} }
	}

	srv := &Server{
		threshold: th,
		samples:   samples,
		stats:     stats,
		logger:    logger,
		mux:       http.NewServeMux(),
	}

	srv.mux.HandleFunc("GET /api/threshold", srv.getThreshold)
	srv.mux.HandleFunc("POST /api/threshold", srv.setThreshold)
	srv.mux.HandleFunc("GET /api/events", srv.events)
	srv.mux.HandleFunc("GET /api/stats", srv.getStats)
	if staticDir != "" {
		srv.mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))
	}

	return srv
}

// ServeHTTP implements http.Handler.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.mux.ServeHTTP(w, r)
}

func (srv *Server) getThreshold(w http.ResponseWriter, r *http.Request) {
	srv.writeJSON(w, http.StatusOK, ThresholdResponse{Threshold: srv.threshold.Get()})
}

func (srv *Server) setThreshold(w http.ResponseWriter, r *http.Request) {
	var req ThresholdRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req)
	if err == nil && req.Value == nil {
		err = errors.New(`missing "value"`)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid threshold request: %v", err), http.StatusBadRequest)
		return
	}

	srv.threshold.Set(*req.Value)
	srv.logger.Info("[web] threshold updated", zap.Int32("threshold", *req.Value), zap.String("remote", r.RemoteAddr))

	srv.writeJSON(w, http.StatusOK, ThresholdResponse{Threshold: *req.Value})
}

func (srv *Server) getStats(w http.ResponseWriter, r *http.Request) {
	srv.writeJSON(w, http.StatusOK, StatsResponse{
		Loop:        srv.stats(),
		Subscribers: srv.samples.Len(),
		Published:   srv.samples.Published(),
	})
}

// events streams every published sample as a server-sent event until the
// client goes away. The event id is the broadcast sequence number, so a gap
// in ids means the client fell behind and samples were dropped.
func (srv *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := srv.samples.Subscribe()
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	srv.logger.Debug("[web] event stream opened", zap.String("remote", r.RemoteAddr))
	defer func() {
		srv.logger.Debug("[web] event stream closed",
			zap.String("remote", r.RemoteAddr),
			zap.Uint64("missed", sub.Missed()),
		)
	}()

	ctx := r.Context()
	for {
		s, err := sub.Recv(ctx)
		if err != nil {
			return
		}

		data, err := json.Marshal(s)
		if err != nil {
			srv.logger.Warn("[web] could not encode sample", zap.Error(err))
			continue
		}

		_, err = fmt.Fprintf(w, "id: %d\ndata: %s\n\n", sub.Seq(), data)
		if err != nil {
			return
		}
		flusher.Flush()
	}
}

func (srv *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		srv.logger.Warn("[web] could not encode response", zap.Error(err))
	}
}
