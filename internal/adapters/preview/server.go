// Package preview serves the output root with live reload.
package preview

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Routes served next to the output root.
const (
	EventsPath  = "/__kiln/events"
	ClientPath  = "/__kiln/client.js"
	MetricsPath = "/metrics"
)

const (
	heartbeatInterval = 30 * time.Second
	shutdownTimeout   = 5 * time.Second
)

//go:embed client.js
var clientScript []byte

var (
	_ ports.Notifier        = (*Server)(nil)
	_ ports.RebuildObserver = (*Server)(nil)
)

// Server is the development preview server.
type Server struct {
	addr     string
	logger   ports.Logger
	hub      *Hub
	metrics  *Metrics
	registry *prom.Registry
	router   *mux.Router
}

// NewServer creates a Server for the output root dir listening on addr.
func NewServer(dir, addr string, logger ports.Logger) *Server {
	registry := prom.NewRegistry()
	metrics := NewMetrics(registry)

	s := &Server{
		addr:     addr,
		logger:   logger,
		hub:      NewHub(metrics.SetClients),
		metrics:  metrics,
		registry: registry,
		router:   mux.NewRouter(),
	}
	s.setupRoutes(dir)
	return s
}

func (s *Server) setupRoutes(dir string) {
	s.router.HandleFunc(EventsPath, s.handleEvents).Methods(http.MethodGet)
	s.router.HandleFunc(ClientPath, handleClient).Methods(http.MethodGet)
	s.router.Handle(MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.PathPrefix("/").Handler(gzhttp.GzipHandler(newStaticHandler(dir, ClientPath)))
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start preview server"), "addr", s.addr)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info(fmt.Sprintf("preview at http://%s", ln.Addr()))

	select {
	case err := <-errCh:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, "preview server failed")
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return zerr.Wrap(err, "failed to stop preview server")
	}
	return nil
}

// NotifyReload tells every client to reload.
func (s *Server) NotifyReload() {
	s.hub.Broadcast(Message{Event: EventReload})
}

// NotifyError sends a build failure to every client. Pages keep their previous output.
func (s *Server) NotifyError(detail string) {
	s.hub.Broadcast(Message{Event: EventError, Data: detail})
}

// ObserveRebuild implements ports.RebuildObserver.
func (s *Server) ObserveRebuild(rule string, d time.Duration, err error) {
	s.metrics.ObserveRebuild(rule, d, err)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	sub, ok := s.hub.Subscribe()
	if !ok {
		http.Error(w, "preview shutting down", http.StatusServiceUnavailable)
		return
	}
	defer sub.Release()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if _, err := fmt.Fprintf(w, ": connected %s\n\n", sub.ID); err != nil {
		return
	}
	flusher.Flush()
	s.logger.Debug("reload client connected: " + sub.ID)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done:
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case msg := <-sub.Messages:
			if err := writeEvent(w, msg); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}

// writeEvent writes msg in the event-stream format. Multi-line data is split
// across data fields.
func writeEvent(w http.ResponseWriter, msg Message) error {
	var b strings.Builder
	b.WriteString("event: " + msg.Event + "\n")
	for line := range strings.SplitSeq(msg.Data, "\n") {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	_, err := fmt.Fprint(w, b.String())
	return err
}

func handleClient(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(clientScript)
}
