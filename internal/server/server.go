package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shouni/nano-banana-studio/pkg/generator"
	"github.com/shouni/nano-banana-studio/pkg/session"
)

// Options は Server の設定です。
type Options struct {
	Addr           string
	MaxUploadBytes int64
	// Registry が nil の場合はサーバー専用のレジストリを作ります。
	Registry *prometheus.Registry
}

// Server は画像編集セッションを HTTP JSON API として公開します。
type Server struct {
	httpServer *http.Server
	sessions   *registry
	editor     generator.ImageEditor
	encoder    session.ImageEncoder
	metrics    *Metrics
	maxUpload  int64
}

// NewServer は Server を初期化します。各セッションは editor と enc を共有します。
func NewServer(editor generator.ImageEditor, enc session.ImageEncoder, opts Options) (*Server, error) {
	if editor == nil {
		return nil, fmt.Errorf("editor (ImageEditor) is required")
	}
	if enc == nil {
		return nil, fmt.Errorf("encoder (ImageEncoder) is required")
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	metrics := NewMetrics(reg)
	s := &Server{
		sessions:  newRegistry(),
		editor:    &instrumentedEditor{next: editor, metrics: metrics},
		encoder:   enc,
		metrics:   metrics,
		maxUpload: opts.MaxUploadBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)

	r.Get("/api/health", s.handleHealth)
	r.Get("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP)

	r.Post("/api/sessions", s.handleCreateSession)
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Delete("/", s.handleDeleteSession)
		r.Put("/image", s.handleSelectImage)
		r.Delete("/image", s.handleClearImage)
		r.Put("/prompt", s.handleSetPrompt)
		r.Post("/submit", s.handleSubmit)
		r.Post("/reset", s.handleReset)
		r.Get("/result.png", s.handleDownload)
	})

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler はルーティング済みのハンドラーを返します。
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start はリッスンを開始し、サーバーが停止するまでブロックします。
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("Nano Banana API listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown はサーバーを停止します。
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		slog.DebugContext(r.Context(), "HTTPリクエスト",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
		)
	})
}
