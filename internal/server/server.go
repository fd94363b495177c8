package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"accreditations/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(port string, h *handlers.Handlers) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      NewRouter(h),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func NewRouter(h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLog(h.Logger))

	r.Get("/", h.Index)
	r.Get("/create", h.CreateForm)
	r.Post("/create", h.Create)
	r.Get("/update/{id}", h.UpdateForm)
	r.Post("/update/{id}", h.Update)
	r.Get("/delete/{id}", h.Delete)
	r.Get("/estadisticas", h.Estadisticas)
	r.Get("/search", h.Search)

	r.Post("/documents", h.UploadDocument)
	r.Get("/documents", h.DownloadDocument)
	r.Post("/import", h.Import)
	r.Get("/import/{job_id}", h.ImportStatus)
	r.Get("/export.xlsx", h.Export)

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())

	return r
}

func requestLog(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			l.Printf("[HTTP] %s %s status=%d bytes=%d req_id=%s took=%s",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), middleware.GetReqID(r.Context()), time.Since(start))
		})
	}
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
