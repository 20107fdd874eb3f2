// Package api exposes the series store over HTTP for chart consumers.
package api

import (
	"context"
	"net/http"
	"time"

	"feewatch/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(st *store.Store, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthz", healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1/series")
	v1.GET("/base-fee", seriesHandler(st.BaseFees))
	v1.GET("/miner-fee", seriesHandler(st.MinerFees))
	v1.GET("/transfer-volume", seriesHandler(st.Transfers))

	return r
}

// Server runs the HTTP API as a supervised service.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	log             *zap.Logger
}

func NewServer(addr string, shutdownTimeout time.Duration, st *store.Store, log *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(st, log),
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		log:             log,
	}
}

func (s *Server) String() string {
	return "http-api"
}

func (s *Server) Serve(ctx context.Context) error {
	errC := make(chan error, 1)
	go func() {
		s.log.Info("http api listening", zap.String("addr", s.srv.Addr))
		errC <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "http api")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	s.log.Info("closing http api")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http api shutdown")
	}
	return nil
}
