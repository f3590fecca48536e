package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cruncher/internal/aggregator"
	"cruncher/internal/cache"
	"cruncher/internal/config"
	"cruncher/internal/metrics"
	"cruncher/internal/models"
	"cruncher/internal/processor"
)

type Server struct {
	router    *mux.Router
	cache     *cache.SummaryCache
	cfg       config.Config
	startTime time.Time
}

func NewServer(cfg config.Config) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		cfg:       cfg,
		startTime: time.Now(),
	}

	// The server runs without a cache if Redis is down or disabled.
	if cfg.CacheTTLSeconds > 0 {
		c, err := cache.NewSummaryCache(cfg.RedisAddr, cfg.RedisDB, time.Duration(cfg.CacheTTLSeconds)*time.Second)
		if err != nil {
			log.Printf("Summary cache disabled: %v", err)
		} else {
			s.cache = c
		}
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")
	s.router.HandleFunc("/process", s.processHandler).Methods("POST")
	s.router.Handle("/metrics", promhttp.Handler())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	redisStatus := "disabled"
	if s.cache != nil {
		redisStatus = "ok"
		if err := s.cache.Ping(r.Context()); err != nil {
			redisStatus = "unreachable"
		}
	}

	health := models.HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Redis:     redisStatus,
		Uptime:    time.Since(s.startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)

	metrics.HTTPRequestDuration.WithLabelValues(r.Method, "/health").Observe(time.Since(start).Seconds())
	metrics.HTTPRequestsTotal.WithLabelValues(r.Method, "/health", "200").Inc()
}

func (s *Server) processHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, "/process").Observe(time.Since(start).Seconds())
	}()

	var req models.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		s.respondError(w, r, "path is required", http.StatusBadRequest)
		return
	}

	workers := req.Workers
	if workers <= 0 {
		workers = s.cfg.Workers
	}

	var key string
	if s.cache != nil {
		k, err := cache.Key(req.Path, req.Threshold, req.Verbose)
		if err == nil {
			key = k
			if summary, ok := s.cache.Get(r.Context(), key); ok {
				metrics.CacheHits.Inc()
				s.respondJSON(w, r, models.ProcessResponse{Summary: summary, Cached: true})
				return
			}
			metrics.CacheMisses.Inc()
		}
	}

	summary, err := processor.Run(req.Path, aggregator.Options{
		Threshold: req.Threshold,
		Workers:   workers,
		PerSensor: req.Verbose,
	})
	if err != nil {
		// Missing or unreadable input is the caller's path problem;
		// catastrophic malformed input is a processing failure.
		code := http.StatusUnprocessableEntity
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			code = http.StatusNotFound
		}
		s.respondError(w, r, err.Error(), code)
		return
	}

	if s.cache != nil && key != "" {
		if err := s.cache.Store(r.Context(), key, summary); err != nil {
			log.Printf("Failed to cache summary: %v", err)
		}
	}

	s.respondJSON(w, r, models.ProcessResponse{Summary: summary, Cached: false})
}

func (s *Server) respondJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
	metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, "200").Inc()
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
	metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(code)).Inc()
}

func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatalf("Could not gracefully shutdown the server: %v", err)
		}
		if s.cache != nil {
			s.cache.Close()
		}
		close(done)
	}()

	log.Printf("Server is ready to handle requests at %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-done
	log.Println("Server stopped")
	return nil
}

func main() {
	if err := godotenv.Load(".env.local"); err != nil {
		log.Println("No .env file found. Falling back to OS environment variables.")
	}

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	server := NewServer(cfg)
	if err := server.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
