package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wwwzy/RagAgent/internal/agent"
	"github.com/wwwzy/RagAgent/internal/rag"
	"github.com/wwwzy/RagAgent/internal/storage"
	"github.com/wwwzy/RagAgent/internal/trace"
)

const (
	minTopK = 1
	maxTopK = 20

	maxRequestBody = 1 << 20
)

// Config HTTP 服务配置
type Config struct {
	// Addr 监听地址，如 :8080
	Addr string `mapstructure:"addr"`
	// ReadTimeout/WriteTimeout HTTP 读写超时
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout 优雅退出时等待在途请求的时长
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DefaultConfig 返回默认服务配置
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	return c
}

// Server 对外暴露 Agent 的 JSON API。
type Server struct {
	cfg    Config
	agent  *agent.Service
	seeder *rag.Seeder
	store  *storage.Storage

	httpServer *http.Server
}

func New(cfg Config, agentSvc *agent.Service, seeder *rag.Seeder, store *storage.Storage) (*Server, error) {
	if agentSvc == nil {
		return nil, errors.New("agent service is required")
	}
	s := &Server{
		cfg:    cfg.withDefaults(),
		agent:  agentSvc,
		seeder: seeder,
		store:  store,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/agent", s.handleAgent)
	mux.HandleFunc("/api/answer", s.handleAnswer)
	mux.HandleFunc("/api/seed", s.handleSeed)

	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      mux,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	return s, nil
}

// Handler 返回路由入口，便于测试。
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run 阻塞运行直到 ctx 取消，然后优雅退出。
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

type agentRequest struct {
	Query         string              `json:"query"`
	ChatHistory   []agent.ChatMessage `json:"chat_history,omitempty"`
	UserID        string              `json:"user_id,omitempty"`
	TopK          int                 `json:"top_k,omitempty"`
	MaxIterations int                 `json:"max_iterations,omitempty"`
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req agentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx := trace.WithTraceID(r.Context(), trace.New())
	result := s.agent.ProcessQuery(ctx, agent.Request{
		Query:         req.Query,
		ChatHistory:   req.ChatHistory,
		UserID:        req.UserID,
		TopK:          clampTopK(req.TopK),
		MaxIterations: req.MaxIterations,
	})
	writeJSON(w, http.StatusOK, result)
}

type answerRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := s.agent.Answer(r.Context(), req.Query, clampTopK(req.TopK))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type seedRequest struct {
	Docs []rag.SeedDocument `json:"docs,omitempty"`
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.seeder == nil {
		writeError(w, http.StatusServiceUnavailable, "seeding is not configured")
		return
	}

	var req seedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	docs := req.Docs
	if len(docs) == 0 {
		docs = rag.DefaultSeedDocuments()
	}

	seeded, err := s.seeder.Seed(r.Context(), docs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"seeded": seeded})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.store != nil {
		if _, err := s.store.CountDocumentChunks(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func clampTopK(v int) int {
	if v <= 0 {
		return 0 // 让 agent 层取默认值
	}
	if v < minTopK {
		return minTopK
	}
	if v > maxTopK {
		return maxTopK
	}
	return v
}

func decodeJSON(r *http.Request, out interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("[WARN] write response failed: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
