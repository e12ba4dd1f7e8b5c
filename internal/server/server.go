package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/assist-by/quant/internal/backtest"
	"github.com/assist-by/quant/internal/domain"
	"github.com/assist-by/quant/internal/monitoring"
	"github.com/assist-by/quant/internal/notification"
	"github.com/assist-by/quant/internal/storage"
)

const serverVersion = "1.0.0"

// Server는 백테스트 HTTP API 서버를 구현합니다
type Server struct {
	engine   *backtest.Engine
	results  *storage.ResultRepository
	health   *monitoring.HealthChecker
	notifier notification.Notifier

	httpServer *http.Server
}

// Option은 서버 생성 옵션을 정의합니다
type Option func(*Server)

// WithResultRepository는 결과 저장소를 설정합니다
func WithResultRepository(repo *storage.ResultRepository) Option {
	return func(s *Server) {
		s.results = repo
	}
}

// WithNotifier는 알림 클라이언트를 설정합니다
func WithNotifier(n notification.Notifier) Option {
	return func(s *Server) {
		s.notifier = n
	}
}

// New는 새로운 API 서버를 생성합니다
func New(addr string, engine *backtest.Engine, health *monitoring.HealthChecker, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		health: health,
	}

	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/backtest", s.handleBacktest)
	mux.HandleFunc("GET /api/results/{id}", s.handleResult)
	mux.HandleFunc("GET /api/strategies/{id}/results", s.handleStrategyResults)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // 백테스트 실행 시간 고려
	}

	return s
}

// Start는 HTTP 서버를 시작합니다
func (s *Server) Start() error {
	log.Printf("API 서버 시작: %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("서버 실행 실패: %w", err)
	}
	return nil
}

// Shutdown은 HTTP 서버를 정상 종료합니다
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("API 서버 종료 중...")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "요청한 리소스를 찾을 수 없습니다.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Quant Backtest Server is running",
		"version": serverVersion,
		"status":  "healthy",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Check())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "online",
		"endpoints": map[string]string{
			"health":   "/health",
			"backtest": "/api/backtest",
			"results":  "/api/results/{id}",
			"history":  "/api/strategies/{id}/results",
		},
	})
}

// backtestRequest는 백테스트 실행 요청 본문을 정의합니다
type backtestRequest struct {
	Strategy domain.Strategy       `json:"strategy"`
	Config   domain.BacktestConfig `json:"config"`
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("요청 파싱 실패: %v", err))
		return
	}

	s.health.RunStarted()

	result, err := s.engine.Run(r.Context(), &req.Strategy, req.Config)
	if err != nil {
		s.health.RunFailed()
		s.health.AddAlert("backtest_failed", err.Error(), "error")
		if s.notifier != nil {
			if nerr := s.notifier.SendError(err); nerr != nil {
				log.Printf("에러 알림 전송 실패: %v", nerr)
			}
		}
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("백테스트 실행 실패: %v", err))
		return
	}

	s.health.RunCompleted()

	if s.results != nil {
		if err := s.results.Save(r.Context(), result); err != nil {
			log.Printf("백테스트 결과 저장 실패: %v", err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.SendResult(&req.Strategy, result); err != nil {
			log.Printf("결과 알림 전송 실패: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "결과 저장소가 설정되지 않았습니다.")
		return
	}

	id := r.PathValue("id")
	result, err := s.results.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("결과 조회 실패: %v", err))
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "요청한 리소스를 찾을 수 없습니다.")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStrategyResults(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "결과 저장소가 설정되지 않았습니다.")
		return
	}

	strategyID := r.PathValue("id")
	results, err := s.results.FindByStrategy(r.Context(), strategyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("결과 조회 실패: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("응답 인코딩 실패: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
