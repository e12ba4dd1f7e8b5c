package monitoring

import (
	"runtime"
	"sync"
	"time"
)

// Status는 헬스체크 상태를 정의합니다
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// 메모리 사용량 임계값 (MB)
const (
	memoryWarningMB  = 512.0
	memoryCriticalMB = 1024.0
)

// Alert는 모니터링 알림을 정의합니다
type Alert struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	Timestamp string `json:"timestamp"`
}

// Snapshot은 서버 상태 스냅샷을 정의합니다
type Snapshot struct {
	Status        Status  `json:"status"`
	Timestamp     string  `json:"timestamp"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heapAllocMb"`
	RunsStarted   int64   `json:"runsStarted"`
	RunsCompleted int64   `json:"runsCompleted"`
	RunsFailed    int64   `json:"runsFailed"`
	Alerts        []Alert `json:"alerts"`
}

// HealthChecker는 서버 상태와 백테스트 실행 통계를 추적합니다
type HealthChecker struct {
	startTime time.Time
	mu        sync.Mutex

	runsStarted   int64
	runsCompleted int64
	runsFailed    int64
	alerts        []Alert
	maxAlerts     int
}

// NewHealthChecker는 새로운 헬스체커를 생성합니다
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
		maxAlerts: 100,
	}
}

// RunStarted는 백테스트 실행 시작을 기록합니다
func (h *HealthChecker) RunStarted() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runsStarted++
}

// RunCompleted는 백테스트 실행 완료를 기록합니다
func (h *HealthChecker) RunCompleted() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runsCompleted++
}

// RunFailed는 백테스트 실행 실패를 기록합니다
func (h *HealthChecker) RunFailed() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runsFailed++
}

// AddAlert는 모니터링 알림을 추가합니다
func (h *HealthChecker) AddAlert(alertType, message, severity string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.alerts = append(h.alerts, Alert{
		Type:      alertType,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	// 최대 알림 수 제한
	if len(h.alerts) > h.maxAlerts {
		h.alerts = h.alerts[len(h.alerts)-h.maxAlerts:]
	}
}

// Check는 현재 서버 상태 스냅샷을 반환합니다
func (h *HealthChecker) Check() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	heapAllocMB := float64(mem.HeapAlloc) / (1024 * 1024)

	h.mu.Lock()
	defer h.mu.Unlock()

	// 최근 10개 알림만 노출
	recent := h.alerts
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	alerts := make([]Alert, len(recent))
	copy(alerts, recent)

	return Snapshot{
		Status:        statusForHeap(heapAllocMB),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   heapAllocMB,
		RunsStarted:   h.runsStarted,
		RunsCompleted: h.runsCompleted,
		RunsFailed:    h.runsFailed,
		Alerts:        alerts,
	}
}

func statusForHeap(heapAllocMB float64) Status {
	switch {
	case heapAllocMB >= memoryCriticalMB:
		return StatusCritical
	case heapAllocMB >= memoryWarningMB:
		return StatusWarning
	default:
		return StatusHealthy
	}
}
