package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Task는 스케줄러가 주기적으로 실행할 작업을 정의합니다
type Task interface {
	Execute(ctx context.Context) error
}

// Scheduler는 작업을 interval 경계에 맞춰 반복 실행합니다.
// 시작 직후 한 번 즉시 실행하므로 서버 기동 시 데이터 공백이 바로 메워집니다
type Scheduler struct {
	interval time.Duration
	task     Task
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewScheduler는 새로운 스케줄러를 생성합니다
func NewScheduler(interval time.Duration, task Task) *Scheduler {
	return &Scheduler{
		interval: interval,
		task:     task,
		stopCh:   make(chan struct{}),
	}
}

// nextRunAfter는 now 이후의 다음 interval 경계를 반환합니다
func (s *Scheduler) nextRunAfter(now time.Time) time.Time {
	return now.Truncate(s.interval).Add(s.interval)
}

// Start는 작업을 한 번 즉시 실행한 뒤 interval 경계마다 반복 실행합니다.
// Stop이 호출되거나 컨텍스트가 취소될 때까지 블록됩니다
func (s *Scheduler) Start(ctx context.Context) error {
	s.runTask(ctx)

	nextRun := s.nextRunAfter(time.Now())
	timer := time.NewTimer(time.Until(nextRun))
	defer timer.Stop()

	log.Printf("동기화 스케줄러 시작: 주기=%v, 다음 실행=%s",
		s.interval, nextRun.Format("2006-01-02 15:04:05"))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.stopCh:
			return nil

		case <-timer.C:
			s.runTask(ctx)

			nextRun = s.nextRunAfter(time.Now())
			timer.Reset(time.Until(nextRun))
			log.Printf("다음 동기화 예정: %s", nextRun.Format("2006-01-02 15:04:05"))
		}
	}
}

// runTask는 작업을 실행합니다. 실패해도 스케줄은 계속 유지됩니다
func (s *Scheduler) runTask(ctx context.Context) {
	if err := s.task.Execute(ctx); err != nil {
		log.Printf("예약 작업 실행 실패: %v", err)
	}
}

// Stop은 스케줄러를 중지합니다. 여러 번 호출해도 안전합니다
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}
