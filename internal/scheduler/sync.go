package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/assist-by/quant/internal/backtest"
	"github.com/assist-by/quant/internal/domain"
	"github.com/assist-by/quant/internal/notification"
)

// 저장된 데이터가 없을 때 가져올 기본 기간
const defaultLookbackDays = 365

// BarStore는 동기화된 일봉을 보관하는 저장소입니다
type BarStore interface {
	SaveBars(bars []domain.PriceBar) error
	LatestDate(symbol string) (time.Time, error)
}

// SyncTask는 일봉 데이터를 거래소에서 받아 저장소에 동기화하는 작업입니다
type SyncTask struct {
	fetcher  backtest.Fetcher
	prices   BarStore
	symbols  []string
	notifier notification.Notifier
}

// NewSyncTask는 새로운 데이터 동기화 작업을 생성합니다
func NewSyncTask(fetcher backtest.Fetcher, prices BarStore, symbols []string, notifier notification.Notifier) *SyncTask {
	return &SyncTask{
		fetcher:  fetcher,
		prices:   prices,
		symbols:  symbols,
		notifier: notifier,
	}
}

// Execute는 심볼별로 마지막 저장 일자 이후의 일봉을 받아 저장합니다
func (t *SyncTask) Execute(ctx context.Context) error {
	now := time.Now().UTC()
	endDate := now.UnixMilli()

	var failed int
	for _, symbol := range t.symbols {
		if err := t.syncSymbol(ctx, symbol, endDate); err != nil {
			failed++
			log.Printf("데이터 동기화 실패: %s: %v", symbol, err)
			if t.notifier != nil {
				if nerr := t.notifier.SendError(fmt.Errorf("데이터 동기화 실패: %s: %w", symbol, err)); nerr != nil {
					log.Printf("에러 알림 전송 실패: %v", nerr)
				}
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d개 심볼 동기화 실패", failed)
	}
	return nil
}

func (t *SyncTask) syncSymbol(ctx context.Context, symbol string, endDate int64) error {
	latest, err := t.prices.LatestDate(symbol)
	if err != nil {
		return fmt.Errorf("마지막 저장 일자 조회 실패: %w", err)
	}

	var startDate int64
	if latest.IsZero() {
		startDate = time.UnixMilli(endDate).AddDate(0, 0, -defaultLookbackDays).UnixMilli()
	} else {
		startDate = latest.AddDate(0, 0, 1).UnixMilli()
	}

	if startDate > endDate {
		return nil
	}

	bars, err := t.fetcher.Fetch(ctx, symbol, startDate, endDate)
	if err != nil {
		return fmt.Errorf("일봉 조회 실패: %w", err)
	}
	if len(bars) == 0 {
		return nil
	}

	if err := t.prices.SaveBars(bars); err != nil {
		return fmt.Errorf("일봉 저장 실패: %w", err)
	}

	last, _ := domain.BarList(bars).GetLastBar()
	log.Printf("데이터 동기화 완료: %s (%d개 일봉, 마지막 %s)",
		symbol, len(bars), last.Date.Format("2006-01-02"))
	return nil
}
