package market

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"golang.org/x/time/rate"

	"github.com/assist-by/quant/internal/domain"
)

// BinanceFetcher는 바이낸스 현물 API에서 일봉 데이터를 조회하는 공급자입니다
type BinanceFetcher struct {
	client      *binance.Client
	rateLimiter *rate.Limiter
	maxRetries  int
}

// NewBinanceFetcher는 새로운 바이낸스 데이터 공급자를 생성합니다
func NewBinanceFetcher(apiKey, secretKey string) *BinanceFetcher {
	httpClient := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	client := binance.NewClient(apiKey, secretKey)
	client.HTTPClient = httpClient

	return &BinanceFetcher{
		client: client,
		// 초당 10회, 버스트 20회
		rateLimiter: rate.NewLimiter(rate.Limit(10), 20),
		maxRetries:  3,
	}
}

// 바이낸스 klines API의 요청당 최대 행 수
const klinesPageLimit = 1000

// Fetch는 [startDate, endDate] 구간의 일봉을 날짜순으로 반환합니다 (epoch ms).
// 구간이 요청당 최대 행 수를 넘으면 마지막 일봉 이후로 커서를 옮겨가며
// 전체 구간을 이어 붙입니다
func (f *BinanceFetcher) Fetch(ctx context.Context, symbol string, startDate, endDate int64) ([]domain.PriceBar, error) {
	var bars []domain.PriceBar

	cursor := startDate
	for cursor <= endDate {
		klines, err := f.getKlines(ctx, symbol, cursor, endDate)
		if err != nil {
			return nil, err
		}
		if len(klines) == 0 {
			break
		}

		for _, k := range klines {
			bar, err := toPriceBar(symbol, k)
			if err != nil {
				return nil, fmt.Errorf("일봉 변환 실패: %w", err)
			}
			bars = append(bars, bar)
		}

		if len(klines) < klinesPageLimit {
			break
		}
		cursor = klines[len(klines)-1].OpenTime + 1
	}

	return bars, nil
}

// getKlines는 재시도와 지수 백오프를 적용해 일봉을 조회합니다
func (f *BinanceFetcher) getKlines(ctx context.Context, symbol string, startTime, endTime int64) ([]*binance.Kline, error) {
	backoff := 100 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if err := f.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		klines, err := f.client.NewKlinesService().
			Symbol(symbol).
			Interval("1d").
			StartTime(startTime).
			EndTime(endTime).
			Limit(klinesPageLimit).
			Do(ctx)
		if err == nil {
			return klines, nil
		}
		lastErr = err

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * backoff
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return nil, fmt.Errorf("일봉 조회 실패 (%s): %w", symbol, lastErr)
}

// toPriceBar는 바이낸스 Kline을 도메인 일봉으로 변환합니다
func toPriceBar(symbol string, k *binance.Kline) (domain.PriceBar, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return domain.PriceBar{}, err
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return domain.PriceBar{}, err
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return domain.PriceBar{}, err
	}
	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return domain.PriceBar{}, err
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return domain.PriceBar{}, err
	}

	return domain.PriceBar{
		Symbol: symbol,
		Date:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}
