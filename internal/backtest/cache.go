package backtest

import (
	"fmt"
	"log"
	"sync"

	"github.com/assist-by/quant/internal/domain"
	"github.com/assist-by/quant/internal/indicator"
)

// IndicatorCache는 (종목, 지표 키)별 계산 결과를 캐싱하는 저장소입니다.
// 여러 조건이 같은 지표를 참조해도 계산은 한 번만 수행됩니다
type IndicatorCache struct {
	series map[string]map[string]indicator.Series // 종목 -> 지표 키 -> 시리즈
	mutex  sync.RWMutex
}

// NewIndicatorCache는 새로운 지표 캐시를 생성합니다
func NewIndicatorCache() *IndicatorCache {
	return &IndicatorCache{
		series: make(map[string]map[string]indicator.Series),
	}
}

// Get은 특정 종목/지표 키의 시리즈를 반환합니다
func (c *IndicatorCache) Get(symbol, key string) (indicator.Series, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	symbolSeries, ok := c.series[symbol]
	if !ok {
		return nil, false
	}
	s, ok := symbolSeries[key]
	return s, ok
}

// put은 계산된 시리즈를 저장합니다
func (c *IndicatorCache) put(symbol, key string, s indicator.Series) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.series[symbol]; !ok {
		c.series[symbol] = make(map[string]indicator.Series)
	}
	c.series[symbol][key] = s
}

// has는 시리즈가 이미 캐시에 있는지 확인합니다
func (c *IndicatorCache) has(symbol, key string) bool {
	_, ok := c.Get(symbol, key)
	return ok
}

// Precompute는 전략의 모든 조건이 참조하는 지표를 종목별로 계산하고 캐싱합니다.
// 종목 간 의존성이 없으므로 종목 단위로 병렬 실행되며, 모든 종목의 계산이
// 끝난 후에 반환됩니다. 알 수 없는 지표 유형은 여기서 치명적 오류로 반환됩니다
func (c *IndicatorCache) Precompute(strategy *domain.Strategy, marketData map[string]domain.BarList) error {
	conditions := strategy.AllConditions()

	var wg sync.WaitGroup
	errCh := make(chan error, len(marketData))

	for symbol, bars := range marketData {
		wg.Add(1)
		go func(symbol string, bars domain.BarList) {
			defer wg.Done()
			if err := c.precomputeSymbol(symbol, bars, conditions); err != nil {
				errCh <- fmt.Errorf("'%s' 지표 계산 실패: %w", symbol, err)
			}
		}(symbol, bars)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		return err
	}
	return nil
}

// precomputeSymbol은 단일 종목의 지표를 계산합니다
func (c *IndicatorCache) precomputeSymbol(symbol string, bars domain.BarList, conditions []domain.Condition) error {
	for _, cond := range conditions {
		specs := []domain.IndicatorSpec{cond.LeftIndicator}
		if cond.RightIndicator != nil {
			specs = append(specs, *cond.RightIndicator)
		}

		for _, spec := range specs {
			key := spec.Key()
			if c.has(symbol, key) {
				continue
			}

			series, err := indicator.Compute(spec, bars)
			if err != nil {
				return err
			}
			c.put(symbol, key, series)
			log.Printf("지표 계산 완료: %s %s (%d개 값)", symbol, key, len(series))
		}
	}
	return nil
}
