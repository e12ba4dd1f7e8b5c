package backtest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/assist-by/quant/internal/domain"
)

// millisPerDay는 보유 기간 계산에 사용하는 하루의 밀리초입니다
const millisPerDay = 24 * 60 * 60 * 1000

// Fetcher는 시장 데이터 공급 콜라보레이터입니다.
// 엔진은 데이터를 직접 조회하지 않으며 시뮬레이션 시작 전에 전체 구간을 공급받습니다
type Fetcher interface {
	// Fetch는 symbol의 [startDate, endDate] 구간 일봉을 날짜순으로 반환합니다 (epoch ms)
	Fetch(ctx context.Context, symbol string, startDate, endDate int64) ([]domain.PriceBar, error)
}

// Engine은 백테스트 시뮬레이션 엔진입니다.
// 하나의 Run 호출이 독립적인 포트폴리오 상태를 소유하므로
// 서로 다른 전략의 동시 실행 간에 상태가 공유되지 않습니다
type Engine struct {
	fetcher  Fetcher
	progress ProgressSink
}

// EngineOption은 엔진 생성 옵션을 정의합니다
type EngineOption func(*Engine)

// WithProgressSink는 하루 단위 진행 알림 싱크를 설정합니다
func WithProgressSink(sink ProgressSink) EngineOption {
	return func(e *Engine) {
		e.progress = sink
	}
}

// NewEngine은 새로운 백테스트 엔진을 생성합니다
func NewEngine(fetcher Fetcher, opts ...EngineOption) *Engine {
	e := &Engine{fetcher: fetcher}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run은 전략과 설정으로 백테스트를 실행합니다.
// 검증 오류와 알 수 없는 지표는 시뮬레이션 시작 전에 반환되며 부분 결과는 없습니다
func (e *Engine) Run(ctx context.Context, strategy *domain.Strategy, config domain.BacktestConfig) (*domain.BacktestResult, error) {
	log.Printf("백테스트 시작: %s", strategy.Name)

	if err := strategy.Validate(); err != nil {
		return nil, fmt.Errorf("전략 검증 실패: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("설정 검증 실패: %w", err)
	}

	marketData, err := e.loadMarketData(ctx, strategy.Symbols, config.StartDate, config.EndDate)
	if err != nil {
		return nil, fmt.Errorf("시장 데이터 로드 실패: %w", err)
	}

	// 지표 사전 계산: 종목 간 병렬, 시뮬레이션 전에 완료
	cache := NewIndicatorCache()
	if err := cache.Precompute(strategy, marketData); err != nil {
		return nil, fmt.Errorf("지표 계산 실패: %w", err)
	}

	result, err := e.simulate(ctx, strategy, config, marketData, cache)
	if err != nil {
		log.Printf("백테스트 실행 오류: %v", err)
		return nil, err
	}

	log.Printf("백테스트 완료: 총 거래=%d, 승률=%.2f%%, 총 수익률=%.2f%%, 최대 낙폭=%.2f%%",
		result.TotalTrades, result.WinRate, result.TotalReturn, result.MaxDrawdown)

	return result, nil
}

// loadMarketData는 모든 종목의 일봉을 콜라보레이터에서 공급받습니다
func (e *Engine) loadMarketData(ctx context.Context, symbols []string, startDate, endDate int64) (map[string]domain.BarList, error) {
	marketData := make(map[string]domain.BarList, len(symbols))
	for _, symbol := range symbols {
		bars, err := e.fetcher.Fetch(ctx, symbol, startDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("'%s' 데이터 조회 실패: %w", symbol, err)
		}
		marketData[symbol] = bars
	}
	return marketData, nil
}

// simulate는 날짜 순서대로 하루씩 포트폴리오를 시뮬레이션합니다.
// 하루의 상태가 전날 상태에 의존하므로 루프는 엄격히 순차적입니다
func (e *Engine) simulate(
	ctx context.Context,
	strategy *domain.Strategy,
	config domain.BacktestConfig,
	marketData map[string]domain.BarList,
	cache *IndicatorCache,
) (*domain.BacktestResult, error) {
	var (
		one     = decimal.NewFromInt(1)
		hundred = decimal.NewFromInt(100)

		initialCapital = decimal.NewFromFloat(config.InitialCapital)
		commissionRate = decimal.NewFromFloat(config.Commission).Div(hundred)
		slippageRate   = decimal.NewFromFloat(config.Slippage).Div(hundred)
		maxPositionPct = decimal.NewFromFloat(strategy.MaxPositionPct())
	)

	// 포트폴리오 상태: 이 실행이 단독 소유합니다
	cash := initialCapital
	positions := make(map[string]int64)
	trades := make([]domain.Trade, 0)
	snapshots := make([]domain.EquitySnapshot, 0)

	eval := &evaluator{cache: cache}

	// 날짜 기준 일봉 조회 인덱스
	barsByDate := make(map[string]map[int64]domain.PriceBar, len(marketData))
	for symbol, bars := range marketData {
		index := make(map[int64]domain.PriceBar, len(bars))
		for _, bar := range bars {
			index[bar.Date.UnixMilli()] = bar
		}
		barsByDate[symbol] = index
	}

	// 첫 번째 종목의 일봉이 마스터 클럭을 구동합니다
	primaryBars := marketData[strategy.Symbols[0]]
	totalDays := len(primaryBars)

	for i, primaryBar := range primaryBars {
		// 하루 경계마다 중단 요청을 확인합니다
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		currentDate := primaryBar.Date
		dateMs := currentDate.UnixMilli()

		if e.progress != nil {
			e.progress.OnProgress(domain.Progress{
				ProgressPct: float64(i) / float64(totalDays) * 100,
				CurrentDate: dateMs,
				Message:     fmt.Sprintf("백테스트 진행 중... (%d/%d)", i+1, totalDays),
			})
		}

		for _, symbol := range strategy.Symbols {
			// 해당 날짜의 일봉이 없는 종목은 그날 건너뜁니다
			bar, ok := barsByDate[symbol][dateMs]
			if !ok {
				continue
			}
			closePrice := decimal.NewFromFloat(bar.Close)

			if positions[symbol] == 0 {
				if !eval.checkSignal(strategy.BuyConditions, symbol, i) {
					continue
				}

				// 매수: 슬리피지가 반영된 가격으로 체결
				buyPrice := closePrice.Mul(one.Add(slippageRate))
				affordableShares := cash.Div(buyPrice).Floor()
				positionLimit := initialCapital.Mul(maxPositionPct).Div(hundred).Div(buyPrice).Floor()
				shares := decimal.Min(affordableShares, positionLimit)

				if !shares.IsPositive() {
					continue
				}
				totalCost := shares.Mul(buyPrice).Mul(one.Add(commissionRate))
				if totalCost.GreaterThan(cash) {
					continue
				}

				trades = append(trades, domain.Trade{
					ID:        fmt.Sprintf("trade_%d", len(trades)+1),
					Symbol:    symbol,
					Side:      domain.Buy,
					Quantity:  shares.IntPart(),
					Price:     buyPrice,
					Timestamp: dateMs,
				})
				cash = cash.Sub(totalCost)
				positions[symbol] = shares.IntPart()
			} else {
				if !eval.checkSignal(strategy.SellConditions, symbol, i) {
					continue
				}

				// 매도: 보유 수량 전량 청산 (단일 랏 모델)
				sellPrice := closePrice.Mul(one.Sub(slippageRate))
				shares := decimal.NewFromInt(positions[symbol])
				proceeds := shares.Mul(sellPrice).Mul(one.Sub(commissionRate))

				pnl := decimal.Zero
				var holdingPeriod int64
				if buyTrade, ok := lastBuyTrade(trades, symbol); ok {
					costBasis := shares.Mul(buyTrade.Price).Mul(one.Add(commissionRate))
					pnl = proceeds.Sub(costBasis)
					holdingPeriod = (dateMs - buyTrade.Timestamp) / millisPerDay
				}

				trades = append(trades, domain.Trade{
					ID:            fmt.Sprintf("trade_%d", len(trades)+1),
					Symbol:        symbol,
					Side:          domain.Sell,
					Quantity:      shares.IntPart(),
					Price:         sellPrice,
					Timestamp:     dateMs,
					PnL:           pnl,
					HoldingPeriod: holdingPeriod,
				})
				cash = cash.Add(proceeds)
				positions[symbol] = 0
			}
		}

		// 일별 포트폴리오 가치: 현금 + 보유 포지션의 당일 종가 평가액
		portfolioValue := cash
		for symbol, quantity := range positions {
			if quantity <= 0 {
				continue
			}
			bar, ok := barsByDate[symbol][dateMs]
			if !ok {
				continue
			}
			portfolioValue = portfolioValue.Add(
				decimal.NewFromInt(quantity).Mul(decimal.NewFromFloat(bar.Close)))
		}

		dailyReturn := 0.0
		if i > 0 && len(snapshots) > 0 {
			prevValue := snapshots[len(snapshots)-1].PortfolioValue
			dailyReturn = portfolioValue.Div(prevValue).Sub(one).Mul(hundred).InexactFloat64()
		}
		cumulativeReturn := portfolioValue.Div(initialCapital).Sub(one).Mul(hundred).InexactFloat64()

		snapshots = append(snapshots, domain.EquitySnapshot{
			Date:             dateMs,
			PortfolioValue:   portfolioValue,
			DailyReturn:      dailyReturn,
			CumulativeReturn: cumulativeReturn,
		})
	}

	metrics := CalculateMetrics(snapshots, trades, config.InitialCapital)

	return &domain.BacktestResult{
		ID:           uuid.NewString(),
		StrategyID:   strategy.ID,
		StartDate:    config.StartDate,
		EndDate:      config.EndDate,
		Trades:       trades,
		DailyReturns: snapshots,
		CreatedAt:    time.Now().UnixMilli(),
		Metrics:      metrics,
	}, nil
}

// lastBuyTrade는 해당 종목의 가장 최근 매수 거래를 찾습니다
func lastBuyTrade(trades []domain.Trade, symbol string) (domain.Trade, bool) {
	for i := len(trades) - 1; i >= 0; i-- {
		if trades[i].Symbol == symbol && trades[i].Side == domain.Buy {
			return trades[i], true
		}
	}
	return domain.Trade{}, false
}
