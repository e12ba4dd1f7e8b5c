package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TradeSide는 거래 방향을 정의합니다
type TradeSide string

const (
	Buy  TradeSide = "BUY"
	Sell TradeSide = "SELL"
)

// BacktestConfig는 백테스트 실행 설정입니다.
// 시작일/종료일은 epoch 밀리초, 수수료/슬리피지는 퍼센트 단위입니다
type BacktestConfig struct {
	StartDate      int64   `json:"startDate"`
	EndDate        int64   `json:"endDate"`
	InitialCapital float64 `json:"initialCapital"`
	Commission     float64 `json:"commission"`
	Slippage       float64 `json:"slippage"`
}

// Validate는 백테스트 설정이 유효한지 확인합니다.
// 검증 실패는 치명적 오류이며 시뮬레이션은 시작되지 않습니다
func (c BacktestConfig) Validate() error {
	if c.StartDate == 0 {
		return fmt.Errorf("설정에 필수 필드 'startDate'가 없습니다")
	}
	if c.EndDate == 0 {
		return fmt.Errorf("설정에 필수 필드 'endDate'가 없습니다")
	}
	if c.StartDate >= c.EndDate {
		return fmt.Errorf("시작일이 종료일보다 늦습니다")
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("초기 자본금은 0보다 커야 합니다")
	}
	if c.Commission < 0 {
		return fmt.Errorf("수수료율은 음수일 수 없습니다")
	}
	if c.Slippage < 0 {
		return fmt.Errorf("슬리피지율은 음수일 수 없습니다")
	}
	return nil
}

// Trade는 체결된 개별 거래 기록입니다.
// PnL과 HoldingPeriod는 SELL 거래에만 의미가 있습니다
type Trade struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	Side          TradeSide       `json:"type"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Timestamp     int64           `json:"timestamp"`
	PnL           decimal.Decimal `json:"pnl"`
	HoldingPeriod int64           `json:"holdingPeriod"` // 보유 기간 (일)
}

// EquitySnapshot은 시뮬레이션 하루의 포트폴리오 상태 스냅샷입니다
type EquitySnapshot struct {
	Date             int64           `json:"date"`
	PortfolioValue   decimal.Decimal `json:"portfolioValue"`
	DailyReturn      float64         `json:"dailyReturn"`      // 전일 대비 수익률 (%)
	CumulativeReturn float64         `json:"cumulativeReturn"` // 초기 자본 대비 수익률 (%)
}

// Metrics는 백테스트 성과 지표 모음입니다
type Metrics struct {
	TotalReturn      float64 `json:"totalReturn"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpeRatio"`
	MaxDrawdown      float64 `json:"maxDrawdown"`
	TotalTrades      int     `json:"totalTrades"`
	WinRate          float64 `json:"winRate"`
	AvgProfit        float64 `json:"avgProfit"`
	AvgLoss          float64 `json:"avgLoss"`
}

// BacktestResult는 백테스트 실행의 최종 결과입니다
type BacktestResult struct {
	ID           string           `json:"id"`
	StrategyID   string           `json:"strategyId"`
	StartDate    int64            `json:"startDate"`
	EndDate      int64            `json:"endDate"`
	Trades       []Trade          `json:"trades"`
	DailyReturns []EquitySnapshot `json:"dailyReturns"`
	CreatedAt    int64            `json:"createdAt"`
	Metrics
}

// Progress는 시뮬레이션 진행 상황 알림입니다. 하루에 한 번 발행되며
// 수신 여부는 시뮬레이션 상태에 영향을 주지 않습니다
type Progress struct {
	ProgressPct float64 `json:"progress"`
	CurrentDate int64   `json:"currentDate"`
	Message     string  `json:"message"`
}
