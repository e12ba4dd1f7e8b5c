package backtest

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/quant/internal/domain"
)

func snapshotsFromValues(values []float64) []domain.EquitySnapshot {
	snapshots := make([]domain.EquitySnapshot, len(values))
	for i, v := range values {
		snapshot := domain.EquitySnapshot{PortfolioValue: decimal.NewFromFloat(v)}
		if i > 0 {
			snapshot.DailyReturn = (v/values[i-1] - 1) * 100
		}
		snapshots[i] = snapshot
	}
	return snapshots
}

func sellTrade(pnl float64) domain.Trade {
	return domain.Trade{Side: domain.Sell, PnL: decimal.NewFromFloat(pnl)}
}

func TestCalculateMetricsEmpty(t *testing.T) {
	metrics := CalculateMetrics(nil, nil, 1000000)
	require.Equal(t, domain.Metrics{}, metrics)
}

func TestCalculateMetricsTotalReturn(t *testing.T) {
	snapshots := snapshotsFromValues([]float64{10000, 10500, 11000})
	metrics := CalculateMetrics(snapshots, nil, 10000)

	require.InDelta(t, 10.0, metrics.TotalReturn, 1e-9)
	// 3일 동안 10% 수익을 252일로 연환산
	wantAnnualized := (math.Pow(1.1, 252.0/3.0) - 1) * 100
	require.InDelta(t, wantAnnualized, metrics.AnnualizedReturn, 1e-6)
}

func TestWinRate(t *testing.T) {
	trades := []domain.Trade{
		{Side: domain.Buy},
		sellTrade(100),
		{Side: domain.Buy},
		sellTrade(50),
		{Side: domain.Buy},
		sellTrade(-30),
	}
	snapshots := snapshotsFromValues([]float64{10000, 10120})
	metrics := CalculateMetrics(snapshots, trades, 10000)

	require.Equal(t, 6, metrics.TotalTrades)
	require.InDelta(t, 66.6667, metrics.WinRate, 0.001)
	require.InDelta(t, 0.75, metrics.AvgProfit, 1e-9) // mean(100, 50) / 10000 * 100
	require.InDelta(t, 0.3, metrics.AvgLoss, 1e-9)    // 30 / 10000 * 100
}

func TestWinRateNoSells(t *testing.T) {
	trades := []domain.Trade{{Side: domain.Buy}}
	snapshots := snapshotsFromValues([]float64{10000, 10000})
	metrics := CalculateMetrics(snapshots, trades, 10000)

	require.Equal(t, 1, metrics.TotalTrades)
	require.Zero(t, metrics.WinRate)
	require.Zero(t, metrics.AvgProfit)
	require.Zero(t, metrics.AvgLoss)
}

func TestMaxDrawdown(t *testing.T) {
	testCases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "낙폭 없음", values: []float64{100, 110, 120}, want: 0},
		{name: "단일 최고점", values: []float64{100, 120, 90, 110}, want: 25}, // (120-90)/120
		{name: "최고점 갱신 후 낙폭", values: []float64{100, 80, 150, 120}, want: 20},
		{name: "빈 입력", values: nil, want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MaxDrawdown(snapshotsFromValues(tc.values))
			require.InDelta(t, tc.want, got, 1e-9)
			require.GreaterOrEqual(t, got, 0.0)
			require.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestVolatilityFlat(t *testing.T) {
	snapshots := snapshotsFromValues([]float64{10000, 10000, 10000, 10000})
	metrics := CalculateMetrics(snapshots, nil, 10000)

	require.Zero(t, metrics.Volatility)
	// 변동성이 0이면 샤프 비율도 0으로 정의합니다
	require.Zero(t, metrics.SharpeRatio)
}

func TestSortinoRatio(t *testing.T) {
	t.Run("음수 수익률 없음", func(t *testing.T) {
		snapshots := snapshotsFromValues([]float64{10000, 10100, 10200})
		got := SortinoRatio(snapshots, 15)
		require.True(t, math.IsInf(got, 1), "got=%v", got)
	})

	t.Run("음수 수익률 존재", func(t *testing.T) {
		snapshots := snapshotsFromValues([]float64{10000, 9800, 10100, 9700, 10200})
		got := SortinoRatio(snapshots, 15)
		require.False(t, math.IsInf(got, 0))
		require.False(t, math.IsNaN(got))
	})
}

func TestCalmarRatio(t *testing.T) {
	t.Run("낙폭 0에 양수 수익률", func(t *testing.T) {
		snapshots := snapshotsFromValues([]float64{10000, 10100})
		require.True(t, math.IsInf(CalmarRatio(snapshots, 10), 1))
	})

	t.Run("낙폭 0에 음수 수익률", func(t *testing.T) {
		snapshots := snapshotsFromValues([]float64{10000, 10000})
		require.Zero(t, CalmarRatio(snapshots, -10))
	})

	t.Run("일반적인 경우", func(t *testing.T) {
		snapshots := snapshotsFromValues([]float64{10000, 12000, 9000})
		require.InDelta(t, 10.0/25.0, CalmarRatio(snapshots, 10), 1e-9)
	})
}

func TestBeta(t *testing.T) {
	market := []float64{0.01, -0.02, 0.03, -0.01, 0.02}

	t.Run("시장의 2배로 움직이는 포트폴리오", func(t *testing.T) {
		portfolio := make([]float64, len(market))
		for i, r := range market {
			portfolio[i] = 2 * r
		}
		require.InDelta(t, 2.0, Beta(portfolio, market), 1e-9)
	})

	t.Run("길이 불일치", func(t *testing.T) {
		require.Zero(t, Beta([]float64{0.01}, market))
	})

	t.Run("시장 분산 0", func(t *testing.T) {
		flat := []float64{0.01, 0.01, 0.01}
		require.Zero(t, Beta([]float64{0.01, 0.02, 0.03}, flat))
	})
}

func TestAlpha(t *testing.T) {
	// 기대 수익률 = 3 + 1.5*(10-3) = 13.5
	require.InDelta(t, 1.5, Alpha(15, 10, 1.5, 3), 1e-9)
}

func TestInformationRatio(t *testing.T) {
	t.Run("벤치마크와 동일", func(t *testing.T) {
		returns := []float64{0.01, 0.02, -0.01}
		require.Zero(t, InformationRatio(returns, returns))
	})

	t.Run("일정한 초과 수익", func(t *testing.T) {
		portfolio := []float64{0.02, 0.03, 0.00}
		benchmark := []float64{0.01, 0.02, -0.01}
		// 초과 수익이 모두 같으면 추적 오차가 0이므로 0을 반환합니다
		require.Zero(t, InformationRatio(portfolio, benchmark))
	})

	t.Run("양의 초과 수익", func(t *testing.T) {
		portfolio := []float64{0.03, 0.01, 0.02}
		benchmark := []float64{0.01, 0.00, 0.02}
		require.Greater(t, InformationRatio(portfolio, benchmark), 0.0)
	})
}
