package backtest

import (
	"math"

	"github.com/assist-by/quant/internal/domain"
)

// riskFreeRate는 샤프/소르티노 비율 계산에 사용하는 무위험 수익률(%)입니다
const riskFreeRate = 3.0

// tradingDaysPerYear는 연환산에 사용하는 연간 거래일 수입니다
const tradingDaysPerYear = 252

// CalculateMetrics는 완료된 자산 곡선과 거래 내역으로부터 성과 지표를 계산합니다.
// 시뮬레이션된 날이 없으면 실패 대신 0으로 채워진 지표를 반환합니다
func CalculateMetrics(dailyReturns []domain.EquitySnapshot, trades []domain.Trade, initialCapital float64) domain.Metrics {
	if len(dailyReturns) == 0 {
		return domain.Metrics{}
	}

	finalValue := dailyReturns[len(dailyReturns)-1].PortfolioValue.InexactFloat64()
	totalReturn := (finalValue/initialCapital - 1) * 100

	tradingDays := len(dailyReturns)
	annualizedReturn := (math.Pow(finalValue/initialCapital, tradingDaysPerYear/float64(tradingDays)) - 1) * 100

	volatility := calculateVolatility(dailyReturns)

	sharpeRatio := 0.0
	if volatility != 0 {
		sharpeRatio = (annualizedReturn - riskFreeRate) / volatility
	}

	metrics := domain.Metrics{
		TotalReturn:      totalReturn,
		AnnualizedReturn: annualizedReturn,
		Volatility:       volatility,
		SharpeRatio:      sharpeRatio,
		MaxDrawdown:      MaxDrawdown(dailyReturns),
	}
	fillTradeStats(&metrics, trades, initialCapital)
	return metrics
}

// calculateVolatility는 첫날을 제외한 일별 수익률의 표본 표준편차를
// √252로 연환산해 퍼센트로 반환합니다
func calculateVolatility(dailyReturns []domain.EquitySnapshot) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(dailyReturns)-1)
	for _, snapshot := range dailyReturns[1:] {
		returns = append(returns, snapshot.DailyReturn/100)
	}

	return sampleStdDev(returns) * math.Sqrt(tradingDaysPerYear) * 100
}

// MaxDrawdown은 자산 곡선의 최대 낙폭(%)을 계산합니다.
// 낙폭은 직전 최고점 대비 하락률입니다
func MaxDrawdown(dailyReturns []domain.EquitySnapshot) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}

	peak := dailyReturns[0].PortfolioValue.InexactFloat64()
	maxDrawdown := 0.0

	for _, snapshot := range dailyReturns {
		value := snapshot.PortfolioValue.InexactFloat64()
		if value > peak {
			peak = value
		}
		drawdown := (peak - value) / peak * 100
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}

// fillTradeStats는 매도 거래 기준의 거래 통계를 채웁니다
func fillTradeStats(metrics *domain.Metrics, trades []domain.Trade, initialCapital float64) {
	metrics.TotalTrades = len(trades)
	if len(trades) == 0 {
		return
	}

	var sellCount, winCount, lossCount int
	var totalProfit, totalLoss float64
	for _, trade := range trades {
		if trade.Side != domain.Sell {
			continue
		}
		sellCount++
		pnl := trade.PnL.InexactFloat64()
		if pnl > 0 {
			winCount++
			totalProfit += pnl
		} else if pnl < 0 {
			lossCount++
			totalLoss += math.Abs(pnl)
		}
	}

	if sellCount == 0 {
		return
	}

	metrics.WinRate = float64(winCount) / float64(sellCount) * 100
	if winCount > 0 {
		metrics.AvgProfit = totalProfit / float64(winCount) / initialCapital * 100
	}
	if lossCount > 0 {
		metrics.AvgLoss = totalLoss / float64(lossCount) / initialCapital * 100
	}
}

// SortinoRatio는 하방 변동성만으로 위험을 측정하는 소르티노 비율을 계산합니다.
// 음수 수익률이 없으면 +Inf를 반환합니다
func SortinoRatio(dailyReturns []domain.EquitySnapshot, annualizedReturn float64) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}

	var negatives []float64
	for _, snapshot := range dailyReturns[1:] {
		r := snapshot.DailyReturn / 100
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	if len(negatives) == 0 {
		return math.Inf(1)
	}

	downsideDeviation := sampleStdDev(negatives) * math.Sqrt(tradingDaysPerYear) * 100
	if downsideDeviation == 0 {
		return 0
	}
	return (annualizedReturn - riskFreeRate) / downsideDeviation
}

// CalmarRatio는 최대 낙폭 대비 연환산 수익률을 계산합니다.
// 낙폭이 정확히 0이면 수익률 부호에 따라 +Inf 또는 0을 반환합니다
func CalmarRatio(dailyReturns []domain.EquitySnapshot, annualizedReturn float64) float64 {
	maxDrawdown := MaxDrawdown(dailyReturns)
	if maxDrawdown == 0 {
		if annualizedReturn > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return annualizedReturn / maxDrawdown
}

// InformationRatio는 벤치마크 대비 초과 수익률을 추적 오차로 나눈 값입니다
func InformationRatio(portfolioReturns, benchmarkReturns []float64) float64 {
	if len(portfolioReturns) != len(benchmarkReturns) || len(portfolioReturns) < 2 {
		return 0
	}

	excess := make([]float64, len(portfolioReturns))
	for i := range portfolioReturns {
		excess[i] = portfolioReturns[i] - benchmarkReturns[i]
	}

	trackingError := sampleStdDev(excess)
	if trackingError == 0 {
		return 0
	}
	return mean(excess) / trackingError
}

// Beta는 시장 수익률 대비 포트폴리오 수익률의 민감도를 계산합니다
func Beta(portfolioReturns, marketReturns []float64) float64 {
	if len(portfolioReturns) != len(marketReturns) || len(portfolioReturns) < 2 {
		return 0
	}

	meanP := mean(portfolioReturns)
	meanM := mean(marketReturns)

	covariance := 0.0
	marketVariance := 0.0
	for i := range portfolioReturns {
		covariance += (portfolioReturns[i] - meanP) * (marketReturns[i] - meanM)
		marketVariance += (marketReturns[i] - meanM) * (marketReturns[i] - meanM)
	}
	covariance /= float64(len(portfolioReturns) - 1)
	marketVariance /= float64(len(marketReturns) - 1)

	if marketVariance == 0 {
		return 0
	}
	return covariance / marketVariance
}

// Alpha는 CAPM 기대 수익률 대비 초과 수익률을 계산합니다
func Alpha(portfolioReturn, marketReturn, beta, riskFree float64) float64 {
	expectedReturn := riskFree + beta*(marketReturn-riskFree)
	return portfolioReturn - expectedReturn
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev는 Bessel 보정된 표본 표준편차를 계산합니다
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		sumSq += (v - m) * (v - m)
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
