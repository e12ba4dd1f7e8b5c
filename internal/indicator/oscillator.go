package indicator

import (
	"math"

	"github.com/assist-by/quant/internal/domain"
)

// RSI는 상대강도지수를 계산합니다.
// 이득/손실의 단순 롤링 평균을 사용하며 (Wilder 평활 아님),
// 손실 평균이 0이면 100, 이득/손실이 모두 0이면 NaN입니다
func RSI(closes []float64, period int) Series {
	out := undefinedSeries(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	// 첫 변동은 인덱스 1이므로 윈도우는 인덱스 period에서 처음 가득 찹니다
	sumGain, sumLoss := 0.0, 0.0
	for i := 1; i < len(closes); i++ {
		sumGain += gains[i]
		sumLoss += losses[i]
		if i > period {
			sumGain -= gains[i-period]
			sumLoss -= losses[i-period]
		}
		if i < period {
			continue
		}

		avgGain := sumGain / float64(period)
		avgLoss := sumLoss / float64(period)
		switch {
		case avgLoss == 0 && avgGain == 0:
			// 0/0 - 완전 횡보 구간은 정의되지 않습니다
			out[i] = math.NaN()
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}

	return out
}

// Stochastic은 스토캐스틱 오실레이터의 %K와 %D를 계산합니다
func Stochastic(bars domain.BarList, kPeriod, dPeriod int) (k, d Series) {
	k = undefinedSeries(len(bars))
	if kPeriod <= 0 || len(bars) < kPeriod {
		return k, SMA(k, dPeriod)
	}

	for i := kPeriod - 1; i < len(bars); i++ {
		lowest, highest := bars[i].Low, bars[i].High
		for j := i - kPeriod + 1; j <= i; j++ {
			lowest = math.Min(lowest, bars[j].Low)
			highest = math.Max(highest, bars[j].High)
		}
		if highest == lowest {
			// 횡보 윈도우는 분모가 0이므로 정의되지 않습니다
			k[i] = math.NaN()
			continue
		}
		k[i] = 100 * (bars[i].Close - lowest) / (highest - lowest)
	}

	return k, SMA(k, dPeriod)
}

// WilliamsR은 윌리엄스 %R을 계산합니다 (-100 ~ 0)
func WilliamsR(bars domain.BarList, period int) Series {
	out := undefinedSeries(len(bars))
	if period <= 0 || len(bars) < period {
		return out
	}

	for i := period - 1; i < len(bars); i++ {
		lowest, highest := bars[i].Low, bars[i].High
		for j := i - period + 1; j <= i; j++ {
			lowest = math.Min(lowest, bars[j].Low)
			highest = math.Max(highest, bars[j].High)
		}
		if highest == lowest {
			out[i] = math.NaN()
			continue
		}
		out[i] = -100 * (highest - bars[i].Close) / (highest - lowest)
	}

	return out
}

// CCI는 상품 채널 지수를 계산합니다
func CCI(bars domain.BarList, period int) Series {
	out := undefinedSeries(len(bars))
	if period <= 0 || len(bars) < period {
		return out
	}

	tp := make([]float64, len(bars))
	for i, bar := range bars {
		tp[i] = (bar.High + bar.Low + bar.Close) / 3
	}
	smaTp := SMA(tp, period)

	for i := period - 1; i < len(bars); i++ {
		// 윈도우 평균 대비 평균 절대 편차
		mad := 0.0
		for j := i - period + 1; j <= i; j++ {
			mad += math.Abs(tp[j] - smaTp[i])
		}
		mad /= float64(period)

		if mad == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (tp[i] - smaTp[i]) / (0.015 * mad)
	}

	return out
}

// Momentum은 period 이전 가격 대비 변화량을 계산합니다
func Momentum(closes []float64, period int) Series {
	out := undefinedSeries(len(closes))
	for i := period; i < len(closes); i++ {
		out[i] = closes[i] - closes[i-period]
	}
	return out
}

// ROC는 period 이전 가격 대비 변화율(%)을 계산합니다
func ROC(closes []float64, period int) Series {
	out := undefinedSeries(len(closes))
	for i := period; i < len(closes); i++ {
		if closes[i-period] == 0 {
			continue
		}
		out[i] = (closes[i] - closes[i-period]) / closes[i-period] * 100
	}
	return out
}

func computeRSI(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if err := validatePeriod(spec.Period, len(bars)); err != nil {
		return nil, err
	}
	return RSI(bars.Closes(), spec.Period), nil
}

func computeStochastic(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if err := validatePeriod(spec.KPeriod, len(bars)); err != nil {
		return nil, err
	}
	if err := validatePeriod(spec.DPeriod, len(bars)); err != nil {
		return nil, err
	}

	k, d := Stochastic(bars, spec.KPeriod, spec.DPeriod)
	if spec.Line == domain.LineD {
		return d, nil
	}
	return k, nil
}

func computeWilliamsR(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if err := validatePeriod(spec.Period, len(bars)); err != nil {
		return nil, err
	}
	return WilliamsR(bars, spec.Period), nil
}

func computeCCI(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if err := validatePeriod(spec.Period, len(bars)); err != nil {
		return nil, err
	}
	return CCI(bars, spec.Period), nil
}

func computeMomentum(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if err := validatePeriod(spec.Period, len(bars)); err != nil {
		return nil, err
	}
	return Momentum(bars.Closes(), spec.Period), nil
}

func computeROC(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if err := validatePeriod(spec.Period, len(bars)); err != nil {
		return nil, err
	}
	return ROC(bars.Closes(), spec.Period), nil
}
