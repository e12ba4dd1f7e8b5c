package indicator

import (
	"fmt"
	"math"

	"github.com/assist-by/quant/internal/domain"
)

// BollingerLines는 볼린저 밴드의 세 출력 시리즈입니다
type BollingerLines struct {
	Upper  Series
	Middle Series
	Lower  Series
}

// Bollinger는 볼린저 밴드를 계산합니다.
// middle = SMA(period), 밴드 폭 = 표본 표준편차 × stdDev
func Bollinger(closes []float64, period int, stdDev float64) BollingerLines {
	middle := SMA(closes, period)
	upper := undefinedSeries(len(closes))
	lower := undefinedSeries(len(closes))

	// 표본 표준편차 (ddof=1)는 윈도우가 2 이상이어야 정의됩니다
	if period >= 2 {
		for i := period - 1; i < len(closes); i++ {
			if math.IsNaN(middle[i]) {
				continue
			}
			sumSq := 0.0
			for j := i - period + 1; j <= i; j++ {
				diff := closes[j] - middle[i]
				sumSq += diff * diff
			}
			width := math.Sqrt(sumSq/float64(period-1)) * stdDev
			upper[i] = middle[i] + width
			lower[i] = middle[i] - width
		}
	}

	return BollingerLines{Upper: upper, Middle: middle, Lower: lower}
}

// ATR은 평균 실제 범위를 계산합니다.
// 첫 일봉의 실제 범위는 이전 종가가 없으므로 고가-저가입니다
func ATR(bars domain.BarList, period int) Series {
	out := undefinedSeries(len(bars))
	if period <= 0 || len(bars) < period {
		return out
	}

	tr := make([]float64, len(bars))
	for i, bar := range bars {
		if i == 0 {
			tr[i] = bar.High - bar.Low
			continue
		}
		prevClose := bars[i-1].Close
		tr[i] = math.Max(bar.High-bar.Low,
			math.Max(math.Abs(bar.High-prevClose), math.Abs(bar.Low-prevClose)))
	}

	return SMA(tr, period)
}

func computeBollinger(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if err := validatePeriod(spec.Period, len(bars)); err != nil {
		return nil, err
	}
	if spec.StdDev <= 0 {
		return nil, ValidationError{Field: "stdDev", Err: fmt.Errorf("stdDev는 0보다 커야 합니다")}
	}

	lines := Bollinger(bars.Closes(), spec.Period, spec.StdDev)
	switch spec.Line {
	case domain.LineUpper:
		return lines.Upper, nil
	case domain.LineLower:
		return lines.Lower, nil
	case domain.LineMiddle:
		return lines.Middle, nil
	default:
		return nil, fmt.Errorf("BB의 유효하지 않은 출력 라인: %s", spec.Line)
	}
}

func computeATR(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if err := validatePeriod(spec.Period, len(bars)); err != nil {
		return nil, err
	}
	return ATR(bars, spec.Period), nil
}
