package indicator

import (
	"math"

	"github.com/assist-by/quant/internal/domain"
)

// SMA는 단순이동평균을 계산합니다.
// period개의 관측치가 쌓이기 전 구간은 NaN입니다.
// 입력에 NaN이 섞여 있으면 (예: 다른 지표의 워밍업 구간 위에 계산할 때)
// 해당 값이 윈도우에 포함된 동안만 정의되지 않고, 윈도우를 벗어나면 다시 정의됩니다
func SMA(values []float64, period int) Series {
	out := undefinedSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	// NaN을 누적 합에 더하면 합이 영구히 오염되므로 개수로만 추적합니다
	sum := 0.0
	nanCount := 0
	for i, v := range values {
		if math.IsNaN(v) {
			nanCount++
		} else {
			sum += v
		}
		if i >= period {
			old := values[i-period]
			if math.IsNaN(old) {
				nanCount--
			} else {
				sum -= old
			}
		}
		if i >= period-1 && nanCount == 0 {
			out[i] = sum / float64(period)
		}
	}

	return out
}

// EMA는 지수이동평균을 계산합니다.
// 첫 값을 시작값으로 사용하므로 인덱스 0부터 정의됩니다 (pandas ewm(adjust=False)과 동일)
func EMA(values []float64, period int) Series {
	out := undefinedSeries(len(values))
	if period <= 0 || len(values) == 0 {
		return out
	}

	alpha := 2.0 / float64(period+1)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out
}

func computeSMA(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if err := validatePeriod(spec.Period, len(bars)); err != nil {
		return nil, err
	}
	return SMA(bars.Closes(), spec.Period), nil
}

func computeEMA(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if err := validatePeriod(spec.Period, len(bars)); err != nil {
		return nil, err
	}
	return EMA(bars.Closes(), spec.Period), nil
}

func computePrice(_ domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if len(bars) == 0 {
		return nil, ValidationError{Field: "bars", Err: errEmptyBars}
	}
	return Series(bars.Closes()), nil
}

func computeVolume(_ domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if len(bars) == 0 {
		return nil, ValidationError{Field: "bars", Err: errEmptyBars}
	}
	out := make(Series, len(bars))
	for i, bar := range bars {
		out[i] = bar.Volume
	}
	return out, nil
}
