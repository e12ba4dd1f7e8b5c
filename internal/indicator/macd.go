package indicator

import (
	"fmt"

	"github.com/assist-by/quant/internal/domain"
)

// MACDLines는 MACD 지표의 세 출력 시리즈입니다
type MACDLines struct {
	MACD      Series
	Signal    Series
	Histogram Series
}

// MACD는 이동평균 수렴확산 지표를 계산합니다.
// macd = EMA(fast) - EMA(slow), signal = EMA(macd, signalPeriod), histogram = macd - signal
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) MACDLines {
	fast := EMA(closes, fastPeriod)
	slow := EMA(closes, slowPeriod)

	macdLine := make(Series, len(closes))
	for i := range closes {
		macdLine[i] = fast[i] - slow[i]
	}

	signal := EMA(macdLine, signalPeriod)

	histogram := make(Series, len(closes))
	for i := range closes {
		histogram[i] = macdLine[i] - signal[i]
	}

	return MACDLines{MACD: macdLine, Signal: signal, Histogram: histogram}
}

func computeMACD(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	if err := validatePeriod(spec.FastPeriod, len(bars)); err != nil {
		return nil, err
	}
	if err := validatePeriod(spec.SlowPeriod, len(bars)); err != nil {
		return nil, err
	}
	if err := validatePeriod(spec.SignalPeriod, len(bars)); err != nil {
		return nil, err
	}

	lines := MACD(bars.Closes(), spec.FastPeriod, spec.SlowPeriod, spec.SignalPeriod)
	switch spec.Line {
	case domain.LineSignal:
		return lines.Signal, nil
	case domain.LineHistogram:
		return lines.Histogram, nil
	case domain.LineMACD:
		return lines.MACD, nil
	default:
		return nil, fmt.Errorf("MACD의 유효하지 않은 출력 라인: %s", spec.Line)
	}
}
