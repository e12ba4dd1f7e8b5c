package indicator

import (
	"fmt"
	"math"

	"github.com/assist-by/quant/internal/domain"
)

// Series는 일봉과 1:1로 정렬된 지표 값 시리즈입니다.
// 계산에 필요한 관측치가 쌓이기 전 구간은 math.NaN()으로 표시됩니다
type Series []float64

// At은 인덱스 i의 값을 반환합니다. 범위를 벗어나거나 정의되지 않은 값이면 ok=false입니다
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}
	if math.IsNaN(s[i]) {
		return 0, false
	}
	return s[i], true
}

// ValidationError는 지표 입력값 검증 에러를 정의합니다
type ValidationError struct {
	Field string
	Err   error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("유효하지 않은 %s: %v", e.Field, e.Err)
}

// ComputeFunc는 일봉 히스토리와 파라미터로부터 지표 시리즈를 계산하는 순수 함수입니다
type ComputeFunc func(spec domain.IndicatorSpec, bars domain.BarList) (Series, error)

// registry는 지표 유형별 계산 함수 매핑입니다.
// 새 지표는 여기에 등록하는 것만으로 추가됩니다
var registry = map[domain.IndicatorType]ComputeFunc{
	domain.IndicatorSMA:      computeSMA,
	domain.IndicatorEMA:      computeEMA,
	domain.IndicatorRSI:      computeRSI,
	domain.IndicatorMACD:     computeMACD,
	domain.IndicatorBB:       computeBollinger,
	domain.IndicatorStoch:    computeStochastic,
	domain.IndicatorATR:      computeATR,
	domain.IndicatorWilliams: computeWilliamsR,
	domain.IndicatorCCI:      computeCCI,
	domain.IndicatorMomentum: computeMomentum,
	domain.IndicatorROC:      computeROC,
	domain.IndicatorPrice:    computePrice,
	domain.IndicatorVolume:   computeVolume,
}

// Compute는 지표 설정에 따라 시리즈를 계산합니다.
// 알 수 없는 지표 유형은 치명적 설정 오류이며 시뮬레이션 시작 전에 반환됩니다
func Compute(spec domain.IndicatorSpec, bars domain.BarList) (Series, error) {
	fn, ok := registry[spec.Type]
	if !ok {
		return nil, fmt.Errorf("지원하지 않는 지표 타입: %s", spec.Type)
	}
	return fn(withDefaults(spec), bars)
}

// withDefaults는 비어 있는 파라미터에 지표별 기본값을 채웁니다
func withDefaults(spec domain.IndicatorSpec) domain.IndicatorSpec {
	switch spec.Type {
	case domain.IndicatorSMA, domain.IndicatorEMA, domain.IndicatorCCI:
		if spec.Period == 0 {
			spec.Period = 20
		}
	case domain.IndicatorRSI, domain.IndicatorATR, domain.IndicatorWilliams:
		if spec.Period == 0 {
			spec.Period = 14
		}
	case domain.IndicatorMomentum, domain.IndicatorROC:
		if spec.Period == 0 {
			spec.Period = 10
		}
	case domain.IndicatorMACD:
		if spec.FastPeriod == 0 {
			spec.FastPeriod = 12
		}
		if spec.SlowPeriod == 0 {
			spec.SlowPeriod = 26
		}
		if spec.SignalPeriod == 0 {
			spec.SignalPeriod = 9
		}
		if spec.Line == "" {
			spec.Line = domain.LineMACD
		}
	case domain.IndicatorBB:
		if spec.Period == 0 {
			spec.Period = 20
		}
		if spec.StdDev == 0 {
			spec.StdDev = 2
		}
		if spec.Line == "" {
			spec.Line = domain.LineMiddle
		}
	case domain.IndicatorStoch:
		if spec.KPeriod == 0 {
			spec.KPeriod = 14
		}
		if spec.DPeriod == 0 {
			spec.DPeriod = 3
		}
		if spec.Line == "" {
			spec.Line = domain.LineK
		}
	}
	return spec
}

// undefinedSeries는 길이 n의 전체 NaN 시리즈를 생성합니다
func undefinedSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

var errEmptyBars = fmt.Errorf("가격 데이터가 비어있습니다")

func validatePeriod(period, n int) error {
	if period <= 0 {
		return ValidationError{Field: "period", Err: fmt.Errorf("period는 0보다 커야 합니다")}
	}
	if n == 0 {
		return ValidationError{Field: "bars", Err: errEmptyBars}
	}
	return nil
}
