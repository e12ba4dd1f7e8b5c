package domain

import (
	"fmt"
	"strings"
)

// IndicatorType은 지원하는 기술 지표 유형을 정의합니다
type IndicatorType string

const (
	IndicatorSMA      IndicatorType = "SMA"
	IndicatorEMA      IndicatorType = "EMA"
	IndicatorRSI      IndicatorType = "RSI"
	IndicatorMACD     IndicatorType = "MACD"
	IndicatorBB       IndicatorType = "BB"
	IndicatorStoch    IndicatorType = "STOCH"
	IndicatorATR      IndicatorType = "ATR"
	IndicatorWilliams IndicatorType = "WILLIAMS_R"
	IndicatorCCI      IndicatorType = "CCI"
	IndicatorMomentum IndicatorType = "MOMENTUM"
	IndicatorROC      IndicatorType = "ROC"
	IndicatorPrice    IndicatorType = "PRICE"
	IndicatorVolume   IndicatorType = "VOLUME"
)

// indicatorTypes는 유효한 지표 유형 집합입니다
var indicatorTypes = map[IndicatorType]bool{
	IndicatorSMA:      true,
	IndicatorEMA:      true,
	IndicatorRSI:      true,
	IndicatorMACD:     true,
	IndicatorBB:       true,
	IndicatorStoch:    true,
	IndicatorATR:      true,
	IndicatorWilliams: true,
	IndicatorCCI:      true,
	IndicatorMomentum: true,
	IndicatorROC:      true,
	IndicatorPrice:    true,
	IndicatorVolume:   true,
}

// IsValid는 지표 유형이 유효한지 확인합니다
func (t IndicatorType) IsValid() bool {
	return indicatorTypes[t]
}

// 다중 출력 지표의 출력 라인 이름
const (
	LineMACD      = "macd"
	LineSignal    = "signal"
	LineHistogram = "histogram"
	LineUpper     = "upper"
	LineMiddle    = "middle"
	LineLower     = "lower"
	LineK         = "k"
	LineD         = "d"
)

// IndicatorSpec은 조건에서 참조하는 지표 설정을 정의합니다.
// 기간 파라미터가 0이면 지표별 기본값이 적용됩니다
type IndicatorSpec struct {
	Type         IndicatorType `json:"type"`
	Period       int           `json:"period,omitempty"`
	FastPeriod   int           `json:"fastPeriod,omitempty"`
	SlowPeriod   int           `json:"slowPeriod,omitempty"`
	SignalPeriod int           `json:"signalPeriod,omitempty"`
	KPeriod      int           `json:"kPeriod,omitempty"`
	DPeriod      int           `json:"dPeriod,omitempty"`
	StdDev       float64       `json:"stdDev,omitempty"`
	Line         string        `json:"line,omitempty"` // MACD: macd|signal|histogram, BB: upper|middle|lower, STOCH: k|d
}

// Key는 (지표 유형, 파라미터) 조합에 대한 고유 캐시 키를 생성합니다.
// 같은 지표를 참조하는 여러 조건이 재계산을 공유할 수 있게 합니다
func (s IndicatorSpec) Key() string {
	parts := []string{string(s.Type)}

	if s.Period > 0 {
		parts = append(parts, fmt.Sprintf("period_%d", s.Period))
	}
	if s.FastPeriod > 0 {
		parts = append(parts, fmt.Sprintf("fast_%d", s.FastPeriod))
	}
	if s.SlowPeriod > 0 {
		parts = append(parts, fmt.Sprintf("slow_%d", s.SlowPeriod))
	}
	if s.SignalPeriod > 0 {
		parts = append(parts, fmt.Sprintf("signal_%d", s.SignalPeriod))
	}
	if s.KPeriod > 0 {
		parts = append(parts, fmt.Sprintf("k_%d", s.KPeriod))
	}
	if s.DPeriod > 0 {
		parts = append(parts, fmt.Sprintf("d_%d", s.DPeriod))
	}
	if s.StdDev > 0 {
		parts = append(parts, fmt.Sprintf("std_%g", s.StdDev))
	}
	if s.Line != "" {
		parts = append(parts, s.Line)
	}

	return strings.Join(parts, "_")
}

// Validate는 지표 설정이 유효한지 확인합니다
func (s IndicatorSpec) Validate() error {
	if !s.Type.IsValid() {
		return fmt.Errorf("지원하지 않는 지표 타입: %s", s.Type)
	}

	switch s.Type {
	case IndicatorMACD:
		if s.Line != "" && s.Line != LineMACD && s.Line != LineSignal && s.Line != LineHistogram {
			return fmt.Errorf("MACD의 유효하지 않은 출력 라인: %s", s.Line)
		}
	case IndicatorBB:
		if s.Line != "" && s.Line != LineUpper && s.Line != LineMiddle && s.Line != LineLower {
			return fmt.Errorf("BB의 유효하지 않은 출력 라인: %s", s.Line)
		}
	case IndicatorStoch:
		if s.Line != "" && s.Line != LineK && s.Line != LineD {
			return fmt.Errorf("STOCH의 유효하지 않은 출력 라인: %s", s.Line)
		}
	default:
		if s.Line != "" {
			return fmt.Errorf("%s 지표는 출력 라인을 갖지 않습니다: %s", s.Type, s.Line)
		}
	}

	if s.Period < 0 || s.FastPeriod < 0 || s.SlowPeriod < 0 || s.SignalPeriod < 0 ||
		s.KPeriod < 0 || s.DPeriod < 0 || s.StdDev < 0 {
		return fmt.Errorf("%s 지표의 파라미터는 음수일 수 없습니다", s.Type)
	}

	return nil
}
