package backtest

import (
	"log"
	"math"

	"github.com/assist-by/quant/internal/domain"
)

// evaluator는 캐싱된 지표 시리즈에 대해 조건을 평가합니다
type evaluator struct {
	cache *IndicatorCache
}

// checkSignal은 조건 그룹 목록을 평가합니다.
// 그룹들은 OR로 결합되어 하나라도 충족하면 신호가 발생합니다
func (e *evaluator) checkSignal(groups []domain.ConditionGroup, symbol string, index int) bool {
	for _, group := range groups {
		if e.evaluateGroup(group, symbol, index) {
			return true
		}
	}
	return false
}

// evaluateGroup은 조건 그룹을 그룹 연산자에 따라 평가합니다
func (e *evaluator) evaluateGroup(group domain.ConditionGroup, symbol string, index int) bool {
	switch group.Operator {
	case domain.GroupAND:
		for _, cond := range group.Conditions {
			if !e.evaluateCondition(cond, symbol, index) {
				return false
			}
		}
		// 빈 그룹은 검증에서 거부되므로 여기 도달하지 않지만, 신호를 내지 않는 쪽이 안전합니다
		return len(group.Conditions) > 0
	case domain.GroupOR:
		for _, cond := range group.Conditions {
			if e.evaluateCondition(cond, symbol, index) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// evaluateCondition은 단일 조건을 인덱스 i에서 평가합니다.
// 인덱스 0이거나 참조 값이 정의되지 않은 경우 false입니다.
// 평가 중 예기치 못한 오류가 발생해도 false로 처리되어
// 잘못된 조건 하나가 전체 스캔을 중단시키지 않습니다
func (e *evaluator) evaluateCondition(cond domain.Condition, symbol string, index int) (fired bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("조건 평가 오류: %s %v", symbol, r)
			fired = false
		}
	}()

	// 인덱스 0은 이전 일봉이 없으므로 항상 히스토리 부족으로 취급합니다
	if index < 1 {
		return false
	}

	leftSeries, ok := e.cache.Get(symbol, cond.LeftIndicator.Key())
	if !ok {
		log.Printf("조건 평가 오류: %s 캐시에 '%s' 지표가 없습니다", symbol, cond.LeftIndicator.Key())
		return false
	}
	left, ok := leftSeries.At(index)
	if !ok {
		return false
	}

	if cond.Operator.IsCross() {
		rightSeries, ok := e.cache.Get(symbol, cond.RightIndicator.Key())
		if !ok {
			log.Printf("조건 평가 오류: %s 캐시에 '%s' 지표가 없습니다", symbol, cond.RightIndicator.Key())
			return false
		}
		right, ok := rightSeries.At(index)
		if !ok {
			return false
		}
		leftPrev, ok := leftSeries.At(index - 1)
		if !ok {
			return false
		}
		rightPrev, ok := rightSeries.At(index - 1)
		if !ok {
			return false
		}

		switch cond.Operator {
		case domain.OpCrossUp:
			return leftPrev <= rightPrev && left > right
		case domain.OpCrossDown:
			return leftPrev >= rightPrev && left < right
		}
		return false
	}

	right := cond.Value
	if cond.RightIndicator != nil {
		rightSeries, ok := e.cache.Get(symbol, cond.RightIndicator.Key())
		if !ok {
			log.Printf("조건 평가 오류: %s 캐시에 '%s' 지표가 없습니다", symbol, cond.RightIndicator.Key())
			return false
		}
		right, ok = rightSeries.At(index)
		if !ok {
			return false
		}
	}

	switch cond.Operator {
	case domain.OpGT:
		return left > right
	case domain.OpGTE:
		return left >= right
	case domain.OpLT:
		return left < right
	case domain.OpLTE:
		return left <= right
	case domain.OpEQ:
		// 부동소수점 비교
		return math.Abs(left-right) < 1e-6
	}
	return false
}
