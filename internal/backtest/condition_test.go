package backtest

import (
	"math"
	"testing"

	"github.com/assist-by/quant/internal/domain"
	"github.com/assist-by/quant/internal/indicator"
)

func newTestEvaluator(series map[string]indicator.Series) *evaluator {
	cache := NewIndicatorCache()
	for key, s := range series {
		cache.put("BTCUSDT", key, s)
	}
	return &evaluator{cache: cache}
}

func TestEvaluateConditionCross(t *testing.T) {
	fast := domain.IndicatorSpec{Type: domain.IndicatorSMA, Period: 5}
	slow := domain.IndicatorSpec{Type: domain.IndicatorSMA, Period: 20}

	eval := newTestEvaluator(map[string]indicator.Series{
		fast.Key(): {1, 3, 3, 1},
		slow.Key(): {2, 2, 2, 2},
	})

	crossUp := domain.Condition{
		LeftIndicator:  fast,
		Operator:       domain.OpCrossUp,
		RightIndicator: &slow,
	}
	crossDown := domain.Condition{
		LeftIndicator:  fast,
		Operator:       domain.OpCrossDown,
		RightIndicator: &slow,
	}

	// 인덱스 0은 이전 값이 없으므로 어떤 연산자든 false입니다
	if eval.evaluateCondition(crossUp, "BTCUSDT", 0) {
		t.Error("인덱스 0에서 크로스가 발생하면 안 됩니다")
	}

	if !eval.evaluateCondition(crossUp, "BTCUSDT", 1) {
		t.Error("인덱스 1에서 상향 돌파가 감지되어야 합니다")
	}
	// 이미 위에 있는 상태는 돌파가 아닙니다
	if eval.evaluateCondition(crossUp, "BTCUSDT", 2) {
		t.Error("인덱스 2는 돌파가 아닌 유지 상태입니다")
	}

	if !eval.evaluateCondition(crossDown, "BTCUSDT", 3) {
		t.Error("인덱스 3에서 하향 돌파가 감지되어야 합니다")
	}
}

func TestEvaluateConditionLiteral(t *testing.T) {
	price := domain.IndicatorSpec{Type: domain.IndicatorPrice}

	eval := newTestEvaluator(map[string]indicator.Series{
		price.Key(): {100, 110, 90, 100},
	})

	testCases := []struct {
		name  string
		op    domain.Operator
		value float64
		index int
		want  bool
	}{
		{name: "GT 충족", op: domain.OpGT, value: 105, index: 1, want: true},
		{name: "GT 미충족", op: domain.OpGT, value: 105, index: 2, want: false},
		{name: "GTE 경계값", op: domain.OpGTE, value: 110, index: 1, want: true},
		{name: "LT 충족", op: domain.OpLT, value: 95, index: 2, want: true},
		{name: "LTE 경계값", op: domain.OpLTE, value: 90, index: 2, want: true},
		{name: "EQ 근사 비교", op: domain.OpEQ, value: 100.0000001, index: 3, want: true},
		{name: "인덱스 0은 항상 false", op: domain.OpGT, value: 0, index: 0, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cond := domain.Condition{LeftIndicator: price, Operator: tc.op, Value: tc.value}
			if got := eval.evaluateCondition(cond, "BTCUSDT", tc.index); got != tc.want {
				t.Errorf("want=%v, got=%v", tc.want, got)
			}
		})
	}
}

func TestEvaluateConditionSoftFail(t *testing.T) {
	price := domain.IndicatorSpec{Type: domain.IndicatorPrice}
	rsi := domain.IndicatorSpec{Type: domain.IndicatorRSI, Period: 14}

	eval := newTestEvaluator(map[string]indicator.Series{
		price.Key(): {100, math.NaN(), 110},
	})

	t.Run("캐시에 없는 지표", func(t *testing.T) {
		cond := domain.Condition{LeftIndicator: rsi, Operator: domain.OpGT, Value: 50}
		if eval.evaluateCondition(cond, "BTCUSDT", 1) {
			t.Error("캐시에 없는 지표는 false여야 합니다")
		}
	})

	t.Run("정의되지 않은 값", func(t *testing.T) {
		cond := domain.Condition{LeftIndicator: price, Operator: domain.OpGT, Value: 50}
		if eval.evaluateCondition(cond, "BTCUSDT", 1) {
			t.Error("NaN 값에 대한 조건은 false여야 합니다")
		}
	})

	t.Run("범위 밖 인덱스", func(t *testing.T) {
		cond := domain.Condition{LeftIndicator: price, Operator: domain.OpGT, Value: 50}
		if eval.evaluateCondition(cond, "BTCUSDT", 10) {
			t.Error("범위 밖 인덱스에 대한 조건은 false여야 합니다")
		}
	})
}

func TestEvaluateGroup(t *testing.T) {
	price := domain.IndicatorSpec{Type: domain.IndicatorPrice}

	eval := newTestEvaluator(map[string]indicator.Series{
		price.Key(): {100, 110},
	})

	gtTrue := domain.Condition{LeftIndicator: price, Operator: domain.OpGT, Value: 105}
	gtFalse := domain.Condition{LeftIndicator: price, Operator: domain.OpGT, Value: 200}

	testCases := []struct {
		name  string
		group domain.ConditionGroup
		want  bool
	}{
		{
			name:  "AND 모두 충족",
			group: domain.ConditionGroup{Operator: domain.GroupAND, Conditions: []domain.Condition{gtTrue, gtTrue}},
			want:  true,
		},
		{
			name:  "AND 하나 미충족",
			group: domain.ConditionGroup{Operator: domain.GroupAND, Conditions: []domain.Condition{gtTrue, gtFalse}},
			want:  false,
		},
		{
			// 빈 그룹은 전략 검증에서 거부되지만 평가기는 방어적으로 신호를 내지 않습니다
			name:  "AND 빈 그룹",
			group: domain.ConditionGroup{Operator: domain.GroupAND, Conditions: nil},
			want:  false,
		},
		{
			name:  "OR 하나 충족",
			group: domain.ConditionGroup{Operator: domain.GroupOR, Conditions: []domain.Condition{gtFalse, gtTrue}},
			want:  true,
		},
		{
			name:  "OR 모두 미충족",
			group: domain.ConditionGroup{Operator: domain.GroupOR, Conditions: []domain.Condition{gtFalse, gtFalse}},
			want:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := eval.evaluateGroup(tc.group, "BTCUSDT", 1); got != tc.want {
				t.Errorf("want=%v, got=%v", tc.want, got)
			}
		})
	}
}

func TestCheckSignalGroupsAreORed(t *testing.T) {
	price := domain.IndicatorSpec{Type: domain.IndicatorPrice}

	eval := newTestEvaluator(map[string]indicator.Series{
		price.Key(): {100, 110},
	})

	failing := domain.ConditionGroup{
		Operator:   domain.GroupAND,
		Conditions: []domain.Condition{{LeftIndicator: price, Operator: domain.OpGT, Value: 200}},
	}
	passing := domain.ConditionGroup{
		Operator:   domain.GroupAND,
		Conditions: []domain.Condition{{LeftIndicator: price, Operator: domain.OpGT, Value: 105}},
	}

	if !eval.checkSignal([]domain.ConditionGroup{failing, passing}, "BTCUSDT", 1) {
		t.Error("그룹 중 하나만 충족해도 신호가 발생해야 합니다")
	}
	if eval.checkSignal([]domain.ConditionGroup{failing}, "BTCUSDT", 1) {
		t.Error("모든 그룹이 미충족이면 신호가 없어야 합니다")
	}
	if eval.checkSignal(nil, "BTCUSDT", 1) {
		t.Error("그룹이 없으면 신호가 없어야 합니다")
	}
}

func TestPrecompute(t *testing.T) {
	strategy := &domain.Strategy{
		ID:      "s1",
		Name:    "테스트",
		Symbols: []string{"BTCUSDT", "ETHUSDT"},
		BuyConditions: []domain.ConditionGroup{
			{
				Operator: domain.GroupAND,
				Conditions: []domain.Condition{
					{
						LeftIndicator:  domain.IndicatorSpec{Type: domain.IndicatorSMA, Period: 3},
						Operator:       domain.OpCrossUp,
						RightIndicator: &domain.IndicatorSpec{Type: domain.IndicatorSMA, Period: 5},
					},
				},
			},
		},
		SellConditions: []domain.ConditionGroup{},
	}

	closes := []float64{100, 102, 99, 103, 98, 105, 101, 104}
	marketData := map[string]domain.BarList{
		"BTCUSDT": generateBars("BTCUSDT", closes),
		"ETHUSDT": generateBars("ETHUSDT", closes),
	}

	cache := NewIndicatorCache()
	if err := cache.Precompute(strategy, marketData); err != nil {
		t.Fatalf("지표 사전 계산 실패: %v", err)
	}

	for _, symbol := range strategy.Symbols {
		for _, key := range []string{"SMA_period_3", "SMA_period_5"} {
			series, ok := cache.Get(symbol, key)
			if !ok {
				t.Errorf("%s의 '%s' 지표가 캐시에 없습니다", symbol, key)
				continue
			}
			if len(series) != len(closes) {
				t.Errorf("%s의 '%s' 시리즈 길이가 다릅니다: got=%d, want=%d", symbol, key, len(series), len(closes))
			}
		}
	}
}

func TestPrecomputeUnknownIndicator(t *testing.T) {
	strategy := &domain.Strategy{
		ID:      "s1",
		Name:    "테스트",
		Symbols: []string{"BTCUSDT"},
		BuyConditions: []domain.ConditionGroup{
			{
				Operator: domain.GroupAND,
				Conditions: []domain.Condition{
					{LeftIndicator: domain.IndicatorSpec{Type: "UNKNOWN"}, Operator: domain.OpGT, Value: 1},
				},
			},
		},
		SellConditions: []domain.ConditionGroup{},
	}

	cache := NewIndicatorCache()
	err := cache.Precompute(strategy, map[string]domain.BarList{
		"BTCUSDT": generateBars("BTCUSDT", []float64{100, 101, 102}),
	})
	if err == nil {
		t.Error("알 수 없는 지표는 치명적 오류로 반환되어야 합니다")
	}
}
