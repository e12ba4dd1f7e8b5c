package domain

import (
	"testing"
)

func validStrategy() *Strategy {
	return &Strategy{
		ID:      "strat-1",
		Name:    "골든 크로스",
		Symbols: []string{"BTCUSDT"},
		BuyConditions: []ConditionGroup{
			{
				Operator: GroupAND,
				Conditions: []Condition{
					{
						LeftIndicator:  IndicatorSpec{Type: IndicatorSMA, Period: 5},
						Operator:       OpCrossUp,
						RightIndicator: &IndicatorSpec{Type: IndicatorSMA, Period: 20},
					},
				},
			},
		},
		SellConditions: []ConditionGroup{
			{
				Operator: GroupOR,
				Conditions: []Condition{
					{
						LeftIndicator: IndicatorSpec{Type: IndicatorRSI, Period: 14},
						Operator:      OpGT,
						Value:         70,
					},
				},
			},
		},
	}
}

func TestStrategyValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(s *Strategy)
		wantErr bool
	}{
		{name: "유효한 전략", mutate: func(s *Strategy) {}, wantErr: false},
		{name: "id 누락", mutate: func(s *Strategy) { s.ID = "" }, wantErr: true},
		{name: "name 누락", mutate: func(s *Strategy) { s.Name = "" }, wantErr: true},
		{name: "종목 누락", mutate: func(s *Strategy) { s.Symbols = nil }, wantErr: true},
		{name: "매수 조건 누락", mutate: func(s *Strategy) { s.BuyConditions = nil }, wantErr: true},
		{name: "매도 조건 누락", mutate: func(s *Strategy) { s.SellConditions = nil }, wantErr: true},
		{name: "빈 조건 그룹 목록은 허용", mutate: func(s *Strategy) { s.SellConditions = []ConditionGroup{} }, wantErr: false},
		{
			name: "조건 없는 그룹은 거부",
			mutate: func(s *Strategy) {
				s.BuyConditions[0].Conditions = nil
			},
			wantErr: true,
		},
		{name: "maxPositionPct 범위 초과", mutate: func(s *Strategy) { s.RiskManagement.MaxPositionPct = 150 }, wantErr: true},
		{name: "maxPositionPct 음수", mutate: func(s *Strategy) { s.RiskManagement.MaxPositionPct = -10 }, wantErr: true},
		{
			name: "잘못된 그룹 연산자",
			mutate: func(s *Strategy) {
				s.BuyConditions[0].Operator = "XOR"
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := validStrategy()
			tc.mutate(s)
			err := s.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr=%v, got=%v", tc.wantErr, err)
			}
		})
	}
}

func TestConditionValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cond    Condition
		wantErr bool
	}{
		{
			name: "리터럴 비교",
			cond: Condition{
				LeftIndicator: IndicatorSpec{Type: IndicatorRSI, Period: 14},
				Operator:      OpLT,
				Value:         30,
			},
			wantErr: false,
		},
		{
			name: "크로스 오버에 리터럴 사용",
			cond: Condition{
				LeftIndicator: IndicatorSpec{Type: IndicatorSMA, Period: 5},
				Operator:      OpCrossUp,
				Value:         100,
			},
			wantErr: true,
		},
		{
			name: "지원하지 않는 연산자",
			cond: Condition{
				LeftIndicator: IndicatorSpec{Type: IndicatorSMA, Period: 5},
				Operator:      "NEQ",
			},
			wantErr: true,
		},
		{
			name: "잘못된 지표 타입",
			cond: Condition{
				LeftIndicator: IndicatorSpec{Type: "UNKNOWN"},
				Operator:      OpGT,
			},
			wantErr: true,
		},
		{
			name: "단일 출력 지표에 라인 지정",
			cond: Condition{
				LeftIndicator: IndicatorSpec{Type: IndicatorSMA, Period: 5, Line: "upper"},
				Operator:      OpGT,
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cond.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr=%v, got=%v", tc.wantErr, err)
			}
		})
	}
}

func TestIndicatorSpecKey(t *testing.T) {
	testCases := []struct {
		name string
		spec IndicatorSpec
		want string
	}{
		{
			name: "SMA",
			spec: IndicatorSpec{Type: IndicatorSMA, Period: 20},
			want: "SMA_period_20",
		},
		{
			name: "MACD",
			spec: IndicatorSpec{Type: IndicatorMACD, FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9},
			want: "MACD_fast_12_slow_26_signal_9",
		},
		{
			name: "MACD 시그널 라인",
			spec: IndicatorSpec{Type: IndicatorMACD, FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9, Line: LineSignal},
			want: "MACD_fast_12_slow_26_signal_9_signal",
		},
		{
			name: "BB",
			spec: IndicatorSpec{Type: IndicatorBB, Period: 20, StdDev: 2, Line: LineUpper},
			want: "BB_period_20_std_2_upper",
		},
		{
			name: "파라미터 없는 PRICE",
			spec: IndicatorSpec{Type: IndicatorPrice},
			want: "PRICE",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.spec.Key(); got != tc.want {
				t.Errorf("Key()가 다릅니다: got=%s, want=%s", got, tc.want)
			}
		})
	}
}

func TestMaxPositionPct(t *testing.T) {
	s := validStrategy()
	if got := s.MaxPositionPct(); got != 100 {
		t.Errorf("기본값은 100이어야 합니다: got=%.1f", got)
	}

	s.RiskManagement.MaxPositionPct = 30
	if got := s.MaxPositionPct(); got != 30 {
		t.Errorf("설정값이 반영되어야 합니다: got=%.1f", got)
	}
}

func TestBacktestConfigValidate(t *testing.T) {
	valid := BacktestConfig{
		StartDate:      1704067200000,
		EndDate:        1706745600000,
		InitialCapital: 1000000,
		Commission:     0.015,
		Slippage:       0.1,
	}

	testCases := []struct {
		name    string
		mutate  func(c *BacktestConfig)
		wantErr bool
	}{
		{name: "유효한 설정", mutate: func(c *BacktestConfig) {}, wantErr: false},
		{name: "startDate 누락", mutate: func(c *BacktestConfig) { c.StartDate = 0 }, wantErr: true},
		{name: "endDate 누락", mutate: func(c *BacktestConfig) { c.EndDate = 0 }, wantErr: true},
		{name: "시작일이 종료일 이후", mutate: func(c *BacktestConfig) { c.StartDate = c.EndDate + 1 }, wantErr: true},
		{name: "초기 자본금 0", mutate: func(c *BacktestConfig) { c.InitialCapital = 0 }, wantErr: true},
		{name: "음수 수수료", mutate: func(c *BacktestConfig) { c.Commission = -0.1 }, wantErr: true},
		{name: "음수 슬리피지", mutate: func(c *BacktestConfig) { c.Slippage = -0.1 }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			err := c.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr=%v, got=%v", tc.wantErr, err)
			}
		})
	}
}
