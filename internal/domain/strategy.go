package domain

import (
	"fmt"
)

// Operator는 조건 비교 연산자를 정의합니다
type Operator string

const (
	OpGT        Operator = "GT"
	OpGTE       Operator = "GTE"
	OpLT        Operator = "LT"
	OpLTE       Operator = "LTE"
	OpEQ        Operator = "EQ"
	OpCrossUp   Operator = "CROSS_UP"
	OpCrossDown Operator = "CROSS_DOWN"
)

// IsValid는 연산자가 유효한지 확인합니다
func (op Operator) IsValid() bool {
	switch op {
	case OpGT, OpGTE, OpLT, OpLTE, OpEQ, OpCrossUp, OpCrossDown:
		return true
	}
	return false
}

// IsCross는 크로스 오버 계열 연산자인지 확인합니다
func (op Operator) IsCross() bool {
	return op == OpCrossUp || op == OpCrossDown
}

// GroupOperator는 조건 그룹의 결합 방식을 정의합니다
type GroupOperator string

const (
	GroupAND GroupOperator = "AND"
	GroupOR  GroupOperator = "OR"
)

// Condition은 단일 매매 조건을 정의합니다.
// RightIndicator가 없으면 Value 리터럴과 비교합니다
type Condition struct {
	LeftIndicator  IndicatorSpec  `json:"leftIndicator"`
	Operator       Operator       `json:"operator"`
	RightIndicator *IndicatorSpec `json:"rightIndicator,omitempty"`
	Value          float64        `json:"value,omitempty"`
}

// Validate는 조건이 유효한지 확인합니다
func (c Condition) Validate() error {
	if !c.Operator.IsValid() {
		return fmt.Errorf("지원하지 않는 연산자: %s", c.Operator)
	}
	if err := c.LeftIndicator.Validate(); err != nil {
		return err
	}
	if c.RightIndicator != nil {
		if err := c.RightIndicator.Validate(); err != nil {
			return err
		}
	}
	// 크로스 오버는 두 시리즈의 이전 값 비교가 필요하므로 리터럴과는 사용할 수 없습니다
	if c.Operator.IsCross() && c.RightIndicator == nil {
		return fmt.Errorf("%s 연산자는 우측 지표가 필요합니다", c.Operator)
	}
	return nil
}

// ConditionGroup은 조건들을 AND/OR로 묶은 그룹입니다
type ConditionGroup struct {
	Operator   GroupOperator `json:"operator"`
	Conditions []Condition   `json:"conditions"`
}

// Validate는 조건 그룹이 유효한지 확인합니다
func (g ConditionGroup) Validate() error {
	if g.Operator != GroupAND && g.Operator != GroupOR {
		return fmt.Errorf("지원하지 않는 그룹 연산자: %s", g.Operator)
	}
	// 조건 없는 그룹은 의미가 모호하므로 (AND의 공진리 여부) 로드 시점에 거부합니다
	if len(g.Conditions) == 0 {
		return fmt.Errorf("조건 그룹에 최소 하나의 조건이 필요합니다")
	}
	for _, cond := range g.Conditions {
		if err := cond.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RiskManagement는 전략의 리스크 관리 설정입니다
type RiskManagement struct {
	// 초기 자본 대비 단일 종목 최대 포지션 비율 (%). 0이면 100으로 간주합니다
	MaxPositionPct float64 `json:"maxPositionPct,omitempty"`
}

// Strategy는 매매 전략 설정을 정의합니다.
// 매수/매도 조건 그룹들은 OR로 결합됩니다 (하나라도 충족하면 신호 발생)
type Strategy struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Symbols        []string         `json:"symbols"`
	BuyConditions  []ConditionGroup `json:"buyConditions"`
	SellConditions []ConditionGroup `json:"sellConditions"`
	RiskManagement RiskManagement   `json:"riskManagement,omitempty"`
}

// MaxPositionPct는 단일 종목 최대 포지션 비율을 반환합니다 (기본값 100%)
func (s *Strategy) MaxPositionPct() float64 {
	if s.RiskManagement.MaxPositionPct <= 0 {
		return 100
	}
	return s.RiskManagement.MaxPositionPct
}

// Validate는 전략에 필수 필드가 모두 있고 조건 스키마가 유효한지 확인합니다.
// 시뮬레이션 시작 전에 호출되며 실패 시 백테스트는 실행되지 않습니다
func (s *Strategy) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("전략에 필수 필드 'id'가 없습니다")
	}
	if s.Name == "" {
		return fmt.Errorf("전략에 필수 필드 'name'이 없습니다")
	}
	if len(s.Symbols) == 0 {
		return fmt.Errorf("전략에 최소 하나의 종목이 필요합니다")
	}
	if s.BuyConditions == nil {
		return fmt.Errorf("전략에 필수 필드 'buyConditions'가 없습니다")
	}
	if s.SellConditions == nil {
		return fmt.Errorf("전략에 필수 필드 'sellConditions'가 없습니다")
	}

	for _, group := range s.BuyConditions {
		if err := group.Validate(); err != nil {
			return fmt.Errorf("매수 조건 검증 실패: %w", err)
		}
	}
	for _, group := range s.SellConditions {
		if err := group.Validate(); err != nil {
			return fmt.Errorf("매도 조건 검증 실패: %w", err)
		}
	}

	if s.RiskManagement.MaxPositionPct < 0 || s.RiskManagement.MaxPositionPct > 100 {
		return fmt.Errorf("maxPositionPct는 0 이상 100 이하이어야 합니다")
	}

	return nil
}

// AllConditions는 매수/매도 조건 그룹의 모든 개별 조건을 반환합니다.
// 지표 사전 계산 시 필요한 지표 목록을 추출하는 데 사용됩니다
func (s *Strategy) AllConditions() []Condition {
	var conditions []Condition
	for _, group := range append(append([]ConditionGroup{}, s.BuyConditions...), s.SellConditions...) {
		conditions = append(conditions, group.Conditions...)
	}
	return conditions
}
