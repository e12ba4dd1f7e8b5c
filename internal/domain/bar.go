package domain

import "time"

// PriceBar는 일봉 OHLCV 데이터를 표현합니다
type PriceBar struct {
	Symbol string    `json:"symbol"` // 종목 코드 (예: 005930)
	Date   time.Time `json:"date"`   // 거래일
	Open   float64   `json:"open"`   // 시가
	High   float64   `json:"high"`   // 고가
	Low    float64   `json:"low"`    // 저가
	Close  float64   `json:"close"`  // 종가
	Volume float64   `json:"volume"` // 거래량
}

// BarList는 단일 종목의 날짜순 일봉 목록입니다
type BarList []PriceBar

// Closes는 종가 시리즈를 반환합니다
func (bl BarList) Closes() []float64 {
	closes := make([]float64, len(bl))
	for i, bar := range bl {
		closes[i] = bar.Close
	}
	return closes
}

// GetLastBar는 가장 최근 일봉을 반환합니다
func (bl BarList) GetLastBar() (PriceBar, bool) {
	if len(bl) == 0 {
		return PriceBar{}, false
	}
	return bl[len(bl)-1], true
}
