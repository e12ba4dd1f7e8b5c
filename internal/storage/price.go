package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/assist-by/quant/internal/domain"
)

// Price는 일봉 캐시 테이블 모델입니다
type Price struct {
	ID     uint      `gorm:"primaryKey"`
	Symbol string    `gorm:"index:idx_symbol_date,unique"`
	Date   time.Time `gorm:"index:idx_symbol_date,unique"`
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceRepository는 일봉 캐시 저장소입니다.
// backtest.Fetcher를 구현하므로 동기화된 데이터로 백테스트를 실행할 수 있습니다
type PriceRepository struct {
	db *gorm.DB
}

// NewPriceRepository는 새로운 일봉 캐시 저장소를 생성합니다
func NewPriceRepository(db *gorm.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// SaveBars는 일봉들을 저장합니다. 이미 있는 (종목, 날짜)는 건너뜁니다
func (r *PriceRepository) SaveBars(bars []domain.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	records := make([]Price, len(bars))
	for i, bar := range bars {
		records[i] = Price{
			Symbol: bar.Symbol,
			Date:   bar.Date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		}
	}

	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(records, 500).Error
}

// Fetch는 [startDate, endDate] 구간의 캐싱된 일봉을 날짜순으로 반환합니다 (epoch ms)
func (r *PriceRepository) Fetch(ctx context.Context, symbol string, startDate, endDate int64) ([]domain.PriceBar, error) {
	if symbol == "" {
		return nil, errors.New("종목이 비어있습니다")
	}

	var records []Price
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND date BETWEEN ? AND ?",
			symbol, time.UnixMilli(startDate).UTC(), time.UnixMilli(endDate).UTC()).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	bars := make([]domain.PriceBar, len(records))
	for i, record := range records {
		bars[i] = domain.PriceBar{
			Symbol: record.Symbol,
			Date:   record.Date.UTC(),
			Open:   record.Open,
			High:   record.High,
			Low:    record.Low,
			Close:  record.Close,
			Volume: record.Volume,
		}
	}
	return bars, nil
}

// LatestDate는 종목의 가장 최근 캐싱된 일봉 날짜를 반환합니다
func (r *PriceRepository) LatestDate(symbol string) (time.Time, error) {
	var record Price
	err := r.db.Where("symbol = ?", symbol).
		Order("date DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	return record.Date, err
}
