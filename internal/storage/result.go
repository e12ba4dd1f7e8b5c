package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/assist-by/quant/internal/domain"
)

// BacktestRecord는 백테스트 결과 테이블 모델입니다.
// 거래 내역과 자산 곡선은 JSON 컬럼으로 직렬화됩니다
type BacktestRecord struct {
	ID               string `gorm:"primaryKey"`
	StrategyID       string `gorm:"index"`
	StartDate        int64
	EndDate          int64
	CreatedAt        int64
	TotalReturn      float64
	AnnualizedReturn float64
	Volatility       float64
	SharpeRatio      float64
	MaxDrawdown      float64
	TotalTrades      int
	WinRate          float64
	AvgProfit        float64
	AvgLoss          float64
	Trades           []byte `gorm:"type:jsonb"`
	DailyReturns     []byte `gorm:"type:jsonb"`
}

// ResultRepository는 백테스트 결과 저장소입니다
type ResultRepository struct {
	db *gorm.DB
}

// NewResultRepository는 새로운 결과 저장소를 생성합니다
func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Save는 백테스트 결과를 저장합니다
func (r *ResultRepository) Save(ctx context.Context, result *domain.BacktestResult) error {
	if result == nil {
		return errors.New("결과가 비어있습니다")
	}

	trades, err := json.Marshal(result.Trades)
	if err != nil {
		return fmt.Errorf("거래 내역 직렬화 실패: %w", err)
	}
	dailyReturns, err := json.Marshal(result.DailyReturns)
	if err != nil {
		return fmt.Errorf("자산 곡선 직렬화 실패: %w", err)
	}

	record := BacktestRecord{
		ID:               result.ID,
		StrategyID:       result.StrategyID,
		StartDate:        result.StartDate,
		EndDate:          result.EndDate,
		CreatedAt:        result.CreatedAt,
		TotalReturn:      result.TotalReturn,
		AnnualizedReturn: result.AnnualizedReturn,
		Volatility:       result.Volatility,
		SharpeRatio:      result.SharpeRatio,
		MaxDrawdown:      result.MaxDrawdown,
		TotalTrades:      result.TotalTrades,
		WinRate:          result.WinRate,
		AvgProfit:        result.AvgProfit,
		AvgLoss:          result.AvgLoss,
		Trades:           trades,
		DailyReturns:     dailyReturns,
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

// FindByID는 결과를 ID로 조회합니다. 없으면 nil을 반환합니다
func (r *ResultRepository) FindByID(ctx context.Context, id string) (*domain.BacktestResult, error) {
	if id == "" {
		return nil, errors.New("ID가 비어있습니다")
	}

	var record BacktestRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toResult(&record)
}

// FindByStrategy는 전략의 모든 백테스트 결과를 최신순으로 조회합니다
func (r *ResultRepository) FindByStrategy(ctx context.Context, strategyID string) ([]*domain.BacktestResult, error) {
	var records []BacktestRecord
	err := r.db.WithContext(ctx).Where("strategy_id = ?", strategyID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	results := make([]*domain.BacktestResult, 0, len(records))
	for i := range records {
		result, err := toResult(&records[i])
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// toResult는 테이블 레코드를 도메인 결과로 복원합니다
func toResult(record *BacktestRecord) (*domain.BacktestResult, error) {
	result := &domain.BacktestResult{
		ID:         record.ID,
		StrategyID: record.StrategyID,
		StartDate:  record.StartDate,
		EndDate:    record.EndDate,
		CreatedAt:  record.CreatedAt,
		Metrics: domain.Metrics{
			TotalReturn:      record.TotalReturn,
			AnnualizedReturn: record.AnnualizedReturn,
			Volatility:       record.Volatility,
			SharpeRatio:      record.SharpeRatio,
			MaxDrawdown:      record.MaxDrawdown,
			TotalTrades:      record.TotalTrades,
			WinRate:          record.WinRate,
			AvgProfit:        record.AvgProfit,
			AvgLoss:          record.AvgLoss,
		},
	}

	if err := json.Unmarshal(record.Trades, &result.Trades); err != nil {
		return nil, fmt.Errorf("거래 내역 역직렬화 실패: %w", err)
	}
	if err := json.Unmarshal(record.DailyReturns, &result.DailyReturns); err != nil {
		return nil, fmt.Errorf("자산 곡선 역직렬화 실패: %w", err)
	}
	return result, nil
}
