package notification

import "github.com/assist-by/quant/internal/domain"

const (
	ColorSuccess = 0x00FF00 // 녹색
	ColorError   = 0xFF0000 // 빨간색
	ColorInfo    = 0x0000FF // 파란색
	ColorWarning = 0xFFA500 // 주황색
)

// Notifier는 알림 전송 인터페이스를 정의합니다
type Notifier interface {
	// SendResult는 백테스트 결과 요약 알림을 전송합니다
	SendResult(strategy *domain.Strategy, result *domain.BacktestResult) error

	// SendError는 에러 알림을 전송합니다
	SendError(err error) error

	// SendInfo는 일반 정보 알림을 전송합니다
	SendInfo(message string) error
}

// GetColorForReturn은 수익률 부호에 따른 색상을 반환합니다
func GetColorForReturn(totalReturn float64) int {
	switch {
	case totalReturn > 0:
		return ColorSuccess
	case totalReturn < 0:
		return ColorError
	default:
		return ColorInfo
	}
}
