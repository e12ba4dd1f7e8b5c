package backtest

import (
	"log"

	"github.com/assist-by/quant/internal/domain"
)

// ProgressSink는 시뮬레이션 하루마다 진행 알림을 수신하는 관찰자입니다.
// 순수 관찰용이며 시뮬레이션 상태에 영향을 주지 않습니다.
// 하나의 백테스트 실행에 하나의 싱크가 주입됩니다
type ProgressSink interface {
	OnProgress(p domain.Progress)
}

// ProgressFunc는 함수를 ProgressSink로 사용할 수 있게 합니다
type ProgressFunc func(p domain.Progress)

// OnProgress는 ProgressSink 인터페이스를 구현합니다
func (f ProgressFunc) OnProgress(p domain.Progress) {
	f(p)
}

// LogProgress는 진행 상황을 로그로 출력하는 기본 싱크입니다
func LogProgress(p domain.Progress) {
	log.Printf("%s (%.1f%%)", p.Message, p.ProgressPct)
}
