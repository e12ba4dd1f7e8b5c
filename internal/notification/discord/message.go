package discord

import (
	"time"
)

// Discord 웹훅 페이로드의 와이어 포맷입니다.
// 필드 구성은 Discord API가 정의하며 사용하는 필드만 선언합니다

// WebhookMessage는 웹훅으로 전송되는 최상위 메시지입니다
type WebhookMessage struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed는 메시지에 첨부되는 임베드 블록입니다
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField는 임베드 본문의 이름/값 쌍입니다
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter는 임베드 하단 텍스트입니다
type EmbedFooter struct {
	Text string `json:"text"`
}

const footerText = "Assist by Quant 📊"

// newEmbed는 푸터와 현재 시각 타임스탬프가 채워진 임베드를 생성합니다
func newEmbed(color int) Embed {
	return Embed{
		Color:     color,
		Footer:    &EmbedFooter{Text: footerText},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// metricField는 성과 지표 하나를 인라인 필드로 만듭니다
func metricField(name, value string) EmbedField {
	return EmbedField{Name: name, Value: value, Inline: true}
}
