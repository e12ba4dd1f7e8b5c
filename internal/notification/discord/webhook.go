package discord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/assist-by/quant/internal/domain"
	"github.com/assist-by/quant/internal/notification"
)

// Client는 Discord 웹훅 클라이언트를 구현합니다
type Client struct {
	resultWebhook string
	errorWebhook  string
	infoWebhook   string
	httpClient    *http.Client
}

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 클라이언트의 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithInfoWebhook은 정보 알림용 웹훅 URL을 따로 설정합니다
func WithInfoWebhook(url string) ClientOption {
	return func(c *Client) {
		c.infoWebhook = url
	}
}

// NewClient는 새로운 Discord 웹훅 클라이언트를 생성합니다
func NewClient(resultWebhook, errorWebhook string, opts ...ClientOption) *Client {
	c := &Client{
		resultWebhook: resultWebhook,
		errorWebhook:  errorWebhook,
		infoWebhook:   resultWebhook,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}

	// 옵션 적용
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SendResult는 백테스트 결과 요약 알림을 전송합니다
func (c *Client) SendResult(strategy *domain.Strategy, result *domain.BacktestResult) error {
	embed := newEmbed(notification.GetColorForReturn(result.TotalReturn))
	embed.Title = fmt.Sprintf("백테스트 완료: %s", strategy.Name)
	embed.Description = fmt.Sprintf("**기간**: %s ~ %s\n**심볼**: %v",
		formatDate(result.StartDate), formatDate(result.EndDate), strategy.Symbols)
	embed.Fields = []EmbedField{
		metricField("총 수익률", fmt.Sprintf("%.2f%%", result.TotalReturn)),
		metricField("연환산 수익률", fmt.Sprintf("%.2f%%", result.AnnualizedReturn)),
		metricField("최대 낙폭", fmt.Sprintf("%.2f%%", result.MaxDrawdown)),
		metricField("샤프 비율", fmt.Sprintf("%.2f", result.SharpeRatio)),
		metricField("승률", fmt.Sprintf("%.2f%%", result.WinRate)),
		metricField("거래 횟수", fmt.Sprintf("%d회", result.TotalTrades)),
	}

	return c.sendToWebhook(c.resultWebhook, WebhookMessage{Embeds: []Embed{embed}})
}

// SendError는 에러 알림을 전송합니다
func (c *Client) SendError(err error) error {
	embed := newEmbed(notification.ColorError)
	embed.Title = "에러 발생"
	embed.Description = fmt.Sprintf("```%v```", err)

	return c.sendToWebhook(c.errorWebhook, WebhookMessage{Embeds: []Embed{embed}})
}

// SendInfo는 일반 정보 알림을 전송합니다
func (c *Client) SendInfo(message string) error {
	embed := newEmbed(notification.ColorInfo)
	embed.Description = message

	return c.sendToWebhook(c.infoWebhook, WebhookMessage{Embeds: []Embed{embed}})
}

// sendToWebhook은 웹훅 URL로 메시지를 전송합니다
func (c *Client) sendToWebhook(webhookURL string, msg WebhookMessage) error {
	if webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("메시지 직렬화 실패: %w", err)
	}

	resp, err := c.httpClient.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("웹훅 전송 실패: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("웹훅 응답 오류: status=%d", resp.StatusCode)
	}

	return nil
}

func formatDate(epochMillis int64) string {
	return time.UnixMilli(epochMillis).UTC().Format("2006-01-02")
}
