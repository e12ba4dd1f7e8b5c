package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// API 서버 설정
	Server struct {
		Host string `envconfig:"BACKEND_HOST" default:"0.0.0.0"`
		Port int    `envconfig:"BACKEND_PORT" default:"8000"`
	}

	// 바이낸스 API 설정
	Binance struct {
		APIKey    string `envconfig:"BINANCE_API_KEY"`
		SecretKey string `envconfig:"BINANCE_SECRET_KEY"`
	}

	// 데이터베이스 설정
	Database struct {
		DSN string `envconfig:"DATABASE_DSN"`
	}

	// 디스코드 웹훅 설정
	Discord struct {
		ResultWebhook string `envconfig:"DISCORD_RESULT_WEBHOOK"`
		ErrorWebhook  string `envconfig:"DISCORD_ERROR_WEBHOOK"`
		InfoWebhook   string `envconfig:"DISCORD_INFO_WEBHOOK"`
	}

	// 데이터 동기화 설정
	Sync struct {
		Interval time.Duration `envconfig:"SYNC_INTERVAL" default:"24h"`
		Symbols  string        `envconfig:"SYNC_SYMBOLS" default:"BTCUSDT"`
	}

	// 백테스트 기본 설정
	Backtest struct {
		InitialCapital float64 `envconfig:"BACKTEST_INITIAL_CAPITAL" default:"1000000"`
		Commission     float64 `envconfig:"BACKTEST_COMMISSION" default:"0.015"`
		Slippage       float64 `envconfig:"BACKTEST_SLIPPAGE" default:"0.1"`
	}
}

// SyncSymbols는 동기화 대상 심볼 목록을 반환합니다
func (c *Config) SyncSymbols() []string {
	var symbols []string
	for _, s := range strings.Split(c.Sync.Symbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// ServerAddr는 API 서버 바인딩 주소를 반환합니다
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ValidateConfig는 설정이 유효한지 확인합니다.
func ValidateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("BACKEND_PORT는 1 이상 65535 이하이어야 합니다")
	}

	if cfg.Sync.Interval < 1*time.Minute {
		return fmt.Errorf("SYNC_INTERVAL은 1분 이상이어야 합니다")
	}

	if cfg.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("BACKTEST_INITIAL_CAPITAL은 0보다 커야 합니다")
	}

	if cfg.Backtest.Commission < 0 || cfg.Backtest.Slippage < 0 {
		return fmt.Errorf("수수료와 슬리피지는 음수일 수 없습니다")
	}

	return nil
}

// LoadConfig는 환경변수에서 설정을 로드합니다.
func LoadConfig() (*Config, error) {
	// .env 파일은 없어도 무방합니다
	_ = godotenv.Load()

	var cfg Config
	// 환경변수를 구조체로 파싱
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("환경변수 처리 실패: %w", err)
	}

	// 설정값 검증
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("설정값 검증 실패: %w", err)
	}

	return &cfg, nil
}
