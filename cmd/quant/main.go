package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	osSignal "os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/assist-by/quant/internal/backtest"
	"github.com/assist-by/quant/internal/config"
	"github.com/assist-by/quant/internal/domain"
	"github.com/assist-by/quant/internal/market"
	"github.com/assist-by/quant/internal/monitoring"
	"github.com/assist-by/quant/internal/notification/discord"
	"github.com/assist-by/quant/internal/scheduler"
	"github.com/assist-by/quant/internal/server"
	"github.com/assist-by/quant/internal/storage"
)

// runRequest는 백테스트 실행 파일의 형식을 정의합니다
type runRequest struct {
	Strategy domain.Strategy       `json:"strategy"`
	Config   domain.BacktestConfig `json:"config"`
}

func main() {
	// 명령줄 플래그 정의
	backtestFile := flag.String("backtest", "", "전략 파일 경로 (백테스트 실행 후 종료)")
	serveFlag := flag.Bool("serve", false, "API 서버 모드로 실행")

	// 플래그 파싱
	flag.Parse()

	// 컨텍스트 생성
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 로그 설정
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("백테스트 서버 시작...")

	// 설정 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("설정 로드 실패: %v", err)
	}

	// Discord 클라이언트 생성
	discordClient := discord.NewClient(
		cfg.Discord.ResultWebhook,
		cfg.Discord.ErrorWebhook,
		discord.WithTimeout(10*time.Second),
		discord.WithInfoWebhook(cfg.Discord.InfoWebhook),
	)

	// 데이터베이스 연결 (DSN이 설정된 경우)
	var priceRepo *storage.PriceRepository
	var resultRepo *storage.ResultRepository
	if cfg.Database.DSN != "" {
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("데이터베이스 연결 실패: %v", err)
		}
		if err := db.AutoMigrate(&storage.Price{}, &storage.BacktestRecord{}); err != nil {
			log.Fatalf("데이터베이스 마이그레이션 실패: %v", err)
		}
		priceRepo = storage.NewPriceRepository(db)
		resultRepo = storage.NewResultRepository(db)
		log.Println("데이터베이스 연결 완료")
	}

	// 바이낸스 클라이언트 생성
	binanceFetcher := market.NewBinanceFetcher(cfg.Binance.APIKey, cfg.Binance.SecretKey)

	// 가격 데이터 소스 선택: DB가 있으면 저장소, 없으면 거래소 직접 조회
	var fetcher backtest.Fetcher = binanceFetcher
	if priceRepo != nil {
		fetcher = priceRepo
	}

	// 백테스트 엔진 생성. 단일 실행 모드에서는 진행 상황을 로그로 출력합니다
	var engineOpts []backtest.EngineOption
	if *backtestFile != "" {
		engineOpts = append(engineOpts, backtest.WithProgressSink(backtest.ProgressFunc(backtest.LogProgress)))
	}
	engine := backtest.NewEngine(fetcher, engineOpts...)

	// 단일 백테스트 모드 처리
	if *backtestFile != "" {
		runBacktest(ctx, *backtestFile, cfg, engine, resultRepo, discordClient)
		return
	}

	if !*serveFlag {
		fmt.Fprintln(os.Stderr, "실행 모드를 지정하세요: -backtest <파일> 또는 -serve")
		os.Exit(2)
	}

	// 시작 알림 전송
	if err := discordClient.SendInfo("🚀 백테스트 서버가 시작되었습니다."); err != nil {
		log.Printf("시작 알림 전송 실패: %v", err)
	}

	// 헬스체커 생성
	healthChecker := monitoring.NewHealthChecker()

	// API 서버 생성
	apiServer := server.New(
		cfg.ServerAddr(),
		engine,
		healthChecker,
		server.WithResultRepository(resultRepo),
		server.WithNotifier(discordClient),
	)

	// 데이터 동기화 스케줄러 생성 (DB가 있는 경우에만)
	var syncScheduler *scheduler.Scheduler
	if priceRepo != nil {
		task := scheduler.NewSyncTask(binanceFetcher, priceRepo, cfg.SyncSymbols(), discordClient)
		syncScheduler = scheduler.NewScheduler(cfg.Sync.Interval, task)

		go func() {
			if err := syncScheduler.Start(ctx); err != nil && err != context.Canceled {
				log.Printf("스케줄러 실행 중 에러 발생: %v", err)
				if err := discordClient.SendError(err); err != nil {
					log.Printf("에러 알림 전송 실패: %v", err)
				}
			}
		}()
	}

	// 서버 시작
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("서버 실행 중 에러 발생: %v", err)
			cancel()
		}
	}()

	// 시그널 대기
	sigChan := make(chan os.Signal, 1)
	osSignal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("시스템 종료 신호 수신: %v", sig)
	case <-ctx.Done():
	}

	// 스케줄러 중지
	if syncScheduler != nil {
		syncScheduler.Stop()
	}

	// 서버 정상 종료
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("서버 종료 실패: %v", err)
	}

	// 종료 알림 전송
	if err := discordClient.SendInfo("👋 백테스트 서버가 정상적으로 종료되었습니다."); err != nil {
		log.Printf("종료 알림 전송 실패: %v", err)
	}

	log.Println("프로그램을 종료합니다.")
}

func runBacktest(
	ctx context.Context,
	path string,
	cfg *config.Config,
	engine *backtest.Engine,
	resultRepo *storage.ResultRepository,
	discordClient *discord.Client,
) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("전략 파일 로드 실패: %v", err)
	}

	var req runRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Fatalf("전략 파일 파싱 실패: %v", err)
	}

	// 파일에 없는 값은 환경 설정의 기본값으로 채움
	if req.Config.InitialCapital == 0 {
		req.Config.InitialCapital = cfg.Backtest.InitialCapital
	}
	if req.Config.Commission == 0 {
		req.Config.Commission = cfg.Backtest.Commission
	}
	if req.Config.Slippage == 0 {
		req.Config.Slippage = cfg.Backtest.Slippage
	}

	log.Printf("'%s' 전략 백테스트를 시작합니다... (심볼: %v)", req.Strategy.Name, req.Strategy.Symbols)

	result, err := engine.Run(ctx, &req.Strategy, req.Config)
	if err != nil {
		if nerr := discordClient.SendError(err); nerr != nil {
			log.Printf("에러 알림 전송 실패: %v", nerr)
		}
		log.Fatalf("백테스트 실행 실패: %v", err)
	}

	if resultRepo != nil {
		if err := resultRepo.Save(ctx, result); err != nil {
			log.Printf("백테스트 결과 저장 실패: %v", err)
		}
	}

	if err := discordClient.SendResult(&req.Strategy, result); err != nil {
		log.Printf("결과 알림 전송 실패: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("결과 직렬화 실패: %v", err)
	}
	fmt.Println(string(out))
}
