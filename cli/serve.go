package cli

import (
	"fmt"
	"log"

	"mdp-backend/handlers"
	"mdp-backend/services"

	"github.com/spf13/cobra"
)

var serveEnvFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the planning HTTP/WebSocket server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveEnvFile, "env", "", "path to .env file (default: ./.env)")
	rootCmd.AddCommand(serveCmd)
	// 하위 명령 없이 실행하면 서버 시작
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	// .env 파일 로드
	if serveEnvFile != "" {
		services.LoadEnv(serveEnvFile)
	} else {
		services.LoadEnv()
	}
	cfg := services.LoadServerConfig()

	// MySQL 연결 (선택)
	if err := services.InitDatabase(); err != nil {
		return fmt.Errorf("DB 초기화 실패: %w", err)
	}

	// 로깅 시스템 초기화
	services.InitLogging(cfg.LogFlushSize, cfg.LogFlushEvery)
	defer services.StopLogging() // 종료 시 남은 로그 저장

	go handlers.Manager.Start()
	handlers.InitPlanning(cfg.Planner, handlers.Manager.BroadcastMessage, 0)

	app := handlers.NewApp(cfg.CORSOrigins, true)

	log.Printf("🚀 서버 시작: http://localhost:%s", cfg.Port)
	log.Printf("📡 WebSocket: ws://localhost:%s/websocket/web, ws://localhost:%s/websocket/robot", cfg.Port, cfg.Port)
	log.Printf("🗺️ 경로 계획: POST http://localhost:%s/path", cfg.Port)
	log.Printf("💾 로그 API: GET http://localhost:%s/api/logs/*", cfg.Port)
	return app.Listen(":" + cfg.Port)
}
