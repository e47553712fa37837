package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
)

// NewApp - 미들웨어와 라우트를 등록한 fiber 앱. InitPlanning 이후에 호출한다.
func NewApp(corsOrigins string, accessLog bool) *fiber.App {
	app := fiber.New()

	if accessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("MDP 경로 계획 서버가 실행 중입니다.")
	})

	// 펌웨어/시뮬레이터 호환 경로
	app.Get("/status", HandleStatus)
	app.Post("/path", HandlePath)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "OK",
			"clients": Manager.GetClientCount(),
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// 경로 계획
	api.Post("/path", HandlePath)

	// 재생
	api.Post("/simulate", HandleSimulate)
	api.Post("/simulate/stop", HandleStopSimulation)
	api.Get("/simulate/status", HandleSimulationStatus)

	// 무작위 시나리오
	api.Get("/scenario/random", HandleRandomScenario)
	api.Get("/scenario", HandleActiveScenario)

	// 로그 조회 API
	logsAPI := api.Group("/logs")
	logsAPI.Get("/recent", HandleGetRecentLogs) // 최근 로그
	logsAPI.Get("/stats", HandleGetLogStats)    // 통계
	logsAPI.Get("/:plan_id", HandleGetPlanLog)  // 단일 계획

	// WebSocket
	app.Use("/websocket", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/websocket/robot", websocket.New(HandleRobotWebSocket))
	app.Get("/websocket/web", websocket.New(HandleWebClientWebSocket))

	return app
}
