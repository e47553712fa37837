package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"mdp-backend/algorithms"
	"mdp-backend/models"
	"mdp-backend/services"

	"github.com/gofiber/fiber/v2"
)

var (
	planService *services.PlanService
	simulator   *services.PlanSimulator
	scenarios   *services.ScenarioGenerator
)

// InitPlanning - 플래너, 재생기, 시나리오 생성기 초기화
func InitPlanning(cfg algorithms.Config, broadcast func(models.WebSocketMessage), tick time.Duration) {
	planService = services.NewPlanService(algorithms.NewPlanner(cfg), broadcast)
	simulator = services.NewPlanSimulator(broadcast, tick)
	scenarios = services.NewScenarioGenerator(cfg, algorithms.NewPose(1, 1, algorithms.North))
	log.Printf("✅ 플래너 초기화 완료 (%dx%d, 반경 %d, 여유 %d, 회전 %s)",
		cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.RobotRadius, cfg.Grid.Clearance, cfg.Motion.TurnMode)
}

// StatusForError - 계획 오류를 HTTP 상태 코드로 변환
func StatusForError(err error) int {
	switch {
	case errors.Is(err, algorithms.ErrInvalidObstaclePlacement),
		errors.Is(err, algorithms.ErrInvalidStartPose),
		errors.Is(err, services.ErrBadRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, algorithms.ErrUnreachableObstacle),
		errors.Is(err, algorithms.ErrNoPathFound),
		errors.Is(err, algorithms.ErrTooManyObstacles),
		errors.Is(err, algorithms.ErrSearchBudgetExceeded):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}

func errorResponse(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(models.PathResponse{Error: &msg})
}

// HandleStatus - 상태 확인
func HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

// HandlePath - 장애물 방문 경로 계획
func HandlePath(c *fiber.Ctx) error {
	var req models.PathRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "잘못된 요청 형식입니다")
	}

	log.Printf("📍 경로 계획 요청: 장애물 %d개, 로봇 (%d, %d, %d), retrying=%v",
		len(req.Obstacles), req.RobotX, req.RobotY, req.RobotDir, req.Retrying)

	outcome, err := planService.Plan(c.UserContext(), req, "http")
	if err != nil {
		return errorResponse(c, StatusForError(err), err.Error())
	}

	log.Printf("✅ 경로 계획 성공 [%s]: 명령 %d개, 거리 %.0f, %v",
		outcome.PlanID, len(outcome.Data.Commands), outcome.Data.Distance, outcome.Duration)
	return c.Status(fiber.StatusOK).JSON(models.PathResponse{Data: outcome.Data})
}

// HandleSimulate - 계획 후 웹 클라이언트로 포즈 재생
func HandleSimulate(c *fiber.Ctx) error {
	var req models.PathRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "잘못된 요청 형식입니다")
	}

	outcome, err := planService.Plan(c.UserContext(), req, "simulate")
	if err != nil {
		return errorResponse(c, StatusForError(err), err.Error())
	}
	if err := simulator.Start(outcome); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(fiber.StatusAccepted).JSON(models.PathResponse{Data: outcome.Data})
}

// HandleStopSimulation - 재생 중지
func HandleStopSimulation(c *fiber.Ctx) error {
	simulator.Stop()
	return c.JSON(fiber.Map{
		"success": true,
		"status":  simulator.GetStatus(),
	})
}

// HandleSimulationStatus - 재생 상태 조회
func HandleSimulationStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"status":  simulator.GetStatus(),
	})
}

// HandleRandomScenario - 배치 검증을 통과하는 무작위 장애물 생성
func HandleRandomScenario(c *fiber.Ctx) error {
	count, err := strconv.Atoi(c.Query("n", "5"))
	if err != nil || count <= 0 || count > algorithms.ExactObstacleCap {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "n must be between 1 and 16",
		})
	}
	seed, _ := strconv.ParseInt(c.Query("seed", "0"), 10, 64)

	scenario, err := scenarios.Generate(count, seed)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"scenario": scenario,
	})
}

// HandleActiveScenario - 마지막으로 생성한 시나리오
func HandleActiveScenario(c *fiber.Ctx) error {
	scenario := scenarios.Active()
	if scenario == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no scenario generated",
		})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"scenario": scenario,
	})
}
