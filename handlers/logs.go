package handlers

import (
	"errors"
	"strconv"

	"mdp-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HandleGetRecentLogs - 최근 계획 로그 조회
func HandleGetRecentLogs(c *fiber.Ctx) error {
	limitStr := c.Query("limit", "100")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 100
	}

	logs, err := services.RecentPlanLogs(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch logs",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"logs":    logs,
	})
}

// HandleGetPlanLog - plan_id로 계획 로그 조회 (DB 필요)
func HandleGetPlanLog(c *fiber.Ctx) error {
	planID := c.Params("plan_id")

	entry, err := services.GetPlanLog(planID)
	switch {
	case errors.Is(err, services.ErrDatabaseDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "database disabled",
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "plan not found",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch log",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"log":     entry,
	})
}

// HandleGetLogStats - 계획 통계 조회
func HandleGetLogStats(c *fiber.Ctx) error {
	hoursStr := c.Query("hours", "24")

	hours, err := strconv.Atoi(hoursStr)
	if err != nil || hours <= 0 {
		hours = 24
	}

	stats, err := services.GetPlanStats(hours)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch stats",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
