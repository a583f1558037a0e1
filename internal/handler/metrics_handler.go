package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/service"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/utils"
)

// MetricsHandler exposes the analytics dashboard endpoints.
type MetricsHandler struct {
	service service.MetricsService
	logger  zerolog.Logger
}

// NewMetricsHandler constructs the handler.
func NewMetricsHandler(service service.MetricsService, logger zerolog.Logger) *MetricsHandler {
	return &MetricsHandler{
		service: service,
		logger:  logger.With().Str("component", "metrics_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *MetricsHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
	router.Get("/progress", h.progress)
	router.Get("/resolution-time", h.resolutionTime)
	router.Get("/attempts", h.attempts)
	router.Get("/active-students", h.activeStudents)
	router.Get("/error-rate", h.errorRate)
	router.Get("/at-risk", h.atRisk)
	router.Get("/progress-distribution", h.progressDistribution)
	router.Get("/weekly-activity", h.weeklyActivity)
	router.Get("/completion-matrix", h.completionMatrix)
}

func (h *MetricsHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.GetSummary(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "metrics summary retrieved", summary)
}

func (h *MetricsHandler) progress(c *fiber.Ctx) error {
	progress, err := h.service.ProgressByStudent(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "student progress retrieved", progress)
}

func (h *MetricsHandler) resolutionTime(c *fiber.Ctx) error {
	avg, err := h.service.AvgResolutionTime(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "average resolution time retrieved", avg)
}

func (h *MetricsHandler) attempts(c *fiber.Ctx) error {
	attempts, err := h.service.AvgAttemptsByExercise(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "average attempts retrieved", attempts)
}

func (h *MetricsHandler) activeStudents(c *fiber.Ctx) error {
	active, err := h.service.ActiveStudents(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "active students retrieved", active)
}

func (h *MetricsHandler) errorRate(c *fiber.Ctx) error {
	ranking, err := h.service.ErrorRateRanking(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "error rate ranking retrieved", ranking)
}

func (h *MetricsHandler) atRisk(c *fiber.Ctx) error {
	students, err := h.service.StudentsAtRisk(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "students at risk retrieved", students)
}

func (h *MetricsHandler) progressDistribution(c *fiber.Ctx) error {
	distribution, err := h.service.ProgressDistribution(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "progress distribution retrieved", distribution)
}

func (h *MetricsHandler) weeklyActivity(c *fiber.Ctx) error {
	activity, err := h.service.WeeklyActivity(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "weekly activity retrieved", activity)
}

func (h *MetricsHandler) completionMatrix(c *fiber.Ctx) error {
	matrix, err := h.service.CompletionMatrix(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "completion matrix retrieved", matrix)
}

func (h *MetricsHandler) fail(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("metrics request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
