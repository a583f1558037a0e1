package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/service"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/utils"
)

// ExerciseHandler lists guides and exercises open for submission.
type ExerciseHandler struct {
	service service.ExerciseService
	logger  zerolog.Logger
}

// NewExerciseHandler constructs the handler.
func NewExerciseHandler(service service.ExerciseService, logger zerolog.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		service: service,
		logger:  logger.With().Str("component", "exercise_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *ExerciseHandler) Register(router fiber.Router) {
	router.Get("", h.listAvailable)
}

func (h *ExerciseHandler) listAvailable(c *fiber.Ctx) error {
	guides, err := h.service.ListAvailable(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("exercise listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return utils.SendSuccess(c, "available exercises retrieved", guides)
}
