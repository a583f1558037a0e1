package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/service"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/utils"
)

// RankingHandler exposes per-exercise leaderboards.
type RankingHandler struct {
	service service.RankingService
	logger  zerolog.Logger
}

// NewRankingHandler constructs the handler.
func NewRankingHandler(service service.RankingService, logger zerolog.Logger) *RankingHandler {
	return &RankingHandler{
		service: service,
		logger:  logger.With().Str("component", "ranking_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *RankingHandler) Register(router fiber.Router) {
	router.Get("/:guideNumber/:exerciseNumber", h.exerciseRankings)
}

func (h *RankingHandler) exerciseRankings(c *fiber.Ctx) error {
	guideNumber, err := parseIntParam(c, "guideNumber")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	exerciseNumber, err := parseIntParam(c, "exerciseNumber")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	rankings, err := h.service.ExerciseRankings(c.Context(), guideNumber, exerciseNumber)
	if err != nil {
		if errors.Is(err, service.ErrGuideNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "guide not found")
		}
		h.logger.Error().Err(err).Msg("ranking request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "exercise rankings retrieved", rankings)
}
