package handler

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/dto"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/service"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/utils"
)

// RosterHandler exposes roster synchronization endpoints.
type RosterHandler struct {
	service service.RosterSyncService
	logger  zerolog.Logger
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(service service.RosterSyncService, logger zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		service: service,
		logger:  logger.With().Str("component", "roster_handler").Logger(),
	}
}

// Register wires the admin sync endpoint into the router group.
func (h *RosterHandler) Register(router fiber.Router) {
	router.Post("/sync", h.sync)
}

// RegisterSeed wires the token-guarded bootstrap endpoint; the token check
// happens in the service, so no JWT is required here.
func (h *RosterHandler) RegisterSeed(router fiber.Router) {
	router.Post("/seed", h.seed)
}

func (h *RosterHandler) sync(c *fiber.Ctx) error {
	rows, err := h.readRows(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Sync(c.Context(), rows)
	if err != nil {
		h.logger.Error().Err(err).Msg("roster sync failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	// Partial failures are data, not errors: the result always comes back.
	return utils.SendSuccess(c, "roster synchronized", result)
}

func (h *RosterHandler) seed(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")

	var rows []dto.RosterRow
	if err := c.BodyParser(&rows); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Seed(c.Context(), token, rows)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusForbidden, "seeding is disabled")
		case errors.Is(err, service.ErrSeedUnauthorized):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid seed token")
		default:
			h.logger.Error().Err(err).Msg("roster seed failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	return utils.SendSuccess(c, "roster seeded", result)
}

// readRows extracts roster rows from the uploaded CSV file. The header row
// names the columns; only email is mandatory.
func (h *RosterHandler) readRows(c *fiber.Ctx) ([]dto.RosterRow, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, errors.New("missing csv file upload")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("unable to read csv file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("csv file is empty or malformed")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["email"]; !ok {
		return nil, errors.New("csv file is missing the email column")
	}

	var rows []dto.RosterRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New("csv file is malformed")
		}
		rows = append(rows, dto.RosterRow{
			Email:     field(record, columns, "email"),
			FirstName: field(record, columns, "firstname"),
			LastName:  field(record, columns, "lastname"),
		})
	}
	return rows, nil
}

func field(record []string, columns map[string]int, name string) string {
	index, ok := columns[name]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}
