package handler

import (
	"io"
	"strconv"

	"speaklab/internal/dto"
	"speaklab/internal/logger"
	"speaklab/internal/middleware"
	"speaklab/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionHandler exposes the exposure-session endpoints.
type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func currentUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	return userID, ok && userID != ""
}

// parseRecordingInput reads the multipart form shared by the scored and
// practice endpoints: an "audio" file plus tier_id or tier_name fields.
func parseRecordingInput(c *fiber.Ctx, userID string) (dto.SubmitRecordingInput, error) {
	input := dto.SubmitRecordingInput{UserID: userID}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return input, fiber.NewError(fiber.StatusBadRequest, "an 'audio' file field is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return input, fiber.NewError(fiber.StatusBadRequest, "failed to open uploaded audio")
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		return input, fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded audio")
	}
	input.Audio = audio
	input.Filename = fileHeader.Filename

	if v := c.FormValue("tier_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return input, fiber.NewError(fiber.StatusBadRequest, "tier_id must be an integer")
		}
		input.TierID = id
	}
	input.TierName = c.FormValue("tier_name")

	return input, nil
}

// SubmitAudio scores a recording and persists the outcome.
// POST /api/sessions/audio
func (h *SessionHandler) SubmitAudio(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}

	input, err := parseRecordingInput(c, userID)
	if err != nil {
		return err
	}

	result, err := h.sessionService.SubmitRecording(c.Context(), input)
	if err != nil {
		return err
	}

	if result.NoVoiceDetected {
		return c.Status(fiber.StatusOK).JSON(result)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// EvaluateAudio scores a recording without persisting anything.
// POST /api/sessions/eval/audio
func (h *SessionHandler) EvaluateAudio(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}

	input, err := parseRecordingInput(c, userID)
	if err != nil {
		return err
	}

	result, err := h.sessionService.EvaluateRecording(c.Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// CreateManualSession stores client-provided scores verbatim.
// POST /api/sessions
func (h *SessionHandler) CreateManualSession(c *fiber.Ctx) error {
	appLogger := logger.Get()
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}

	var req dto.ManualSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.sessionService.RecordManualSession(c.Context(), userID, &req)
	if err != nil {
		return err
	}
	appLogger.Info("Manual session recorded", zap.String("userID", userID), zap.String("attemptID", result.AttemptID))
	return c.Status(fiber.StatusCreated).JSON(result)
}
