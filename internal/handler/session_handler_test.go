package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"speaklab/internal/domain"
	"speaklab/internal/dto"
	"speaklab/internal/handler"
	"speaklab/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSessionService
type MockSessionService struct {
	SubmitRecordingFunc     func(ctx context.Context, input dto.SubmitRecordingInput) (*dto.SessionResultResponse, error)
	EvaluateRecordingFunc   func(ctx context.Context, input dto.SubmitRecordingInput) (*dto.EvalResultResponse, error)
	RecordManualSessionFunc func(ctx context.Context, userID string, req *dto.ManualSessionRequest) (*dto.ManualSessionResponse, error)
}

func (m *MockSessionService) SubmitRecording(ctx context.Context, input dto.SubmitRecordingInput) (*dto.SessionResultResponse, error) {
	if m.SubmitRecordingFunc != nil {
		return m.SubmitRecordingFunc(ctx, input)
	}
	panic("MockSessionService.SubmitRecordingFunc not implemented")
}

func (m *MockSessionService) EvaluateRecording(ctx context.Context, input dto.SubmitRecordingInput) (*dto.EvalResultResponse, error) {
	if m.EvaluateRecordingFunc != nil {
		return m.EvaluateRecordingFunc(ctx, input)
	}
	panic("MockSessionService.EvaluateRecordingFunc not implemented")
}

func (m *MockSessionService) RecordManualSession(ctx context.Context, userID string, req *dto.ManualSessionRequest) (*dto.ManualSessionResponse, error) {
	if m.RecordManualSessionFunc != nil {
		return m.RecordManualSessionFunc(ctx, userID, req)
	}
	panic("MockSessionService.RecordManualSessionFunc not implemented")
}

func newSessionTestApp(svc *MockSessionService, userID string) *fiber.App {
	h := handler.NewSessionHandler(svc)
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
	})
	withUser := func(next fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if userID != "" {
				c.Locals(middleware.UserIDKey, userID)
			}
			return next(c)
		}
	}
	app.Post("/api/sessions/audio", withUser(h.SubmitAudio))
	app.Post("/api/sessions/eval/audio", withUser(h.EvaluateAudio))
	app.Post("/api/sessions", withUser(h.CreateManualSession))
	return app
}

func buildAudioForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("audio", "recording.wav")
	require.NoError(t, err)
	_, err = part.Write([]byte("RIFFfake-wav-bytes"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestSubmitAudio_ScoredSubmissionReturns201(t *testing.T) {
	svc := &MockSessionService{}
	svc.SubmitRecordingFunc = func(ctx context.Context, input dto.SubmitRecordingInput) (*dto.SessionResultResponse, error) {
		assert.Equal(t, "user1", input.UserID)
		assert.Equal(t, 2, input.TierID)
		assert.Equal(t, "recording.wav", input.Filename)
		assert.NotEmpty(t, input.Audio)
		return &dto.SessionResultResponse{
			AttemptID: "01HGZ8VNRYXS8QKNJV5GRWPWDQ",
			Model:     dto.ModelOutput{AnxietyPct: 30.0, Band: "low"},
			Detail:    dto.SessionDetail{StarRating: 3, ProgressPercentage: 100, TierUpdated: true, NewTier: "hard"},
		}, nil
	}
	app := newSessionTestApp(svc, "user1")

	body, contentType := buildAudioForm(t, map[string]string{"tier_id": "2"})
	req := httptest.NewRequest("POST", "/api/sessions/audio", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result dto.SessionResultResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "01HGZ8VNRYXS8QKNJV5GRWPWDQ", result.AttemptID)
	assert.True(t, result.Detail.TierUpdated)
}

func TestSubmitAudio_NoVoiceDetectedReturns200(t *testing.T) {
	svc := &MockSessionService{}
	svc.SubmitRecordingFunc = func(ctx context.Context, input dto.SubmitRecordingInput) (*dto.SessionResultResponse, error) {
		return &dto.SessionResultResponse{NoVoiceDetected: true}, nil
	}
	app := newSessionTestApp(svc, "user1")

	body, contentType := buildAudioForm(t, map[string]string{"tier_name": "easy"})
	req := httptest.NewRequest("POST", "/api/sessions/audio", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result dto.SessionResultResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.NoVoiceDetected)
	assert.Empty(t, result.AttemptID)
}

func TestSubmitAudio_MissingAudioFieldReturns400(t *testing.T) {
	svc := &MockSessionService{}
	app := newSessionTestApp(svc, "user1")

	req := httptest.NewRequest("POST", "/api/sessions/audio", bytes.NewBufferString("tier_id=2"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitAudio_MissingUserReturns401(t *testing.T) {
	svc := &MockSessionService{}
	app := newSessionTestApp(svc, "")

	body, contentType := buildAudioForm(t, nil)
	req := httptest.NewRequest("POST", "/api/sessions/audio", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSubmitAudio_DomainErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"analysis timeout", domain.NewAnalysisTimeoutError(nil), fiber.StatusGatewayTimeout, "ANALYSIS_TIMEOUT"},
		{"upstream down", domain.NewUpstreamUnavailableError("analysis-submit", nil), fiber.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
		{"unknown tier", domain.NewTierNotFoundError("7"), fiber.StatusUnprocessableEntity, "TIER_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &MockSessionService{}
			svc.SubmitRecordingFunc = func(ctx context.Context, input dto.SubmitRecordingInput) (*dto.SessionResultResponse, error) {
				return nil, tc.serviceErr
			}
			app := newSessionTestApp(svc, "user1")

			body, contentType := buildAudioForm(t, map[string]string{"tier_id": "1"})
			req := httptest.NewRequest("POST", "/api/sessions/audio", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			var errResp middleware.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
			assert.Equal(t, tc.wantCode, errResp.Code)
		})
	}
}

func TestEvaluateAudio_ReturnsDetailWithoutAttemptID(t *testing.T) {
	svc := &MockSessionService{}
	svc.EvaluateRecordingFunc = func(ctx context.Context, input dto.SubmitRecordingInput) (*dto.EvalResultResponse, error) {
		assert.Equal(t, "medium", input.TierName)
		return &dto.EvalResultResponse{
			Model:  dto.ModelOutput{AnxietyPct: 50.0, Band: "medium"},
			Detail: dto.EvalDetail{StarRating: 2, ProgressPercentage: 67},
		}, nil
	}
	app := newSessionTestApp(svc, "user1")

	body, contentType := buildAudioForm(t, map[string]string{"tier_name": "medium"})
	req := httptest.NewRequest("POST", "/api/sessions/eval/audio", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result dto.EvalResultResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.Detail.StarRating)
}

func TestCreateManualSession_Returns201(t *testing.T) {
	svc := &MockSessionService{}
	svc.RecordManualSessionFunc = func(ctx context.Context, userID string, req *dto.ManualSessionRequest) (*dto.ManualSessionResponse, error) {
		assert.Equal(t, "user1", userID)
		assert.Equal(t, 1, req.TierID)
		assert.Equal(t, 3, req.StarRating)
		return &dto.ManualSessionResponse{AttemptID: "01HGZ8VNRYXS8QKNJV5GRWPWDQ"}, nil
	}
	app := newSessionTestApp(svc, "user1")

	payload, _ := json.Marshal(dto.ManualSessionRequest{TierID: 1, StarRating: 3, ProgressPercentage: 100})
	req := httptest.NewRequest("POST", "/api/sessions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
