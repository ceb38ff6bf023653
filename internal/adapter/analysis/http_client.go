package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"speaklab/internal/config"
	"speaklab/internal/domain"
	"speaklab/internal/logger"

	"go.uber.org/zap"
)

// Client implements domain.AnalysisClient against the HTTP API of the
// anxiety-analysis model service: POST /anxiety_async enqueues a job,
// GET /result/{task_id} reports its status.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewClient creates an analysis client from configuration.
func NewClient(cfg config.AnalysisConfig) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   &http.Client{Timeout: cfg.SubmitTimeout},
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
	}
}

type enqueueResponse struct {
	TaskID string `json:"task_id"`
}

type modelPayload struct {
	AnxietyPct  *float64 `json:"anxiety_pct"`
	PauseCount  *float64 `json:"pause_count"`
	PausesCount *float64 `json:"pauses_count"`
}

type resultPayload struct {
	modelPayload
	Model *modelPayload `json:"model"`
}

type statusResponse struct {
	Status string         `json:"status"`
	Result *resultPayload `json:"result"`
}

// Submit uploads the recording as multipart form data and returns the job
// handle. Any transport failure or non-2xx status is UPSTREAM_UNAVAILABLE.
func (c *Client) Submit(ctx context.Context, audio []byte, filename string) (domain.AnalysisJob, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return domain.AnalysisJob{}, domain.NewUpstreamUnavailableError("analysis-submit", err)
	}
	if _, err := part.Write(audio); err != nil {
		return domain.AnalysisJob{}, domain.NewUpstreamUnavailableError("analysis-submit", err)
	}
	if err := writer.Close(); err != nil {
		return domain.AnalysisJob{}, domain.NewUpstreamUnavailableError("analysis-submit", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/anxiety_async", &body)
	if err != nil {
		return domain.AnalysisJob{}, domain.NewUpstreamUnavailableError("analysis-submit", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.AnalysisJob{}, domain.NewUpstreamUnavailableError("analysis-submit", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return domain.AnalysisJob{}, domain.NewUpstreamUnavailableError("analysis-submit",
			fmt.Errorf("enqueue failed with status %d: %s", resp.StatusCode, string(snippet)))
	}

	var enqueue enqueueResponse
	if err := json.NewDecoder(resp.Body).Decode(&enqueue); err != nil {
		return domain.AnalysisJob{}, domain.NewUpstreamUnavailableError("analysis-submit", err)
	}
	if enqueue.TaskID == "" {
		return domain.AnalysisJob{}, domain.NewUpstreamUnavailableError("analysis-submit",
			errors.New("enqueue response carried no task_id"))
	}

	logger.Get().Debug("analysis job enqueued", zap.String("task_id", enqueue.TaskID))
	return domain.AnalysisJob{TaskID: enqueue.TaskID}, nil
}

// PollUntilDone queries the job on a ticker until it reports done or the
// poll budget elapses. Transient transport errors and non-200 statuses are
// treated as "not yet done". The wait is a plain channel select, so the
// goroutine parks instead of burning a worker.
func (c *Client) PollUntilDone(ctx context.Context, job domain.AnalysisJob) (*domain.AnalysisResult, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pollCtx.Done():
			if errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
				return nil, domain.NewAnalysisTimeoutError(pollCtx.Err())
			}
			return nil, pollCtx.Err()
		case <-ticker.C:
			result, done := c.checkStatus(pollCtx, job)
			if done {
				return result, nil
			}
		}
	}
}

func (c *Client) checkStatus(ctx context.Context, job domain.AnalysisJob) (*domain.AnalysisResult, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/result/"+url.PathEscape(job.TaskID), nil)
	if err != nil {
		return nil, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Get().Debug("analysis poll failed, retrying", zap.String("task_id", job.TaskID), zap.Error(err))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		logger.Get().Debug("analysis poll returned malformed body, retrying",
			zap.String("task_id", job.TaskID), zap.Error(err))
		return nil, false
	}
	if status.Status != "done" {
		return nil, false
	}

	return parseResult(status.Result), true
}

// parseResult tolerates both payload shapes the model service has shipped:
// fields nested under "result.model" or flattened onto "result".
func parseResult(payload *resultPayload) *domain.AnalysisResult {
	result := &domain.AnalysisResult{}
	if payload == nil {
		return result
	}

	model := payload.Model
	if model == nil {
		model = &payload.modelPayload
	}

	if model.AnxietyPct != nil {
		v := *model.AnxietyPct
		result.AnxietyPct = &v
	} else if payload.AnxietyPct != nil {
		v := *payload.AnxietyPct
		result.AnxietyPct = &v
	}

	rawPauses := model.PauseCount
	if rawPauses == nil {
		rawPauses = model.PausesCount
	}
	if rawPauses != nil && !math.IsNaN(*rawPauses) && *rawPauses >= 0 {
		n := int(math.Round(*rawPauses))
		result.PauseCount = &n
	}
	return result
}
