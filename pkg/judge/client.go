package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrUnavailable indicates the judge service could not be reached. No
// submission is recorded when evaluation fails this way.
var ErrUnavailable = errors.New("judge service unavailable")

// Client talks to the external judge over HTTP.
type Client interface {
	Evaluate(ctx context.Context, guideNumber, exerciseNumber int, code string) (string, Response, error)
	Status(ctx context.Context, submissionID string) (json.RawMessage, error)
}

// Config holds judge client settings.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MemoryLimit int
}

type httpClient struct {
	base    string
	http    *http.Client
	timeout time.Duration
	memory  int
	logger  zerolog.Logger
}

// NewClient constructs an HTTP judge client. The configured timeout bounds
// both the transport call and the timeout hint forwarded to the judge.
func NewClient(cfg Config, logger zerolog.Logger) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("judge base url must not be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MemoryLimit <= 0 {
		cfg.MemoryLimit = 256
	}

	return &httpClient{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		timeout: cfg.Timeout,
		memory:  cfg.MemoryLimit,
		logger:  logger.With().Str("component", "judge_client").Logger(),
	}, nil
}

func (c *httpClient) Evaluate(ctx context.Context, guideNumber, exerciseNumber int, code string) (string, Response, error) {
	tracer := otel.Tracer("github.com/ianoniszczuk/leet-pi-sub000/pkg/judge")
	ctx, span := tracer.Start(ctx, "judge.evaluate", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.Int("judge.guide_number", guideNumber),
		attribute.Int("judge.exercise_number", exerciseNumber),
	)
	defer span.End()

	submissionID := uuid.NewString()
	payload := Request{
		SubmissionID:   submissionID,
		GuideNumber:    guideNumber,
		ExerciseNumber: exerciseNumber,
		Code:           code,
		Language:       "c",
		Timeout:        int(c.timeout.Milliseconds()),
		MemoryLimit:    c.memory,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", Response{}, fmt.Errorf("encode judge request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/evaluate", bytes.NewReader(body))
	if err != nil {
		return "", Response{}, fmt.Errorf("build judge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Error().Err(err).Str("submission_id", submissionID).Msg("judge request failed")
		return submissionID, Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Error().Int("status", resp.StatusCode).Str("submission_id", submissionID).Msg("judge returned server error")
		return submissionID, Response{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// An unrecognized body is a protocol slip, not an outage: the judge
		// may still finish asynchronously, so callers get a pending outcome.
		c.logger.Warn().Err(err).Str("submission_id", submissionID).Msg("judge response could not be decoded")
		return submissionID, Response{}, nil
	}

	c.logger.Info().
		Str("submission_id", submissionID).
		Str("status", result.Status).
		Msg("judge evaluation completed")

	return submissionID, result, nil
}

func (c *httpClient) Status(ctx context.Context, submissionID string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/status/"+submissionID, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}

	// Returned verbatim; status lookups carry no normalization guarantees.
	return json.RawMessage(body), nil
}
