// Package gemini adapts Google's Gemini API to port.AssistantCaller.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var tracer = otel.Tracer("infra/gemini")

const (
	DefaultModel = "gemini-2.5-flash"
	serviceName  = "gemini"
)

// contentGenerator is the slice of *genai.GenerativeModel the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client sends single-turn prompts to a Gemini model behind a circuit breaker.
type Client struct {
	genai   *genai.Client
	model   contentGenerator
	modelID string
	cb      *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient dials Gemini with apiKey. An empty modelID selects DefaultModel.
func NewClient(ctx context.Context, apiKey, modelID string, cb *gobreaker.CircuitBreaker, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = DefaultModel
	}

	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	c := newClient(gc.GenerativeModel(modelID), modelID, cb, logger)
	c.genai = gc
	return c, nil
}

func newClient(model contentGenerator, modelID string, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *Client {
	return &Client{model: model, modelID: modelID, cb: cb, logger: logger}
}

// Generate returns the model's text answer for prompt, trimmed. An empty
// string with a nil error means the model answered with no text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "Gemini.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("gemini.model", c.modelID))

	result, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
		return extractText(resp), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &domain.ErrCircuitOpen{Service: serviceName}
		}
		c.logger.Warn("gemini call failed", zap.String("model", c.modelID), zap.Error(err))
		return "", &domain.ErrExternalService{Service: serviceName, Err: err}
	}

	text := result.(string)
	span.SetAttributes(attribute.Int("gemini.reply_chars", len(text)))
	return text, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c.genai != nil {
		return c.genai.Close()
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}
