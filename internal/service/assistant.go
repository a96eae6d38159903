package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/observability"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service")

// AssistantBridge answers customer questions with the salon's virtual
// assistant. It never fails: every problem becomes a fixed apology.
type AssistantBridge struct {
	caller  port.AssistantCaller
	catalog port.CatalogStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAssistantBridge creates the bridge. A nil caller means no model is
// configured.
func NewAssistantBridge(caller port.AssistantCaller, catalog port.CatalogStore, metrics *observability.Metrics, logger *zap.Logger) *AssistantBridge {
	return &AssistantBridge{caller: caller, catalog: catalog, metrics: metrics, logger: logger}
}

// Chat answers message using the current service catalog as context.
func (b *AssistantBridge) Chat(ctx context.Context, message string) *domain.ChatResponse {
	ctx, span := tracer.Start(ctx, "AssistantBridge.Chat")
	defer span.End()

	services, err := b.catalog.ListServices(ctx)
	if err != nil {
		b.logger.Warn("assistant: catalog unavailable, answering without services", zap.Error(err))
		services = nil
	}

	reply := b.Reply(ctx, message, services)
	span.SetAttributes(attribute.Int("assistant.reply_chars", len(reply)))

	return &domain.ChatResponse{
		ID:        uuid.NewString(),
		Role:      "assistant",
		Reply:     reply,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Reply builds the salon prompt and returns the model's answer or one of the
// fixed fallbacks.
func (b *AssistantBridge) Reply(ctx context.Context, message string, services []domain.Service) string {
	start := time.Now()
	defer func() {
		b.metrics.RecordRequestDuration("assistant", time.Since(start))
	}()

	if b.caller == nil {
		b.metrics.IncrAssistantReply("fallback")
		return domain.AssistantUnavailable
	}

	text, err := b.caller.Generate(ctx, BuildAssistantPrompt(message, services))
	if err != nil {
		b.logger.Error("assistant call failed", zap.Error(err))
		b.metrics.IncrExternalError("gemini")
		b.metrics.IncrAssistantReply("fallback")
		return domain.AssistantFailure
	}
	if strings.TrimSpace(text) == "" {
		b.metrics.IncrAssistantReply("fallback")
		return domain.AssistantEmpty
	}

	b.metrics.IncrAssistantReply("model")
	return text
}

// BuildAssistantPrompt renders the assistant instructions, one line per
// service, and the customer's question.
func BuildAssistantPrompt(message string, services []domain.Service) string {
	lines := make([]string, 0, len(services))
	for _, s := range services {
		lines = append(lines, fmt.Sprintf("- %s (R$ %s, %d min): %s",
			s.Name, strconv.FormatFloat(s.Price, 'f', -1, 64), s.DurationMinutes, s.Description))
	}

	var b strings.Builder
	b.WriteString("Você é a assistente virtual sofisticada e prestativa do salão de beleza 'L'essence Studio', localizado na Parquelândia, Fortaleza.\n")
	b.WriteString("Slogan: \"Sua essência, nossa arte.\"\n\n")
	b.WriteString("Serviços disponíveis:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString("Responda à pergunta do cliente de forma curta, elegante e sugira um dos nossos serviços se for relevante.\n")
	b.WriteString("Se o cliente perguntar algo fora do contexto de beleza/salão, redirecione educadamente para nossos serviços.\n\n")
	fmt.Fprintf(&b, "Cliente: %q\n", message)
	return b.String()
}
